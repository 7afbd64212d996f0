// Package telemetry loads recorded simulator parameter streams so they can be
// replayed through the reward function.
package telemetry

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	FormatJSONLines = "jsonl"
	FormatCSV       = "csv"
)

// list-valued CSV columns hold JSON text.
var jsonColumns = map[string]bool{
	"waypoints":         true,
	"closest_waypoints": true,
}

// ReadJSONLines reads one parameter object per line. Blank lines are skipped.
func ReadJSONLines(r io.Reader) ([]map[string]any, error) {
	var out []map[string]any
	err := ScanJSONLines(r, func(_ int, params map[string]any) error {
		out = append(out, params)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ScanJSONLines calls fn for every parameter object as it is read, so long
// streams never sit in memory. Numbers are kept as json.Number so integer
// step counters survive intact. An error from fn stops the scan.
func ScanJSONLines(r io.Reader, fn func(line int, params map[string]any) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var params map[string]any
		if err := dec.Decode(&params); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := fn(line, params); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// ReadCSV reads a header row of parameter names followed by one row per step.
// Booleans and numbers are parsed; the waypoints column holds a JSON array and
// closest_waypoints is either a JSON array or "i;j".
func ReadCSV(r io.Reader) ([]map[string]any, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var out []map[string]any
	row := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row++

		params := make(map[string]any, len(header))
		for i, key := range header {
			if i >= len(record) {
				break
			}
			value, err := parseCell(key, strings.TrimSpace(record[i]))
			if err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", row, key, err)
			}
			if value != nil {
				params[key] = value
			}
		}
		out = append(out, params)
	}
	return out, nil
}

func parseCell(key, cell string) (any, error) {
	if cell == "" {
		return nil, nil
	}
	if key == "closest_waypoints" && !strings.HasPrefix(cell, "[") {
		parts := strings.Split(cell, ";")
		if len(parts) != 2 {
			return nil, fmt.Errorf("expected i;j, got %q", cell)
		}
		a, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, err
		}
		b, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, err
		}
		return []int{a, b}, nil
	}
	if jsonColumns[key] {
		dec := json.NewDecoder(strings.NewReader(cell))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
	if strings.EqualFold(cell, "true") || strings.EqualFold(cell, "false") {
		return strings.EqualFold(cell, "true"), nil
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return f, nil
	}
	return cell, nil
}

// FormatFor picks the reader for path by extension. Unknown extensions are
// read as JSON lines.
func FormatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	default:
		return FormatJSONLines
	}
}

// ReadFile loads a recorded stream from disk.
func ReadFile(path string) ([]map[string]any, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if FormatFor(path) == FormatCSV {
		return ReadCSV(file)
	}
	return ReadJSONLines(file)
}
