package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"trackreward/internal/model"
)

const episodeIndexFile = "episode_index.json"

var stepColumns = []string{
	"steps",
	"progress",
	"speed",
	"steering_angle",
	"direction_diff",
	"heading_reward",
	"distance_reward",
	"speed_reward",
	"speed_maintain_bonus",
	"heading_decrease_bonus",
	"steering_maintain_bonus",
	"distance_reduction_bonus",
	"milestone_bonus",
	"immediate",
	"long_term",
	"total",
	"unpardonable",
}

type EpisodeIndexEntry struct {
	EpisodeID     string  `json:"episode_id"`
	AgentID       string  `json:"agent_id"`
	Steps         int     `json:"steps"`
	FinalProgress float64 `json:"final_progress"`
	TotalReward   float64 `json:"total_reward"`
	EndedAtUTC    string  `json:"ended_at_utc,omitempty"`
}

// WriteEpisodeArtifacts writes summary.json and steps.csv under
// baseDir/<episode id> and returns that directory.
func WriteEpisodeArtifacts(baseDir string, summary model.EpisodeSummary, records []model.StepRecord) (string, error) {
	if summary.ID == "" {
		return "", fmt.Errorf("episode id is required")
	}

	episodeDir := filepath.Join(baseDir, summary.ID)
	if err := os.MkdirAll(episodeDir, 0o755); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(episodeDir, "summary.json"), summary); err != nil {
		return "", err
	}
	if records != nil {
		if err := writeStepsCSV(filepath.Join(episodeDir, "steps.csv"), records); err != nil {
			return "", err
		}
	}
	if err := AppendEpisodeIndex(baseDir, EpisodeIndexEntry{
		EpisodeID:     summary.ID,
		AgentID:       summary.AgentID,
		Steps:         summary.Steps,
		FinalProgress: summary.FinalProgress,
		TotalReward:   summary.TotalReward,
		EndedAtUTC:    summary.EndedAtUTC,
	}); err != nil {
		return "", err
	}
	return episodeDir, nil
}

func AppendEpisodeIndex(baseDir string, entry EpisodeIndexEntry) error {
	if entry.EpisodeID == "" {
		return fmt.Errorf("episode id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListEpisodeIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].EpisodeID == entry.EpisodeID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, episodeIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, episodeIndexFile), index)
}

func ListEpisodeIndex(baseDir string) ([]EpisodeIndexEntry, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, episodeIndexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []EpisodeIndexEntry{}, nil
		}
		return nil, err
	}

	var index []EpisodeIndexEntry
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, err
	}
	return index, nil
}

func ReadEpisodeSummary(baseDir, episodeID string) (model.EpisodeSummary, bool, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, episodeID, "summary.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return model.EpisodeSummary{}, false, nil
		}
		return model.EpisodeSummary{}, false, err
	}

	var summary model.EpisodeSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return model.EpisodeSummary{}, false, err
	}
	return summary, true, nil
}

func writeStepsCSV(path string, records []model.StepRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(stepColumns); err != nil {
		return err
	}
	for _, rec := range records {
		if err := writer.Write([]string{
			strconv.Itoa(rec.Steps),
			formatFloat(rec.Progress),
			formatFloat(rec.Speed),
			formatFloat(rec.SteeringAngle),
			formatFloat(rec.DirectionDiff),
			formatFloat(rec.HeadingReward),
			formatFloat(rec.DistanceReward),
			formatFloat(rec.SpeedReward),
			formatFloat(rec.SpeedMaintainBonus),
			formatFloat(rec.HeadingDecreaseBonus),
			formatFloat(rec.SteeringMaintainBonus),
			formatFloat(rec.DistanceReductionBonus),
			formatFloat(rec.MilestoneBonus),
			formatFloat(rec.Immediate),
			formatFloat(rec.LongTerm),
			formatFloat(rec.Total),
			strconv.FormatBool(rec.Unpardonable),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadEpisodeSteps loads steps.csv back. It reports false when the episode
// was exported without a step trace.
func ReadEpisodeSteps(baseDir, episodeID string) ([]model.StepRecord, bool, error) {
	file, err := os.Open(filepath.Join(baseDir, episodeID, "steps.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []model.StepRecord{}, true, nil
		}
		return nil, false, err
	}
	if len(header) != len(stepColumns) {
		return nil, false, fmt.Errorf("steps header must have %d columns", len(stepColumns))
	}

	var records []model.StepRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		rec, err := parseStepRow(row)
		if err != nil {
			return nil, false, err
		}
		records = append(records, rec)
	}
	return records, true, nil
}

func parseStepRow(row []string) (model.StepRecord, error) {
	var rec model.StepRecord
	steps, err := strconv.Atoi(row[0])
	if err != nil {
		return rec, err
	}
	rec.Steps = steps

	targets := []*float64{
		&rec.Progress,
		&rec.Speed,
		&rec.SteeringAngle,
		&rec.DirectionDiff,
		&rec.HeadingReward,
		&rec.DistanceReward,
		&rec.SpeedReward,
		&rec.SpeedMaintainBonus,
		&rec.HeadingDecreaseBonus,
		&rec.SteeringMaintainBonus,
		&rec.DistanceReductionBonus,
		&rec.MilestoneBonus,
		&rec.Immediate,
		&rec.LongTerm,
		&rec.Total,
	}
	for i, target := range targets {
		v, err := strconv.ParseFloat(row[i+1], 64)
		if err != nil {
			return rec, fmt.Errorf("column %s: %w", stepColumns[i+1], err)
		}
		*target = v
	}

	unpardonable, err := strconv.ParseBool(row[len(row)-1])
	if err != nil {
		return rec, err
	}
	rec.Unpardonable = unpardonable
	return rec, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
