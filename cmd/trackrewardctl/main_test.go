package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackreward/pkg/trackreward"
)

func record(steps int, progress string) string {
	return `{"heading": 0, "x": 0, "y": 0, "distance_from_center": 0, "steps": ` +
		strconv.Itoa(steps) + `, "steering_angle": 0, "speed": 5, "bearing": "center", "progress": ` +
		progress + `, "waypoints": [[0, 0], [10, 0]], "closest_waypoints": [0, 1]}`
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--log_level", "off"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestScoreFromStdin(t *testing.T) {
	stdin := record(1, "0") + "\n\n" + record(2, "12") + "\n"
	out, err := execute(t, stdin, "score")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	var first scoreLine
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, 1000.0, first.Reward)
	assert.Equal(t, 1.0, first.Steps)
}

func TestScoreBreakdownAndUnpardonable(t *testing.T) {
	out, err := execute(t, record(1, "0")+"\n", "score", "--breakdown", "--unpardonable")
	require.NoError(t, err)

	var b trackreward.Breakdown
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &b))
	assert.True(t, b.NewEpisode)
	assert.True(t, b.Unpardonable)
	assert.Equal(t, 1e-3, b.Total)
}

func TestScoreReportsBadLine(t *testing.T) {
	_, err := execute(t, record(1, "0")+"\n"+`{"steps": 2}`+"\n", "score")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.ErrorIs(t, err, trackreward.ErrMissingParam)
}

func TestScoreRewardConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("reward:\n  max_speed: 10\n"), 0o644))

	out, err := execute(t, record(1, "0")+"\n", "--config", configPath, "score", "--breakdown")
	require.NoError(t, err)

	var b trackreward.Breakdown
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &b))
	assert.Equal(t, 0.5, b.SpeedReward)

	out, err = execute(t, record(1, "0")+"\n", "--max_speed", "20", "score", "--breakdown")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &b))
	assert.Equal(t, 0.25, b.SpeedReward)
}

func TestScoreRejectsInvalidLogLevel(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs([]string{"--log_level", "loud", "score"})
	assert.Error(t, cmd.Execute())
}

func TestReplayEpisodesExport(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "episodes.db")
	exports := filepath.Join(dir, "exports")
	stream := filepath.Join(dir, "lap.jsonl")
	require.NoError(t, os.WriteFile(stream, []byte(strings.Join([]string{
		record(1, "0"), record(2, "5"), record(3, "11"), record(1, "0"), record(2, "2"),
	}, "\n")), 0o644))

	common := []string{"--db_path", db, "--exports_dir", exports, "--keep_traces"}

	out, err := execute(t, "", append(common, "replay", stream)...)
	require.NoError(t, err)
	assert.Contains(t, out, "lap")
	assert.Contains(t, out, "1 files replayed")

	out, err = execute(t, "", append(common, "episodes", "--output", "json")...)
	require.NoError(t, err)
	var episodes []trackreward.EpisodeSummary
	require.NoError(t, json.Unmarshal([]byte(out), &episodes))
	require.Len(t, episodes, 2)
	assert.Equal(t, 2, episodes[0].Steps)
	assert.Equal(t, 3, episodes[1].Steps)

	out, err = execute(t, "", append(common, "episodes", "--agent", "lap", "--limit", "1")...)
	require.NoError(t, err)
	assert.Contains(t, out, episodes[0].ID)
	assert.NotContains(t, out, episodes[1].ID)

	out, err = execute(t, "", append(common, "export", "--episode", episodes[1].ID)...)
	require.NoError(t, err)
	assert.Contains(t, out, episodes[1].ID)
	_, err = os.Stat(filepath.Join(exports, episodes[1].ID, "steps.csv"))
	require.NoError(t, err)

	_, err = execute(t, "", append(common, "export")...)
	assert.Error(t, err)

	_, err = execute(t, "", append(common, "episodes", "--output", "xml")...)
	assert.Error(t, err)
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "-", formatMilestones(nil))
	assert.Equal(t, "10% 20% 100%", formatMilestones([]int{1, 2, 10}))

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "1 hour ago", formatEnded("2024-01-01T11:00:00Z", now))
	assert.Equal(t, "garbage", formatEnded("garbage", now))
}
