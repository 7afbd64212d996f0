package stats

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"trackreward/internal/model"
	"trackreward/internal/reward"
)

// Summarize aggregates the step records of one episode. Timestamps and
// version stamps are left for the caller to fill.
func Summarize(agentID, episodeID string, records []model.StepRecord) model.EpisodeSummary {
	summary := model.EpisodeSummary{
		ID:      episodeID,
		AgentID: agentID,
		Steps:   len(records),
	}
	if len(records) == 0 {
		return summary
	}

	totals := make([]float64, len(records))
	for i, rec := range records {
		totals[i] = rec.Total
		summary.MilestoneBonus += rec.MilestoneBonus
		if rec.MilestoneBonus > 0 {
			summary.Milestones = append(summary.Milestones, reward.MilestoneBucket(rec.Progress))
		}
		if rec.Unpardonable {
			summary.UnpardonableSteps++
		}
	}

	last := records[len(records)-1]
	summary.LastStep = last.Steps
	summary.FinalProgress = last.Progress
	summary.TotalReward = floats.Sum(totals)
	summary.MinReward = floats.Min(totals)
	summary.MaxReward = floats.Max(totals)
	if len(totals) > 1 {
		summary.MeanReward, summary.StdReward = stat.MeanStdDev(totals, nil)
	} else {
		summary.MeanReward = totals[0]
	}
	return summary
}
