package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"trackreward/pkg/trackreward"
)

const (
	episodesAgentKey  = "agent"
	episodesLimitKey  = "limit"
	episodesOutputKey = "output"
)

func newEpisodesCmd(rootViper *viper.Viper) *cobra.Command {
	episodesViper := viper.New()

	cmd := &cobra.Command{
		Use:   "episodes",
		Short: "List persisted episodes, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			output := episodesViper.GetString(episodesOutputKey)
			if output != "text" && output != "json" {
				return fmt.Errorf("invalid output %q expecting one of [text json]", output)
			}

			client, err := openClient(cmd, rootViper)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := client.Close(cmd.Context()); closeErr != nil && err == nil {
					err = closeErr
				}
			}()

			episodes, err := client.Episodes(cmd.Context(), trackreward.EpisodesRequest{
				AgentID: episodesViper.GetString(episodesAgentKey),
				Limit:   episodesViper.GetInt(episodesLimitKey),
			})
			if err != nil {
				return err
			}

			if output == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if episodes == nil {
					episodes = []trackreward.EpisodeSummary{}
				}
				return enc.Encode(episodes)
			}
			renderEpisodes(cmd.OutOrStdout(), episodes, time.Now())
			return nil
		},
	}

	cmd.Flags().String(episodesAgentKey, "", "Only list episodes of this agent")
	cmd.Flags().Int(episodesLimitKey, 20, "Maximum number of episodes, 0 for all")
	cmd.Flags().String(episodesOutputKey, "text", "Output format as one of [text json]")
	cmd.Flags().SortFlags = false
	_ = episodesViper.BindPFlags(cmd.Flags())

	return cmd
}

func renderEpisodes(w io.Writer, episodes []trackreward.EpisodeSummary, now time.Time) {
	table := tablewriter.NewWriter(w)
	table.SetBorder(false)
	table.SetHeader([]string{"episode id", "agent", "ended", "steps", "progress", "total reward", "mean", "milestones", "unpardonable"})
	for _, e := range episodes {
		table.Append([]string{
			e.ID,
			e.AgentID,
			formatEnded(e.EndedAtUTC, now),
			humanize.Comma(int64(e.Steps)),
			fmt.Sprintf("%.1f%%", e.FinalProgress),
			humanize.FormatFloat("#,###.##", e.TotalReward),
			humanize.FormatFloat("#,###.##", e.MeanReward),
			formatMilestones(e.Milestones),
			fmt.Sprintf("%d", e.UnpardonableSteps),
		})
	}
	table.SetCaption(true, fmt.Sprintf("%d episodes", len(episodes)))
	table.Render()
}

func formatEnded(ended string, now time.Time) string {
	t, err := time.Parse(time.RFC3339, ended)
	if err != nil {
		return ended
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func formatMilestones(buckets []int) string {
	if len(buckets) == 0 {
		return "-"
	}
	parts := make([]string, len(buckets))
	for i, b := range buckets {
		parts[i] = fmt.Sprintf("%d%%", b*10)
	}
	return strings.Join(parts, " ")
}
