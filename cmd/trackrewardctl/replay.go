package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"trackreward/pkg/trackreward"
)

const replayWorkersKey = "workers"

func newReplayCmd(rootViper *viper.Viper) *cobra.Command {
	replayViper := viper.New()

	cmd := &cobra.Command{
		Use:   "replay FILE...",
		Short: "Replay recorded telemetry (.jsonl or .csv), one agent per file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			client, err := openClient(cmd, rootViper)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := client.Close(cmd.Context()); closeErr != nil && err == nil {
					err = closeErr
				}
			}()

			summaries, err := client.Replay(cmd.Context(), trackreward.ReplayRequest{
				Files:   args,
				Workers: replayViper.GetInt(replayWorkersKey),
			})
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetBorder(false)
			table.SetHeader([]string{"file", "agent", "steps", "episodes", "total reward"})
			steps := 0
			for _, s := range summaries {
				steps += s.Steps
				table.Append([]string{
					s.File,
					s.AgentID,
					humanize.Comma(int64(s.Steps)),
					fmt.Sprintf("%d", len(s.EpisodeIDs)),
					humanize.FormatFloat("#,###.###", s.TotalReward),
				})
			}
			table.SetCaption(true, fmt.Sprintf("%d files replayed, %s steps scored", len(summaries), humanize.Comma(int64(steps))))
			table.Render()
			return nil
		},
	}

	cmd.Flags().Int(replayWorkersKey, 0, "Maximum files replayed in parallel, 0 for no limit")
	_ = replayViper.BindPFlags(cmd.Flags())

	return cmd
}
