package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"trackreward/pkg/trackreward"
)

const (
	exportEpisodeKey = "episode"
	exportLatestKey  = "latest"
	exportAgentKey   = "agent"
	exportOutKey     = "out"
)

func newExportCmd(rootViper *viper.Viper) *cobra.Command {
	exportViper := viper.New()

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write an episode summary.json, and steps.csv when its trace was kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			client, err := openClient(cmd, rootViper)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := client.Close(cmd.Context()); closeErr != nil && err == nil {
					err = closeErr
				}
			}()

			exported, err := client.Export(cmd.Context(), trackreward.ExportRequest{
				EpisodeID: exportViper.GetString(exportEpisodeKey),
				Latest:    exportViper.GetBool(exportLatestKey),
				AgentID:   exportViper.GetString(exportAgentKey),
				OutDir:    exportViper.GetString(exportOutKey),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported episode %s to %s\n", exported.EpisodeID, exported.Directory)
			if !exported.WithSteps {
				log.WithField("episode_id", exported.EpisodeID).Warn("no step trace stored, only the summary was exported")
			}
			return nil
		},
	}

	cmd.Flags().String(exportEpisodeKey, "", "Episode id to export")
	cmd.Flags().Bool(exportLatestKey, false, "Export the most recent episode")
	cmd.Flags().String(exportAgentKey, "", "With --latest, only consider this agent")
	cmd.Flags().String(exportOutKey, "", "Output directory, defaults to --exports_dir")
	cmd.Flags().SortFlags = false
	_ = exportViper.BindPFlags(cmd.Flags())

	return cmd
}
