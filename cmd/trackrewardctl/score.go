package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"trackreward/internal/telemetry"
	"trackreward/pkg/trackreward"
)

const (
	scoreInputKey        = "input"
	scoreBreakdownKey    = "breakdown"
	scoreUnpardonableKey = "unpardonable"
)

type scoreLine struct {
	Steps  any     `json:"steps"`
	Reward float64 `json:"reward"`
}

func newScoreCmd(rootViper *viper.Viper) *cobra.Command {
	scoreViper := viper.New()

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a stream of simulator parameter records, one JSON object per line",
		Long: "Reads JSON lines from --input or stdin and writes one reward per record to stdout.\n" +
			"The stream is a single reward session: a drop in the step counter starts a new episode.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := rewardConfig(rootViper)
			if err != nil {
				return err
			}
			session, err := trackreward.NewSession(cfg)
			if err != nil {
				return err
			}
			session.SetUnpardonable(scoreViper.GetBool(scoreUnpardonableKey))

			var in io.Reader = cmd.InOrStdin()
			if path := scoreViper.GetString(scoreInputKey); path != "" && path != "-" {
				file, err := os.Open(path)
				if err != nil {
					return err
				}
				defer file.Close()
				in = file
			}

			return scoreStream(in, cmd.OutOrStdout(), session, scoreViper.GetBool(scoreBreakdownKey))
		},
	}

	cmd.Flags().String(scoreInputKey, "", "Input file of JSON lines, stdin when empty or -")
	cmd.Flags().Bool(scoreBreakdownKey, false, "Write every reward term instead of the total only")
	cmd.Flags().Bool(scoreUnpardonableKey, false, "Raise the unpardonable flag for the whole stream")
	cmd.Flags().SortFlags = false
	_ = scoreViper.BindPFlags(cmd.Flags())

	return cmd
}

func scoreStream(in io.Reader, out io.Writer, session *trackreward.Session, breakdown bool) error {
	enc := json.NewEncoder(out)
	count := 0
	err := telemetry.ScanJSONLines(in, func(line int, params map[string]any) error {
		b, err := session.StepParams(params)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		count++
		if breakdown {
			return enc.Encode(b)
		}
		return enc.Encode(scoreLine{Steps: params["steps"], Reward: b.Total})
	})
	if err != nil {
		return err
	}
	log.WithField("records", count).Debug("stream scored")
	return nil
}
