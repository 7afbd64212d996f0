package main

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"trackreward/internal/reward"
	"trackreward/internal/storage"
	"trackreward/pkg/trackreward"
)

const envPrefix = "TRACKREWARD"

const (
	logLevelKey   = "log_level"
	logFileKey    = "log_file"
	logFormatKey  = "log_format"
	configFileKey = "config"
	storeKey      = "store"
	dbPathKey     = "db_path"
	keepTracesKey = "keep_traces"
	exportsDirKey = "exports_dir"
	maxSpeedKey   = "max_speed"
)

const (
	defaultDBPath     = "trackreward.db"
	defaultExportsDir = "exports"
)

func newRootCmd() *cobra.Command {
	rootViper := viper.New()

	rootCmd := &cobra.Command{
		Use:          "trackrewardctl",
		Short:        "Score, replay and inspect track driving rewards",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := readConfigFile(rootViper); err != nil {
				return err
			}
			return configureLog(rootViper)
		},
	}

	flags := rootCmd.PersistentFlags()

	rootViper.SetDefault(logLevelKey, logrus.InfoLevel.String())
	_ = rootViper.BindEnv(logLevelKey, envPrefix+"_LOG_LEVEL")
	flags.String(logLevelKey, rootViper.GetString(logLevelKey),
		fmt.Sprintf("Minimum logging level as one of %v", expectedLogLevels))

	_ = rootViper.BindEnv(logFileKey, envPrefix+"_LOG_FILE")
	flags.String(logFileKey, "", "Log file output")

	_ = rootViper.BindEnv(logFormatKey, envPrefix+"_LOG_FORMAT")
	flags.String(logFormatKey, "", fmt.Sprintf(
		"Log format as one of %v, default is %q, when a log file is specified it is %q",
		expectedLogFormats, textFormat, jsonFormat,
	))

	_ = rootViper.BindEnv(configFileKey, envPrefix+"_CONFIG")
	flags.String(configFileKey, "", "Optional config file (yaml, json or toml) with a reward section")

	rootViper.SetDefault(storeKey, storage.KindBolt)
	_ = rootViper.BindEnv(storeKey, envPrefix+"_STORE")
	flags.String(storeKey, rootViper.GetString(storeKey),
		fmt.Sprintf("Episode store backend as one of %v", []string{storage.KindMemory, storage.KindBolt, storage.KindSQLite}))

	rootViper.SetDefault(dbPathKey, defaultDBPath)
	_ = rootViper.BindEnv(dbPathKey, envPrefix+"_DB_PATH")
	flags.String(dbPathKey, rootViper.GetString(dbPathKey), "Path of the bolt or sqlite episode store")

	_ = rootViper.BindEnv(keepTracesKey, envPrefix+"_KEEP_TRACES")
	flags.Bool(keepTracesKey, false, "Persist per-step traces along with episode summaries")

	rootViper.SetDefault(exportsDirKey, defaultExportsDir)
	_ = rootViper.BindEnv(exportsDirKey, envPrefix+"_EXPORTS_DIR")
	flags.String(exportsDirKey, rootViper.GetString(exportsDirKey), "Directory episode exports are written to")

	_ = rootViper.BindEnv(maxSpeedKey, envPrefix+"_MAX_SPEED")
	flags.Float64(maxSpeedKey, 0, "Override reward.max_speed, the speed that earns the full speed reward")

	// Don't sort alphabetically, keep insertion order
	flags.SortFlags = false

	// Bind "cobra" flags defined in the CLI with viper
	_ = rootViper.BindPFlags(flags)

	defaults := reward.DefaultConfig()
	for key, value := range map[string]float64{
		"max_speed":       defaults.MaxSpeed,
		"min_reward":      defaults.MinReward,
		"max_reward":      defaults.MaxReward,
		"heading_weight":  defaults.HeadingWeight,
		"distance_weight": defaults.DistanceWeight,
		"speed_weight":    defaults.SpeedWeight,
	} {
		rootViper.SetDefault("reward."+key, value)
		_ = rootViper.BindEnv("reward."+key, envPrefix+"_REWARD_"+strings.ToUpper(key))
	}

	rootCmd.AddCommand(newScoreCmd(rootViper))
	rootCmd.AddCommand(newReplayCmd(rootViper))
	rootCmd.AddCommand(newServeCmd(rootViper))
	rootCmd.AddCommand(newEpisodesCmd(rootViper))
	rootCmd.AddCommand(newExportCmd(rootViper))

	return rootCmd
}

func readConfigFile(cfg *viper.Viper) error {
	path := cfg.GetString(configFileKey)
	if path == "" {
		return nil
	}
	cfg.SetConfigFile(path)
	if err := cfg.ReadInConfig(); err != nil {
		return fmt.Errorf("unable to read config file %q: %w", path, err)
	}
	return nil
}

func rewardConfig(cfg *viper.Viper) (reward.Config, error) {
	var settings struct {
		Reward reward.Config `mapstructure:"reward"`
	}
	if err := cfg.Unmarshal(&settings); err != nil {
		return reward.Config{}, fmt.Errorf("invalid reward config: %w", err)
	}
	out := settings.Reward
	if v := cfg.GetFloat64(maxSpeedKey); v > 0 {
		out.MaxSpeed = v
	}
	if err := out.Validate(); err != nil {
		return reward.Config{}, err
	}
	return out, nil
}

// openClient builds a client from the shared store flags. Callers must Close it.
func openClient(cmd *cobra.Command, cfg *viper.Viper) (*trackreward.Client, error) {
	rewardCfg, err := rewardConfig(cfg)
	if err != nil {
		return nil, err
	}

	client, err := trackreward.New(trackreward.Options{
		StoreKind:  cfg.GetString(storeKey),
		DBPath:     cfg.GetString(dbPathKey),
		ExportsDir: cfg.GetString(exportsDirKey),
		KeepTraces: cfg.GetBool(keepTracesKey),
		Reward:     &rewardCfg,
	})
	if err != nil {
		return nil, err
	}
	if err := client.Init(cmd.Context()); err != nil {
		_ = client.Close(cmd.Context())
		return nil, err
	}
	return client, nil
}
