package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "kreader",
		Short: "Read Kafka partitions to the end with resumable checkpoints",
		// Disable Cobra CLI's built-in usage and error handling
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")

	root.AddCommand(newReadCmd(&configPath), newCheckpointCmd(&configPath))
	return root
}

// loadConfig reads the config file and environment, then applies the flags
// that were set explicitly on the command line.
func loadConfig(path string, flags *pflag.FlagSet) (Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return cfg, err
	}

	overrideStrings(flags, "brokers", &cfg.Brokers)
	overrideStrings(flags, "topic", &cfg.Topics)
	overrideStrings(flags, "partition", &cfg.Partitions)
	override(flags, "client", &cfg.Client, flags.GetString)
	override(flags, "name", &cfg.Name, flags.GetString)
	override(flags, "start", &cfg.Start, flags.GetString)
	override(flags, "from-time", &cfg.FromTime, flags.GetString)
	override(flags, "format", &cfg.Format, flags.GetString)
	override(flags, "skip-invalid", &cfg.SkipInvalid, flags.GetBool)
	override(flags, "poll-timeout", &cfg.PollTimeout, flags.GetDuration)
	override(flags, "max-empty-polls", &cfg.MaxEmptyPolls, flags.GetInt)
	override(flags, "chunk-size", &cfg.ChunkSize, flags.GetInt)
	override(flags, "no-save", &cfg.NoSave, flags.GetBool)
	override(flags, "store", &cfg.Store.Type, flags.GetString)
	override(flags, "store-dir", &cfg.Store.Dir, flags.GetString)
	override(flags, "redis-addr", &cfg.Store.Addr, flags.GetString)
	override(flags, "redis-password", &cfg.Store.Password, flags.GetString)
	override(flags, "redis-db", &cfg.Store.DB, flags.GetInt)
	override(flags, "retry-attempts", &cfg.Retry.Attempts, flags.GetInt)
	override(flags, "retry-backoff", &cfg.Retry.Backoff, flags.GetDuration)
	override(flags, "checkpoint-interval", &cfg.Checkpoint.Interval, flags.GetDuration)
	override(flags, "checkpoint-count", &cfg.Checkpoint.Count, flags.GetInt)
	override(flags, "log-level", &cfg.Log.Level, flags.GetString)
	override(flags, "log-json", &cfg.Log.JSON, flags.GetBool)

	return cfg, nil
}

func override[T any](flags *pflag.FlagSet, name string, dst *T, get func(string) (T, error)) {
	if flags.Lookup(name) == nil || !flags.Changed(name) {
		return
	}
	if v, err := get(name); err == nil {
		*dst = v
	}
}

func overrideStrings(flags *pflag.FlagSet, name string, dst *[]string) {
	override(flags, name, dst, flags.GetStringSlice)
}
