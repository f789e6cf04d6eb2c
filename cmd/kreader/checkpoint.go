package main

import (
	"errors"
	"fmt"

	"github.com/hugolhafner/kreader/checkpoint"
	"github.com/hugolhafner/kreader/reader"
	"github.com/spf13/cobra"
)

func newCheckpointCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Inspect saved reader positions",
	}
	cmd.AddCommand(newCheckpointShowCmd(configPath))
	return cmd
}

func newCheckpointShowCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the offset table saved for a reader as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath, cmd.Flags())
			if err != nil {
				return err
			}
			if cfg.Store.Type == "" {
				cfg.Store.Type = "badger"
			}
			applyDefaults(&cfg)

			if cfg.Store.Type == "memory" {
				return errors.New("checkpoint show needs --store badger or redis")
			}

			store, closeStore, err := newStore(cmd.Context(), cfg.Store)
			if err != nil {
				return fmt.Errorf("open %s store: %w", cfg.Store.Type, err)
			}
			defer func() { _ = closeStore() }()

			key := reader.Config{Name: cfg.Name}.CheckpointKey()
			table, ok, err := store.Get(cmd.Context(), key)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("no checkpoint saved under " + key)
			}

			data, err := checkpoint.Encode(table)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}

	f := cmd.Flags()
	f.String("name", "", "Reader name")
	f.String("store", "", "Checkpoint store: badger|redis (default badger)")
	f.String("store-dir", "", "Badger directory")
	f.String("redis-addr", "", "Redis address")
	f.String("redis-password", "", "Redis password")
	f.Int("redis-db", 0, "Redis database")

	return cmd
}
