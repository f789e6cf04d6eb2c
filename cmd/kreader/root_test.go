//go:build unit

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FlagsOverride(t *testing.T) {
	path := writeConfig(t, "name: from-file\nclient: sarama\nchunk_size: 50\n")
	t.Setenv("KREADER__FORMAT", "json")

	cmd := newReadCmd(&path)
	require.NoError(
		t, cmd.Flags().Parse(
			[]string{
				"--name", "from-flag",
				"--topic", "orders", "--topic", "payments",
				"--poll-timeout", "250ms",
				"--no-save",
			},
		),
	)

	cfg, err := loadConfig(path, cmd.Flags())
	require.NoError(t, err)
	applyDefaults(&cfg)

	assert.Equal(t, "from-flag", cfg.Name)
	assert.Equal(t, "sarama", cfg.Client, "unset flags keep the file value")
	assert.Equal(t, 50, cfg.ChunkSize)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, []string{"orders", "payments"}, cfg.Topics)
	assert.Equal(t, 250*time.Millisecond, cfg.PollTimeout)
	assert.True(t, cfg.NoSave)
	assert.Equal(t, "memory", cfg.Store.Type, "defaults fill the rest")
}

func TestRootCmd_ReadRequiresInput(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"read"})
	root.SetOut(&bytes.Buffer{})

	err := root.Execute()
	require.ErrorContains(t, err, "one of --topic or --partition is required")
}

func TestRootCmd_CheckpointShow(t *testing.T) {
	t.Run(
		"memory store is rejected", func(t *testing.T) {
			root := newRootCmd()
			root.SetArgs([]string{"checkpoint", "show", "--store", "memory"})

			err := root.Execute()
			require.ErrorContains(t, err, "needs --store badger or redis")
		},
	)

	t.Run(
		"missing checkpoint", func(t *testing.T) {
			root := newRootCmd()
			root.SetArgs([]string{"checkpoint", "show", "--store-dir", t.TempDir()})

			err := root.Execute()
			require.ErrorContains(t, err, "no checkpoint saved under topic.partition.offset")
		},
	)
}
