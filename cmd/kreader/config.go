package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/hugolhafner/kreader/kafka"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "KREADER__"

type StoreCfg struct {
	Type     string        `koanf:"type"` // memory|badger|redis
	Dir      string        `koanf:"dir"`
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	Prefix   string        `koanf:"prefix"`
	TTL      time.Duration `koanf:"ttl"`
}

type RetryCfg struct {
	Attempts int           `koanf:"attempts"`
	Backoff  time.Duration `koanf:"backoff"`
}

type CheckpointCfg struct {
	Interval time.Duration `koanf:"interval"`
	Count    int           `koanf:"count"`
}

type LogCfg struct {
	Level string `koanf:"level"`
	JSON  bool   `koanf:"json"`
}

type Config struct {
	Brokers    []string `koanf:"brokers"`
	Client     string   `koanf:"client"` // kgo|sarama
	Topics     []string `koanf:"topics"`
	Partitions []string `koanf:"partitions"` // topic:partition
	Name       string   `koanf:"name"`

	Start    string `koanf:"start"`     // earliest|latest, used when nothing is checkpointed
	FromTime string `koanf:"from_time"` // RFC3339

	Format        string        `koanf:"format"` // bytes|string|json
	SkipInvalid   bool          `koanf:"skip_invalid"`
	PollTimeout   time.Duration `koanf:"poll_timeout"`
	MaxEmptyPolls int           `koanf:"max_empty_polls"`
	ChunkSize     int           `koanf:"chunk_size"`
	NoSave        bool          `koanf:"no_save"`

	Store      StoreCfg      `koanf:"store"`
	Retry      RetryCfg      `koanf:"retry"`
	Checkpoint CheckpointCfg `koanf:"checkpoint"`
	Log        LogCfg        `koanf:"log"`
}

// LoadConfig merges YAML (if present) with env-vars
// (prefix `KREADER__`, nested keys separated by `__`).
func LoadConfig(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	err := k.Load(
		env.Provider(
			envPrefix, ".", func(s string) string {
				return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
			},
		), nil,
	)
	if err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func applyDefaults(c *Config) {
	if len(c.Brokers) == 0 {
		c.Brokers = []string{"localhost:9092"}
	}
	if c.Client == "" {
		c.Client = "kgo"
	}
	if c.Format == "" {
		c.Format = "string"
	}
	if c.PollTimeout == 0 {
		c.PollTimeout = 2 * time.Second
	}
	if c.MaxEmptyPolls == 0 {
		c.MaxEmptyPolls = 1
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = 100
	}
	if c.Store.Type == "" {
		c.Store.Type = "memory"
	}
	if c.Store.Dir == "" {
		c.Store.Dir = ".kreader"
	}
	if c.Store.Addr == "" {
		c.Store.Addr = "localhost:6379"
	}
	if c.Retry.Attempts == 0 {
		c.Retry.Attempts = 3
	}
	if c.Retry.Backoff == 0 {
		c.Retry.Backoff = time.Second
	}
	if c.Checkpoint.Interval == 0 {
		c.Checkpoint.Interval = 5 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c Config) validate() error {
	switch {
	case len(c.Topics) == 0 && len(c.Partitions) == 0:
		return errors.New("one of --topic or --partition is required")
	case len(c.Topics) > 0 && len(c.Partitions) > 0:
		return errors.New("--topic and --partition cannot be combined")
	case c.Start != "" && c.FromTime != "":
		return errors.New("--start and --from-time cannot be combined")
	}

	switch c.Start {
	case "", "earliest", "latest":
	default:
		return fmt.Errorf("unknown start position %q", c.Start)
	}
	switch c.Client {
	case "kgo", "sarama":
	default:
		return fmt.Errorf("unknown client %q", c.Client)
	}
	switch c.Store.Type {
	case "memory", "badger", "redis":
	default:
		return fmt.Errorf("unknown store %q", c.Store.Type)
	}
	return nil
}

// parsePartitions parses topic:partition pairs. The topic may itself contain colons.
func parsePartitions(values []string) ([]kafka.TopicPartition, error) {
	out := make([]kafka.TopicPartition, 0, len(values))
	for _, s := range values {
		i := strings.LastIndex(s, ":")
		if i <= 0 {
			return nil, fmt.Errorf("invalid partition %q, want topic:partition", s)
		}

		p, err := strconv.ParseInt(s[i+1:], 10, 32)
		if err != nil || p < 0 {
			return nil, fmt.Errorf("invalid partition %q, want topic:partition", s)
		}
		out = append(out, kafka.TopicPartition{Topic: s[:i], Partition: int32(p)})
	}
	return out, nil
}
