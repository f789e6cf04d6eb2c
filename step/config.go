package step

import (
	"github.com/hugolhafner/kreader/committer"
	"github.com/hugolhafner/kreader/errorhandler"
	"github.com/hugolhafner/kreader/logger"
	"github.com/hugolhafner/kreader/otel"
)

type Config struct {
	Name         string
	ChunkSize    int
	Committer    committer.Committer
	ErrorHandler errorhandler.Handler
	Logger       logger.Logger
	Telemetry    *otel.Telemetry
}

func defaultConfig() Config {
	return Config{
		Name:      "step",
		ChunkSize: 10,
		// checkpoint after every chunk
		Committer: committer.NewPeriodicCommitter(committer.WithMaxCount(1), committer.WithMaxInterval(0)),
		Logger:    logger.NewNoopLogger(),
		Telemetry: otel.Noop(),
	}
}

type Option func(*Config)

func WithName(name string) Option {
	return func(c *Config) {
		c.Name = name
	}
}

func WithChunkSize(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.ChunkSize = n
		}
	}
}

// WithCommitter controls how often progress is checkpointed. It is consulted
// after every chunk; a final checkpoint is always taken when the input ends.
func WithCommitter(cm committer.Committer) Option {
	return func(c *Config) {
		c.Committer = cm
	}
}

// WithErrorHandler decides what happens to chunks the writer rejects and to
// records that fail to decode. Defaults to errorhandler.LogAndFail.
func WithErrorHandler(h errorhandler.Handler) Option {
	return func(c *Config) {
		c.ErrorHandler = h
	}
}

func WithLogger(l logger.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

func WithTelemetry(t *otel.Telemetry) Option {
	return func(c *Config) {
		if t != nil {
			c.Telemetry = t
		}
	}
}
