package reader

import (
	"errors"
	"fmt"

	"github.com/hugolhafner/kreader/kafka"
)

var (
	ErrInvalidConfig = errors.New("invalid reader configuration")
	ErrInvalidState  = errors.New("invalid reader state")
	ErrNotConfigured = errors.New("reader not configured")
)

// ConfigError reports missing or contradictory settings found by Configure.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return ErrInvalidConfig.Error() + ": " + e.Reason
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

func AsConfigError(err error) (*ConfigError, bool) {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// StateError reports an operation called in a state that does not allow it.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s reader in state %s", e.Op, e.State)
}

func (e *StateError) Is(target error) bool {
	if target == ErrInvalidState {
		return true
	}
	return target == ErrNotConfigured && e.State == StateUnconfigured
}

func AsStateError(err error) (*StateError, bool) {
	var se *StateError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// DeserialiseError is returned when a consumed record's value cannot be decoded.
// The record's offset has already been recorded.
type DeserialiseError struct {
	Partition kafka.TopicPartition
	Offset    int64
	Cause     error
}

func (e *DeserialiseError) Error() string {
	return fmt.Sprintf("deserialise %s@%d: %v", e.Partition, e.Offset, e.Cause)
}

func (e *DeserialiseError) Unwrap() error {
	return e.Cause
}

func AsDeserialiseError(err error) (*DeserialiseError, bool) {
	var de *DeserialiseError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
