// Package serde turns record payloads into typed values and back.
package serde

import "errors"

// ErrNullValue is returned by deserialisers that cannot represent a tombstone.
var ErrNullValue = errors.New("serde: null value")

type Serde[T any] interface {
	Serialiser[T]
	Deserialiser[T]
}

type Serialiser[T any] interface {
	Serialise(topic string, value T) ([]byte, error)
}

type Deserialiser[T any] interface {
	Deserialise(topic string, data []byte) (T, error)
}

type DeserialiserFunc[T any] func(topic string, data []byte) (T, error)

func (f DeserialiserFunc[T]) Deserialise(topic string, data []byte) (T, error) {
	return f(topic, data)
}

type SerialiserFunc[T any] func(topic string, value T) ([]byte, error)

func (f SerialiserFunc[T]) Serialise(topic string, value T) ([]byte, error) {
	return f(topic, value)
}

// UntypedDeserialiser is a Deserialiser whose element type is chosen at runtime.
type UntypedDeserialiser interface {
	DeserialiseAny(topic string, data []byte) (any, error)
}

type untyped[T any] struct {
	typed Deserialiser[T]
}

func (u untyped[T]) DeserialiseAny(topic string, data []byte) (any, error) {
	return u.typed.Deserialise(topic, data)
}

func ToUntyped[T any](d Deserialiser[T]) UntypedDeserialiser {
	return untyped[T]{typed: d}
}
