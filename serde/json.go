package serde

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

type jsonSerde[T any] struct {
	strict bool
}

// JSON returns a Serde that uses JSON for serialisation and deserialisation.
// A nil payload fails with ErrNullValue.
func JSON[T any]() Serde[T] {
	return jsonSerde[T]{}
}

// StrictJSON is JSON that rejects objects with fields T does not declare.
func StrictJSON[T any]() Serde[T] {
	return jsonSerde[T]{strict: true}
}

func (s jsonSerde[T]) Serialise(_ string, value T) ([]byte, error) {
	return json.Marshal(value)
}

func (s jsonSerde[T]) Deserialise(topic string, data []byte) (T, error) {
	var result T
	if data == nil {
		return result, fmt.Errorf("decode json from %s: %w", topic, ErrNullValue)
	}

	var err error
	if s.strict {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&result)
	} else {
		err = json.Unmarshal(data, &result)
	}
	if err != nil {
		return result, fmt.Errorf("decode json from %s: %w", topic, err)
	}
	return result, nil
}
