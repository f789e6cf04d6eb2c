package serde

import (
	"google.golang.org/protobuf/proto"
)

type protobufSerde[T proto.Message] struct{}

// Protobuf decodes into a freshly allocated message of T's type.
func Protobuf[T proto.Message]() Serde[T] {
	return protobufSerde[T]{}
}

func (protobufSerde[T]) Serialise(_ string, value T) ([]byte, error) {
	return proto.Marshal(value)
}

func (protobufSerde[T]) Deserialise(_ string, data []byte) (T, error) {
	var zero T
	msg, ok := zero.ProtoReflect().Type().New().Interface().(T)
	if !ok {
		return zero, ErrNullValue
	}

	if err := proto.Unmarshal(data, msg); err != nil {
		return zero, err
	}
	return msg, nil
}
