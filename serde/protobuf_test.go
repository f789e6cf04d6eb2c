//go:build unit

package serde_test

import (
	"testing"

	"github.com/hugolhafner/kreader/serde"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestProtobuf_DeserialiseAllocatesMessage(t *testing.T) {
	t.Parallel()
	s := serde.Protobuf[*wrapperspb.StringValue]()

	data, err := proto.Marshal(wrapperspb.String("hello world"))
	require.NoError(t, err)

	first, err := s.Deserialise("orders", data)
	require.NoError(t, err)
	second, err := s.Deserialise("orders", data)
	require.NoError(t, err)

	require.Equal(t, "hello world", first.GetValue())
	require.NotSame(t, first, second)
}

func TestProtobuf_EmptyPayloadIsEmptyMessage(t *testing.T) {
	t.Parallel()
	out, err := serde.Protobuf[*wrapperspb.StringValue]().Deserialise("orders", nil)
	require.NoError(t, err)
	require.Equal(t, "", out.GetValue())
}

func TestProtobuf_InvalidData(t *testing.T) {
	t.Parallel()
	_, err := serde.Protobuf[*wrapperspb.StringValue]().Deserialise("orders", []byte("not valid protobuf \xff\xfe"))
	require.Error(t, err)
}

func TestProtobuf_Timestamp(t *testing.T) {
	t.Parallel()
	s := serde.Protobuf[*timestamppb.Timestamp]()
	original := timestamppb.Now()

	data, err := s.Serialise("orders", original)
	require.NoError(t, err)

	result, err := s.Deserialise("orders", data)
	require.NoError(t, err)
	require.True(t, proto.Equal(original, result))
}
