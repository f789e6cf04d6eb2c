//go:build unit

package serde_test

import (
	"errors"
	"testing"

	"github.com/hugolhafner/kreader/serde"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytes_DeserialiseCopies(t *testing.T) {
	t.Parallel()
	payload := []byte("raw")

	out, err := serde.Bytes().Deserialise("orders", payload)
	require.NoError(t, err)
	payload[0] = 'X'

	assert.Equal(t, []byte("raw"), out)

	out, err = serde.Bytes().Deserialise("orders", nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestString(t *testing.T) {
	t.Parallel()
	s := serde.String()

	data, err := s.Serialise("orders", "héllo")
	require.NoError(t, err)

	out, err := s.Deserialise("orders", data)
	require.NoError(t, err)
	assert.Equal(t, "héllo", out)
}

func TestFuncAdapters(t *testing.T) {
	t.Parallel()
	boom := errors.New("bad payload")

	d := serde.DeserialiserFunc[int](
		func(topic string, data []byte) (int, error) {
			if len(data) == 0 {
				return 0, boom
			}
			return len(data), nil
		},
	)

	n, err := d.Deserialise("orders", []byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = d.Deserialise("orders", nil)
	assert.ErrorIs(t, err, boom)

	s := serde.SerialiserFunc[int](func(string, int) ([]byte, error) { return []byte("n"), nil })
	data, err := s.Serialise("orders", 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("n"), data)
}

func TestToUntyped(t *testing.T) {
	t.Parallel()
	u := serde.ToUntyped(serde.JSON[map[string]int]())

	v, err := u.DeserialiseAny("orders", []byte(`{"qty":2}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"qty": 2}, v)
}
