package serde

import "bytes"

var _ Serde[[]byte] = bytesSerde{}

type bytesSerde struct{}

// Bytes passes payloads through. Deserialise returns a copy so the value
// outlives the record it came from.
func Bytes() Serde[[]byte] {
	return bytesSerde{}
}

func (bytesSerde) Serialise(_ string, value []byte) ([]byte, error) {
	return value, nil
}

func (bytesSerde) Deserialise(_ string, data []byte) ([]byte, error) {
	return bytes.Clone(data), nil
}
