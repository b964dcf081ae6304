package wasmhost

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	payload := []byte("hello, executor")
	framed := encodeFrame(payload)
	decoded, err := decodeFrame(framed)
	require.NoError(t, err)
	require.Equal(t, payload, decoded)
}

func TestDecodeFrameRejectsShortFrame(t *testing.T) {
	_, err := decodeFrame([]byte{1, 2})
	require.Error(t, err)
}

func TestDecodeFrameRejectsTruncatedPayload(t *testing.T) {
	framed := encodeFrame([]byte("abcdef"))
	_, err := decodeFrame(framed[:len(framed)-2])
	require.Error(t, err)
}
