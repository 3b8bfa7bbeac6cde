package h1

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRelay(t *testing.T) {
	t.Run("chunked by headers", func(t *testing.T) {
		relay := NewRelay()
		out := new(bytes.Buffer)
		n, err := relay.Relay(strings.NewReader(helloWorldChunked), out, Headers{"Transfer-Encoding": "chunked"})
		require.NoError(t, err)
		require.Equal(t, len(helloWorldChunked), n)
		require.Equal(t, n, relay.Len())
		require.Equal(t, helloWorldChunked, out.String())
	})

	t.Run("sized by headers", func(t *testing.T) {
		relay := NewRelay()
		out := new(bytes.Buffer)
		n, err := relay.Relay(strings.NewReader("Hello World!"), out, Headers{"Content-Length": "12"})
		require.NoError(t, err)
		require.Equal(t, 12, n)
		require.Equal(t, "Hello World!", out.String())
	})

	t.Run("invalid content length", func(t *testing.T) {
		_, err := NewRelay().Relay(strings.NewReader(""), new(bytes.Buffer), Headers{})
		require.ErrorIs(t, err, ErrInvalidHeader)
	})

	t.Run("sized and buffered disagree on short streams", func(t *testing.T) {
		_, err := NewBody().ReadSized(strings.NewReader("Hello"), 12)
		require.ErrorIs(t, err, ErrStreamNotReadable)

		n, err := NewRelay().RelaySized(strings.NewReader("Hello"), new(bytes.Buffer), 12)
		require.NoError(t, err)
		require.Equal(t, 5, n)
	})

	t.Run("sized limit is checked before reading", func(t *testing.T) {
		relay := NewRelay()
		relay.SetLimit(11)
		in := strings.NewReader("Hello World!")
		out := new(bytes.Buffer)
		_, err := relay.RelaySized(in, out, 12)

		var e *Error
		require.True(t, errors.As(err, &e))
		require.Equal(t, SizeLimitExceeded, e.Kind)
		require.Equal(t, 11, e.Limit)
		require.Equal(t, 12, in.Len())
		require.Zero(t, out.Len())
	})

	t.Run("limit spans relays", func(t *testing.T) {
		relay := NewRelay()
		relay.SetLimit(len(helloWorldChunked) + 3)
		_, err := relay.RelayChunked(strings.NewReader(helloWorldChunked), new(bytes.Buffer))
		require.NoError(t, err)

		_, err = relay.RelayChunked(strings.NewReader(helloWorldChunked), new(bytes.Buffer))
		var e *Error
		require.True(t, errors.As(err, &e))
		require.Equal(t, len(helloWorldChunked)+3, e.Limit)

		_, err = relay.RelaySized(strings.NewReader("abc"), new(bytes.Buffer), 3)
		require.NoError(t, err)
		require.Equal(t, len(helloWorldChunked)+3, relay.Len())
	})

	t.Run("limit iff property", func(t *testing.T) {
		size := len(helloWorldChunked)
		for limit := size - 2; limit <= size+2; limit++ {
			relay := NewRelay()
			relay.SetLimit(limit)
			_, err := relay.RelayChunked(strings.NewReader(helloWorldChunked), new(bytes.Buffer))
			if limit >= size {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrSizeLimitExceeded)
			}
		}
	})

	t.Run("logs relayed bodies", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		relay := NewRelay()
		relay.SetLogger(zap.New(core))

		_, err := relay.RelayChunked(strings.NewReader(helloWorldChunked), new(bytes.Buffer))
		require.NoError(t, err)
		_, err = relay.RelaySized(strings.NewReader("Hi"), new(bytes.Buffer), 5)
		require.NoError(t, err)

		entries := logs.AllUntimed()
		require.Len(t, entries, 2)
		require.Equal(t, "chunked body relayed", entries[0].Message)
		require.Equal(t, "sized body cut short by peer", entries[1].Message)
		require.Equal(t, int64(2), entries[1].ContextMap()["bytes"])
	})

	t.Run("clear", func(t *testing.T) {
		relay := NewRelay()
		relay.SetLimit(100)
		_, err := relay.RelaySized(strings.NewReader("abc"), new(bytes.Buffer), 3)
		require.NoError(t, err)

		relay.Clear()
		require.Zero(t, relay.Len())
		require.False(t, relay.HasLimit())
		relay.SetLogger(nil)
	})
}
