package h1

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

func TestHasSequence(t *testing.T) {
	require.True(t, HasSequence([]byte{0x0D, 0x0A, 0x0D, 0x0A}, []byte{0x0D, 0x0A, 0x0D, 0x0A}))
	require.True(t, HasSequence([]byte{1, 4, 6, 10, 21, 5, 150}, []byte{10, 21, 5}))
	require.False(t, HasSequence([]byte{1, 4, 6, 10, 21, 5, 150}, []byte{10, 5}))
	require.True(t, HasSequence([]byte{1, 1, 2}, []byte{1, 2}))
}

func TestTailWindow(t *testing.T) {
	feed := func(data string) bool {
		var tail tailWindow
		for i := 0; i < len(data); i++ {
			tail.push(data[i])
			if tail.terminated() {
				return true
			}
		}

		return false
	}

	require.True(t, feed("0\r\n\r\n"))
	require.True(t, feed("5\r\nhello\r\n0\r\n\r\n"))
	require.False(t, feed("0\r\n\r"))
	require.False(t, feed("\r\n\r\n"))
	require.False(t, feed("10\r\n\r"))
}

func TestByteReader(t *testing.T) {
	t.Run("byte reader", func(t *testing.T) {
		stream := newByteReader(strings.NewReader("a"))
		c, ok, err := stream.next()
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, byte('a'), c)

		_, ok, err = stream.next()
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("plain reader", func(t *testing.T) {
		stream := newByteReader(iotest.DataErrReader(iotest.OneByteReader(strings.NewReader("ab"))))
		for _, want := range []byte("ab") {
			c, ok, err := stream.next()
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, want, c)
		}

		_, ok, err := stream.next()
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("failure", func(t *testing.T) {
		_, _, err := newByteReader(iotest.ErrReader(errBrokenPipe)).next()
		require.ErrorIs(t, err, ErrStreamNotReadable)
	})
}

func TestWriteStream(t *testing.T) {
	t.Run("flushes buffered writers", func(t *testing.T) {
		var out bytes.Buffer
		w := bufio.NewWriter(&out)
		n, err := WriteStream(w, []byte("hello"))
		require.NoError(t, err)
		require.Equal(t, 5, n)
		require.Zero(t, out.Len())

		require.NoError(t, FlushStream(w))
		require.Equal(t, "hello", out.String())
	})

	t.Run("unbuffered writers", func(t *testing.T) {
		require.NoError(t, FlushStream(new(bytes.Buffer)))
	})

	t.Run("failures", func(t *testing.T) {
		_, err := WriteStream(brokenWriter{}, []byte("hello"))
		require.ErrorIs(t, err, ErrStreamNotWritable)
		require.ErrorIs(t, FlushStream(new(brokenFlusher)), ErrStreamNotWritable)
	})
}
