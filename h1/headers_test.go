package h1

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadHeaders(t *testing.T) {
	t.Run("single header", func(t *testing.T) {
		headers := make(Headers)
		n, err := ReadHeaders(strings.NewReader("H: V\r\n\r\n"), headers, NoLimit)
		require.NoError(t, err)
		require.Equal(t, 8, n)
		require.Equal(t, Headers{"H": "V"}, headers)
	})

	t.Run("values keep colons and spaces", func(t *testing.T) {
		headers := make(Headers)
		_, err := ReadHeaders(strings.NewReader(
			"Host: example.com:8080\r\nUser-Agent: curl/8.0 (x86_64)\r\nEmpty: \r\n\r\n",
		), headers, NoLimit)
		require.NoError(t, err)
		require.Equal(t, Headers{
			"Host":       "example.com:8080",
			"User-Agent": "curl/8.0 (x86_64)",
			"Empty":      "",
		}, headers)
	})

	t.Run("last value wins", func(t *testing.T) {
		headers := make(Headers)
		_, err := ReadHeaders(strings.NewReader("A: 1\r\nA: 2\r\n\r\n"), headers, NoLimit)
		require.NoError(t, err)
		require.Equal(t, "2", headers["A"])
	})

	t.Run("names are case-sensitive", func(t *testing.T) {
		headers := make(Headers)
		_, err := ReadHeaders(strings.NewReader("A: 1\r\na: 2\r\n\r\n"), headers, NoLimit)
		require.NoError(t, err)
		require.Len(t, headers, 2)
	})

	t.Run("body is left in the stream", func(t *testing.T) {
		stream := strings.NewReader("H: V\r\n\r\nbody")
		_, err := ReadHeaders(stream, make(Headers), NoLimit)
		require.NoError(t, err)
		rest, _ := io.ReadAll(stream)
		require.Equal(t, "body", string(rest))
	})

	t.Run("limit", func(t *testing.T) {
		_, err := ReadHeaders(strings.NewReader("H: V\r\n\r\n"), make(Headers), 8)
		require.NoError(t, err)

		_, err = ReadHeaders(strings.NewReader("H: V\r\n\r\n"), make(Headers), 7)
		var e *Error
		require.True(t, errors.As(err, &e))
		require.Equal(t, SizeLimitExceeded, e.Kind)
		require.Equal(t, 7, e.Limit)
	})

	t.Run("stream ending between lines", func(t *testing.T) {
		headers := make(Headers)
		n, err := ReadHeaders(strings.NewReader("H: V\r\n"), headers, NoLimit)
		require.NoError(t, err)
		require.Equal(t, 6, n)
		require.Equal(t, "V", headers["H"])
	})

	t.Run("stream ending mid-line", func(t *testing.T) {
		_, err := ReadHeaders(strings.NewReader("H: V"), make(Headers), NoLimit)
		require.ErrorIs(t, err, ErrInvalidData)
	})

	t.Run("malformed", func(t *testing.T) {
		for _, block := range []string{
			"H:V\r\n\r\n",
			"H : V\r\n\r\n",
			": V\r\n\r\n",
			"H:: V\r\n\r\n",
			"H: V\n\r\n",
			"H: V\rX\r\n",
			"H\r\n\r\n",
			"\n",
			"\rX",
			" H: V\r\n\r\n",
		} {
			_, err := ReadHeaders(strings.NewReader(block), make(Headers), NoLimit)
			require.ErrorIs(t, err, ErrInvalidData, block)
		}
	})
}

func TestHeaders(t *testing.T) {
	t.Run("content length", func(t *testing.T) {
		length, err := Headers{"Content-Length": "13"}.ContentLength()
		require.NoError(t, err)
		require.Equal(t, 13, length)

		for _, headers := range []Headers{
			{},
			{"Content-Length": ""},
			{"Content-Length": "-1"},
			{"Content-Length": "1e3"},
			{"Content-Length": " 12"},
		} {
			_, err = headers.ContentLength()
			var e *Error
			require.True(t, errors.As(err, &e))
			require.Equal(t, InvalidHeader, e.Kind)
			require.Equal(t, HeaderContentLength, e.Header)
		}
	})

	t.Run("chunked", func(t *testing.T) {
		require.True(t, Headers{"Transfer-Encoding": "chunked"}.Chunked())
		require.True(t, Headers{"Transfer-Encoding": "gzip, chunked"}.Chunked())
		require.False(t, Headers{"Transfer-Encoding": "gzip"}.Chunked())
		require.False(t, Headers{}.Chunked())
	})

	t.Run("framed", func(t *testing.T) {
		require.True(t, Headers{"Content-Length": "0"}.Framed())
		require.True(t, Headers{"Transfer-Encoding": "chunked"}.Framed())
		require.False(t, Headers{"Host": "example.com"}.Framed())
	})

	t.Run("sorted names", func(t *testing.T) {
		require.Equal(t, []string{"A", "B", "a"}, Headers{"a": "", "B": "", "A": ""}.Names())
	})
}
