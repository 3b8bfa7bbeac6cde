package h1

import (
	"fmt"
	"io"
)

// Body accumulates a decoded message body in memory. The optional limit caps the
// total decoded length across all reads.
type Body struct {
	bytes []byte
	limit int
}

func NewBody() *Body {
	return &Body{limit: NoLimit}
}

func (b *Body) Bytes() []byte {
	return b.bytes
}

func (b *Body) Len() int {
	return len(b.bytes)
}

// Limit returns the length ceiling, if any.
func (b *Body) Limit() (int, bool) {
	return b.limit, b.limit >= 0
}

func (b *Body) HasLimit() bool {
	return b.limit >= 0
}

func (b *Body) SetLimit(limit int) {
	b.limit = limit
}

func (b *Body) RemoveLimit() {
	b.limit = NoLimit
}

// remaining returns the budget left under the limit.
func (b *Body) remaining() int {
	if b.limit < 0 {
		return NoLimit
	}

	return max(b.limit-len(b.bytes), 0)
}

// Read reads the body framed as the headers tell: chunked if the Transfer-Encoding
// says so, otherwise exactly Content-Length bytes.
func (b *Body) Read(r io.Reader, headers Headers) (int, error) {
	if headers.Chunked() {
		return b.ReadChunked(r)
	}

	length, err := headers.ContentLength()
	if err != nil {
		return 0, err
	}

	return b.ReadSized(r, length)
}

// ReadChunked decodes a chunk-encoded body, appending it to the buffer.
func (b *Body) ReadChunked(r io.Reader) (int, error) {
	limit := b.remaining()
	n, err := ReadChunked(r, &b.bytes, limit)
	if err != nil && ErrorKind(err) == SizeLimitExceeded {
		return n, errSizeLimit(b.limit)
	}

	return n, err
}

// ReadSized reads exactly length bytes, appending them to the buffer. The limit
// is checked before anything is read.
func (b *Body) ReadSized(r io.Reader, length int) (int, error) {
	if b.limit >= 0 && length > b.remaining() {
		return 0, errSizeLimit(b.limit)
	}

	return ReadSized(r, &b.bytes, length)
}

// Write writes the buffered body into the stream and flushes it.
func (b *Body) Write(w io.Writer) (int, error) {
	n, err := WriteStream(w, b.bytes)
	if err != nil {
		return n, err
	}

	return n, FlushStream(w)
}

// Clear empties the body and removes the limit, so the Body can be reused for
// the next message. Slices returned by Bytes earlier are left untouched.
func (b *Body) Clear() {
	b.bytes = nil
	b.limit = NoLimit
}

func (b *Body) String() string {
	return fmt.Sprintf("%v", b.bytes)
}
