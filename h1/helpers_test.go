package h1

import (
	"bytes"
	"errors"
	"io"
)

var errBrokenPipe = errors.New("broken pipe")

// pieceReader hands out one piece per Read call, mimicking a socket delivering
// data in arbitrary packets.
type pieceReader struct {
	pieces [][]byte
}

func newPieceReader(pieces ...string) *pieceReader {
	r := new(pieceReader)
	for _, piece := range pieces {
		r.pieces = append(r.pieces, []byte(piece))
	}

	return r
}

func (p *pieceReader) Read(b []byte) (int, error) {
	if len(p.pieces) == 0 {
		return 0, io.EOF
	}

	n := copy(b, p.pieces[0])
	if p.pieces[0] = p.pieces[0][n:]; len(p.pieces[0]) == 0 {
		p.pieces = p.pieces[1:]
	}

	return n, nil
}

// flushRecorder collects everything written and counts flushes.
type flushRecorder struct {
	bytes.Buffer
	flushes int
}

func (f *flushRecorder) Flush() error {
	f.flushes++
	return nil
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errBrokenPipe
}

type brokenFlusher struct {
	bytes.Buffer
}

func (*brokenFlusher) Flush() error {
	return errBrokenPipe
}

// chunked encodes pieces as a chunk-encoded body.
func chunked(pieces ...string) string {
	var b bytes.Buffer
	for _, piece := range pieces {
		b.WriteString(hexLen(len(piece)))
		b.WriteString("\r\n")
		b.WriteString(piece)
		b.WriteString("\r\n")
	}

	b.WriteString("0\r\n\r\n")
	return b.String()
}

func hexLen(n int) string {
	const digits = "0123456789abcdef"
	if n == 0 {
		return "0"
	}

	var out []byte
	for ; n > 0; n >>= 4 {
		out = append([]byte{digits[n&0xf]}, out...)
	}

	return string(out)
}
