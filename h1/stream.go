package h1

import (
	"bytes"
	"errors"
	"io"
)

// NoLimit disables a byte ceiling wherever a limit is accepted.
const NoLimit = -1

// Flusher is implemented by buffered writers. Writers without it are treated
// as unbuffered, so flushing them is a no-op.
type Flusher interface {
	Flush() error
}

// byteReader adapts the stream to single-byte reads. Readers implementing
// io.ByteReader (e.g. *bufio.Reader) are used directly, everything else gets
// one-byte Read calls so nothing past the current byte is ever consumed.
type byteReader struct {
	r   io.Reader
	br  io.ByteReader
	one [1]byte
}

func newByteReader(r io.Reader) *byteReader {
	br, _ := r.(io.ByteReader)
	return &byteReader{r: r, br: br}
}

// next returns the next byte. ok is false on a clean end of stream.
func (b *byteReader) next() (c byte, ok bool, err error) {
	if b.br != nil {
		c, err = b.br.ReadByte()
		switch {
		case err == nil:
			return c, true, nil
		case errors.Is(err, io.EOF):
			return 0, false, nil
		default:
			return 0, false, errNotReadable(err)
		}
	}

	for {
		n, err := b.r.Read(b.one[:])
		if n == 1 {
			return b.one[0], true, nil
		}

		switch {
		case err == nil:
			// zero-length read without an error, the reader may deliver later
			continue
		case errors.Is(err, io.EOF):
			return 0, false, nil
		default:
			return 0, false, errNotReadable(err)
		}
	}
}

// readWindow performs a single read into buff. A clean end of stream yields
// 0 and no error, even if the reader reports io.EOF together with data.
func readWindow(r io.Reader, buff []byte) (int, error) {
	n, err := r.Read(buff)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, errNotReadable(err)
	}

	return n, nil
}

// WriteStream writes data into the stream, reporting failures as StreamNotWritable.
func WriteStream(w io.Writer, data []byte) (int, error) {
	n, err := w.Write(data)
	if err != nil {
		return n, errNotWritable(err)
	}

	return n, nil
}

// FlushStream flushes the stream if it's buffered.
func FlushStream(w io.Writer) error {
	f, ok := w.(Flusher)
	if !ok {
		return nil
	}

	if err := f.Flush(); err != nil {
		return errNotWritable(err)
	}

	return nil
}

// HasSequence reports whether needle occurs anywhere in haystack.
func HasSequence(haystack, needle []byte) bool {
	return bytes.Contains(haystack, needle)
}

// lastChunk terminates every chunk-encoded body.
var lastChunk = [5]byte{'0', '\r', '\n', '\r', '\n'}

// tailWindow is a fixed ring over the last len(lastChunk) bytes seen on a stream.
type tailWindow struct {
	ring  [len(lastChunk)]byte
	pos   int
	count int
}

func (t *tailWindow) push(c byte) {
	t.ring[t.pos] = c
	t.pos = (t.pos + 1) % len(t.ring)
	if t.count < len(t.ring) {
		t.count++
	}
}

// terminated reports whether the bytes pushed so far end with lastChunk.
func (t *tailWindow) terminated() bool {
	if t.count < len(t.ring) {
		return false
	}

	for i := range lastChunk {
		if t.ring[(t.pos+i)%len(t.ring)] != lastChunk[i] {
			return false
		}
	}

	return true
}
