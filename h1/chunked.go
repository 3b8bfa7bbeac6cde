package h1

import (
	"bytes"
	"io"
)

// maxChunkSizeDigits keeps every chunk size within a signed 64-bit int.
const maxChunkSizeDigits = 15

var hexValue = func() (table [256]byte) {
	for i := range table {
		table[i] = 0xFF
	}

	for c := '0'; c <= '9'; c++ {
		table[c] = byte(c - '0')
	}

	for c := 'a'; c <= 'f'; c++ {
		table[c] = byte(c-'a') + 0xa
		table[c-'a'+'A'] = byte(c-'a') + 0xa
	}

	return table
}()

type chunkSizeState uint8

const (
	eChunkSizeDigit chunkSizeState = iota
	eChunkSizeCR
	eChunkSizeDone
)

type chunkSizeParser struct {
	state  chunkSizeState
	digits int
	size   int
}

func (p *chunkSizeParser) feed(c byte) error {
	switch p.state {
	case eChunkSizeDigit:
		if c == '\r' {
			if p.digits == 0 {
				return ErrInvalidData
			}

			p.state = eChunkSizeCR
			return nil
		}

		val := hexValue[c]
		if val == 0xFF {
			return ErrInvalidData
		}

		if p.digits++; p.digits > maxChunkSizeDigits {
			return ErrInvalidData
		}

		p.size = p.size<<4 | int(val)
	case eChunkSizeCR:
		if c != '\n' {
			return ErrInvalidData
		}

		p.state = eChunkSizeDone
	default:
		panic("chunk size parser fed after completion")
	}

	return nil
}

func readChunkSize(stream *byteReader) (int, error) {
	var parser chunkSizeParser

	for parser.state != eChunkSizeDone {
		c, ok, err := stream.next()
		if err != nil {
			return 0, err
		}

		if !ok {
			return 0, ErrInvalidData
		}

		if err = parser.feed(c); err != nil {
			return 0, err
		}
	}

	return parser.size, nil
}

// expectCRLF consumes the CRLF closing chunk data.
func expectCRLF(stream *byteReader) error {
	for _, want := range [2]byte{'\r', '\n'} {
		c, ok, err := stream.next()
		if err != nil {
			return err
		}

		if !ok {
			return ErrStreamNotReadable
		}

		if c != want {
			return ErrInvalidData
		}
	}

	return nil
}

// expectBodyEnd consumes the empty line after the last chunk. A stream ending
// right after the last chunk is accepted as well.
func expectBodyEnd(stream *byteReader) error {
	c, ok, err := stream.next()
	if err != nil || !ok {
		return err
	}

	if c != '\r' {
		return ErrInvalidData
	}

	c, ok, err = stream.next()
	switch {
	case err != nil:
		return err
	case !ok, c != '\n':
		return ErrInvalidData
	}

	return nil
}

// ReadChunked decodes a chunk-encoded body, appending the chunks' data to dst.
// Before a chunk is read, its size is checked against the limit (NoLimit disables
// it), so an oversized chunk is never partially committed. Returns the number of
// decoded bytes.
func ReadChunked(r io.Reader, dst *[]byte, limit int) (n int, err error) {
	stream := newByteReader(r)

	for {
		size, err := readChunkSize(stream)
		if err != nil {
			return n, err
		}

		if size == 0 {
			return n, expectBodyEnd(stream)
		}

		if limit >= 0 && size > limit-n {
			return n, errSizeLimit(limit)
		}

		chunk, err := readExactly(r, size)
		if err != nil {
			return n, err
		}

		if err = expectCRLF(stream); err != nil {
			return n, err
		}

		*dst = append(*dst, chunk...)
		n += size
	}
}

// ReadSized reads exactly length bytes, appending them to dst. Nothing is appended
// if the stream ends earlier.
func ReadSized(r io.Reader, dst *[]byte, length int) (int, error) {
	buff, err := readExactly(r, length)
	if err != nil {
		return 0, err
	}

	*dst = append(*dst, buff...)
	return length, nil
}

// readExactly reads length bytes. The buffer grows with the data actually
// received, never with the length announced by the peer.
func readExactly(r io.Reader, length int) ([]byte, error) {
	var buff bytes.Buffer
	if _, err := io.CopyN(&buff, r, int64(length)); err != nil {
		return nil, errNotReadable(err)
	}

	return buff.Bytes(), nil
}
