package h1

import (
	"io"
	"unicode/utf8"

	"github.com/indigo-web/utils/uf"
)

type linesState uint8

const (
	eLineStart linesState = iota
	eLineText
	eLineCR
	eLinesEndCR
	eLinesDone
)

// lineScanner splits a message head into raw lines. It keeps its state between
// calls, so a head may arrive in any number of pieces, even split mid-line.
type lineScanner struct {
	state linesState
	line  []byte
}

func (s *lineScanner) done() bool {
	return s.state == eLinesDone
}

func (s *lineScanner) reset() {
	s.state = eLineStart
	s.line = nil
}

func (s *lineScanner) feed(c byte, lines *[]string) error {
	switch s.state {
	case eLineStart:
		switch c {
		case '\r':
			s.state = eLinesEndCR
		case '\n':
			return ErrInvalidData
		default:
			s.line = append(s.line, c)
			s.state = eLineText
		}
	case eLineText:
		switch c {
		case '\r':
			s.state = eLineCR
		case '\n':
			return ErrInvalidData
		default:
			s.line = append(s.line, c)
		}
	case eLineCR:
		if c != '\n' {
			return ErrInvalidData
		}

		if !utf8.Valid(s.line) {
			return ErrInvalidData
		}

		*lines = append(*lines, uf.B2S(s.line))
		s.line = nil
		s.state = eLineStart
	case eLinesEndCR:
		if c != '\n' {
			return ErrInvalidData
		}

		s.state = eLinesDone
	default:
		panic("line scanner fed after completion")
	}

	return nil
}

// scan feeds the scanner from the stream until the head is complete or the stream
// ends. Consumed bytes are counted against limit (NoLimit disables it).
func (s *lineScanner) scan(r io.Reader, lines *[]string, limit int) (n int, err error) {
	stream := newByteReader(r)

	for !s.done() {
		c, ok, err := stream.next()
		if err != nil || !ok {
			return n, err
		}

		if n++; limit >= 0 && n > limit {
			return n, errSizeLimit(limit)
		}

		if err = s.feed(c, lines); err != nil {
			return n, err
		}
	}

	return n, nil
}

// scanText does the same as scan for literal data. Bytes following the head
// terminator are left unconsumed.
func (s *lineScanner) scanText(text string, lines *[]string, limit int) (n int, err error) {
	for n < len(text) && !s.done() {
		if n++; limit >= 0 && n > limit {
			return n, errSizeLimit(limit)
		}

		if err = s.feed(text[n-1], lines); err != nil {
			return n, err
		}
	}

	return n, nil
}

// ReadLines collects the raw lines of a message head, without interpreting them,
// until the empty line terminating it. The empty line itself is consumed but not
// collected. The limit bounds the bytes read, NoLimit disables it.
func ReadLines(r io.Reader, lines *[]string, limit int) (n int, err error) {
	var scanner lineScanner
	return scanner.scan(r, lines, limit)
}
