package h1

import (
	"io"

	"github.com/indigo-web/utils/uf"
)

// MaxStartLineLength is the longest start-line accepted, CRLF included.
const MaxStartLineLength = 265

// maxStartLineTokens bounds the split; the last token keeps any further spaces,
// so reason phrases like "Not Found" stay intact.
const maxStartLineTokens = 3

type startLineState uint8

const (
	eStartLineToken startLineState = iota
	eStartLineCR
	eStartLineDone
)

type startLineParser struct {
	state   startLineState
	tokens  []string
	token   []byte
	pending bool
}

// feed advances the parser by a single byte.
func (p *startLineParser) feed(c byte) error {
	switch p.state {
	case eStartLineToken:
		switch c {
		case '\r':
			p.state = eStartLineCR
		case '\n':
			return ErrInvalidData
		case ' ':
			if len(p.tokens) == maxStartLineTokens-1 {
				p.token = append(p.token, c)
				break
			}

			if len(p.token) == 0 {
				return ErrInvalidData
			}

			p.tokens = append(p.tokens, uf.B2S(p.token))
			p.token = nil
			p.pending = true
		default:
			p.token = append(p.token, c)
		}
	case eStartLineCR:
		if c != '\n' {
			return ErrInvalidData
		}

		p.state = eStartLineDone
	default:
		panic("start-line parser fed after completion")
	}

	return nil
}

// finish returns the collected tokens. A separator followed by nothing still
// produces an (empty) token, e.g. "HTTP/1.1 200 " has an empty reason.
func (p *startLineParser) finish() []string {
	if len(p.token) > 0 || p.pending {
		p.tokens = append(p.tokens, uf.B2S(p.token))
		p.token = nil
	}

	return p.tokens
}

// ReadStartLine reads a single start-line, returning its space-separated tokens
// and the number of bytes consumed. The end of the stream before CRLF simply ends
// the line.
func ReadStartLine(r io.Reader) (tokens []string, n int, err error) {
	var (
		parser startLineParser
		stream = newByteReader(r)
	)

	for parser.state != eStartLineDone {
		c, ok, err := stream.next()
		if err != nil {
			return nil, n, err
		}

		if !ok {
			break
		}

		if n++; n > MaxStartLineLength {
			return nil, n, ErrInvalidData
		}

		if err = parser.feed(c); err != nil {
			return nil, n, err
		}
	}

	return parser.finish(), n, nil
}
