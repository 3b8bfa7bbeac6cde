package h1

import (
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/indigo-web/utils/uf"
)

const (
	HeaderContentLength    = "Content-Length"
	HeaderTransferEncoding = "Transfer-Encoding"
)

// Headers maps header names onto their values. Names are case-sensitive and
// the last value set for a name wins.
type Headers map[string]string

// Chunked reports whether the Transfer-Encoding names the chunked coding.
func (h Headers) Chunked() bool {
	return strings.Contains(h[HeaderTransferEncoding], "chunked")
}

// ContentLength parses the Content-Length value. Absent or malformed values are
// both reported as InvalidHeader.
func (h Headers) ContentLength() (int, error) {
	value, found := h[HeaderContentLength]
	if !found {
		return 0, errInvalidHeader(HeaderContentLength)
	}

	length, err := strconv.ParseUint(value, 10, strconv.IntSize-1)
	if err != nil {
		return 0, errInvalidHeader(HeaderContentLength)
	}

	return int(length), nil
}

// Framed reports whether the headers describe a body at all.
func (h Headers) Framed() bool {
	_, sized := h[HeaderContentLength]
	return sized || h.Chunked()
}

// Names returns the header names in sorted order.
func (h Headers) Names() []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}

	slices.Sort(names)
	return names
}

type headersState uint8

const (
	eHeaderLineStart headersState = iota
	eHeaderName
	eHeaderSeparator
	eHeaderValue
	eHeaderLineCR
	eHeadersEndCR
	eHeadersDone
)

type headersParser struct {
	state   headersState
	headers Headers
	name    []byte
	value   []byte
}

func (p *headersParser) feed(c byte) error {
	switch p.state {
	case eHeaderLineStart:
		switch c {
		case '\r':
			p.state = eHeadersEndCR
		case '\n', ':', ' ':
			return ErrInvalidData
		default:
			p.name = append(p.name, c)
			p.state = eHeaderName
		}
	case eHeaderName:
		switch c {
		case ':':
			p.state = eHeaderSeparator
		case ' ', '\r', '\n':
			return ErrInvalidData
		default:
			p.name = append(p.name, c)
		}
	case eHeaderSeparator:
		if c != ' ' {
			return ErrInvalidData
		}

		p.state = eHeaderValue
	case eHeaderValue:
		switch c {
		case '\r':
			p.state = eHeaderLineCR
		case '\n':
			return ErrInvalidData
		default:
			p.value = append(p.value, c)
		}
	case eHeaderLineCR:
		if c != '\n' {
			return ErrInvalidData
		}

		p.headers[uf.B2S(p.name)] = uf.B2S(p.value)
		p.name, p.value = nil, nil
		p.state = eHeaderLineStart
	case eHeadersEndCR:
		if c != '\n' {
			return ErrInvalidData
		}

		p.state = eHeadersDone
	default:
		panic("header parser fed after completion")
	}

	return nil
}

// ReadHeaders reads "Name: Value" lines into headers until an empty line. The
// limit bounds the bytes consumed by the whole block, NoLimit disables it. The
// end of the stream between two lines ends the block, inside a line it's an error.
func ReadHeaders(r io.Reader, headers Headers, limit int) (n int, err error) {
	var (
		parser = headersParser{headers: headers}
		stream = newByteReader(r)
	)

	for parser.state != eHeadersDone {
		c, ok, err := stream.next()
		if err != nil {
			return n, err
		}

		if !ok {
			if parser.state != eHeaderLineStart {
				return n, ErrInvalidData
			}

			break
		}

		if n++; limit >= 0 && n > limit {
			return n, errSizeLimit(limit)
		}

		if err = parser.feed(c); err != nil {
			return n, err
		}
	}

	return n, nil
}
