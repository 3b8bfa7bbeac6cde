package h1

import (
	"io"
	"strings"
)

const (
	ProtoHTTP09 = "HTTP/0.9"
	ProtoHTTP10 = "HTTP/1.0"
	ProtoHTTP11 = "HTTP/1.1"
)

// knownProto reports whether the version token is one a start-line may carry.
func knownProto(version string) bool {
	return version == ProtoHTTP10 || version == ProtoHTTP11
}

// message holds what requests and responses share: the headers and the raw lines
// of the head, which are collected first and parsed (or built) afterwards.
type message struct {
	headers Headers
	lines   []string
	scanner lineScanner
	length  int
	limit   int
}

func newMessage() message {
	return message{
		headers: make(Headers),
		limit:   NoLimit,
	}
}

// ReadStream collects raw head lines from the stream until the head is complete
// or the stream ends. Calls may be freely mixed with ReadString; each continues
// where the previous one stopped.
func (m *message) ReadStream(r io.Reader) (int, error) {
	n, err := m.scanner.scan(r, &m.lines, m.remaining())
	m.length += n
	return n, m.limitError(err)
}

// ReadString collects raw head lines from literal text, which must hold at least
// one CRLF. Text following the end of the head is ignored and not counted.
func (m *message) ReadString(text string) (int, error) {
	if !strings.Contains(text, "\r\n") {
		return 0, ErrInvalidData
	}

	n, err := m.scanner.scanText(text, &m.lines, m.remaining())
	m.length += n
	return n, m.limitError(err)
}

func (m *message) remaining() int {
	if m.limit < 0 {
		return NoLimit
	}

	return max(m.limit-m.length, 0)
}

// limitError reports the ceiling of the whole message instead of what was left
// of it for a single read.
func (m *message) limitError(err error) error {
	if ErrorKind(err) == SizeLimitExceeded {
		return errSizeLimit(m.limit)
	}

	return err
}

// Complete reports whether the empty line ending the head has been read.
func (m *message) Complete() bool {
	return m.scanner.done()
}

// Lines returns the raw head lines, the start-line first.
func (m *message) Lines() []string {
	return m.lines
}

// Len returns the number of bytes read so far.
func (m *message) Len() int {
	return m.length
}

func (m *message) Limit() (int, bool) {
	return m.limit, m.limit >= 0
}

func (m *message) HasLimit() bool {
	return m.limit >= 0
}

func (m *message) SetLimit(limit int) {
	m.limit = limit
}

func (m *message) RemoveLimit() {
	m.limit = NoLimit
}

func (m *message) Headers() Headers {
	return m.headers
}

func (m *message) Header(name string) (string, bool) {
	value, found := m.headers[name]
	return value, found
}

func (m *message) HasHeader(name string) bool {
	_, found := m.headers[name]
	return found
}

func (m *message) HasHeaders() bool {
	return len(m.headers) > 0
}

func (m *message) SetHeader(name, value string) {
	m.headers[name] = value
}

func (m *message) RemoveHeader(name string) {
	delete(m.headers, name)
}

func (m *message) ClearHeaders() {
	clear(m.headers)
}

// headLine returns the start-line, if any has been read or built.
func (m *message) headLine() (string, bool) {
	if len(m.lines) == 0 {
		return "", false
	}

	return m.lines[0], true
}

func (m *message) setHeadLine(line string) {
	if len(m.lines) == 0 {
		m.lines = append(m.lines, line)
		return
	}

	m.lines[0] = line
}

// parseHeaderLines splits every line after the start-line on the first ": ".
// With stopAtEmpty an empty line ends the headers, otherwise it's malformed as
// any other line lacking the separator.
func (m *message) parseHeaderLines(stopAtEmpty bool) error {
	if len(m.lines) < 2 {
		return nil
	}

	for _, line := range m.lines[1:] {
		if line == "" && stopAtEmpty {
			break
		}

		name, value, found := strings.Cut(line, ": ")
		if !found || len(name) == 0 {
			return ErrInvalidData
		}

		m.headers[name] = value
	}

	return nil
}

// buildHeaderLines replaces whatever header lines there were with the headers,
// in sorted name order.
func (m *message) buildHeaderLines() {
	lines := make([]string, 0, len(m.headers)+1)
	if head, ok := m.headLine(); ok {
		lines = append(lines, head)
	}

	for _, name := range m.headers.Names() {
		lines = append(lines, name+": "+m.headers[name])
	}

	m.lines = lines
}

// String renders the head: every line terminated by CRLF, followed by the
// empty line.
func (m *message) String() string {
	var b strings.Builder
	for _, line := range m.lines {
		b.WriteString(line)
		b.WriteString("\r\n")
	}

	b.WriteString("\r\n")
	return b.String()
}

func (m *message) Bytes() []byte {
	return []byte(m.String())
}

// Write writes the rendered head into the stream and flushes it.
func (m *message) Write(w io.Writer) (int, error) {
	n, err := WriteStream(w, m.Bytes())
	if err != nil {
		return n, err
	}

	return n, FlushStream(w)
}

func (m *message) clear() {
	clear(m.headers)
	m.lines = nil
	m.scanner.reset()
	m.length = 0
	m.limit = NoLimit
}
