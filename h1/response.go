package h1

import (
	"io"
	"strconv"
	"strings"
)

// Response is an HTTP/1.x response head, read and built the same ways as Request.
type Response struct {
	message

	version       *string
	statusCode    *int
	statusMessage *string
}

func NewResponse() *Response {
	return &Response{message: newMessage()}
}

func parseStatusCode(token string) (int, error) {
	code, err := strconv.ParseUint(token, 10, 16)
	if err != nil {
		return 0, ErrInvalidData
	}

	return int(code), nil
}

// ReadResponse reads the status line and the header block. The limit (NoLimit
// disables it) bounds both together.
func ReadResponse(r io.Reader, limit int) (*Response, error) {
	resp := NewResponse()
	resp.limit = limit

	tokens, n, err := ReadStartLine(r)
	resp.length += n
	if err != nil {
		return nil, err
	}

	if limit >= 0 && n > limit {
		return nil, errSizeLimit(limit)
	}

	if len(tokens) < 3 {
		return nil, ErrInvalidData
	}

	code, err := parseStatusCode(tokens[1])
	if err != nil {
		return nil, err
	}

	resp.SetVersion(tokens[0])
	resp.SetStatusCode(code)
	resp.SetStatusMessage(tokens[2])

	n, err = ReadHeaders(r, resp.headers, resp.remaining())
	resp.length += n
	if err = resp.limitError(err); err != nil {
		return nil, err
	}

	return resp, nil
}

func (r *Response) Version() (string, bool) {
	return deref(r.version)
}

func (r *Response) StatusCode() (int, bool) {
	return deref(r.statusCode)
}

func (r *Response) StatusMessage() (string, bool) {
	return deref(r.statusMessage)
}

func (r *Response) HasVersion(version string) bool {
	return r.version != nil && *r.version == version
}

func (r *Response) HasStatusCode(code int) bool {
	return r.statusCode != nil && *r.statusCode == code
}

func (r *Response) SetVersion(version string) {
	r.version = &version
}

func (r *Response) SetStatusCode(code int) {
	r.statusCode = &code
}

func (r *Response) SetStatusMessage(message string) {
	r.statusMessage = &message
}

// ParseHead parses the status line collected by ReadStream/ReadString. The reason
// phrase may be absent or contain spaces.
func (r *Response) ParseHead() error {
	line, ok := r.headLine()
	if !ok {
		return ErrInvalidData
	}

	fields := strings.SplitN(line, " ", 3)
	if len(fields) < 2 || !knownProto(fields[0]) {
		return ErrInvalidData
	}

	code, err := parseStatusCode(fields[1])
	if err != nil {
		return err
	}

	var reason string
	if len(fields) == 3 {
		reason = fields[2]
	}

	r.SetVersion(fields[0])
	r.SetStatusCode(code)
	r.SetStatusMessage(reason)
	return nil
}

// ParseHeaders parses the collected header lines, up to the first empty line.
func (r *Response) ParseHeaders() error {
	return r.parseHeaderLines(true)
}

// BuildHead renders the status line from the version, status code and message,
// all of which must be set.
func (r *Response) BuildHead() error {
	if r.version == nil || r.statusCode == nil || r.statusMessage == nil {
		return ErrInvalidData
	}

	r.setHeadLine(*r.version + " " + strconv.Itoa(*r.statusCode) + " " + *r.statusMessage)
	return nil
}

// BuildHeaders regenerates the header lines from the headers.
func (r *Response) BuildHeaders() {
	r.buildHeaderLines()
}

// Clear resets the response to its initial, empty state.
func (r *Response) Clear() {
	r.message.clear()
	r.version, r.statusCode, r.statusMessage = nil, nil, nil
}
