package h1

import (
	"io"
	"strings"
)

// Request is an HTTP/1.x request head. It's either read eagerly with
// ReadRequest, or collected in two phases: raw lines first (ReadStream,
// ReadString), structured fields afterwards (ParseHead, ParseHeaders). The
// inverse direction goes through BuildHead and BuildHeaders.
type Request struct {
	message

	method  *string
	uri     *string
	version *string
}

func NewRequest() *Request {
	return &Request{message: newMessage()}
}

// ReadRequest reads the start-line and, unless it's a legacy HTTP/0.9 request,
// the header block. The limit (NoLimit disables it) bounds both together.
func ReadRequest(r io.Reader, limit int) (*Request, error) {
	req := NewRequest()
	req.limit = limit

	tokens, n, err := ReadStartLine(r)
	req.length += n
	if err != nil {
		return nil, err
	}

	if limit >= 0 && n > limit {
		return nil, errSizeLimit(limit)
	}

	if len(tokens) < 2 || len(tokens[1]) == 0 {
		return nil, ErrInvalidData
	}

	req.SetMethod(tokens[0])
	req.SetURI(tokens[1])
	if len(tokens) > 2 {
		req.SetVersion(tokens[2])
	} else {
		req.SetVersion(ProtoHTTP09)
	}

	if req.HasVersion(ProtoHTTP09) {
		return req, nil
	}

	n, err = ReadHeaders(r, req.headers, req.remaining())
	req.length += n
	if err = req.limitError(err); err != nil {
		return nil, err
	}

	return req, nil
}

func (r *Request) Method() (string, bool) {
	return deref(r.method)
}

func (r *Request) URI() (string, bool) {
	return deref(r.uri)
}

func (r *Request) Version() (string, bool) {
	return deref(r.version)
}

func (r *Request) HasMethod(method string) bool {
	return r.method != nil && *r.method == method
}

func (r *Request) HasVersion(version string) bool {
	return r.version != nil && *r.version == version
}

func (r *Request) SetMethod(method string) {
	r.method = &method
}

func (r *Request) SetURI(uri string) {
	r.uri = &uri
}

func (r *Request) SetVersion(version string) {
	r.version = &version
}

// ParseHead parses the request line collected by ReadStream/ReadString. A line
// without a version is the legacy form and implies HTTP/0.9; any other version
// but HTTP/1.0 and HTTP/1.1 is rejected.
func (r *Request) ParseHead() error {
	line, ok := r.headLine()
	if !ok {
		return ErrInvalidData
	}

	fields := strings.Split(line, " ")
	switch len(fields) {
	case 2:
		fields = append(fields, ProtoHTTP09)
	case 3:
		if !knownProto(fields[2]) {
			return ErrInvalidData
		}
	default:
		return ErrInvalidData
	}

	if len(fields[0]) == 0 || len(fields[1]) == 0 {
		return ErrInvalidData
	}

	r.SetMethod(fields[0])
	r.SetURI(fields[1])
	r.SetVersion(fields[2])
	return nil
}

// ParseHeaders parses the collected header lines. The lines never hold the empty
// line ending the head, so an empty line here is malformed.
func (r *Request) ParseHeaders() error {
	return r.parseHeaderLines(false)
}

// BuildHead renders the request line from the method, URI and version, all of
// which must be set.
func (r *Request) BuildHead() error {
	if r.method == nil || r.uri == nil || r.version == nil {
		return ErrInvalidData
	}

	if *r.version == ProtoHTTP09 {
		r.setHeadLine(*r.method + " " + *r.uri)
		return nil
	}

	r.setHeadLine(*r.method + " " + *r.uri + " " + *r.version)
	return nil
}

// BuildHeaders regenerates the header lines from the headers. Legacy requests
// carry no headers, so none are rendered for them.
func (r *Request) BuildHeaders() {
	if r.HasVersion(ProtoHTTP09) {
		r.lines = r.lines[:min(len(r.lines), 1)]
		return
	}

	r.buildHeaderLines()
}

// Clear resets the request to its initial, empty state.
func (r *Request) Clear() {
	r.message.clear()
	r.method, r.uri, r.version = nil, nil, nil
}

func deref[T any](ptr *T) (value T, ok bool) {
	if ptr == nil {
		return value, false
	}

	return *ptr, true
}
