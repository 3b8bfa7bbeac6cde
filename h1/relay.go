package h1

import (
	"io"

	"go.uber.org/zap"
)

// Relay forwards message bodies between two streams without buffering them. It
// only counts the forwarded bytes, which the optional limit caps across all relays
// until Clear.
type Relay struct {
	length int
	limit  int
	logger *zap.Logger
}

func NewRelay() *Relay {
	return &Relay{
		limit:  NoLimit,
		logger: zap.NewNop(),
	}
}

// SetLogger attaches a logger receiving a debug entry per relayed body.
func (r *Relay) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	r.logger = logger
}

func (r *Relay) Len() int {
	return r.length
}

func (r *Relay) Limit() (int, bool) {
	return r.limit, r.limit >= 0
}

func (r *Relay) HasLimit() bool {
	return r.limit >= 0
}

func (r *Relay) SetLimit(limit int) {
	r.limit = limit
}

func (r *Relay) RemoveLimit() {
	r.limit = NoLimit
}

func (r *Relay) remaining() int {
	if r.limit < 0 {
		return NoLimit
	}

	return max(r.limit-r.length, 0)
}

// Relay forwards the body framed as the headers tell, see Body.Read.
func (r *Relay) Relay(in io.Reader, out io.Writer, headers Headers) (int, error) {
	if headers.Chunked() {
		return r.RelayChunked(in, out)
	}

	length, err := headers.ContentLength()
	if err != nil {
		return 0, err
	}

	return r.RelaySized(in, out, length)
}

// RelayChunked forwards a chunk-encoded body. Bytes forwarded before a failure
// are counted, as they've already left.
func (r *Relay) RelayChunked(in io.Reader, out io.Writer) (int, error) {
	n, err := RelayChunked(in, out, r.remaining())
	r.length += n
	if err != nil {
		if ErrorKind(err) == SizeLimitExceeded {
			err = errSizeLimit(r.limit)
		}

		return n, err
	}

	r.logger.Debug("chunked body relayed", zap.Int("bytes", n), zap.Int("total", r.length))
	return n, nil
}

// RelaySized forwards a body of known length. The limit is checked before
// anything is read.
func (r *Relay) RelaySized(in io.Reader, out io.Writer, length int) (int, error) {
	if r.limit >= 0 && length > r.remaining() {
		return 0, errSizeLimit(r.limit)
	}

	n, err := RelaySized(in, out, length)
	r.length += n
	if err != nil {
		return n, err
	}

	if n < length {
		r.logger.Debug("sized body cut short by peer", zap.Int("bytes", n), zap.Int("expected", length))
	} else {
		r.logger.Debug("sized body relayed", zap.Int("bytes", n), zap.Int("total", r.length))
	}

	return n, nil
}

// Clear resets the counter and removes the limit.
func (r *Relay) Clear() {
	r.length = 0
	r.limit = NoLimit
}
