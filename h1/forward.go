package h1

import (
	"io"
)

// RelayWindowSize is the most bytes a relay reads before writing them out.
const RelayWindowSize = 1024

func forward(out io.Writer, data []byte) error {
	if _, err := WriteStream(out, data); err != nil {
		return err
	}

	return FlushStream(out)
}

// RelayChunked forwards a chunk-encoded body from in to out window by window,
// without decoding it. The body ends with the window in which the last-chunk
// sequence "0\r\n\r\n" completes; that window is forwarded whole, so chunk
// extensions and trailers are not supported. A window that would take the
// forwarded total past the limit (NoLimit disables it) is rejected before being
// written. The end of the stream stops the relay cleanly.
func RelayChunked(in io.Reader, out io.Writer, limit int) (n int, err error) {
	var (
		window [RelayWindowSize]byte
		tail   tailWindow
	)

	for {
		size, err := readWindow(in, window[:])
		if err != nil {
			return n, err
		}

		if size == 0 {
			return n, nil
		}

		if limit >= 0 && size > limit-n {
			return n, errSizeLimit(limit)
		}

		if err = forward(out, window[:size]); err != nil {
			return n, err
		}

		n += size

		for _, c := range window[:size] {
			tail.push(c)
			if tail.terminated() {
				return n, nil
			}
		}
	}
}

// RelaySized forwards exactly length bytes from in to out, never reading past
// them. Unlike ReadSized, an early end of the stream isn't an error: the relay just
// stops with fewer bytes forwarded.
func RelaySized(in io.Reader, out io.Writer, length int) (n int, err error) {
	var window [RelayWindowSize]byte

	for n < length {
		size, err := readWindow(in, window[:min(RelayWindowSize, length-n)])
		if err != nil {
			return n, err
		}

		if size == 0 {
			break
		}

		if err = forward(out, window[:size]); err != nil {
			return n, err
		}

		n += size
	}

	return n, nil
}
