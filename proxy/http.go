package proxy

import (
	"bufio"
	"io"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/mohamedbeat/h1wire/h1"
	"github.com/mohamedbeat/h1wire/logger"
	"go.uber.org/zap"
)

func (p *Proxy) handleHTTP(logg *zap.Logger, client net.Conn, reader *bufio.Reader, req *h1.Request) {
	method, _ := req.Method()
	uri, _ := req.URI()

	dest, err := requestTarget(req)
	if err != nil {
		logg.Warn("Invalid request target", zap.String("uri", uri), zap.Error(err))
		p.sendError(logg, client, err)
		return
	}

	if shouldBlock := p.checkAndBlockHost(logg, client, dest.Host); shouldBlock {
		return
	}

	logg.Info("HTTP request",
		zap.String("method", method),
		zap.String("host", dest.Host),
		zap.String("uri", uri))

	// Connect to target
	server, err := net.DialTimeout("tcp", dest.String(), p.Config.Timeout)
	if err != nil {
		logg.Error("Error connecting to target", zap.Stringer("target", dest), zap.Error(err))
		p.sendStatus(logg, client, http.StatusBadGateway)
		return
	}
	defer server.Close()
	if p.Config.Timeout > 0 {
		server.SetDeadline(time.Now().Add(p.Config.Timeout))
	}

	// Forward request
	if err := p.forwardRequest(logg, server, reader, req); err != nil {
		logg.Error("Error forwarding request", zap.Error(err))
		p.sendError(logg, client, err)
		return
	}

	// Forward responses, interim ones included
	upstream := bufio.NewReader(server)
	for {
		resp := h1.NewResponse()
		if err := p.readHead(upstream, resp); err != nil {
			logg.Error("Error reading response", zap.Error(err))
			p.sendStatus(logg, client, http.StatusBadGateway)
			return
		}

		code, _ := resp.StatusCode()
		if err := p.forwardResponse(logg, client, upstream, resp, method); err != nil {
			logg.Error("Error forwarding response", zap.Error(err))
			return
		}

		if !interim(code) {
			return
		}
	}
}

// forwardRequest writes the request upstream in origin-form, followed by its
// body when there is one.
func (p *Proxy) forwardRequest(logg *zap.Logger, server io.Writer, body io.Reader, req *h1.Request) error {
	uri, _ := req.URI()
	req.SetURI(originForm(uri))
	req.RemoveHeader(headerProxyConnection)
	req.SetHeader(headerConnection, "close")

	if err := req.BuildHead(); err != nil {
		return err
	}

	req.BuildHeaders()
	if _, err := req.Write(server); err != nil {
		return err
	}

	if !req.Headers().Framed() {
		return nil
	}

	relay := h1.NewRelay()
	relay.SetLogger(logg)
	if p.Config.BodyLimit > 0 {
		relay.SetLimit(p.Config.BodyLimit)
	}

	n, err := relay.Relay(body, server, req.Headers())
	if err != nil {
		return err
	}

	logg.Debug("Request body forwarded", zap.String("size", logger.HumanizeBytes(n)))
	return nil
}

// forwardResponse writes the response head to the client and relays the body.
// Bodies framed by neither Content-Length nor chunked coding last until the
// upstream closes the connection.
func (p *Proxy) forwardResponse(logg *zap.Logger, client io.Writer, upstream io.Reader, resp *h1.Response, method string) error {
	version, _ := resp.Version()
	code, _ := resp.StatusCode()
	if !interim(code) {
		resp.SetHeader(headerConnection, "close")
		resp.BuildHeaders()
	}

	if _, err := resp.Write(client); err != nil {
		return err
	}

	logg.Info("HTTP response",
		zap.String("proto", version),
		zap.Int("status", code))

	if !hasBody(method, code) {
		return nil
	}

	if !resp.Headers().Framed() {
		n, err := io.Copy(client, upstream)
		if err != nil {
			return err
		}

		logg.Debug("Unframed response body forwarded", zap.String("size", logger.HumanizeBytes(int(n))))
		return nil
	}

	relay := h1.NewRelay()
	relay.SetLogger(logg)
	n, err := relay.Relay(upstream, client, resp.Headers())
	if err != nil {
		return err
	}

	logg.Debug("Response body forwarded", zap.String("size", logger.HumanizeBytes(n)))
	return nil
}

// requestTarget resolves the upstream host from an absolute-form URI, or else
// from the Host header.
func requestTarget(req *h1.Request) (target, error) {
	uri, _ := req.URI()
	if strings.Contains(uri, "://") {
		u, err := url.Parse(uri)
		if err != nil || u.Host == "" {
			return target{}, h1.ErrInvalidData
		}

		port := defaultHTTPPort
		if strings.EqualFold(u.Scheme, "https") {
			port = defaultHTTPSPort
		}

		return splitHostPort(u.Host, port), nil
	}

	host, found := req.Header(headerHost)
	if !found || host == "" {
		return target{}, &h1.Error{Kind: h1.MissingHeader, Header: headerHost}
	}

	return splitHostPort(host, defaultHTTPPort), nil
}

func splitHostPort(hostport, defaultPort string) target {
	if host, port, err := net.SplitHostPort(hostport); err == nil {
		return target{Host: host, Port: port}
	}

	return target{Host: strings.Trim(hostport, "[]"), Port: defaultPort}
}

// originForm strips the scheme and authority off an absolute-form URI.
func originForm(uri string) string {
	if !strings.Contains(uri, "://") {
		return uri
	}

	u, err := url.Parse(uri)
	if err != nil {
		return uri
	}

	return u.RequestURI()
}

// interim reports whether more responses follow this one. Switching protocols
// is final: the connection stops being HTTP.
func interim(code int) bool {
	return code >= 100 && code < 200 && code != http.StatusSwitchingProtocols
}

func hasBody(method string, code int) bool {
	switch {
	case method == headMethod:
		return false
	case code >= 100 && code < 200, code == http.StatusNoContent, code == http.StatusNotModified:
		return false
	default:
		return true
	}
}

// canonicalize rewrites the header names into their canonical form, so that
// lookups like Content-Length match whatever casing the peer used. Framing
// headers repeated under different casings must agree.
func canonicalize(headers h1.Headers) error {
	for _, name := range headers.Names() {
		canonical := textproto.CanonicalMIMEHeaderKey(name)
		if canonical == name {
			continue
		}

		value := headers[name]
		delete(headers, name)
		if existing, found := headers[canonical]; found && existing != value && framing(canonical) {
			return h1.ErrInvalidData
		}

		headers[canonical] = value
	}

	return nil
}

func framing(name string) bool {
	return name == h1.HeaderContentLength || name == h1.HeaderTransferEncoding
}
