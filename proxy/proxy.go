package proxy

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dchest/uniuri"
	"github.com/mohamedbeat/h1wire/config"
	"github.com/mohamedbeat/h1wire/h1"
	"github.com/mohamedbeat/h1wire/logger"
	"go.uber.org/zap"
)

func New(logg *zap.Logger, cfg config.Config) *Proxy {
	return &Proxy{Logger: logg, Config: cfg}
}

// Start runs the proxy server
func (p *Proxy) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer listener.Close()

	return p.Serve(listener)
}

// Serve accepts connections until the listener is closed.
func (p *Proxy) Serve(listener net.Listener) error {
	p.Logger.Info("Proxy server started",
		zap.String("addr", listener.Addr().String()),
		zap.String("headLimit", limitString(p.Config.HeadLimit)),
		zap.String("bodyLimit", limitString(p.Config.BodyLimit)))

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}

			p.Logger.Error("Error accepting connection", zap.Error(err))
			continue
		}

		go p.handleConnection(conn)
	}
}

// handleConnection reads the request head and routes the connection to the
// appropriate handler
func (p *Proxy) handleConnection(client net.Conn) {
	defer client.Close()
	if p.Config.Timeout > 0 {
		client.SetDeadline(time.Now().Add(p.Config.Timeout))
	}

	logg := p.Logger.With(
		zap.String("conn", uniuri.NewLen(connectionIDLength)),
		zap.String("client", client.RemoteAddr().String()))

	reader := bufio.NewReader(client)
	req := h1.NewRequest()
	if err := p.readHead(reader, req); err != nil {
		if errors.Is(err, io.EOF) {
			logg.Debug("Connection closed before a request was sent")
			return
		}

		logg.Warn("Error reading request", zap.Error(err))
		p.sendError(logg, client, err)
		return
	}

	if req.HasVersion(h1.ProtoHTTP09) {
		logg.Warn("Legacy request refused", zap.Strings("lines", req.Lines()))
		p.sendError(logg, client, h1.ErrInvalidData)
		return
	}

	if req.HasMethod(connectMethod) {
		p.handleConnect(logg, client, reader, req)
	} else {
		p.handleHTTP(logg, client, reader, req)
	}
}

// head is the two-phase reading side of requests and responses.
type head interface {
	SetLimit(limit int)
	ReadStream(r io.Reader) (int, error)
	Complete() bool
	Lines() []string
	ParseHead() error
	ParseHeaders() error
	Headers() h1.Headers
}

// readHead collects the head lines under the head limit and parses them. A
// stream closing before the first byte reports io.EOF.
func (p *Proxy) readHead(r io.Reader, msg head) error {
	if p.Config.HeadLimit > 0 {
		msg.SetLimit(p.Config.HeadLimit)
	}

	if _, err := msg.ReadStream(r); err != nil {
		return err
	}

	if !msg.Complete() {
		if len(msg.Lines()) == 0 {
			return io.EOF
		}

		return h1.ErrInvalidData
	}

	if err := msg.ParseHead(); err != nil {
		return err
	}

	if err := msg.ParseHeaders(); err != nil {
		return err
	}

	return canonicalize(msg.Headers())
}

// Host Checking
func (p *Proxy) checkHost(host string) (bool, error) {
	file, err := os.Open(p.Config.Blocklist)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return true, nil
		}

		return false, fmt.Errorf("failed to open blocked file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		blockedHost := strings.TrimSpace(scanner.Text())
		if blockedHost == "" || strings.HasPrefix(blockedHost, "#") {
			continue
		}

		if strings.EqualFold(host, blockedHost) {
			return false, nil
		}
	}

	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("error reading blocked file: %w", err)
	}

	return true, nil
}

// Host Blocking Logic
func (p *Proxy) checkAndBlockHost(logg *zap.Logger, client io.Writer, host string) bool {
	ok, err := p.checkHost(host)
	if err != nil {
		logg.Error("Host check failed", zap.Error(err))
		return false
	}

	if !ok {
		logg.Warn("Blocked host accessed", zap.String("host", host))
		p.sendForbiddenResponse(logg, client, host)
		return true
	}

	return false
}

func (p *Proxy) sendForbiddenResponse(logg *zap.Logger, client io.Writer, domain string) {
	page := fmt.Sprintf(forbiddenHTMLTemplate, domain)
	if err := respond(client, http.StatusForbidden, "text/html; charset=utf-8", page); err != nil {
		logg.Error("Failed to send 403 response", zap.Error(err))
	}
}

// sendError answers with the status matching the kind of the failure.
func (p *Proxy) sendError(logg *zap.Logger, client io.Writer, err error) {
	p.sendStatus(logg, client, h1.ErrorKind(err).Status())
}

func (p *Proxy) sendStatus(logg *zap.Logger, client io.Writer, code int) {
	if err := respond(client, code, "", ""); err != nil {
		logg.Error("Failed to send response", zap.Int("status", code), zap.Error(err))
	}
}

// respond writes a complete response generated by the proxy itself.
func respond(w io.Writer, code int, contentType, content string) error {
	resp := h1.NewResponse()
	resp.SetVersion(h1.ProtoHTTP11)
	resp.SetStatusCode(code)
	resp.SetStatusMessage(http.StatusText(code))
	resp.SetHeader(headerConnection, "close")
	resp.SetHeader(h1.HeaderContentLength, strconv.Itoa(len(content)))
	if contentType != "" {
		resp.SetHeader(headerContentType, contentType)
	}

	if err := resp.BuildHead(); err != nil {
		return err
	}

	resp.BuildHeaders()
	if _, err := resp.Write(w); err != nil {
		return err
	}

	body := h1.NewBody()
	if _, err := body.ReadSized(strings.NewReader(content), len(content)); err != nil {
		return err
	}

	_, err := body.Write(w)
	return err
}

func limitString(limit int) string {
	if limit <= 0 {
		return "none"
	}

	return logger.HumanizeBytes(limit)
}
