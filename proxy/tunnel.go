package proxy

import (
	"errors"
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/mohamedbeat/h1wire/h1"
	"github.com/mohamedbeat/h1wire/logger"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func (p *Proxy) handleConnect(logg *zap.Logger, client net.Conn, reader io.Reader, req *h1.Request) {
	authority, _ := req.URI()
	dest := splitHostPort(authority, defaultHTTPSPort)
	if dest.Host == "" {
		logg.Warn("Invalid CONNECT target", zap.String("authority", authority))
		p.sendError(logg, client, h1.ErrInvalidData)
		return
	}

	if shouldBlock := p.checkAndBlockHost(logg, client, dest.Host); shouldBlock {
		return
	}

	logg.Info("CONNECT request", zap.Stringer("target", dest))

	server, err := net.DialTimeout("tcp", dest.String(), p.Config.Timeout)
	if err != nil {
		logg.Error("Error connecting to target", zap.Stringer("target", dest), zap.Error(err))
		p.sendStatus(logg, client, http.StatusBadGateway)
		return
	}
	defer server.Close()

	if err := sendEstablished(client); err != nil {
		logg.Error("Failed to send 200 response", zap.Error(err))
		return
	}

	sent, received, err := tunnelConnections(client, reader, server)
	logg.Info("Tunnel closed",
		zap.Stringer("target", dest),
		zap.String("sent", logger.HumanizeBytes(int(sent))),
		zap.String("received", logger.HumanizeBytes(int(received))))
	if err != nil {
		logg.Debug("Tunnel interrupted", zap.Error(err))
	}
}

func sendEstablished(client io.Writer) error {
	resp := h1.NewResponse()
	resp.SetVersion(h1.ProtoHTTP11)
	resp.SetStatusCode(http.StatusOK)
	resp.SetStatusMessage("Connection Established")
	if err := resp.BuildHead(); err != nil {
		return err
	}

	_, err := resp.Write(client)
	return err
}

// Connection Tunneling. Bytes the client sent past the CONNECT head are still
// buffered in reader, so the upstream direction copies from it instead of the
// connection.
func tunnelConnections(client net.Conn, reader io.Reader, server net.Conn) (sent, received int64, err error) {
	var (
		wg                sync.WaitGroup
		sendErr, recvErr error
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		sent, sendErr = io.Copy(server, reader)
		sendErr = multierr.Append(sendErr, closeWrite(server))
	}()

	go func() {
		defer wg.Done()
		received, recvErr = io.Copy(client, server)
		recvErr = multierr.Append(recvErr, closeWrite(client))
	}()

	wg.Wait()
	return sent, received, multierr.Combine(sendErr, recvErr)
}

// closeWrite half-closes the connection when it supports it, so the peer sees
// the end of the stream while the other direction keeps flowing.
func closeWrite(conn net.Conn) error {
	type writeCloser interface {
		CloseWrite() error
	}

	var err error
	if wc, ok := conn.(writeCloser); ok {
		err = wc.CloseWrite()
	} else {
		err = conn.Close()
	}

	if errors.Is(err, net.ErrClosed) {
		return nil
	}

	return err
}
