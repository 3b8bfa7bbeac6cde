package proxy

import (
	"net"

	"github.com/mohamedbeat/h1wire/config"
	"go.uber.org/zap"
)

type Proxy struct {
	Logger *zap.Logger
	Config config.Config
}

// target is where a client asked to be forwarded to.
type target struct {
	Host string
	Port string
}

func (t target) String() string {
	return net.JoinHostPort(t.Host, t.Port)
}
