package service

import (
	"net"

	"smug/pkg/logflags"
)

// Server represents a server for a remote client
// to connect to.
type Server interface {
	Run() error
	Stop() error
}

type ServerImpl struct {
	Logger   logflags.Logger
	Listener net.Listener
	StopChan chan struct{}
}

func NewServerImpl(listener net.Listener) ServerImpl {
	return ServerImpl{
		Listener: listener,
		StopChan: make(chan struct{}),
	}
}

// SetupLogger picks the logger of the given transport layer. logflags.Setup
// must have run before.
func (si *ServerImpl) SetupLogger(layer string) {
	switch layer {
	case "grpc":
		si.Logger = logflags.GRPCLogger()
	case "http":
		fallthrough
	default:
		si.Logger = logflags.HTTPLogger()
	}
}
