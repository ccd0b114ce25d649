package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"smug/service"
)

type Server struct {
	service.ServerImpl
	httpServer *http.Server
	pool       sync.Pool
}

// NewServer returns a server running the commands it receives on x.
func NewServer(listener net.Listener, x service.Executor) *Server {
	impl := service.NewServerImpl(listener)
	impl.SetupLogger("http")

	s := &Server{
		ServerImpl: impl,
		pool: sync.Pool{
			New: func() interface{} {
				return newProcessor(x)
			},
		},
	}

	s.httpServer = &http.Server{
		Handler: s,
	}

	return s
}

func (s *Server) Run() error {
	go func() {
		defer close(s.StopChan)
		if err := s.httpServer.Serve(s.Listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Errorf("http server stopped: %v", err)
		}
	}()

	return nil
}

func (s *Server) Stop() error {
	return s.httpServer.Shutdown(context.Background())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := newContext(s.Logger, w, r)
	p := s.pool.Get().(*processor)
	defer s.pool.Put(p)
	ctx.chain = httpHandlerChain(p.worker)
	ctx.chain.exec(ctx)
}
