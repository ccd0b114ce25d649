package grpc

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	e "smug/error"
	"smug/service"
)

type Server struct {
	service.ServerImpl
	grpcServer *grpc.Server
	x          service.Executor
}

// NewServer returns a server running the commands it receives on x.
func NewServer(listener net.Listener, x service.Executor) *Server {
	s := &Server{
		ServerImpl: service.NewServerImpl(listener),
		x:          x,
	}
	s.SetupLogger("grpc")

	s.grpcServer = grpc.NewServer(
		grpc.ForceServerCodec(codec{}),
		grpc.UnaryInterceptor(s.logCall),
	)
	s.grpcServer.RegisterService(&serviceDesc, s)

	return s
}

func (s *Server) Run() error {
	go func() {
		defer close(s.StopChan)
		if err := s.grpcServer.Serve(s.Listener); err != nil {
			s.Logger.Errorf("grpc server stopped: %v", err)
		}
	}()

	return nil
}

func (s *Server) Stop() error {
	s.grpcServer.GracefulStop()
	return nil
}

func (s *Server) Exec(ctx context.Context, in *ExecRequest) (*ExecReply, error) {
	out, err := s.x.Exec(in.Expr)
	if err != nil {
		code := codes.Internal
		if e.IsUsage(err) {
			code = codes.InvalidArgument
		}
		return nil, status.Error(code, err.Error())
	}
	return &ExecReply{Output: out}, nil
}

func (s *Server) Hello(ctx context.Context, in *HelloRequest) (*HelloReply, error) {
	return &HelloReply{Name: service.Name, Pid: s.x.Pid()}, nil
}

func (s *Server) logCall(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	s.Logger.Infof("call %s: %+v", info.FullMethod, req)
	resp, err := handler(ctx, req)
	if err != nil {
		s.Logger.Infof("call %s failed after %v: %v", info.FullMethod, time.Since(start), err)
	} else {
		s.Logger.Infof("call %s done in %v", info.FullMethod, time.Since(start))
	}
	return resp, err
}
