package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const (
	serviceName  = "smug.Prowler"
	execMethod   = "/" + serviceName + "/Exec"
	helloMethod  = "/" + serviceName + "/Hello"
	codecSubtype = "json"
)

type ExecRequest struct {
	Expr string `json:"expression"`
	Pid  int    `json:"pid"`
}

type ExecReply struct {
	Output string `json:"output"`
}

type HelloRequest struct{}

type HelloReply struct {
	Name string `json:"name"`
	Pid  int    `json:"pid"`
}

type prowlerServer interface {
	Exec(context.Context, *ExecRequest) (*ExecReply, error)
	Hello(context.Context, *HelloRequest) (*HelloReply, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*prowlerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Exec", Handler: execHandler},
		{MethodName: "Hello", Handler: helloHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "smug",
}

func execHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ExecRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(prowlerServer).Exec(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: execMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(prowlerServer).Exec(ctx, req.(*ExecRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func helloHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(HelloRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(prowlerServer).Hello(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: helloMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(prowlerServer).Hello(ctx, req.(*HelloRequest))
	}
	return interceptor(ctx, in, info, handler)
}
