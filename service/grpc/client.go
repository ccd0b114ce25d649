package grpc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	e "smug/error"
	"smug/service"
)

type Client struct {
	addr string
	conn *grpc.ClientConn
	pid  int
}

// NewClient connects to the server at addr and checks it is a smug server.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecSubtype)),
	}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, err
	}
	c := &Client{addr: addr, conn: conn}

	if !c.IsSmugServer() {
		conn.Close()
		return nil, fmt.Errorf("%s: %w", addr, e.NotServer)
	}
	return c, nil
}

// Pid returns the pid of the process the server scans.
func (c *Client) Pid() int {
	return c.pid
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) SendExpr(expr string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), service.Timeout)
	defer cancel()

	var reply ExecReply
	err := c.conn.Invoke(ctx, execMethod, &ExecRequest{Expr: expr, Pid: os.Getpid()}, &reply)
	if err != nil {
		if st, ok := status.FromError(err); ok {
			return "", errors.New(st.Message())
		}
		return "", err
	}
	return reply.Output, nil
}

func (c *Client) IsSmugServer() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var reply HelloReply
	if err := c.conn.Invoke(ctx, helloMethod, &HelloRequest{}, &reply); err != nil {
		return false
	}
	if reply.Name != service.Name {
		return false
	}
	c.pid = reply.Pid
	return true
}
