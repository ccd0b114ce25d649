package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	e "smug/error"
	"smug/service"
)

type Client struct {
	addr   string
	url    string
	client *http.Client
	pid    int
}

// NewClient connects to the server at addr and checks it is a smug server.
func NewClient(addr string) (*Client, error) {
	c := &Client{
		addr:   addr,
		url:    fmt.Sprintf("http://%s", addr),
		client: &http.Client{Timeout: service.Timeout},
	}

	if !c.IsSmugServer() {
		return nil, fmt.Errorf("%s: %w", c.addr, e.NotServer)
	}
	return c, nil
}

// Pid returns the pid of the process the server scans.
func (c *Client) Pid() int {
	return c.pid
}

func (c *Client) SendExpr(expr string) (string, error) {
	resp, err := c.do(&doRequest{
		method: http.MethodPost,
		path:   "/exec",
		expr:   expr,
	})
	if err != nil {
		return "", err
	}
	if resp.Status != http.StatusOK {
		return "", errors.New(resp.Msg)
	}

	var out string
	if len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, &out); err != nil {
			return "", fmt.Errorf("unexpected response data: %w", err)
		}
	}
	return out, nil
}

func (c *Client) IsSmugServer() bool {
	if c.addr == "" {
		return false
	}

	resp, err := c.do(&doRequest{
		method: http.MethodGet,
		path:   "/smug",
	})
	if err != nil || resp.Status != http.StatusOK {
		return false
	}

	var h hello
	if err := json.Unmarshal(resp.Data, &h); err != nil || h.Name != service.Name {
		return false
	}
	c.pid = h.Pid
	return true
}

type doRequest struct {
	method string
	path   string
	header http.Header
	expr   string
}

func (c *Client) jsonHeader() http.Header {
	header := http.Header{}
	header.Set("Content-Type", "application/json")

	return header
}

func (c *Client) do(req *doRequest) (resp *rawResponse, err error) {
	url := c.url + req.path

	exr := newExpression(req.expr, os.Getpid())
	bs, err := json.Marshal(exr)
	if err != nil {
		return
	}

	r, err := http.NewRequest(req.method, url, bytes.NewReader(bs))
	if err != nil {
		return
	}

	if req.header == nil {
		r.Header = c.jsonHeader()
	} else {
		r.Header = req.header
	}

	res, err := c.client.Do(r)
	if err != nil {
		return
	}
	defer res.Body.Close()

	bs, err = io.ReadAll(res.Body)
	if err != nil {
		return
	}

	err = json.Unmarshal(bs, &resp)
	return
}
