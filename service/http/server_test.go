package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	e "smug/error"
)

type fakeExec struct {
	lines []string
}

func (f *fakeExec) Pid() int { return 42 }

func (f *fakeExec) Exec(line string) (string, error) {
	f.lines = append(f.lines, line)
	switch line {
	case "bad":
		return "", e.Arg("address", "zz", e.InvalidNumber)
	case "boom":
		return "", errors.New("couldn't parse memory map: gone")
	}
	return "ran " + line, nil
}

func startServer(t *testing.T) (*fakeExec, *httptest.Server) {
	t.Helper()
	x := &fakeExec{}
	ts := httptest.NewServer(NewServer(nil, x))
	t.Cleanup(ts.Close)
	return x, ts
}

func addrOf(ts *httptest.Server) string {
	return strings.TrimPrefix(ts.URL, "http://")
}

func TestHandshake(t *testing.T) {
	_, ts := startServer(t)

	c, err := NewClient(addrOf(ts))
	if err != nil {
		t.Fatal(err)
	}
	if c.Pid() != 42 {
		t.Fatalf("expected pid 42, got %d", c.Pid())
	}
}

func TestNotServer(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	_, err := NewClient(addrOf(ts))
	if !errors.Is(err, e.NotServer) {
		t.Fatalf("expected %v, got %v", e.NotServer, err)
	}
}

func TestSendExpr(t *testing.T) {
	x, ts := startServer(t)
	c, err := NewClient(addrOf(ts))
	if err != nil {
		t.Fatal(err)
	}

	out, err := c.SendExpr(`ss 0 0 "hello world"`)
	if err != nil {
		t.Fatal(err)
	}
	if out != `ran ss 0 0 "hello world"` {
		t.Fatalf("unexpected output %q", out)
	}

	_, err = c.SendExpr("bad")
	if err == nil || err.Error() != `address "zz": not a valid number` {
		t.Fatalf("unexpected error %v", err)
	}
	if _, err := c.SendExpr("boom"); err == nil {
		t.Fatalf("expected an error")
	}
	if len(x.lines) != 3 {
		t.Fatalf("expected 3 commands, got %q", x.lines)
	}
}

func TestStatus(t *testing.T) {
	_, ts := startServer(t)

	tests := []struct {
		method, path, body string
		status             int
	}{
		{http.MethodGet, "/smug", "", http.StatusOK},
		{http.MethodPost, "/exec", `{"expression":"m","pid":1}`, http.StatusOK},
		{http.MethodPost, "/exec", `{"expression":"bad","pid":1}`, http.StatusBadRequest},
		{http.MethodPost, "/exec", `{"expression":"boom","pid":1}`, http.StatusInternalServerError},
		{http.MethodPost, "/exec", `{"expression":`, http.StatusBadRequest},
		{http.MethodGet, "/exec", "", http.StatusNotFound},
		{http.MethodGet, "/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		req, err := http.NewRequest(tt.method, ts.URL+tt.path, strings.NewReader(tt.body))
		if err != nil {
			t.Fatal(err)
		}
		res, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		res.Body.Close()
		if res.StatusCode != tt.status {
			t.Fatalf("%s %s %q: expected status %d, got %d", tt.method, tt.path, tt.body, tt.status, res.StatusCode)
		}
	}
}
