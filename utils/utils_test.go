package utils

import (
	"net"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"
)

func TestCheckPid(t *testing.T) {
	tests := []struct {
		pid  string
		want bool
	}{
		{strconv.Itoa(os.Getpid()), true},
		{"0", false},
		{"-1", false},
		{"self", false},
		{"../1", false},
	}
	for _, tt := range tests {
		if got := CheckPid(tt.pid); got != tt.want {
			t.Fatalf("CheckPid(%q) = %v, want %v", tt.pid, got, tt.want)
		}
	}
}

func TestTelnet(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	if !Telnet(addr, time.Second) {
		t.Fatalf("expected %s to accept connections", addr)
	}
	l.Close()
	if Telnet(addr, time.Second) {
		t.Fatalf("expected %s to be closed", addr)
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "http://example.com/smug?x=1", nil)
	r.RemoteAddr = "10.0.0.2:4321"
	if got := GetClientIP(r); got != "10.0.0.2" {
		t.Fatalf("unexpected client ip %q", got)
	}
	if got := GetFullURL(r); got != "http://example.com/smug?x=1" {
		t.Fatalf("unexpected url %q", got)
	}

	r.Header.Set("X-Forwarded-For", "192.0.2.1, 10.0.0.1")
	if got := GetClientIP(r); got != "192.0.2.1" {
		t.Fatalf("unexpected forwarded ip %q", got)
	}
}

func TestMD5(t *testing.T) {
	if got := MD5("POST:/exec"); got != MD5("POST:/exec") || got == MD5("GET:/exec") || len(got) != 32 {
		t.Fatalf("unexpected digest %q", got)
	}
}
