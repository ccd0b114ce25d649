package logflags

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultLogDesc is the log destination when none is given: stderr.
const DefaultLogDesc = ""

var (
	prowler = false
	http    = false
	grpc    = false

	logOut io.WriteCloser = nopCloser{os.Stderr}
)

var errLogstrWithoutLog = errors.New("--logStr specified without --logFlag")

// Logger is the logging interface used across smug. It is satisfied by
// *zap.SugaredLogger.
type Logger interface {
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})

	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// Prowler returns true if the scanner should log at debug level.
func Prowler() bool {
	return prowler
}

// HTTP returns true if the http server should log every request.
func HTTP() bool {
	return http
}

// GRPC returns true if the gRPC server should log every call.
func GRPC() bool {
	return grpc
}

// Setup enables the layers listed in logstr and opens logDest. With flag
// unset only errors are logged and logstr must be empty.
func Setup(flag bool, logstr, logDest string) error {
	if logDest != "" {
		f, err := os.OpenFile(logDest, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("could not open log destination: %w", err)
		}
		logOut = f
	}

	if !flag {
		if logstr != "" {
			return errLogstrWithoutLog
		}
		return nil
	}

	if logstr == "" {
		logstr = "prowler"
	}
	for _, layer := range strings.Split(logstr, ",") {
		switch strings.TrimSpace(layer) {
		case "prowler":
			prowler = true
		case "http":
			http = true
		case "grpc":
			grpc = true
		}
	}
	return nil
}

// Close closes the log destination opened by Setup.
func Close() error {
	err := logOut.Close()
	logOut = nopCloser{os.Stderr}
	return err
}
