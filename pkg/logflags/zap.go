package logflags

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func makeLogger(flag bool, layer string) *zap.SugaredLogger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:      "timestamp",
		LevelKey:     "level",
		NameKey:      "layer",
		MessageKey:   "message",
		CallerKey:    "caller",
		EncodeLevel:  zapcore.CapitalLevelEncoder,
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
		EncodeName:   zapcore.FullNameEncoder,
	}

	level := zapcore.ErrorLevel
	if flag {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.NewMultiWriteSyncer(zapcore.AddSync(logOut)),
		level,
	)

	return zap.New(core, zap.AddCaller()).Named(layer).Sugar()
}

// ProwlerLogger returns a logger for the scanner.
func ProwlerLogger() Logger {
	return makeLogger(prowler, "prowler")
}

// HTTPLogger returns a logger for the http server.
func HTTPLogger() Logger {
	return makeLogger(http, "http")
}

// GRPCLogger returns a logger for the gRPC server.
func GRPCLogger() Logger {
	return makeLogger(grpc, "grpc")
}
