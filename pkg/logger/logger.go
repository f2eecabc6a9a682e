package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type options struct {
	filePath string
	stdout   zapcore.WriteSyncer
}

// Option customizes Init.
type Option func(*options)

// WithFile tees every entry into an append-only file at path.
func WithFile(path string) Option {
	return func(o *options) { o.filePath = path }
}

// WithOutput replaces stdout as the primary sink. Mostly useful in tests.
func WithOutput(ws zapcore.WriteSyncer) Option {
	return func(o *options) { o.stdout = ws }
}

// Init builds a Zap logger with the provided level and format.
// level: debug, info, warn, error, dpanic, panic, fatal
// format: json, console
// The returned cleanup flushes buffered entries and closes the log file.
func Init(level, format string, opts ...Option) (*zap.Logger, func(), error) {
	o := options{stdout: zapcore.AddSync(os.Stdout)}
	for _, opt := range opts {
		opt(&o)
	}

	lvl := zap.InfoLevel
	if err := lvl.Set(strings.ToLower(level)); err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	enc, err := newEncoder(format)
	if err != nil {
		return nil, nil, err
	}

	cores := []zapcore.Core{zapcore.NewCore(enc, o.stdout, lvl)}
	closeFile := func() {}
	if o.filePath != "" {
		if dir := filepath.Dir(o.filePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create log dir: %w", err)
			}
		}
		sink, closeFn, err := zap.Open(o.filePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file %q: %w", o.filePath, err)
		}
		closeFile = closeFn
		cores = append(cores, zapcore.NewCore(enc.Clone(), sink, lvl))
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	cleanup := func() {
		_ = l.Sync()
		closeFile()
	}
	return l, cleanup, nil
}

func newEncoder(format string) (zapcore.Encoder, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.MessageKey = "message"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.TimeKey = "time"
	encoderCfg.LevelKey = "level"
	encoderCfg.CallerKey = "caller"
	encoderCfg.StacktraceKey = "stacktrace"
	encoderCfg.EncodeLevel = zapcore.LowercaseLevelEncoder

	switch strings.ToLower(format) {
	case "json":
		return zapcore.NewJSONEncoder(encoderCfg), nil
	case "console":
		return zapcore.NewConsoleEncoder(encoderCfg), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}
