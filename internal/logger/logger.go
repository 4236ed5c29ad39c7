package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/samvad-hq/jsonhttp/internal/config"
)

// Logger is the structured logging surface shared by the app packages.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
	// With returns a logger that adds key=value to every entry.
	With(key string, value interface{}) Logger
}

// global is set by Init and backs the package-level helpers.
var global *ZapLogger

// Init builds the process logger: JSON to stderr at cfg.LogLevel, tagged with app and env.
func Init(cfg *config.Config) (*ZapLogger, error) {
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.Lock(os.Stderr), level)
	l := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel)).
		With(zap.String("app", cfg.AppName), zap.String("env", cfg.Env))

	global = &ZapLogger{l: l}
	return global, nil
}

// parseLevel accepts zap level names plus "warning"; empty means info.
func parseLevel(s string) (zapcore.Level, error) {
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case "":
		return zapcore.InfoLevel, nil
	case "warning":
		return zapcore.WarnLevel, nil
	}
	level, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("log level %q: %w", s, err)
	}
	return level, nil
}

// New wraps an existing zap logger.
func New(l *zap.Logger) *ZapLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapLogger{l: l}
}

// Close flushes the process logger.
func Close() error {
	if global == nil {
		return nil
	}
	return global.l.Sync()
}

// ZapLogger logs objects as a single structured field named by key.
type ZapLogger struct {
	l *zap.Logger
}

func (z *ZapLogger) InfoObj(msg, key string, obj interface{})  { z.l.Info(msg, zap.Any(key, obj)) }
func (z *ZapLogger) DebugObj(msg, key string, obj interface{}) { z.l.Debug(msg, zap.Any(key, obj)) }
func (z *ZapLogger) WarnObj(msg, key string, obj interface{})  { z.l.Warn(msg, zap.Any(key, obj)) }
func (z *ZapLogger) ErrorObj(msg, key string, obj interface{}) { z.l.Error(msg, zap.Any(key, obj)) }

func (z *ZapLogger) With(key string, value interface{}) Logger {
	return &ZapLogger{l: z.l.With(zap.Any(key, value))}
}

// NopLogger discards everything.
type NopLogger struct{}

func (*NopLogger) InfoObj(string, string, interface{})  {}
func (*NopLogger) DebugObj(string, string, interface{}) {}
func (*NopLogger) WarnObj(string, string, interface{})  {}
func (*NopLogger) ErrorObj(string, string, interface{}) {}

func (n *NopLogger) With(string, interface{}) Logger { return n }

// InfoObj logs through the process logger; it is a no-op before Init.
func InfoObj(msg, key string, obj interface{}) {
	if global != nil {
		global.InfoObj(msg, key, obj)
	}
}

// ErrorObj logs through the process logger; it is a no-op before Init.
func ErrorObj(msg, key string, obj interface{}) {
	if global != nil {
		global.ErrorObj(msg, key, obj)
	}
}
