// Package log provides structured logging for wie using zap.
package log

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with wie-specific helpers.
type Logger struct {
	*zap.Logger
	onTrace func(pc uint32, category, name, detail string) // trace callback for events
}

var (
	// L is the global logger instance.
	L    *Logger
	once sync.Once
)

// Init initializes the global logger with the given configuration.
// Safe to call multiple times; only the first call takes effect.
func Init(debug bool) {
	once.Do(func() {
		L = New(debug)
	})
}

// New creates a new Logger instance.
func New(debug bool) *Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}

	// ISO8601 timestamps under "ts" in both modes
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// Fallback to no-op if config fails
		logger = zap.NewNop()
	}

	return &Logger{Logger: logger}
}

// NewNop creates a no-op logger for testing.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// SetOnTrace sets the trace callback for trap events.
func (l *Logger) SetOnTrace(fn func(pc uint32, category, name, detail string)) {
	l.onTrace = fn
}

// Trace logs a trap dispatch and calls the trace callback if set.
// This is the primary method for registered functions to report activity.
func (l *Logger) Trace(pc uint32, category, name, detail string) {
	if l.onTrace != nil {
		l.onTrace(pc, category, name, detail)
	}

	l.Debug("trap",
		zap.String("cat", category),
		zap.String("fn", name),
		zap.String("detail", detail),
		zap.String("pc", Hex(pc)),
	)
}

// ClassLoad logs a guest class load with its pointer identity.
func (l *Logger) ClassLoad(name string, ptr uint32) {
	l.Info("class loaded",
		zap.String("class", name),
		Ptr("ptr", ptr),
	)
}

// Instantiate logs a guest instance allocation.
func (l *Logger) Instantiate(class string, ptr uint32) {
	l.Info("instantiated",
		zap.String("class", class),
		Ptr("ptr", ptr),
	)
}

// MethodCall logs a bridge method call.
func (l *Logger) MethodCall(class, name, signature string) {
	l.Info("call",
		zap.String("class", class),
		zap.String("method", name),
		zap.String("sig", signature),
	)
}

// WithCategory returns a logger with the category field preset.
func (l *Logger) WithCategory(category string) *Logger {
	return &Logger{
		Logger:  l.Logger.With(zap.String("cat", category)),
		onTrace: l.onTrace,
	}
}

// Hex formats a guest address as hex string for logging.
func Hex(addr uint32) string {
	return "0x" + hexString(uint64(addr))
}

func hexString(v uint64) string {
	const digits = "0123456789abcdef"
	if v == 0 {
		return "0"
	}
	buf := make([]byte, 16)
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = digits[v&0xf]
		v >>= 4
	}
	return string(buf[i:])
}

// Field helpers for common patterns.

// Addr creates an address field.
func Addr(addr uint32) zap.Field {
	return zap.String("addr", Hex(addr))
}

// Size creates a size field.
func Size(size uint32) zap.Field {
	return zap.Uint32("size", size)
}

// Ptr creates a pointer field.
func Ptr(name string, ptr uint32) zap.Field {
	return zap.String(name, Hex(ptr))
}

// Fn creates a function name field.
func Fn(name string) zap.Field {
	return zap.String("fn", name)
}
