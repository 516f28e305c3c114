package admingen

import (
	"fmt"

	"go.uber.org/zap"
)

var LoggerEnabled = false

// Logger is the logging surface used by the generator and its stages.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type defaultLogger struct {
}

func (d *defaultLogger) Debug(format string, args ...any) {
	if LoggerEnabled {
		fmt.Printf("[DEBUG] "+format+"\n", args...)
	}
}

func (d *defaultLogger) Info(format string, args ...any) {
	if LoggerEnabled {
		fmt.Printf("[INFO] "+format+"\n", args...)
	}
}

func (d *defaultLogger) Warn(format string, args ...any) {
	if LoggerEnabled {
		fmt.Printf("[WARN] "+format+"\n", args...)
	}
}

func (d *defaultLogger) Error(format string, args ...any) {
	if LoggerEnabled {
		fmt.Printf("[ERROR] "+format+"\n", args...)
	}
}

func getLogger(lgrs ...Logger) Logger {
	if len(lgrs) > 0 && lgrs[0] != nil {
		return lgrs[0]
	}
	return &defaultLogger{}
}

type zapLogger struct {
	s *zap.SugaredLogger
}

// NewZapLogger adapts a zap logger to Logger.
func NewZapLogger(l *zap.Logger) Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &zapLogger{s: l.Sugar()}
}

func (z *zapLogger) Debug(format string, args ...any) { z.s.Debugf(format, args...) }
func (z *zapLogger) Info(format string, args ...any)  { z.s.Infof(format, args...) }
func (z *zapLogger) Warn(format string, args ...any)  { z.s.Warnf(format, args...) }
func (z *zapLogger) Error(format string, args ...any) { z.s.Errorf(format, args...) }
