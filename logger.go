package cloudsecurity

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

// Logger defines an optional logging interface compatible with log/slog.
// This is the same interface used by core, validator, jwks and prooftoken,
// so one logger can be passed through the whole stack.
//
// args are alternating keys and values, as with slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NewZapLogger returns a Logger adapter for zap.SugaredLogger.
func NewZapLogger(l *zap.SugaredLogger) Logger {
	return &zapLoggerAdapter{l}
}

type zapLoggerAdapter struct{ l *zap.SugaredLogger }

func (z *zapLoggerAdapter) Debug(msg string, args ...any) { z.l.Debugw(msg, args...) }
func (z *zapLoggerAdapter) Info(msg string, args ...any)  { z.l.Infow(msg, args...) }
func (z *zapLoggerAdapter) Warn(msg string, args ...any)  { z.l.Warnw(msg, args...) }
func (z *zapLoggerAdapter) Error(msg string, args ...any) { z.l.Errorw(msg, args...) }

// NewZerologLogger returns a Logger adapter for zerolog.Logger.
func NewZerologLogger(l zerolog.Logger) Logger {
	return &zerologLoggerAdapter{l}
}

type zerologLoggerAdapter struct{ l zerolog.Logger }

func (z *zerologLoggerAdapter) Debug(msg string, args ...any) {
	z.l.Debug().Fields(fields(args)).Msg(msg)
}

func (z *zerologLoggerAdapter) Info(msg string, args ...any) {
	z.l.Info().Fields(fields(args)).Msg(msg)
}

func (z *zerologLoggerAdapter) Warn(msg string, args ...any) {
	z.l.Warn().Fields(fields(args)).Msg(msg)
}

func (z *zerologLoggerAdapter) Error(msg string, args ...any) {
	z.l.Error().Fields(fields(args)).Msg(msg)
}

// NewLogrusLogger returns a Logger adapter for logrus.FieldLogger.
func NewLogrusLogger(l logrus.FieldLogger) Logger {
	return &logrusLoggerAdapter{l}
}

type logrusLoggerAdapter struct{ l logrus.FieldLogger }

func (l *logrusLoggerAdapter) Debug(msg string, args ...any) {
	l.l.WithFields(fields(args)).Debug(msg)
}

func (l *logrusLoggerAdapter) Info(msg string, args ...any) {
	l.l.WithFields(fields(args)).Info(msg)
}

func (l *logrusLoggerAdapter) Warn(msg string, args ...any) {
	l.l.WithFields(fields(args)).Warn(msg)
}

func (l *logrusLoggerAdapter) Error(msg string, args ...any) {
	l.l.WithFields(fields(args)).Error(msg)
}

// fields turns slog style key value pairs into a map. A trailing key
// without value is kept under "!BADKEY", the way slog does it.
func fields(args []any) map[string]any {
	m := make(map[string]any, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		if i+1 == len(args) {
			m["!BADKEY"] = args[i]
			break
		}

		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}

		value := args[i+1]
		if err, isErr := value.(error); isErr {
			value = err.Error()
		}

		m[key] = value
	}

	return m
}
