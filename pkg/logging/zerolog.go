package logging

import (
	"context"
	"io"

	"github.com/rs/zerolog"
)

// zeroLogger adapts a zerolog.Logger to the Logger interface
type zeroLogger struct {
	z      zerolog.Logger
	closer io.Closer
}

func newZeroLogger(w io.Writer, level Level, closer io.Closer) *zeroLogger {
	return &zeroLogger{
		z:      zerolog.New(w).Level(level.zerolog()).With().Timestamp().Logger(),
		closer: closer,
	}
}

func (l *zeroLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.z.Debug().Fields(map[string]interface{}(fields)).Msg(msg)
}

func (l *zeroLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.z.Info().Fields(map[string]interface{}(fields)).Msg(msg)
}

func (l *zeroLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.z.Warn().Fields(map[string]interface{}(fields)).Msg(msg)
}

func (l *zeroLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	l.z.Error().Err(err).Fields(map[string]interface{}(fields)).Msg(msg)
}

// WithFields returns a child logger sharing the same output
func (l *zeroLogger) WithFields(fields Fields) Logger {
	return &zeroLogger{
		z:      l.z.With().Fields(map[string]interface{}(fields)).Logger(),
		closer: nil,
	}
}

func (l *zeroLogger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}
