package logging

import (
	"context"

	"gitlab.com/tozd/go/errors"
)

type multiLogger []Logger

// Multi returns a logger that forwards every call to each of loggers.
// Nil entries are ignored.
func Multi(loggers ...Logger) Logger {
	var out multiLogger
	for _, l := range loggers {
		if l != nil {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return NewNullLogger()
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

func (m multiLogger) Debug(ctx context.Context, msg string, fields Fields) {
	for _, l := range m {
		l.Debug(ctx, msg, fields)
	}
}

func (m multiLogger) Info(ctx context.Context, msg string, fields Fields) {
	for _, l := range m {
		l.Info(ctx, msg, fields)
	}
}

func (m multiLogger) Warn(ctx context.Context, msg string, fields Fields) {
	for _, l := range m {
		l.Warn(ctx, msg, fields)
	}
}

func (m multiLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	for _, l := range m {
		l.Error(ctx, msg, err, fields)
	}
}

func (m multiLogger) WithFields(fields Fields) Logger {
	out := make(multiLogger, len(m))
	for i, l := range m {
		out[i] = l.WithFields(fields)
	}
	return out
}

func (m multiLogger) Close() error {
	var errs []error
	for _, l := range m {
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
