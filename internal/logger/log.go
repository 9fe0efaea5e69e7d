package logger

import (
	"io"
	"log/slog"
	"os"
)

type Logger interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string, err error)
	Debug(msg string)
}

type BlackjackLogger struct {
	logger *slog.Logger
}

func New(loggerName string) Logger {
	return NewWithWriter(loggerName, os.Stdout)
}

func NewWithWriter(loggerName string, w io.Writer) Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	})
	attrs := []slog.Attr{slog.String("logger", loggerName)}
	h := handler.WithAttrs(attrs)
	return BlackjackLogger{slog.New(h)}
}

// Discard is used by tests that don't care about log output.
func Discard() Logger {
	return NewWithWriter("discard", io.Discard)
}

func (bl BlackjackLogger) Info(msg string) {
	bl.logger.Info(msg)
}

func (bl BlackjackLogger) Warn(msg string) {
	bl.logger.Warn(msg)
}

func (bl BlackjackLogger) Error(msg string, err error) {
	if err != nil {
		e := slog.String("error", err.Error())
		bl.logger.Error(msg, e)
		return
	}
	bl.logger.Error(msg)
}

func (bl BlackjackLogger) Debug(msg string) {
	bl.logger.Debug(msg)
}
