package data

import (
	"log/slog"

	"github.com/galzzz/drops-exporter/internal/biz/domain"
	"github.com/galzzz/drops-exporter/internal/biz/repo"
)

// logSink writes user-visible lines to the log
type logSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink that logs every message
func NewLogSink(logger *slog.Logger) repo.NotificationSink {
	return &logSink{logger: logger.With("component", "Chat")}
}

func (s *logSink) Notify(channel domain.ChatChannel, sender, message string) {
	s.logger.Info(message, "channel", string(channel), "sender", sender)
}

// multiSink fans a message out to several sinks
type multiSink []repo.NotificationSink

// NewMultiSink combines sinks; nil entries are skipped
func NewMultiSink(sinks ...repo.NotificationSink) repo.NotificationSink {
	var out multiSink
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m multiSink) Notify(channel domain.ChatChannel, sender, message string) {
	for _, s := range m {
		s.Notify(channel, sender, message)
	}
}
