package data

import (
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/gen2brain/beeep"
	"golang.org/x/time/rate"

	"github.com/galzzz/drops-exporter/internal/biz/domain"
	"github.com/galzzz/drops-exporter/internal/biz/repo"
)

const desktopTitle = "Drops Exporter"

// desktopSink shows messages as desktop notifications, best effort
type desktopSink struct {
	notify  func(title, body string) error
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewDesktopSink creates a desktop notification sink. It returns nil on a
// headless Linux session, where there is nothing to show notifications on.
func NewDesktopSink(logger *slog.Logger) repo.NotificationSink {
	if runtime.GOOS == "linux" && os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		return nil
	}
	return newDesktopSink(func(title, body string) error {
		return beeep.Notify(title, body, "")
	}, logger)
}

func newDesktopSink(notify func(title, body string) error, logger *slog.Logger) *desktopSink {
	return &desktopSink{
		notify:  notify,
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 3),
		logger:  logger.With("component", "DesktopSink"),
	}
}

func (s *desktopSink) Notify(channel domain.ChatChannel, sender, message string) {
	if message == "" || !s.limiter.Allow() {
		return
	}
	go func() {
		if err := s.notify(desktopTitle, formatChatLine(sender, message)); err != nil {
			s.logger.Debug("desktop notification failed", "error", err)
		}
	}()
}
