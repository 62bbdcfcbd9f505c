package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes notifications to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify logs n at the level matching its severity.
func (l LogNotifier) Notify(ctx context.Context, n Notification) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	n = Normalize(n)
	logger.Log(ctx, levelFor(n.Severity), n.Message,
		"severity", string(n.Severity),
		"placement", string(n.Placement),
	)
	return nil
}

func levelFor(s Severity) slog.Level {
	switch s {
	case SeverityError:
		return slog.LevelError
	case SeverityWarn:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
