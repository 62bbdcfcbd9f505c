// Package notify defines the sink used to surface transient, non-blocking
// messages to the user (toasts in a browser, a line on a terminal). The core
// never blocks on a notification and never fails because one could not be
// delivered.
package notify

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Severity classifies a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarn    Severity = "warn"
	SeverityError   Severity = "error"
)

// Placement hints where a view should show the notification.
type Placement string

const (
	PlacementTopLeft     Placement = "top-left"
	PlacementTopRight    Placement = "top-right"
	PlacementBottomLeft  Placement = "bottom-left"
	PlacementBottomRight Placement = "bottom-right"
)

// DefaultPlacement is applied when a notification has none.
const DefaultPlacement = PlacementBottomLeft

// Notification is one user-facing message.
type Notification struct {
	Severity    Severity
	Message     string
	Placement   Placement
	Dismissible bool
	OccurredAt  time.Time
}

// Notifier receives notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc allows plain functions to satisfy Notifier.
type NotifierFunc func(ctx context.Context, n Notification) error

// Notify dispatches to the underlying function.
func (fn NotifierFunc) Notify(ctx context.Context, n Notification) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, n)
}

// Notifiers fans out notifications to zero or more sinks.
type Notifiers []Notifier

// Notify normalizes n and forwards it to every sink, returning a joined error
// if any fail. Notifications without a message are dropped.
func (ns Notifiers) Notify(ctx context.Context, n Notification) error {
	if len(ns) == 0 {
		return nil
	}

	normalized := Normalize(n)
	if normalized.Message == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for _, sink := range ns {
		if sink == nil {
			continue
		}
		if err := sink.Notify(ctx, normalized); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Normalize trims the message and fills in placement, severity and timestamp.
func Normalize(n Notification) Notification {
	out := n
	out.Message = strings.TrimSpace(n.Message)
	if strings.TrimSpace(string(out.Severity)) == "" {
		out.Severity = SeverityInfo
	}
	if strings.TrimSpace(string(out.Placement)) == "" {
		out.Placement = DefaultPlacement
	}
	if out.OccurredAt.IsZero() {
		out.OccurredAt = time.Now()
	}
	return out
}

// Nop discards every notification.
var Nop Notifier = NotifierFunc(func(context.Context, Notification) error { return nil })

// Error builds a dismissible error notification at the default placement.
func Error(message string) Notification {
	return Notification{Severity: SeverityError, Message: message, Placement: DefaultPlacement, Dismissible: true}
}

// Success builds a success notification at the default placement.
func Success(message string) Notification {
	return Notification{Severity: SeveritySuccess, Message: message, Placement: DefaultPlacement}
}
