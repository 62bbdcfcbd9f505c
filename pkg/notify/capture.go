package notify

import (
	"context"
	"sync"
)

// Capture records notifications for assertions in tests.
type Capture struct {
	Err error

	mu     sync.Mutex
	events []Notification
}

// Notify records the notification and returns any configured error.
func (c *Capture) Notify(_ context.Context, n Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, Normalize(n))
	return c.Err
}

// Events returns a copy of the recorded notifications.
func (c *Capture) Events() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.events...)
}

// Len returns the number of recorded notifications.
func (c *Capture) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}
