// Package notify holds the single transient notification shown to the user.
package notify

import (
	"sync"
	"time"
)

// Kind classifies a notification
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
)

// MaxMessageLen bounds a notification message in runes
const MaxMessageLen = 1000

// Default lifetimes
const (
	DefaultTTL      = 3 * time.Second
	DefaultErrorTTL = 5 * time.Second
)

// Notification is a short-lived message
type Notification struct {
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Center keeps at most one notification. A newer post replaces the older
// one; reads past ExpiresAt find nothing.
type Center struct {
	mu       sync.Mutex
	current  *Notification
	ttl      time.Duration
	errorTTL time.Duration
	now      func() time.Time
}

// NewCenter creates a center. Non-positive lifetimes fall back to the
// defaults.
func NewCenter(ttl, errorTTL time.Duration) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if errorTTL <= 0 {
		errorTTL = DefaultErrorTTL
	}
	return &Center{ttl: ttl, errorTTL: errorTTL, now: time.Now}
}

// Post replaces the current notification and returns the stored value
func (c *Center) Post(kind Kind, message string) Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	ttl := c.ttl
	if kind == KindError {
		ttl = c.errorTTL
	}
	n := Notification{
		Kind:      kind,
		Message:   truncate(message),
		ExpiresAt: c.now().Add(ttl),
	}
	c.current = &n
	return n
}

// Success posts a success notification
func (c *Center) Success(message string) Notification { return c.Post(KindSuccess, message) }

// Error posts an error notification
func (c *Center) Error(message string) Notification { return c.Post(KindError, message) }

// Info posts an info notification
func (c *Center) Info(message string) Notification { return c.Post(KindInfo, message) }

// Warning posts a warning notification
func (c *Center) Warning(message string) Notification { return c.Post(KindWarning, message) }

// Current returns the live notification at now, if any
func (c *Center) Current(now time.Time) (Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return Notification{}, false
	}
	if !now.Before(c.current.ExpiresAt) {
		c.current = nil
		return Notification{}, false
	}
	return *c.current, true
}

// Dismiss clears the current notification
func (c *Center) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= MaxMessageLen {
		return s
	}
	return string(r[:MaxMessageLen-3]) + "..."
}
