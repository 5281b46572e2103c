// Package notify implements the transient per-visitor message slot used by
// forms and pages to report the outcome of mutations. One message is live at
// a time; a newer message replaces the current one without queueing. The slot
// lives in the visitor's session, so a flash raised in one session is never
// visible in another.
package notify

import (
	"context"
	"encoding/json"
	"time"
)

// Severity grades a notification for display.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// DismissReason distinguishes a deliberate close action from an incidental
// outside interaction. Incidental dismissals are ignored so a stray click
// does not swallow a message the visitor has not read.
type DismissReason string

const (
	ReasonExplicit   DismissReason = "explicit"
	ReasonIncidental DismissReason = "incidental"
)

// DefaultTTL is how long a notification stays visible without interaction.
const DefaultTTL = 6 * time.Second

// Notification is a transient outcome message.
type Notification struct {
	Message  string
	Severity Severity
}

// Storage persists the slot between requests. It matches the contract the
// session store uses for the token and user record, so the same backing
// session carries all per-visitor state.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
	Delete(ctx context.Context, key string)
}

const storageKey = "flash"

type record struct {
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`
	Expires  time.Time `json:"expires"`
}

// Slot holds at most one live notification for a single visitor and expires
// it after a fixed duration. Show is last-write-wins.
type Slot struct {
	storage Storage
	ttl     time.Duration
	now     func() time.Time
}

// NewSlot builds a Slot over the visitor's storage. A non-positive ttl falls
// back to DefaultTTL.
func NewSlot(storage Storage, ttl time.Duration) *Slot {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Slot{storage: storage, ttl: ttl, now: time.Now}
}

// Show publishes a notification, replacing any message currently visible
// and restarting the auto-dismiss clock.
func (s *Slot) Show(ctx context.Context, message string, severity Severity) {
	encoded, err := json.Marshal(record{
		Message:  message,
		Severity: severity,
		Expires:  s.now().Add(s.ttl),
	})
	if err != nil {
		return
	}
	s.storage.Set(ctx, storageKey, string(encoded))
}

// Current returns the live notification, if any. An expired or unreadable
// record is cleared and reported as absent.
func (s *Slot) Current(ctx context.Context) (Notification, bool) {
	raw, ok := s.storage.Get(ctx, storageKey)
	if !ok {
		return Notification{}, false
	}
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		s.storage.Delete(ctx, storageKey)
		return Notification{}, false
	}
	if !s.now().Before(rec.Expires) {
		s.storage.Delete(ctx, storageKey)
		return Notification{}, false
	}
	return Notification{Message: rec.Message, Severity: rec.Severity}, true
}

// Dismiss closes the live notification. Incidental dismissals are no-ops.
func (s *Slot) Dismiss(ctx context.Context, reason DismissReason) {
	if reason == ReasonIncidental {
		return
	}
	s.storage.Delete(ctx, storageKey)
}

// TTL exposes the configured display duration, for render layers that
// mirror the auto-dismiss client-side.
func (s *Slot) TTL() time.Duration {
	return s.ttl
}
