package audit

import (
	"context"
	"time"

	"downloadgate/pkg/platform/agent"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance:
	// a download was granted against recorded consent.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to abuse monitoring:
	// rejected origins, honeypot hits, rate limiting.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and operational visibility.
	CategoryOperations EventCategory = "operations"
)

type AuditEvent string

const (
	EventDownloadGranted   AuditEvent = "download_granted"
	EventSubmissionInvalid AuditEvent = "submission_invalid"
	EventHoneypotTriggered AuditEvent = "honeypot_triggered"
	EventRateLimitExceeded AuditEvent = "rate_limit_exceeded"
	EventOriginRejected    AuditEvent = "origin_rejected"
	EventStoreFailed       AuditEvent = "store_failed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventDownloadGranted:   CategoryCompliance,
	EventHoneypotTriggered: CategorySecurity,
	EventRateLimitExceeded: CategorySecurity,
	EventOriginRejected:    CategorySecurity,
	EventSubmissionInvalid: CategoryOperations,
	EventStoreFailed:       CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is emitted from domain logic to capture key actions. It never carries
// the client address, its hash, names or email.
type Event struct {
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	Action    string        `json:"action"`
	// Reason is the public error code for rejections.
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	// RecordID is set for granted downloads only.
	RecordID      string        `json:"record_id,omitempty"`
	Purposes      []string      `json:"purposes,omitempty"`
	Affiliations  []string      `json:"affiliations,omitempty"`
	Lang          string        `json:"lang,omitempty"`
	PluginVersion string        `json:"plugin_version,omitempty"`
	Origin        string        `json:"origin,omitempty"`
	Client        agent.Summary `json:"client"`
}

// NewEvent fills Category from action and defaults Timestamp.
func NewEvent(action AuditEvent, at time.Time) Event {
	if at.IsZero() {
		at = time.Now()
	}
	return Event{
		Category:  action.Category(),
		Timestamp: at.UTC(),
		Action:    string(action),
	}
}

// Sink delivers events to their final destination.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Emitter is what request-path code depends on. Emit must not block.
type Emitter interface {
	Emit(ctx context.Context, event Event)
}

// Discard is an Emitter that drops everything.
type Discard struct{}

func (Discard) Emit(context.Context, Event) {}
