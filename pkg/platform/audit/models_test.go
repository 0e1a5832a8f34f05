package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCategory(t *testing.T) {
	assert.Equal(t, CategoryCompliance, EventDownloadGranted.Category())
	assert.Equal(t, CategorySecurity, EventRateLimitExceeded.Category())
	assert.Equal(t, CategorySecurity, EventOriginRejected.Category())
	assert.Equal(t, CategoryOperations, AuditEvent("something_else").Category())
}

func TestNewEvent(t *testing.T) {
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.FixedZone("CEST", 7200))
	e := NewEvent(EventHoneypotTriggered, at)
	assert.Equal(t, CategorySecurity, e.Category)
	assert.Equal(t, "honeypot_triggered", e.Action)
	assert.Equal(t, time.UTC, e.Timestamp.Location())
	assert.True(t, at.Equal(e.Timestamp))

	assert.False(t, NewEvent(EventStoreFailed, time.Time{}).Timestamp.IsZero())
}
