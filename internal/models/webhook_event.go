package models

import "time"

// WebhookEvent statuses.
const (
	WebhookProcessed = "processed"
	WebhookIgnored   = "ignored"
	WebhookFailed    = "failed"
)

// WebhookEvent records every verified identity webhook envelope for the
// webhook-status diagnostics. Envelopes that fail signature checks are
// never recorded.
type WebhookEvent struct {
	ID         uint   `gorm:"primaryKey"`
	MessageID  string `gorm:"size:64;index"`
	EventType  string `gorm:"size:64;index"`
	ExternalID string `gorm:"size:64;index"`
	Status     string `gorm:"size:16;not null"`
	CreatedAt  time.Time
}
