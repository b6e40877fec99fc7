package models

import "time"

// User is the local mirror of an identity-provider account. Rows are
// created either by the identity webhook or lazily on the first
// authenticated request, always keyed by ExternalID.
type User struct {
	ID         uint   `gorm:"primaryKey"`
	ExternalID string `gorm:"size:64;uniqueIndex;not null"`
	Email      string `gorm:"size:255"`
	FirstName  string `gorm:"size:64"`
	LastName   string `gorm:"size:64"`
	ImageURL   string `gorm:"size:512"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
