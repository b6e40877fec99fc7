package models

import "time"

// Transaction is a single income or expense record. Amounts are stored
// in cents to avoid float error; the type tag determines the sign in
// aggregations. Date is normalized to midnight UTC (day granularity).
type Transaction struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"index;not null"`
	CategoryID  *uint     `gorm:"index"`
	Type        string    `gorm:"size:16;index;not null"` // INCOME / EXPENSE
	AmountCents int64     `gorm:"not null"`
	Description string    `gorm:"size:255"`
	Date        time.Time `gorm:"index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	User     User      `gorm:"constraint:OnDelete:CASCADE"`
	Category *Category `gorm:"constraint:OnDelete:SET NULL"`
}
