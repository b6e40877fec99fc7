package models

import "time"

// Type tags shared by categories and transactions.
const (
	TypeIncome  = "INCOME"
	TypeExpense = "EXPENSE"
)

// DefaultCategoryColor is used when a category is created without one.
const DefaultCategoryColor = "#6366F1"

// Category represents an income/expense category. Its type is fixed at
// creation.
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	Name      string `gorm:"size:64;not null"`
	Type      string `gorm:"size:16;index;not null"` // INCOME / EXPENSE
	Color     string `gorm:"size:16"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}

// ValidType reports whether t is one of the known type tags.
func ValidType(t string) bool {
	return t == TypeIncome || t == TypeExpense
}
