package models

import "time"

// Transaction types for an expense record.
const (
	TransactionCredit = "credit"
	TransactionDebit  = "debit"
)

// Expense represents a financial expense record. Date is kept as the
// free-form string the client submitted; analytics parse it on read.
type Expense struct {
	ID              string  `json:"id"`
	Amount          float64 `json:"amount"`
	Date            string  `json:"date"`
	Category        string  `json:"category"`
	Description     string  `json:"description,omitempty"`
	UserID          string  `json:"userId"`
	TransactionType string  `json:"transactionType"`
}

// User represents a user account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// PasswordResetOtp is a single issued reset code. A record is never
// deleted; it is retired by setting Used.
type PasswordResetOtp struct {
	ID        string
	Email     string
	OtpHash   string
	ExpiresAt time.Time
	Used      bool
	Attempts  int
	CreatedAt time.Time
}

// Active reports whether the OTP can still be verified at the given time.
func (o *PasswordResetOtp) Active(now time.Time) bool {
	return !o.Used && now.Before(o.ExpiresAt)
}

// CategoryTotal is one row of the category spending breakdown.
type CategoryTotal struct {
	Category   string  `json:"category"`
	TotalSpent float64 `json:"totalSpent"`
}

// MonthTotal is one point of the monthly spending trend.
type MonthTotal struct {
	Month      string  `json:"month"` // "month-year", e.g. "5-2024"
	TotalSpent float64 `json:"totalSpent"`
}
