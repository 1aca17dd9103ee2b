package core

import "github.com/shopspring/decimal"

// Totals is the income/expense/balance summary of a snapshot.
type Totals struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
}

// CategoryTotal represents expenses aggregated by category id.
type CategoryTotal struct {
	CategoryID string          `json:"category_id"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	Color      string          `json:"color"`
}

// MonthBucket is the income/expense summary for a specific year+month.
type MonthBucket struct {
	Year     int             `json:"year"`
	Month    int             `json:"month"` // 1-12
	Label    string          `json:"label"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}
