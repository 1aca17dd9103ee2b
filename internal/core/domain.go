package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO-8601 calendar day layout used for storage and export.
const DateLayout = "2006-01-02"

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type (
	TransactionType string

	Theme string

	// Date is a calendar day without time-of-day or timezone semantics.
	Date struct {
		time.Time
	}

	// Draft carries the fields of a transaction before the store assigns an id.
	Draft struct {
		Type     TransactionType
		Amount   decimal.Decimal
		Category string // Category id, may be absent from the catalog
		Date     Date
		Notes    string
	}

	Transaction struct {
		ID       string          `json:"id"`
		Type     TransactionType `json:"type"`
		Amount   decimal.Decimal `json:"amount"`
		Category string          `json:"category"`
		Date     Date            `json:"date"`
		Notes    string          `json:"notes"`
	}
)

var (
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidTheme    = errors.New("invalid theme")
	ErrMissingAmount   = errors.New("amount is required")
	ErrMissingCategory = errors.New("category is required")
	ErrMissingDate     = errors.New("date is required")
)

// ParseTransactionType accepts "income" or "expense", case-insensitively.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(s))) {
	case Income:
		return Income, nil
	case Expense:
		return Expense, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
}

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

func (t TransactionType) String() string {
	return string(t)
}

// ParseTheme accepts "light" or "dark".
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTheme, s)
}

// Toggle returns the opposite theme. Unknown values toggle to dark, as light is the default.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

func (t Theme) String() string {
	return string(t)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string. A full RFC 3339 timestamp is accepted too
// and truncated to its calendar day as written, without timezone conversion.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrMissingDate
	}
	if len(s) > len(DateLayout) && s[len(DateLayout)] == 'T' {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// String returns the ISO calendar day, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Compare orders dates by calendar day.
func (d Date) Compare(other Date) int {
	return d.Time.Compare(other.Time)
}

// MarshalJSON overrides the promoted time.Time encoding with the calendar day.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, b)
	}
	return d.UnmarshalText([]byte(s))
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate performs the presence checks the entry form enforces before a draft
// reaches the store. Content beyond that is not validated.
func (d Draft) Validate() error {
	if !d.Type.IsValid() {
		return ErrInvalidType
	}
	if d.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(d.Category) == "" {
		return ErrMissingCategory
	}
	if d.Date.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// WithID builds the stored record for a draft.
func (d Draft) WithID(id string) Transaction {
	return Transaction{
		ID:       id,
		Type:     d.Type,
		Amount:   d.Amount,
		Category: d.Category,
		Date:     d.Date,
		Notes:    d.Notes,
	}
}

// Equal compares two transactions field by field, amounts by decimal value.
func (t Transaction) Equal(other Transaction) bool {
	return t.ID == other.ID &&
		t.Type == other.Type &&
		t.Amount.Equal(other.Amount) &&
		t.Category == other.Category &&
		t.Date.Equal(other.Date.Time) &&
		t.Notes == other.Notes
}
