package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-01-15", "2024-01-15", true},
		{" 2024-12-31 ", "2024-12-31", true},
		{"2024-02-01T23:30:00.000Z", "2024-02-01", true},
		{"2024-13-01", "", false},
		{"15/01/2024", "", false},
		{"", "", false},
	}
	for i, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || d.String() != tc.want {
				t.Fatalf("case %d: expected %s, got %s (err=%v)", i, tc.want, d, err)
			}
		} else if err == nil {
			t.Fatalf("case %d: expected error for %q", i, tc.in)
		}
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2024, 1, 15)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2024-01-15"` {
		t.Fatalf("unexpected json %s", b)
	}
	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Fatalf("round trip mismatch: %v != %v", back, d)
	}
	if err := json.Unmarshal([]byte(`"nope"`), &back); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestParseTransactionType(t *testing.T) {
	if got, err := ParseTransactionType("Income"); err != nil || got != Income {
		t.Fatalf("expected income, got %q (err=%v)", got, err)
	}
	if got, err := ParseTransactionType("expense"); err != nil || got != Expense {
		t.Fatalf("expected expense, got %q (err=%v)", got, err)
	}
	if _, err := ParseTransactionType("transfer"); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestThemeToggle(t *testing.T) {
	if ThemeLight.Toggle() != ThemeDark || ThemeDark.Toggle() != ThemeLight {
		t.Fatalf("toggle should flip between light and dark")
	}
	if _, err := ParseTheme("blue"); !errors.Is(err, ErrInvalidTheme) {
		t.Fatalf("expected ErrInvalidTheme, got %v", err)
	}
}

func TestDraftValidate(t *testing.T) {
	good := Draft{
		Type:     Expense,
		Amount:   decimal.NewFromInt(10),
		Category: "food",
		Date:     NewDate(2024, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		d    Draft
		want error
	}{
		{Draft{Type: "x", Amount: decimal.NewFromInt(1), Category: "c", Date: NewDate(2024, 1, 1)}, ErrInvalidType},
		{Draft{Type: Income, Amount: decimal.NewFromInt(-1), Category: "c", Date: NewDate(2024, 1, 1)}, ErrInvalidAmount},
		{Draft{Type: Income, Amount: decimal.NewFromInt(1), Category: " ", Date: NewDate(2024, 1, 1)}, ErrMissingCategory},
		{Draft{Type: Income, Amount: decimal.NewFromInt(1), Category: "c"}, ErrMissingDate},
	}
	for i, tc := range bads {
		if err := tc.d.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestCatalogResolve(t *testing.T) {
	c := DefaultCatalog()
	if c.Len() != 11 {
		t.Fatalf("expected 11 seeded categories, got %d", c.Len())
	}
	food := Resolve(c, "food")
	if food.Name != "Food" || food.Color != "#FF6384" {
		t.Fatalf("unexpected food category: %+v", food)
	}
	unknown := Resolve(c, "crypto")
	if unknown.Name != UncategorizedName || unknown.Color != UncategorizedColor || unknown.ID != "crypto" {
		t.Fatalf("unexpected fallback: %+v", unknown)
	}
	if _, ok := c.Lookup("crypto"); ok {
		t.Fatalf("lookup of unknown id should fail")
	}
}

func TestNewCatalogIgnoresDuplicates(t *testing.T) {
	c := NewCatalog([]Category{{ID: "a", Name: "A"}, {ID: "a", Name: "B"}, {ID: "b", Name: "C"}})
	if c.Len() != 2 {
		t.Fatalf("expected 2 categories, got %d", c.Len())
	}
	if got, _ := c.Lookup("a"); got.Name != "A" {
		t.Fatalf("first definition should win, got %+v", got)
	}
}
