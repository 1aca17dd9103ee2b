package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"tracker/internal/core"
	"tracker/internal/query"
)

func parserFor(body string) *RequestBodyParser {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	return NewRequestBodyParser(req)
}

func TestRequestBodyParser(t *testing.T) {
	t.Run("json with numbers", func(t *testing.T) {
		p := parserFor(`{"amount": 12345678901234567.89, "notes": "  hi\u0007  ", "flag": true}`)
		if err := p.Parse(); err != nil {
			t.Fatalf("Parse() error: %v", err)
		}
		if !p.IsJSON() {
			t.Error("IsJSON() = false")
		}
		if got := p.Get("amount"); got != "12345678901234567.89" {
			t.Errorf("amount = %q, want exact digits", got)
		}
		if got := p.Get("notes"); got != "hi" {
			t.Errorf("Get(notes) = %q, want control chars stripped and trimmed", got)
		}
		if got := p.Raw("notes"); got != "  hi\u0007  " {
			t.Errorf("Raw(notes) = %q, want the value as sent", got)
		}
		if got := p.Get("flag"); got != "true" {
			t.Errorf("flag = %q", got)
		}
		if p.Raw("missing") != "" {
			t.Error("Raw(missing) should be empty")
		}
	})

	t.Run("form", func(t *testing.T) {
		p := parserFor("amount=3%2C50&category=food")
		if err := p.Parse(); err != nil {
			t.Fatalf("Parse() error: %v", err)
		}
		if p.IsJSON() {
			t.Error("IsJSON() = true for form body")
		}
		if p.Get("amount") != "3,50" || p.Get("category") != "food" {
			t.Errorf("unexpected form values")
		}
	})

	t.Run("empty", func(t *testing.T) {
		p := parserFor("")
		if err := p.Parse(); err != nil {
			t.Fatalf("Parse() error: %v", err)
		}
		if p.Get("anything") != "" {
			t.Error("expected empty value")
		}
	})

	t.Run("malformed json is remembered", func(t *testing.T) {
		p := parserFor(`{"a":`)
		if p.Parse() == nil || p.Parse() == nil {
			t.Error("Parse() expected error on both calls")
		}
	})
}

func TestParseDraft(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		check   func(t *testing.T, d core.Draft)
	}{
		{
			name: "defaults to expense",
			body: `{"amount":"9.99","category":"bills","date":"2024-04-01"}`,
			check: func(t *testing.T, d core.Draft) {
				if d.Type != core.Expense || d.Amount.String() != "9.99" || d.Date.String() != "2024-04-01" {
					t.Errorf("draft = %+v", d)
				}
			},
		},
		{
			name: "timestamp date truncated",
			body: `{"type":"INCOME","amount":1,"category":"gift","date":"2024-04-01T23:30:00Z"}`,
			check: func(t *testing.T, d core.Draft) {
				if d.Type != core.Income || d.Date.String() != "2024-04-01" {
					t.Errorf("draft = %+v", d)
				}
			},
		},
		{name: "missing amount", body: `{"category":"x","date":"2024-01-01"}`, wantErr: core.ErrMissingAmount},
		{name: "blank category", body: `{"amount":"1","category":"   ","date":"2024-01-01"}`, wantErr: core.ErrMissingCategory},
		{name: "missing date", body: `{"amount":"1","category":"x"}`, wantErr: core.ErrMissingDate},
		{name: "bad type", body: `{"type":"x","amount":"1","category":"x","date":"2024-01-01"}`, wantErr: core.ErrInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDraft(parserFor(tt.body))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseDraft() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDraft() unexpected error: %v", err)
			}
			tt.check(t, d)
		})
	}
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter(url.Values{})
	if err != nil {
		t.Fatalf("ParseFilter() error: %v", err)
	}
	if f.Type != query.TypeAll || f.Category != query.All || f.Search != "" {
		t.Errorf("empty filter = %+v", f)
	}

	f, err = ParseFilter(url.Values{"type": {"income"}, "category": {"salary"}, "q": {"  bonus "}})
	if err != nil {
		t.Fatalf("ParseFilter() error: %v", err)
	}
	if f.Type != query.TypeIncome || f.Category != "salary" || f.Search != "  bonus " {
		t.Errorf("filter = %+v", f)
	}

	if _, err := ParseFilter(url.Values{"type": {"both"}}); !errors.Is(err, core.ErrInvalidType) {
		t.Errorf("ParseFilter(both) error = %v", err)
	}
}

func TestErrorStatus(t *testing.T) {
	if errorStatus(core.ErrMissingDate) != http.StatusUnprocessableEntity {
		t.Error("validation error should map to 422")
	}
	if errorStatus(errors.New("boom")) != http.StatusBadRequest {
		t.Error("other errors should map to 400")
	}
	if errorStatus(fmt.Errorf("malformed body: %w", ErrBodyTooLarge)) != http.StatusRequestEntityTooLarge {
		t.Error("oversized body should map to 413")
	}
}

func TestParseFilterKeepsWhitespaceSearch(t *testing.T) {
	f, err := ParseFilter(url.Values{"q": {" "}})
	if err != nil {
		t.Fatalf("ParseFilter() error: %v", err)
	}
	if f.Search != " " {
		t.Fatalf("Search = %q, want a single space", f.Search)
	}

	txs := []core.Transaction{
		{ID: "1", Type: core.Expense, Category: "food", Date: core.NewDate(2024, 1, 1), Notes: "lunch"},
		{ID: "2", Type: core.Expense, Category: "food", Date: core.NewDate(2024, 1, 2), Notes: "team lunch"},
	}
	got := query.Apply(txs, f)
	if len(got) != 1 || got[0].ID != "2" {
		t.Errorf("Apply(q=\" \") = %+v, want only the note containing a space", got)
	}
}

func TestParseDraftKeepsNotesVerbatim(t *testing.T) {
	notes := "  tab\there\u0001 end  "
	body := url.Values{
		"amount":   {"5"},
		"category": {"food"},
		"date":     {"2024-02-01"},
		"notes":    {notes},
	}.Encode()

	d, err := ParseDraft(parserFor(body))
	if err != nil {
		t.Fatalf("ParseDraft() error: %v", err)
	}
	if d.Notes != notes {
		t.Errorf("Notes = %q, want %q", d.Notes, notes)
	}
}

func TestParseDraftRejectsOversizedBody(t *testing.T) {
	notes := strings.Repeat("x", maxBodyBytes+1024) + "END"
	body := url.Values{
		"amount":   {"5"},
		"category": {"food"},
		"date":     {"2024-02-01"},
		"notes":    {notes},
	}.Encode()

	_, err := ParseDraft(parserFor(body))
	if !errors.Is(err, ErrBodyTooLarge) {
		t.Fatalf("ParseDraft() error = %v, want ErrBodyTooLarge", err)
	}
	if errorStatus(err) != http.StatusRequestEntityTooLarge {
		t.Errorf("errorStatus() = %d, want 413", errorStatus(err))
	}
}

func TestParseDraftAcceptsBodyAtLimit(t *testing.T) {
	prefix := url.Values{
		"amount":   {"5"},
		"category": {"food"},
		"date":     {"2024-02-01"},
	}.Encode() + "&notes="
	body := prefix + strings.Repeat("x", maxBodyBytes-len(prefix))

	d, err := ParseDraft(parserFor(body))
	if err != nil {
		t.Fatalf("ParseDraft() error: %v", err)
	}
	if len(d.Notes) != maxBodyBytes-len(prefix) {
		t.Errorf("len(Notes) = %d, want %d", len(d.Notes), maxBodyBytes-len(prefix))
	}
}
