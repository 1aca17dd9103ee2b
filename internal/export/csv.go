// Package export renders transaction sequences as downloadable CSV.
package export

import (
	"io"
	"strings"

	"tracker/internal/core"
)

const (
	FileName    = "transactions.csv"
	ContentType = "text/csv"
	Header      = "ID,Type,Amount,Category,Date,Notes"
)

// ToCSV serializes txs in the order given. Notes are always quoted with inner
// quotes doubled; every other column is a constrained token and goes out bare.
// Lines are joined with "\n" and there is no trailing newline.
func ToCSV(txs []core.Transaction) string {
	var b strings.Builder
	b.WriteString(Header)
	for _, t := range txs {
		b.WriteByte('\n')
		writeRow(&b, t)
	}
	return b.String()
}

// WriteCSV streams the same text as ToCSV to w.
func WriteCSV(w io.Writer, txs []core.Transaction) error {
	_, err := io.WriteString(w, ToCSV(txs))
	return err
}

func writeRow(b *strings.Builder, t core.Transaction) {
	b.WriteString(t.ID)
	b.WriteByte(',')
	b.WriteString(string(t.Type))
	b.WriteByte(',')
	b.WriteString(t.Amount.String())
	b.WriteByte(',')
	b.WriteString(t.Category)
	b.WriteByte(',')
	b.WriteString(t.Date.String())
	b.WriteByte(',')
	b.WriteString(quote(t.Notes))
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
