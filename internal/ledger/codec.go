package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"tracker/internal/core"
)

// record is the persisted shape of a transaction. Amount is written as a JSON
// number from the exact decimal string so reloads do not lose precision.
type record struct {
	ID       string      `json:"id"`
	Type     string      `json:"type"`
	Amount   json.Number `json:"amount"`
	Category string      `json:"category"`
	Date     string      `json:"date"`
	Notes    string      `json:"notes"`
}

// EncodeSnapshot serializes transactions in order.
func EncodeSnapshot(txs []core.Transaction) ([]byte, error) {
	out := make([]record, len(txs))
	for i, t := range txs {
		out[i] = record{
			ID:       t.ID,
			Type:     string(t.Type),
			Amount:   json.Number(t.Amount.String()),
			Category: t.Category,
			Date:     t.Date.String(),
			Notes:    t.Notes,
		}
	}
	return json.Marshal(out)
}

// DecodeSnapshot parses a persisted transaction list. An empty payload is an empty list.
func DecodeSnapshot(data []byte) ([]core.Transaction, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var in []record
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}

	txs := make([]core.Transaction, 0, len(in))
	for i, r := range in {
		typ, err := core.ParseTransactionType(r.Type)
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", i, r.ID, err)
		}
		amount, err := decimal.NewFromString(r.Amount.String())
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", i, r.ID, core.ErrInvalidAmount)
		}
		date, err := core.ParseDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", i, r.ID, err)
		}
		txs = append(txs, core.Transaction{
			ID:       r.ID,
			Type:     typ,
			Amount:   amount,
			Category: r.Category,
			Date:     date,
			Notes:    r.Notes,
		})
	}
	return txs, nil
}
