// Package export renders the ledger in portable formats.
package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"hesap/internal/core"
)

type csvRow struct {
	ID                string `csv:"id"`
	Date              string `csv:"date"`
	Type              string `csv:"type"`
	Category          string `csv:"category"`
	Note              string `csv:"note"`
	Amount            string `csv:"amount"`
	PerPeriodAmount   string `csv:"per_period_amount"`
	TotalInstallments int    `csv:"total_installments"`
	PaidInstallments  int    `csv:"paid_installments"`
}

// WriteTransactions streams the ledger as CSV, one row per transaction.
// Non-installment rows carry the full amount in both amount columns.
func WriteTransactions(w io.Writer, txs []core.Transaction) error {
	rows := make([]csvRow, 0, len(txs))
	for _, t := range txs {
		row := csvRow{
			ID:              t.ID.String(),
			Date:            t.Date.Format("2006-01-02 15:04"),
			Type:            string(t.Type),
			Category:        string(t.Category),
			Note:            t.Note,
			Amount:          core.FormatAmount(t.Amount),
			PerPeriodAmount: core.FormatAmount(t.EffectiveAmount()),
		}
		if t.Installments != nil {
			row.TotalInstallments = t.Installments.TotalCount
			row.PaidInstallments = t.Installments.PaidCount
		}
		rows = append(rows, row)
	}

	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("marshal csv: %w", err)
	}
	return nil
}
