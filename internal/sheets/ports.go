package sheets

import (
	"context"

	"hesap/internal/core"
)

// TransactionWriter mirrors a ledger entry to an external sheet.
type TransactionWriter interface {
	Append(ctx context.Context, t core.Transaction) (rowRef string, err error)
}
