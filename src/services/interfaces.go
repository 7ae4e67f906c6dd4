// backend/src/services/interfaces.go
package services

import (
	"context"

	"github.com/username/opentx/backend/src/chains"
	"github.com/username/opentx/backend/src/models"
)

// PageResult is one resumable step of transaction history. NextCursor is
// nil once every page has been consumed.
type PageResult struct {
	Events     []models.TaxEvent `json:"events"`
	NextCursor *string           `json:"nextCursor"`
}

// ExportMeta describes one completed export session.
type ExportMeta struct {
	Count     int    `json:"count"`
	Chain     string `json:"chain"`
	Address   string `json:"address"`
	Timestamp string `json:"timestamp"`
}

// ExportResult is the deduplicated, newest-first event list for one wallet.
type ExportResult struct {
	Events []models.TaxEvent `json:"data"`
	Meta   ExportMeta        `json:"meta"`
}

// TransactionService serves the cursor-driven interactive history endpoint.
type TransactionService interface {
	FetchPage(ctx context.Context, chain chains.Chain, address, cursor string) (*PageResult, error)
}

// ExportService runs the bounded multi-page fetch, dedup and sort.
// composite switches from the value-movement-only policy to the richer
// transfers+extrinsics analytics view.
type ExportService interface {
	BuildExport(ctx context.Context, chain chains.Chain, address string, composite bool) (*ExportResult, error)
}

// BalanceService is the best-effort cached account balance lookup. It never
// returns an error; upstream failure degrades to an AccountState whose
// Error field is set.
type BalanceService interface {
	GetAccountState(ctx context.Context, chain chains.Chain, address string) *models.AccountState
}
