// backend/src/services/transaction_service.go
package services

import (
	"context"
	"time"

	"github.com/username/opentx/backend/src/chains"
	"github.com/username/opentx/backend/src/logger"
	"github.com/username/opentx/backend/src/models"
	"github.com/username/opentx/backend/src/pagination"
)

type transactionServiceImpl struct {
	engine   *pagination.Engine
	pageSize int
}

// NewTransactionService creates the service behind POST /transactions.
func NewTransactionService(engine *pagination.Engine, pageSize int) TransactionService {
	return &transactionServiceImpl{engine: engine, pageSize: pageSize}
}

// FetchPage runs exactly one fetch+normalize cycle at the given cursor.
// The interactive endpoint commits to the transfers phase only: rows that do
// not represent a human-meaningful movement of value are never emitted.
func (s *transactionServiceImpl) FetchPage(ctx context.Context, chain chains.Chain, address, cursor string) (*PageResult, error) {
	start := time.Now()

	cur, err := pagination.ParseCursor(cursor)
	if err != nil {
		return nil, err
	}

	opts := pagination.TransfersOnly(s.pageSize, 0)
	events, next, err := s.engine.Step(ctx, chain, address, cur, opts)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []models.TaxEvent{}
	}

	result := &PageResult{Events: events}
	if next != nil {
		c := next.String()
		result.NextCursor = &c
	}

	logger.L.Debug("FetchPage complete",
		"chain", chain.ID, "cursor", cur.String(), "events", len(events),
		"hasMore", next != nil, "duration", time.Since(start))
	return result, nil
}
