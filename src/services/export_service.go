// backend/src/services/export_service.go
package services

import (
	"context"
	"time"

	"github.com/username/opentx/backend/src/chains"
	"github.com/username/opentx/backend/src/logger"
	"github.com/username/opentx/backend/src/models"
	"github.com/username/opentx/backend/src/pagination"
	"github.com/username/opentx/backend/src/processors"
)

type exportServiceImpl struct {
	engine   *pagination.Engine
	dedup    *processors.DedupProcessor
	pageSize int
	maxPages int
}

// NewExportService creates the service behind GET /export. pageSize and
// maxPages bound one session: at most maxPages pages of pageSize rows are
// fetched per phase, truncating silently beyond that.
func NewExportService(engine *pagination.Engine, dedup *processors.DedupProcessor, pageSize, maxPages int) ExportService {
	return &exportServiceImpl{
		engine:   engine,
		dedup:    dedup,
		pageSize: pageSize,
		maxPages: maxPages,
	}
}

func (s *exportServiceImpl) BuildExport(ctx context.Context, chain chains.Chain, address string, composite bool) (*ExportResult, error) {
	start := time.Now()

	opts := pagination.TransfersOnly(s.pageSize, s.maxPages)
	if composite {
		opts = pagination.Composite(s.pageSize, s.maxPages)
	}

	raw, err := s.engine.FetchAll(ctx, chain, address, opts)
	if err != nil {
		// Partial pages are dropped here: emitting an export with silently
		// missing pages would corrupt its completeness guarantee.
		return nil, err
	}

	events := s.dedup.Process(raw)
	processors.SortByDateDesc(events)
	if events == nil {
		events = []models.TaxEvent{}
	}

	logger.L.Info("Export built",
		"chain", chain.ID, "composite", composite,
		"fetched", len(raw), "deduped", len(events), "duration", time.Since(start))

	return &ExportResult{
		Events: events,
		Meta: ExportMeta{
			Count:     len(events),
			Chain:     chain.ID,
			Address:   address,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}
