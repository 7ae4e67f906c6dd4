// backend/src/pagination/engine.go
package pagination

import (
	"context"
	"fmt"

	"github.com/username/opentx/backend/src/chains"
	"github.com/username/opentx/backend/src/logger"
	"github.com/username/opentx/backend/src/models"
	"github.com/username/opentx/backend/src/normalize"
	"github.com/username/opentx/backend/src/subscan"
)

// Options controls one paging session.
type Options struct {
	// PageSize is the row count requested per page. A page returning fewer
	// rows than this marks its phase exhausted.
	PageSize int
	// Phases is the ordered phase policy. The primary export path runs
	// transfers only; the composite analytics view appends extrinsics.
	Phases []Phase
	// SuccessOnly drops failed records before normalization, per the product
	// rule that only successful value movement is exported.
	SuccessOnly bool
	// MaxPages caps pages fetched per phase in FetchAll. Reaching the cap
	// truncates silently. Zero means no cap.
	MaxPages int
}

// TransfersOnly is the value-movement-only policy of the primary export path.
func TransfersOnly(pageSize, maxPages int) Options {
	return Options{
		PageSize:    pageSize,
		Phases:      []Phase{PhaseTransfers},
		SuccessOnly: true,
		MaxPages:    maxPages,
	}
}

// Composite is the richer analytics policy: transfers plus extrinsic fee
// records, relying on downstream dedup to collapse overlapping hashes.
func Composite(pageSize, maxPages int) Options {
	return Options{
		PageSize: pageSize,
		Phases:   []Phase{PhaseTransfers, PhaseExtrinsics},
		MaxPages: maxPages,
	}
}

// Engine drives repeated fetch+normalize cycles across pages and phases.
// It holds no per-session state; a Cursor is the whole resumable position,
// so one Engine serves concurrent export sessions.
type Engine struct {
	client *subscan.Client
}

func NewEngine(client *subscan.Client) *Engine {
	return &Engine{client: client}
}

// Step fetches and normalizes one page at the cursor's position and returns
// the events plus the next cursor. A full page advances within the phase; a
// short page moves to the next configured phase, or to a nil cursor when the
// last phase is exhausted. Histories that are an exact page-size multiple
// cost one extra empty fetch before termination is detected; accepted.
func (e *Engine) Step(ctx context.Context, chain chains.Chain, address string, cur Cursor, opts Options) ([]models.TaxEvent, *Cursor, error) {
	if !phaseActive(opts.Phases, cur.Phase) {
		return nil, nil, fmt.Errorf("%w: phase %q not active in this session", ErrBadCursor, cur.Phase)
	}

	var events []models.TaxEvent
	var fetched int

	switch cur.Phase {
	case PhaseTransfers:
		transfers, err := e.client.Transfers(ctx, chain, address, cur.Page, opts.PageSize)
		if err != nil {
			return nil, nil, err
		}
		fetched = len(transfers)
		for _, t := range transfers {
			if opts.SuccessOnly && !t.Success {
				continue
			}
			events = append(events, normalize.Transfer(t, chain, address))
		}
	case PhaseExtrinsics:
		extrinsics, err := e.client.Extrinsics(ctx, chain, address, cur.Page, opts.PageSize)
		if err != nil {
			return nil, nil, err
		}
		fetched = len(extrinsics)
		for _, x := range extrinsics {
			if opts.SuccessOnly && !x.Success {
				continue
			}
			events = append(events, normalize.Extrinsic(x, chain, address))
		}
	default:
		return nil, nil, fmt.Errorf("%w: phase %q", ErrBadCursor, cur.Phase)
	}

	// A full page means more data may exist; raw row count decides, not the
	// post-filter event count.
	if fetched == opts.PageSize {
		return events, &Cursor{Phase: cur.Phase, Page: cur.Page + 1}, nil
	}
	return events, nextPhaseCursor(opts.Phases, cur.Phase), nil
}

// FetchAll runs Step to completion under the per-phase page cap, checking
// for cancellation between pages. On a page failure it returns the events
// already fetched along with the error; the caller decides whether partial
// data is worth keeping. A cancelled context surfaces as ctx.Err(), distinct
// from upstream failures.
func (e *Engine) FetchAll(ctx context.Context, chain chains.Chain, address string, opts Options) ([]models.TaxEvent, error) {
	if len(opts.Phases) == 0 {
		opts.Phases = []Phase{PhaseTransfers}
	}

	var all []models.TaxEvent
	cur := &Cursor{Phase: opts.Phases[0], Page: 0}

	for cur != nil {
		if err := ctx.Err(); err != nil {
			return all, err
		}

		events, next, err := e.Step(ctx, chain, address, *cur, opts)
		if err != nil {
			return all, err
		}
		all = append(all, events...)

		if next != nil && opts.MaxPages > 0 && next.Phase == cur.Phase && next.Page >= opts.MaxPages {
			// Safety ceiling: truncate this phase silently and move on.
			logger.L.Warn("Page cap reached, truncating phase",
				"chain", chain.ID, "phase", cur.Phase, "maxPages", opts.MaxPages)
			next = nextPhaseCursor(opts.Phases, cur.Phase)
		}
		cur = next
	}

	return all, nil
}

func phaseActive(phases []Phase, p Phase) bool {
	for _, ph := range phases {
		if ph == p {
			return true
		}
	}
	return false
}

// nextPhaseCursor returns the first page of the phase after p, or nil when p
// is the last configured phase.
func nextPhaseCursor(phases []Phase, p Phase) *Cursor {
	for i, ph := range phases {
		if ph == p && i+1 < len(phases) {
			return &Cursor{Phase: phases[i+1], Page: 0}
		}
	}
	return nil
}
