// backend/src/processors/dedup_processor.go
package processors

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/username/opentx/backend/src/models"
	"github.com/username/opentx/backend/src/normalize"
)

// DedupProcessor collapses a flat event list (possibly spanning multiple
// pages and phases) into one entry per distinct real-world movement.
//
// Value-moving events are keyed by hash plus counterparties plus amounts: a
// hash alone is not a movement identity, since one extrinsic can carry
// several legitimate value movements (batched calls, staking reward
// distributions). Events without value legs (extrinsic fee rows, including
// the extrinsic side of a transfer) key by hash alone, and any value-moving
// event for the same hash supersedes them regardless of arrival order.
type DedupProcessor struct{}

func NewDedupProcessor() *DedupProcessor {
	return &DedupProcessor{}
}

// compositeKey is the identity of a value movement. Events without a hash
// are inherently unique and get a fresh random token so they never merge.
func compositeKey(e models.TaxEvent) string {
	if e.TxHash == "" {
		return uuid.NewString()
	}
	return strings.Join([]string{e.TxHash, e.From, e.To, e.SentQty, e.ReceivedQty}, "|")
}

// Process deduplicates events. Output order follows first appearance of
// each surviving key; a superseding event takes the slot of the fee entry
// it replaces.
func (p *DedupProcessor) Process(events []models.TaxEvent) []models.TaxEvent {
	result := make([]models.TaxEvent, 0, len(events))
	seen := make(map[string]bool)    // composite keys already kept
	claimed := make(map[string]bool) // hashes covered by a value-moving event
	feeIdx := make(map[string]int)   // hash -> slot of a kept leg-less event

	for _, e := range events {
		if e.TxHash == "" || hasValueLegs(e) {
			key := compositeKey(e)
			if seen[key] {
				continue
			}
			seen[key] = true
			if e.TxHash == "" {
				// Random key: inherently unique, never merged.
				result = append(result, e)
				continue
			}
			if idx, ok := feeIdx[e.TxHash]; ok {
				// A fee-only record is superseded the moment a genuine
				// value movement for its hash is seen.
				result[idx] = e
				delete(feeIdx, e.TxHash)
			} else {
				result = append(result, e)
			}
			claimed[e.TxHash] = true
			continue
		}

		// Leg-less records: at most one per hash, none at all once a value
		// movement has claimed the hash. Among leg-less records a
		// transfer-tagged one is preferred over fee/other.
		if claimed[e.TxHash] {
			continue
		}
		if idx, ok := feeIdx[e.TxHash]; ok {
			if result[idx].TxType != models.TxTypeTransfer && e.TxType == models.TxTypeTransfer {
				result[idx] = e
			}
			continue
		}
		feeIdx[e.TxHash] = len(result)
		result = append(result, e)
	}

	return result
}

func hasValueLegs(e models.TaxEvent) bool {
	return e.SentQty != "" || e.ReceivedQty != ""
}

// SortByDateDesc orders events newest-first by their formatted date. Events
// whose date fails to parse sort last. Ties keep their existing order.
func SortByDateDesc(events []models.TaxEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return parseEventDate(events[i].Date).After(parseEventDate(events[j].Date))
	})
}

func parseEventDate(s string) time.Time {
	t, err := time.Parse(normalize.DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
