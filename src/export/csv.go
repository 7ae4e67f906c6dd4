// backend/src/export/csv.go
package export

import (
	"strings"

	"github.com/username/opentx/backend/src/models"
	"github.com/username/opentx/backend/src/security/validation"
)

// Mode selects the CSV column set.
type Mode string

const (
	// ModeStrict is the externally-consumed compatibility format. Column
	// order and names are a fixed contract with the downstream tax tool.
	ModeStrict Mode = "strict"
	// ModeEnriched appends the enrichment columns after the strict eight.
	ModeEnriched Mode = "enriched"
)

var strictHeaders = []string{
	"Date",
	"Received Quantity",
	"Received Currency",
	"Sent Quantity",
	"Sent Currency",
	"Fee Amount",
	"Fee Currency",
	"Notes",
}

var enrichedHeaders = []string{
	"Chain",
	"Wallet",
	"Tx Hash",
	"From",
	"To",
	"Tx Type",
	"Protocol",
	"Block Height",
	"Explorer URL",
}

// EscapeField implements the downstream tool's escaping rule: a value
// containing a comma, a double quote, or a newline is wrapped in double
// quotes with internal quotes doubled; anything else passes through as-is.
// Missing values render as empty strings.
func EscapeField(value string) string {
	if strings.ContainsAny(value, "\",\n") {
		return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
	}
	return value
}

// Generate renders the event list as delimited text, header row first.
func Generate(events []models.TaxEvent, mode Mode) string {
	headers := strictHeaders
	if mode == ModeEnriched {
		headers = append(append([]string{}, strictHeaders...), enrichedHeaders...)
	}

	var sb strings.Builder
	writeRow(&sb, headers)

	for _, e := range events {
		cols := []string{
			e.Date,
			e.ReceivedQty,
			e.ReceivedCurrency,
			e.SentQty,
			e.SentCurrency,
			e.FeeAmount,
			e.FeeCurrency,
			validation.SanitizeForFormulaInjection(validation.StripUnprintable(e.Notes)),
		}
		if mode == ModeEnriched {
			cols = append(cols,
				e.Chain,
				e.Wallet,
				e.TxHash,
				e.From,
				e.To,
				e.TxType,
				e.Protocol,
				e.BlockHeight,
				e.ExplorerURL,
			)
		}
		sb.WriteByte('\n')
		writeRow(&sb, cols)
	}

	return sb.String()
}

func writeRow(sb *strings.Builder, cols []string) {
	for i, col := range cols {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(EscapeField(col))
	}
}
