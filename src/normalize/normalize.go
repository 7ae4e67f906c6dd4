// backend/src/normalize/normalize.go
package normalize

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/username/opentx/backend/src/chains"
	"github.com/username/opentx/backend/src/models"
	"github.com/username/opentx/backend/src/subscan"
)

// DateLayout is the fixed output timestamp format consumed by the
// downstream tax tool: zero-padded MM/DD/YYYY HH:MM:SS, UTC, no zone suffix.
const DateLayout = "01/02/2006 15:04:05"

// FormatMinorUnits converts an unsigned integer minor-unit string (plancks)
// into a decimal token amount with no precision loss. Trailing fractional
// zeros are stripped; a whole amount renders with no fractional part.
//
// Inputs that already contain a decimal point pass through unchanged, which
// makes the function idempotent under accidental double-normalization.
// Inputs that fail integer parsing also pass through unchanged: one
// malformed row should stay visible rather than abort a whole export.
func FormatMinorUnits(raw string, decimals int) string {
	if raw == "" || raw == "0" {
		return "0"
	}
	if strings.Contains(raw, ".") {
		return raw
	}

	val, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return raw
	}
	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	integer, remainder := new(big.Int).QuoRem(val, divisor, new(big.Int))

	rem := remainder.String()
	if len(rem) < decimals {
		rem = strings.Repeat("0", decimals-len(rem)) + rem
	}
	frac := strings.TrimRight(rem, "0")
	if frac == "" {
		return integer.String()
	}
	return integer.String() + "." + frac
}

// FormatTimestamp renders Subscan's epoch-seconds block timestamp in UTC.
func FormatTimestamp(epochSeconds int64) string {
	return time.Unix(epochSeconds, 0).UTC().Format(DateLayout)
}

// Transfer maps one raw transfer record plus the queried wallet address to a
// canonical tax event.
//
// Role classification compares addresses case-insensitively. When the wallet
// is both sender and recipient (self-transfer) the single resulting event
// carries both legs; whether that is the right tax treatment is unresolved
// product policy, but it is the behavior this pipeline commits to.
// The network fee is attributed only when the wallet is the sender.
func Transfer(t subscan.Transfer, chain chains.Chain, wallet string) models.TaxEvent {
	isReceived := strings.EqualFold(t.To, wallet)
	isSent := strings.EqualFold(t.From, wallet)

	amount := FormatMinorUnits(t.Amount, chain.Decimals)
	fee := "0"
	if isSent {
		fee = FormatMinorUnits(t.Fee, chain.Decimals)
	}

	notes := fmt.Sprintf("%s transfer", chain.Name)
	if !t.Success {
		notes = "FAILED " + notes
	}

	event := models.TaxEvent{
		Date:        FormatTimestamp(t.BlockTimestamp),
		FeeAmount:   fee,
		FeeCurrency: chain.Symbol,
		Notes:       notes,

		Chain:       chain.Name,
		Wallet:      wallet,
		TxHash:      t.Hash,
		From:        t.From,
		To:          t.To,
		TxType:      models.TxTypeTransfer,
		Protocol:    t.Module,
		BlockHeight: fmt.Sprintf("%d", t.BlockNum),
		ExplorerURL: chain.ExtrinsicURL(t.Hash),
	}

	if isReceived {
		event.ReceivedQty = amount
		event.ReceivedCurrency = chain.Symbol
	}
	if isSent {
		event.SentQty = amount
		event.SentCurrency = chain.Symbol
	}

	return event
}

// Extrinsic maps one raw extrinsic record to a canonical tax event.
// Extrinsics are signed actions by the queried wallet, so the fee is always
// attributed. A balances-module call whose name contains "transfer" is
// tagged as a transfer; everything else is a fee-only event.
func Extrinsic(e subscan.Extrinsic, chain chains.Chain, wallet string) models.TaxEvent {
	txType := models.TxTypeFee
	if e.CallModule == "balances" && strings.Contains(e.CallFunction, "transfer") {
		txType = models.TxTypeTransfer
	}

	notes := fmt.Sprintf("Extrinsic %s.%s", e.CallModule, e.CallFunction)
	if !e.Success {
		notes = "FAILED " + notes
	}

	return models.TaxEvent{
		Date:        FormatTimestamp(e.BlockTimestamp),
		FeeAmount:   FormatMinorUnits(e.Fee, chain.Decimals),
		FeeCurrency: chain.Symbol,
		Notes:       notes,

		Chain:       chain.Name,
		Wallet:      wallet,
		TxHash:      e.ExtrinsicHash,
		TxType:      txType,
		Protocol:    e.CallModule,
		BlockHeight: fmt.Sprintf("%d", e.BlockNum),
		ExplorerURL: chain.ExtrinsicURL(e.ExtrinsicHash),
	}
}
