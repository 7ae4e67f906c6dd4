// backend/src/models/models.go
package models

// TaxEvent is the unified, canonical representation of one reportable
// on-chain occurrence. All quantities are decimal strings converted
// loss-free from the chain's minor units.
//
// ReceivedQty/SentQty presence encodes the wallet's role: a received
// transfer sets only the received leg, a sent transfer only the sent leg,
// and a self-transfer deliberately sets both legs on this single event.
type TaxEvent struct {
	Date string `json:"date"` // "MM/DD/YYYY HH:MM:SS" UTC

	ReceivedQty      string `json:"receivedQty,omitempty"`
	ReceivedCurrency string `json:"receivedCurrency,omitempty"`

	SentQty      string `json:"sentQty,omitempty"`
	SentCurrency string `json:"sentCurrency,omitempty"`

	FeeAmount   string `json:"feeAmount"` // "0" when the wallet did not bear the fee
	FeeCurrency string `json:"feeCurrency"`

	Notes string `json:"notes"` // prefixed "FAILED" when the underlying record failed

	// Enrichment
	Chain       string `json:"chain,omitempty"`
	Wallet      string `json:"wallet,omitempty"`
	TxHash      string `json:"txHash,omitempty"`
	From        string `json:"from,omitempty"`
	To          string `json:"to,omitempty"`
	TxType      string `json:"txType,omitempty"` // "transfer", "fee", "other"
	Protocol    string `json:"protocol,omitempty"`
	BlockHeight string `json:"blockHeight,omitempty"`
	ExplorerURL string `json:"explorerUrl,omitempty"`
}

// Tx type tags used by classification and deduplication.
const (
	TxTypeTransfer = "transfer"
	TxTypeFee      = "fee"
	TxTypeOther    = "other"
)

// AccountState is the best-effort balance snapshot returned by POST /account.
// Amounts are decimal strings in token units. When the upstream lookup fails
// the amounts are empty and Error carries the reason; the endpoint never
// hard-fails over a missing balance.
type AccountState struct {
	Address        string `json:"address"`
	FreeAmount     string `json:"freeAmount"`
	ReservedAmount string `json:"reservedAmount"`
	LockedAmount   string `json:"lockedAmount"`
	TotalAmount    string `json:"totalAmount"`
	Source         string `json:"source"`
	Error          string `json:"error,omitempty"`
}
