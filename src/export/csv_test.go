package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/opentx/backend/src/models"
)

func TestEscapeField(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"plain passes through", "transfer", "transfer"},
		{"empty stays empty", "", ""},
		{"comma quoted", "a,b", `"a,b"`},
		{"quotes doubled", `say "hi"`, `"say ""hi"""`},
		{"newline quoted", "line1\nline2", "\"line1\nline2\""},
		{"mixed", "Hello, \"World\"\n", "\"Hello, \"\"World\"\"\n\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeField(tt.value))
		})
	}
}

func sampleEvent() models.TaxEvent {
	return models.TaxEvent{
		Date:             "03/01/2024 12:05:09",
		ReceivedQty:      "1.23456789",
		ReceivedCurrency: "DOT",
		FeeAmount:        "0",
		FeeCurrency:      "DOT",
		Notes:            "Polkadot transfer",
		Chain:            "Polkadot",
		Wallet:           "15oF4uVJwmo4TdGW7VfQxNLavjCXviqxT9S1MgbjMNHr6Sp5",
		TxHash:           "0xabc",
		From:             "sender",
		To:               "receiver",
		TxType:           models.TxTypeTransfer,
		Protocol:         "balances",
		BlockHeight:      "14490804",
		ExplorerURL:      "https://polkadot.subscan.io/extrinsic/0xabc",
	}
}

func TestGenerateStrict(t *testing.T) {
	out := Generate([]models.TaxEvent{sampleEvent()}, ModeStrict)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)

	// The strict header is a fixed contract with the downstream tax tool.
	assert.Equal(t, "Date,Received Quantity,Received Currency,Sent Quantity,Sent Currency,Fee Amount,Fee Currency,Notes", lines[0])
	assert.Equal(t, "03/01/2024 12:05:09,1.23456789,DOT,,,0,DOT,Polkadot transfer", lines[1])
}

func TestGenerateEnriched(t *testing.T) {
	out := Generate([]models.TaxEvent{sampleEvent()}, ModeEnriched)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)

	assert.Len(t, strings.Split(lines[0], ","), 17)
	assert.True(t, strings.HasSuffix(lines[0], "Chain,Wallet,Tx Hash,From,To,Tx Type,Protocol,Block Height,Explorer URL"))
	assert.True(t, strings.HasSuffix(lines[1], ",https://polkadot.subscan.io/extrinsic/0xabc"))
}

func TestGenerateEscapesNotes(t *testing.T) {
	e := sampleEvent()
	e.Notes = `Hello, "World"`

	out := Generate([]models.TaxEvent{e}, ModeStrict)
	assert.Contains(t, out, `"Hello, ""World"""`)
}

func TestGenerateMissingFieldsRenderEmpty(t *testing.T) {
	out := Generate([]models.TaxEvent{{Date: "01/01/2024 00:00:00", FeeAmount: "0", FeeCurrency: "DOT"}}, ModeStrict)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "01/01/2024 00:00:00,,,,,0,DOT,", lines[1])
}

func TestGenerateSanitizesFormulaNotes(t *testing.T) {
	e := sampleEvent()
	e.Notes = "=SUM(A1:A9)"

	out := Generate([]models.TaxEvent{e}, ModeStrict)
	assert.Contains(t, out, "'=SUM(A1:A9)")
}

func TestGenerateStripsUnprintableNotes(t *testing.T) {
	e := sampleEvent()
	e.Notes = "Extrinsic balances.\x00transfer\x07"

	out := Generate([]models.TaxEvent{e}, ModeStrict)
	assert.Contains(t, out, "Extrinsic balances.transfer")
	assert.NotContains(t, out, "\x00")
}
