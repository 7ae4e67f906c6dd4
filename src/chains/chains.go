// backend/src/chains/chains.go
package chains

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrUnknownChain = errors.New("unknown chain")

// Chain describes one supported Subscan-indexed network. The core pipeline
// consumes this as injected configuration and never hardcodes a host.
type Chain struct {
	ID           string // "polkadot"
	Name         string // "Polkadot"
	Symbol       string // "DOT"
	Decimals     int    // minor units (plancks) per token, as a power of ten
	APIHost      string // Subscan API host
	ExplorerHost string // Subscan explorer host
	addressRe    *regexp.Regexp
}

// ExtrinsicURL returns the explorer deep link for a transaction hash.
func (c Chain) ExtrinsicURL(hash string) string {
	return fmt.Sprintf("%s/extrinsic/%s", c.ExplorerHost, hash)
}

// ValidAddress reports whether addr matches the chain's address shape.
// This is a boundary check only; it does not verify the SS58 checksum.
func (c Chain) ValidAddress(addr string) bool {
	return c.addressRe.MatchString(addr)
}

// SS58 addresses: base58 alphabet, typically 46-48 characters.
var ss58Re = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{40,60}$`)

var registry = map[string]Chain{
	"polkadot": {
		ID:           "polkadot",
		Name:         "Polkadot",
		Symbol:       "DOT",
		Decimals:     10,
		APIHost:      "https://polkadot.api.subscan.io",
		ExplorerHost: "https://polkadot.subscan.io",
		addressRe:    ss58Re,
	},
	"kusama": {
		ID:           "kusama",
		Name:         "Kusama",
		Symbol:       "KSM",
		Decimals:     12,
		APIHost:      "https://kusama.api.subscan.io",
		ExplorerHost: "https://kusama.subscan.io",
		addressRe:    ss58Re,
	},
	"westend": {
		ID:           "westend",
		Name:         "Westend",
		Symbol:       "WND",
		Decimals:     12,
		APIHost:      "https://westend.api.subscan.io",
		ExplorerHost: "https://westend.subscan.io",
		addressRe:    ss58Re,
	},
}

const DefaultChainID = "polkadot"

// Get resolves a chain by ID. An empty ID resolves to the default chain so
// older clients that never send "chain" keep working.
func Get(id string) (Chain, error) {
	if id == "" {
		id = DefaultChainID
	}
	c, ok := registry[strings.ToLower(id)]
	if !ok {
		return Chain{}, fmt.Errorf("%w: %q", ErrUnknownChain, id)
	}
	return c, nil
}

// IDs returns the supported chain identifiers.
func IDs() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	return ids
}
