// backend/src/services/balance_service.go
package services

import (
	"context"
	"fmt"
	"math/big"

	"github.com/patrickmn/go-cache"
	"github.com/username/opentx/backend/src/chains"
	"github.com/username/opentx/backend/src/logger"
	"github.com/username/opentx/backend/src/models"
	"github.com/username/opentx/backend/src/normalize"
	"github.com/username/opentx/backend/src/subscan"
)

const balanceSource = "subscan"

type balanceServiceImpl struct {
	client       *subscan.Client
	balanceCache *cache.Cache
}

// NewBalanceService creates the best-effort account state lookup. The cache
// is constructor-injected so its TTL is owned by the process, not this
// package; entries are keyed by (chain, address).
func NewBalanceService(client *subscan.Client, balanceCache *cache.Cache) BalanceService {
	return &balanceServiceImpl{client: client, balanceCache: balanceCache}
}

func cacheKey(chain chains.Chain, address string) string {
	return fmt.Sprintf("balance_%s_%s", chain.ID, address)
}

// GetAccountState returns the cached-or-fresh balance snapshot. Balance
// display is best-effort: upstream failure is downgraded to a state carrying
// the error message, and failures are never cached.
func (s *balanceServiceImpl) GetAccountState(ctx context.Context, chain chains.Chain, address string) *models.AccountState {
	key := cacheKey(chain, address)
	if cached, found := s.balanceCache.Get(key); found {
		if state, ok := cached.(*models.AccountState); ok {
			logger.L.Debug("Balance cache hit", "chain", chain.ID, "address", address)
			return state
		}
	}

	account, err := s.client.AccountInfo(ctx, chain, address)
	if err != nil {
		logger.L.Warn("Balance lookup failed, degrading to unavailable",
			"chain", chain.ID, "address", address, "error", err)
		return &models.AccountState{
			Address: address,
			Error:   err.Error(),
		}
	}

	state := &models.AccountState{
		Address:        address,
		FreeAmount:     normalize.FormatMinorUnits(orZero(account.Balance), chain.Decimals),
		ReservedAmount: normalize.FormatMinorUnits(orZero(account.Reserved), chain.Decimals),
		LockedAmount:   normalize.FormatMinorUnits(orZero(account.LockedBalance()), chain.Decimals),
		TotalAmount:    totalAmount(account, chain.Decimals),
		Source:         balanceSource,
	}

	s.balanceCache.Set(key, state, cache.DefaultExpiration)
	return state
}

// totalAmount sums free and reserved in planck space before formatting, so
// the total stays loss-free. Unparseable upstream values count as zero.
func totalAmount(account *subscan.Account, decimals int) string {
	total := new(big.Int)
	for _, raw := range []string{account.Balance, account.Reserved} {
		if v, ok := new(big.Int).SetString(orZero(raw), 10); ok {
			total.Add(total, v)
		}
	}
	return normalize.FormatMinorUnits(total.String(), decimals)
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
