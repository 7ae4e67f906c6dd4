// backend/src/handlers/account_handler.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/opentx/backend/src/services"
	"github.com/username/opentx/backend/src/utils"
)

type AccountHandler struct {
	balanceService services.BalanceService
}

func NewAccountHandler(balanceService services.BalanceService) *AccountHandler {
	return &AccountHandler{balanceService: balanceService}
}

type accountRequest struct {
	Address string `json:"address"`
	Chain   string `json:"chain"`
}

// HandleGetAccount serves POST /account: the cached-or-fresh balance
// snapshot. Upstream unavailability still answers 200 with the error noted
// in the body; balance display is best-effort by contract.
func (h *AccountHandler) HandleGetAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	chain, addr, ok := resolveChainAddress(w, req.Chain, req.Address)
	if !ok {
		return
	}

	state := h.balanceService.GetAccountState(r.Context(), chain, addr)
	utils.SendJSON(w, state)
}
