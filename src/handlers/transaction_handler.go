// backend/src/handlers/transaction_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/username/opentx/backend/src/chains"
	"github.com/username/opentx/backend/src/logger"
	"github.com/username/opentx/backend/src/pagination"
	"github.com/username/opentx/backend/src/services"
	"github.com/username/opentx/backend/src/utils"
)

type TransactionHandler struct {
	txService services.TransactionService
}

func NewTransactionHandler(txService services.TransactionService) *TransactionHandler {
	return &TransactionHandler{txService: txService}
}

type transactionsRequest struct {
	Address string `json:"address"`
	Cursor  string `json:"cursor"`
	Chain   string `json:"chain"`
}

// HandleGetTransactions serves POST /transactions: one resumable page of
// normalized transfer events plus the next cursor (null when exhausted).
func (h *TransactionHandler) HandleGetTransactions(w http.ResponseWriter, r *http.Request) {
	var req transactionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	chain, addr, ok := resolveChainAddress(w, req.Chain, req.Address)
	if !ok {
		return
	}

	result, err := h.txService.FetchPage(r.Context(), chain, addr, req.Cursor)
	if err != nil {
		if errors.Is(err, pagination.ErrBadCursor) {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.L.Error("Transaction page fetch failed",
			"chain", chain.ID, "address", addr, "cursor", req.Cursor, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, result)
}

// resolveChainAddress validates the user-supplied chain and address before
// any network activity, writing a 400 and returning ok=false on failure.
func resolveChainAddress(w http.ResponseWriter, chainID, address string) (chains.Chain, string, bool) {
	if address == "" {
		utils.SendJSONError(w, "address is required", http.StatusBadRequest)
		return chains.Chain{}, "", false
	}
	chain, err := chains.Get(chainID)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return chains.Chain{}, "", false
	}
	if !chain.ValidAddress(address) {
		utils.SendJSONError(w, fmt.Sprintf("address %q is not a valid %s address", address, chain.Name), http.StatusBadRequest)
		return chains.Chain{}, "", false
	}
	return chain, address, true
}
