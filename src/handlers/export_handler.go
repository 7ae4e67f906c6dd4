// backend/src/handlers/export_handler.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/username/opentx/backend/src/export"
	"github.com/username/opentx/backend/src/logger"
	"github.com/username/opentx/backend/src/services"
	"github.com/username/opentx/backend/src/utils"
)

type ExportHandler struct {
	exportService services.ExportService
	filePrefix    string
}

func NewExportHandler(exportService services.ExportService, filePrefix string) *ExportHandler {
	return &ExportHandler{exportService: exportService, filePrefix: filePrefix}
}

// HandleExport serves GET /export: the full bounded fetch, dedup and sort,
// rendered as a JSON envelope or a CSV attachment.
//
// Query parameters: chain, address, format=json|csv (default json),
// view=composite for the transfers+extrinsics analytics merge, and
// schema=enriched to widen the CSV beyond the strict eight columns.
func (h *ExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	format := q.Get("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		utils.SendJSONError(w, `invalid format, use "json" or "csv"`, http.StatusBadRequest)
		return
	}

	chain, addr, ok := resolveChainAddress(w, q.Get("chain"), q.Get("address"))
	if !ok {
		return
	}
	composite := q.Get("view") == "composite"

	result, err := h.exportService.BuildExport(r.Context(), chain, addr, composite)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Client went away mid-session; nothing useful to write.
			logger.L.Info("Export cancelled", "chain", chain.ID, "address", addr)
			return
		}
		logger.L.Error("Export failed", "chain", chain.ID, "address", addr, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if format == "json" {
		utils.SendJSON(w, result)
		return
	}

	mode := export.ModeStrict
	if q.Get("schema") == "enriched" {
		mode = export.ModeEnriched
	}

	filename := fmt.Sprintf("%s_%s_%s.csv", h.filePrefix, chain.ID, addr)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write([]byte(export.Generate(result.Events, mode))); err != nil {
		logger.L.Error("Error writing CSV response", "error", err)
	}
}
