package handler

import (
	"bytes"
	"net/http"

	"solar-catalog-api/internal/pricing"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PriceReport retorna o relatorio de precos em JSON ou, com ?format=xlsx,
// como planilha
func (h *CatalogHandler) PriceReport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "xlsx" {
		writeError(w, http.StatusBadRequest, "invalid_format", "Formato deve ser json ou xlsx")
		return
	}

	report, err := h.svc.PriceReport(r.Context())
	if err != nil {
		h.logger.Error("failed to load price report", "error", err)
		writeError(w, http.StatusInternalServerError, "catalog_error", "Erro ao gerar relatorio de precos")
		return
	}

	if format != "xlsx" {
		writeJSON(w, http.StatusOK, report)
		return
	}

	var buf bytes.Buffer
	if err := pricing.WriteReportXLSX(*report, &buf); err != nil {
		h.logger.Error("failed to build xlsx report", "error", err)
		writeError(w, http.StatusInternalServerError, "report_error", "Erro ao gerar planilha")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="price_report.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
