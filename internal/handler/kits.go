package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"solar-catalog-api/internal/model"
	"solar-catalog-api/internal/service"
)

// MatchKits busca kits para os criterios informados
func (h *CatalogHandler) MatchKits(w http.ResponseWriter, r *http.Request) {
	var criteria model.KitCriteria
	if err := json.NewDecoder(r.Body).Decode(&criteria); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "JSON invalido no corpo da requisicao")
		return
	}

	response, err := h.svc.MatchKits(r.Context(), criteria)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			writeError(w, http.StatusBadRequest, "invalid_criteria", err.Error())
			return
		}
		h.logger.Error("kit match failed", "error", err)
		writeError(w, http.StatusInternalServerError, "catalog_error", "Erro ao buscar kits")
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// ValidateMPPT valida a string de paineis contra a janela MPPT do inversor
func (h *CatalogHandler) ValidateMPPT(w http.ResponseWriter, r *http.Request) {
	var req model.MpptValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "JSON invalido no corpo da requisicao")
		return
	}

	writeJSON(w, http.StatusOK, h.svc.ValidateMPPT(req))
}

// ValidateSystem avalia a combinacao completa de paineis e inversores
func (h *CatalogHandler) ValidateSystem(w http.ResponseWriter, r *http.Request) {
	var req model.SystemValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "JSON invalido no corpo da requisicao")
		return
	}

	writeJSON(w, http.StatusOK, h.svc.ValidateSystem(req))
}
