package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"solar-catalog-api/internal/model"
	"solar-catalog-api/internal/service"
)

// CatalogService is the part of service.CatalogService the handlers use.
type CatalogService interface {
	ListSkus(ctx context.Context, category string) (*model.SkusResponse, error)
	ListManufacturers(ctx context.Context) (*model.ManufacturersResponse, error)
	MatchKits(ctx context.Context, criteria model.KitCriteria) (*model.KitMatchResponse, error)
	ValidateMPPT(req model.MpptValidateRequest) model.MpptValidationResult
	ValidateSystem(req model.SystemValidateRequest) model.SystemCompatibility
	PriceReport(ctx context.Context) (*model.PriceComparisonReport, error)
}

type CatalogHandler struct {
	svc    CatalogService
	logger *slog.Logger
}

func NewCatalogHandler(svc CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{svc: svc, logger: logger}
}

// ListSkus lista SKUs canonicos, filtrando por ?category=
func (h *CatalogHandler) ListSkus(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	response, err := h.svc.ListSkus(r.Context(), category)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			writeError(w, http.StatusBadRequest, "invalid_category", err.Error())
			return
		}
		h.logger.Error("failed to list skus", "category", category, "error", err)
		writeError(w, http.StatusInternalServerError, "catalog_error", "Erro ao buscar SKUs")
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// ListManufacturers lista fabricantes canonicos com aliases e contagens
func (h *CatalogHandler) ListManufacturers(w http.ResponseWriter, r *http.Request) {
	response, err := h.svc.ListManufacturers(r.Context())
	if err != nil {
		h.logger.Error("failed to list manufacturers", "error", err)
		writeError(w, http.StatusInternalServerError, "catalog_error", "Erro ao buscar fabricantes")
		return
	}

	writeJSON(w, http.StatusOK, response)
}
