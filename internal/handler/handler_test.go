package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"solar-catalog-api/internal/model"
	"solar-catalog-api/internal/service"
)

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListSkus(ctx context.Context, category string) (*model.SkusResponse, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SkusResponse), args.Error(1)
}

func (m *MockCatalogService) ListManufacturers(ctx context.Context) (*model.ManufacturersResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ManufacturersResponse), args.Error(1)
}

func (m *MockCatalogService) MatchKits(ctx context.Context, criteria model.KitCriteria) (*model.KitMatchResponse, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.KitMatchResponse), args.Error(1)
}

func (m *MockCatalogService) ValidateMPPT(req model.MpptValidateRequest) model.MpptValidationResult {
	args := m.Called(req)
	return args.Get(0).(model.MpptValidationResult)
}

func (m *MockCatalogService) ValidateSystem(req model.SystemValidateRequest) model.SystemCompatibility {
	args := m.Called(req)
	return args.Get(0).(model.SystemCompatibility)
}

func (m *MockCatalogService) PriceReport(ctx context.Context) (*model.PriceComparisonReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PriceComparisonReport), args.Error(1)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func newTestRouter(svc CatalogService, db Pinger) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(NewHealthHandler(db), NewCatalogHandler(svc, logger), nil)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name     string
		db       Pinger
		status   string
		database string
	}{
		{"without database", nil, "ok", "disabled"},
		{"database up", stubPinger{}, "ok", "connected"},
		{"database down", stubPinger{err: errors.New("refused")}, "degraded", "disconnected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestRouter(new(MockCatalogService), tt.db), http.MethodGet, "/health", "")

			require.Equal(t, http.StatusOK, rec.Code)
			var resp model.HealthResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.status, resp.Status)
			assert.Equal(t, tt.database, resp.Database)
		})
	}
}

func TestListSkus(t *testing.T) {
	svc := new(MockCatalogService)
	svc.On("ListSkus", mock.Anything, "panels").Return(&model.SkusResponse{
		Category: model.CategoryPanels,
		Skus:     []model.CanonicalSku{{ID: "JINKO-SOLAR-PAN-JKM550M-550W"}},
		Total:    1,
	}, nil)

	rec := do(t, newTestRouter(svc, nil), http.MethodGet, "/api/v1/skus?category=panels", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.SkusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "JINKO-SOLAR-PAN-JKM550M-550W", resp.Skus[0].ID)
	svc.AssertExpectations(t)
}

func TestListSkus_InvalidCategory(t *testing.T) {
	svc := new(MockCatalogService)
	svc.On("ListSkus", mock.Anything, "cables").
		Return(nil, fmt.Errorf("%w: %w", service.ErrInvalidRequest, model.ErrUnsupportedCategory))

	rec := do(t, newTestRouter(svc, nil), http.MethodGet, "/api/v1/skus?category=cables", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_category", decodeError(t, rec).Error)
}

func TestListManufacturers_Error(t *testing.T) {
	svc := new(MockCatalogService)
	svc.On("ListManufacturers", mock.Anything).Return(nil, errors.New("connection reset"))

	rec := do(t, newTestRouter(svc, nil), http.MethodGet, "/api/v1/manufacturers", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "catalog_error", decodeError(t, rec).Error)
}

func TestMatchKits(t *testing.T) {
	svc := new(MockCatalogService)
	criteria := model.KitCriteria{TargetKWp: 5.5, PreferredBrands: []string{"Jinko"}}
	svc.On("MatchKits", mock.Anything, criteria).Return(&model.KitMatchResponse{
		TargetKWp: 5.5,
		Matches:   []model.KitMatch{{Kit: model.NormalizedKit{ID: "KIT-5.50KWP-JINKO-SOLAR-GROWATT"}, Score: 95}},
		Total:     1,
	}, nil)

	rec := do(t, newTestRouter(svc, nil), http.MethodPost, "/api/v1/kits/match",
		`{"target_kwp": 5.5, "preferred_brands": ["Jinko"]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.KitMatchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, 95.0, resp.Matches[0].Score)
	svc.AssertExpectations(t)
}

func TestMatchKits_BadRequests(t *testing.T) {
	svc := new(MockCatalogService)
	svc.On("MatchKits", mock.Anything, model.KitCriteria{}).
		Return(nil, fmt.Errorf("%w: target required", service.ErrInvalidRequest))
	router := newTestRouter(svc, nil)

	rec := do(t, router, http.MethodPost, "/api/v1/kits/match", `{"target_kwp":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", decodeError(t, rec).Error)

	rec = do(t, router, http.MethodPost, "/api/v1/kits/match", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_criteria", decodeError(t, rec).Error)
}

func TestValidateMPPT(t *testing.T) {
	svc := new(MockCatalogService)
	req := model.MpptValidateRequest{
		Inverter:         &model.SandiaInverter{MpptLow: 150, MpptHigh: 600},
		Panel:            &model.CECModule{VmpRef: 40, VocRef: 48, BetaVoc: -0.12},
		ModulesPerString: 10,
	}
	svc.On("ValidateMPPT", req).Return(model.MpptValidationResult{Compatible: true, ModulesPerString: 10, VStringMin: 346})

	rec := do(t, newTestRouter(svc, nil), http.MethodPost, "/api/v1/mppt/validate",
		`{"inverter":{"Mppt_low":150,"Mppt_high":600},"panel":{"V_mp_ref":40,"V_oc_ref":48,"beta_oc":-0.12},"modules_per_string":10}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.MpptValidationResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Compatible)
	assert.Equal(t, 346.0, resp.VStringMin)
}

func TestValidateSystem(t *testing.T) {
	svc := new(MockCatalogService)
	svc.On("ValidateSystem", mock.AnythingOfType("model.SystemValidateRequest")).Return(model.SystemCompatibility{
		Issues: []model.SystemIssue{{Code: model.IssueNoPanels, Severity: model.SeverityCritical}},
	})

	rec := do(t, newTestRouter(svc, nil), http.MethodPost, "/api/v1/system/validate", `{"panels":[],"inverters":[]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.SystemCompatibility
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Compatible)
	assert.Equal(t, 0.0, resp.Score)
	assert.Equal(t, model.IssueNoPanels, resp.Issues[0].Code)
}

func TestPriceReport(t *testing.T) {
	svc := new(MockCatalogService)
	svc.On("PriceReport", mock.Anything).Return(&model.PriceComparisonReport{
		RunID:       "run-1",
		GeneratedAt: time.Now(),
		Summary:     model.ReportSummary{TotalSkus: 2},
	}, nil)
	router := newTestRouter(svc, nil)

	rec := do(t, router, http.MethodGet, "/api/v1/reports/prices", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var report model.PriceComparisonReport
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, 2, report.Summary.TotalSkus)

	rec = do(t, router, http.MethodGet, "/api/v1/reports/prices?format=xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"))

	rec = do(t, router, http.MethodGet, "/api/v1/reports/prices?format=csv", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
