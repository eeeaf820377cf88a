package model

import "time"

// SkusResponse lista SKUs canonicos de uma categoria
type SkusResponse struct {
	Category Category       `json:"category"`
	Skus     []CanonicalSku `json:"skus"`
	Total    int            `json:"total"`
}

// ManufacturersResponse lista fabricantes canonicos
type ManufacturersResponse struct {
	Manufacturers []Manufacturer `json:"manufacturers"`
}

// KitMatchResponse representa a resposta da busca de kits
type KitMatchResponse struct {
	TargetKWp float64    `json:"target_kwp"`
	Matches   []KitMatch `json:"matches"`
	Total     int        `json:"total"`
}

// MpptValidateRequest representa a requisicao de validacao MPPT
type MpptValidateRequest struct {
	Inverter         *SandiaInverter `json:"inverter"`
	Panel            *CECModule      `json:"panel"`
	ModulesPerString int             `json:"modules_per_string"`
}

// SystemValidateRequest representa a requisicao de validacao do sistema
type SystemValidateRequest struct {
	Panels           []SystemPanel    `json:"panels"`
	Inverters        []SystemInverter `json:"inverters"`
	ModulesPerString int              `json:"modules_per_string,omitempty"`
	Strict           bool             `json:"strict,omitempty"`
}

// HealthResponse representa a resposta do health check
type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse representa uma resposta de erro
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
