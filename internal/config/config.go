package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Database       DatabaseConfig
	APIPort        string
	LogLevel       string
	MetricsEnabled bool
	CatalogDir     string
	ParamsFile     string
	Pipeline       PipelineConfig
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxConns int
	MinConns int
}

// PipelineConfig holds the tunables of deduplication, electrical validation
// and kit matching.
type PipelineConfig struct {
	DedupConfidenceThreshold float64
	DedupSpecTolerance       float64
	RatioProfile             string
	CellTempMin              float64
	CellTempMax              float64
	SafetyMargin             float64
	KitMatchLimit            int
	KitCapacityTolerance     float64
	ManufacturerAliases      map[string]string
}

// Load reads configuration from the environment. A .env file in the working
// directory, when present, is loaded first without overriding variables
// already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Database: DatabaseConfig{
			Enabled:  getEnvBool("DB_ENABLED", os.Getenv("DB_PASSWORD") != ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			Name:     getEnv("DB_NAME", "solar_catalog"),
			User:     getEnv("DB_USER", "solar"),
			Password: getEnv("DB_PASSWORD", ""),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		APIPort:        getEnv("API_PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
		CatalogDir:     getEnv("CATALOG_DIR", "data/output"),
		ParamsFile:     getEnv("ELECTRICAL_PARAMS_FILE", ""),
		Pipeline: PipelineConfig{
			DedupConfidenceThreshold: getEnvFloat("DEDUP_CONFIDENCE_THRESHOLD", 0.85),
			DedupSpecTolerance:       getEnvFloat("DEDUP_SPEC_TOLERANCE", 0.05),
			RatioProfile:             getEnv("RATIO_PROFILE", "default"),
			CellTempMin:              getEnvFloat("MPPT_CELL_TEMP_MIN", -10),
			CellTempMax:              getEnvFloat("MPPT_CELL_TEMP_MAX", 70),
			SafetyMargin:             getEnvFloat("MPPT_SAFETY_MARGIN", 0.10),
			KitMatchLimit:            getEnvInt("KIT_MATCH_LIMIT", 10),
			KitCapacityTolerance:     getEnvFloat("KIT_CAPACITY_TOLERANCE", 0.15),
			ManufacturerAliases:      getEnvMap("MANUFACTURER_ALIASES"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvMap parses "VARIANT=CANONICAL;VARIANT2=CANONICAL2".
func getEnvMap(key string) map[string]string {
	out := map[string]string{}
	for _, pair := range strings.Split(os.Getenv(key), ";") {
		k, v, ok := strings.Cut(pair, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if ok && k != "" && v != "" {
			out[k] = v
		}
	}
	return out
}
