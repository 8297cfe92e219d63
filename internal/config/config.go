package config

import (
	"os"
	"time"
)

// Config is the process configuration, read from the environment.
type Config struct {
	HTTPAddr string

	ERPURL      string
	ERPDatabase string
	ERPUsername string
	ERPPassword string

	JWTIssuer   string
	JWTAudience string
	TokenTTL    time.Duration

	DefaultLanguage string
}

// Load reads configuration from environment variables with development
// defaults. Key material is read separately via pkg/keyfetcher.
func Load() Config {
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":3001"),
		ERPURL:          getenv("ERP_URL", "http://localhost:8069"),
		ERPDatabase:     getenv("ERP_DB", "warehouse"),
		ERPUsername:     getenv("ERP_USERNAME", "admin"),
		ERPPassword:     os.Getenv("ERP_PASSWORD"),
		JWTIssuer:       getenv("JWT_ISSUER", "picking-api"),
		JWTAudience:     getenv("JWT_AUDIENCE", "warehouse-devices"),
		TokenTTL:        getduration("JWT_EXPIRES_IN", 8*time.Hour),
		DefaultLanguage: getenv("DEFAULT_LANG", "uk_UA"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
