package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Required values are enforced by must(); adapter
// endpoints are optional because every adapter has a documented local
// fallback and the service must boot without them.
type Config struct {
	Env          string // application environment (e.g. "dev", "prod")
	Port         string // HTTP port to listen on
	DBUser       string // database username
	DBPass       string // database password (optional)
	DBHost       string // database host address
	DBPort       string // database port number
	DBName       string // database name
	JWTSecret    string // secret used to sign bearer tokens
	TokenTTLDays int    // bearer token time-to-live in days
	BcryptCost   int    // bcrypt cost for password hashing

	// LocalMockMode stores passwords in plaintext and must never be enabled
	// outside a dev environment; Load refuses the combination.
	LocalMockMode bool

	UploadDir string // local directory used as the evidence store fallback

	// Optional external adapter endpoints.  Empty string means the adapter
	// runs in its degraded local mode.
	AIServiceURL    string // automated verifier scoring endpoint
	LedgerIssuerURL string // certificate issuer endpoint

	// S3-compatible evidence store settings (MinIO-style static credentials).
	S3Endpoint string
	S3Region   string
	S3Bucket   string
	S3User     string
	S3Password string
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	cfg := Config{
		Env:          must("APP_ENV"),  // environment (dev/test/prod)
		Port:         must("APP_PORT"), // port to bind the HTTP server
		DBUser:       must("DB_USER"),
		DBPass:       os.Getenv("DB_PASS"), // empty allowed
		DBHost:       must("DB_HOST"),
		DBPort:       must("DB_PORT"),
		DBName:       must("DB_NAME"),
		JWTSecret:    must("JWT_SECRET"),
		TokenTTLDays: mustInt("TOKEN_TTL_DAYS"),
		BcryptCost:   mustInt("BCRYPT_COST"),

		LocalMockMode: os.Getenv("LOCAL_MOCK_MODE") == "true",

		UploadDir: getenvDefault("UPLOAD_DIR", "uploads"),

		AIServiceURL:    os.Getenv("AI_SERVICE_URL"),
		LedgerIssuerURL: os.Getenv("LEDGER_ISSUER_URL"),

		S3Endpoint: os.Getenv("S3_ENDPOINT"),
		S3Region:   getenvDefault("S3_REGION", "us-east-1"),
		S3Bucket:   os.Getenv("S3_BUCKET"),
		S3User:     os.Getenv("S3_ROOT_USER"),
		S3Password: os.Getenv("S3_ROOT_PASSWORD"),
	}
	if cfg.LocalMockMode && cfg.Env != "dev" {
		log.Fatalf("LOCAL_MOCK_MODE is only allowed with APP_ENV=dev (got %q)", cfg.Env)
	}
	return cfg
}

// RateLimitConfig controls the fixed-window limiter applied to the auth
// endpoints.  Disabled when redis is unavailable or RATE_LIMIT_ENABLED is
// not "true".
type RateLimitConfig struct {
	Enabled    bool
	Limit      int // requests allowed per window
	WindowSecs int // window length in seconds
}

// LoadRateLimit reads the limiter settings with safe defaults.
func LoadRateLimit() RateLimitConfig {
	return RateLimitConfig{
		Enabled:    os.Getenv("RATE_LIMIT_ENABLED") == "true",
		Limit:      getenvInt("RATE_LIMIT_LIMIT", 20),
		WindowSecs: getenvInt("RATE_LIMIT_WINDOW_SECS", 60),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
