package siports

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/jub0bs/cors"
)

// DefaultAPIBaseURL is the production SIPORTS backend
const DefaultAPIBaseURL = "https://siportevent-production.up.railway.app"

// Dashboard environment variables with defaults
type ServerEnvironment struct {
	Environment    string        `env:"ENVIRONMENT,default=dev"`
	Host           string        `env:"HOST,default=0.0.0.0"`
	Port           int           `env:"PORT,default=3000"`
	LogLevel       string        `env:"LOG_LEVEL,default=debug"`
	APIBaseURL     string        `env:"API_BASE_URL"`               // defaults to DefaultAPIBaseURL
	APITimeout     time.Duration `env:"API_TIMEOUT,default=15s"`    // client-side limit for each backend call (0 = no limit)
	SessionSecret  string        `env:"SESSION_SECRET"`             // key material for the session cookie
	ReadTimeout    time.Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout   time.Duration `env:"WRITE_TIMEOUT,default=15s"`
	IdleTimeout    time.Duration `env:"IDLE_TIMEOUT,default=60s"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS,separator=|"`
	LoginRateRPS   int32         `env:"LOGIN_RATE_LIMIT_RPS,default=5"`
	LoginRateBurst int32         `env:"LOGIN_RATE_LIMIT_BURST,default=10"`
	MaxFormSize    int64         `env:"MAX_FORM_SIZE,default=65536"` // 64KB
}

// CORSConfigs holds the CORS middleware instances for different endpoint types
type CORSConfigs struct {
	Public *cors.Middleware
}

const (
	SessionCookieName = "siports_session"

	// SessionCookieMaxAge applies when the backend does not say when the token expires
	SessionCookieMaxAge = 8 * time.Hour

	MinimumSessionSecretLength = 32

	// Operational timeouts
	ServerShutdownTimeout = 10 * time.Second
	ReadinessTimeout      = 2 * time.Second // backend probe used by /health/ready
	RequestTimeout        = 60 * time.Second

	CORSMaxAgeInSeconds = 86400 // 24 hours

	// insecure key used outside prod/staging when SESSION_SECRET is not set
	devSessionSecret = "siports-dashboard-development-only-secret"
)

var validEnvs = map[string]bool{
	"dev":     true,
	"test":    true,
	"prod":    true,
	"staging": true,
}

// ValidUserTypes are the account types accepted by the admin user filters
var ValidUserTypes = map[string]bool{
	"visitor":   true,
	"exhibitor": true,
	"partner":   true,
	"admin":     true,
}

// ValidUserStatuses are the account states accepted by the admin user filters
var ValidUserStatuses = map[string]bool{
	"pending":   true,
	"validated": true,
	"rejected":  true,
}

// NewServerConfig loads the dashboard configuration from the environment and returns it with the CORS middleware
func NewServerConfig() (*ServerEnvironment, *CORSConfigs, error) {
	var cfg ServerEnvironment

	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, nil, err
	}

	corsConfigs, err := createCORSConfigs(&cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("CORS configuration failed: %w", err)
	}

	return &cfg, corsConfigs, nil
}

// IsProd reports whether cookies must be marked Secure
func (cfg *ServerEnvironment) IsProd() bool {
	return cfg.Environment == "prod" || cfg.Environment == "staging"
}

func validateConfig(cfg *ServerEnvironment) error {
	if !validEnvs[cfg.Environment] {
		return fmt.Errorf("invalid ENVIRONMENT: %s", cfg.Environment)
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	if cfg.ReadTimeout <= 0 {
		return fmt.Errorf("READ_TIMEOUT must be positive, got %v", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout <= 0 {
		return fmt.Errorf("WRITE_TIMEOUT must be positive, got %v", cfg.WriteTimeout)
	}
	if cfg.IdleTimeout <= 0 {
		return fmt.Errorf("IDLE_TIMEOUT must be positive, got %v", cfg.IdleTimeout)
	}
	if cfg.APITimeout < 0 {
		return fmt.Errorf("API_TIMEOUT cannot be negative, got %v", cfg.APITimeout)
	}

	if cfg.LoginRateRPS < 1 || cfg.LoginRateBurst < 1 {
		return fmt.Errorf("LOGIN_RATE_LIMIT_RPS and LOGIN_RATE_LIMIT_BURST must be at least 1")
	}
	if cfg.MaxFormSize < 1024 {
		return fmt.Errorf("MAX_FORM_SIZE must be at least 1024 bytes")
	}

	u, err := url.ParseRequestURI(cfg.APIBaseURL)
	if err != nil {
		return fmt.Errorf("API_BASE_URL is not a valid URL: %s", cfg.APIBaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("API_BASE_URL does not include a valid scheme (http or https): %s", cfg.APIBaseURL)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("API_BASE_URL does not include a host: %s", cfg.APIBaseURL)
	}

	if cfg.IsProd() {
		if u.Scheme != "https" {
			return fmt.Errorf("API_BASE_URL must use https in %s: %s", cfg.Environment, cfg.APIBaseURL)
		}
		if len(cfg.SessionSecret) < MinimumSessionSecretLength {
			return fmt.Errorf("SESSION_SECRET must be at least %d characters in %s", MinimumSessionSecretLength, cfg.Environment)
		}
		if len(cfg.AllowedOrigins) > 0 && cfg.AllowedOrigins[0] == "*" {
			return fmt.Errorf("ALLOWED_ORIGINS must not be set to '*' in %v", cfg.Environment)
		}
	}

	if cfg.SessionSecret == "" {
		cfg.SessionSecret = devSessionSecret
	}

	// default to all origins when not set
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	return nil
}

// createCORSConfigs creates the CORS middleware for the public JSON endpoints (health probes)
func createCORSConfigs(cfg *ServerEnvironment) (*CORSConfigs, error) {
	origins := make([]string, len(cfg.AllowedOrigins))
	for i, origin := range cfg.AllowedOrigins {
		origins[i] = strings.TrimSpace(origin)
	}

	publicConfig := cors.Config{
		Origins: origins,
		Methods: []string{
			http.MethodGet,
			http.MethodHead,
		},
		RequestHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Requested-With",
		},
		MaxAgeInSeconds: CORSMaxAgeInSeconds,
	}

	publicMiddleware, err := cors.NewMiddleware(publicConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create public CORS middleware: %w", err)
	}

	return &CORSConfigs{Public: publicMiddleware}, nil
}
