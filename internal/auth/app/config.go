package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/aussiebroadwan/sessionauth/pkg/cookiex"
	"github.com/aussiebroadwan/sessionauth/pkg/httpx"
	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
)

// ErrConfigInvalid wraps every configuration problem found at startup.
var ErrConfigInvalid = errors.New("config: invalid configuration")

// Environments accepted in APP_ENV.
const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

type Config struct {
	APIBase string `mapstructure:"API_BASE"` // Path prefix for the API (default: /api/v1)
	Env     string `mapstructure:"APP_ENV"`  // dev or prod (default: dev)

	JWTAlg        string `mapstructure:"JWT_ALG"`         // HS256, RS256 or ES256 (default: HS256)
	JWTSecret     string `mapstructure:"JWT_SECRET"`      // HMAC secret or PEM private key
	JWTSecretFile string `mapstructure:"JWT_SECRET_FILE"` // Optional: read JWT_SECRET from this file

	AccessTokenMinutes int `mapstructure:"ACCESS_TOKEN_EXPIRES_MINUTES"` // default: 15
	RefreshTokenHours  int `mapstructure:"REFRESH_TOKEN_EXPIRES_HOURS"`  // Without remember-me (default: 12)
	RefreshTokenDays   int `mapstructure:"REFRESH_TOKEN_EXPIRES_DAYS"`   // With remember-me (default: 30)

	RefreshCookieName string `mapstructure:"REFRESH_COOKIE_NAME"` // default: refresh_token
	RefreshCookiePath string `mapstructure:"REFRESH_COOKIE_PATH"` // default: {API_BASE}/auth
	CookieDomain      string `mapstructure:"COOKIE_DOMAIN"`
	CookieSecure      bool   `mapstructure:"COOKIE_SECURE"`
	CookieSameSite    string `mapstructure:"COOKIE_SAMESITE"` // lax, strict or none (default: lax)

	// CORSAllowedOrigins is "*", a comma separated list or a JSON array.
	CORSAllowedOrigins string   `mapstructure:"CORS_ALLOWED_ORIGINS"`
	CORSOrigins        []string `mapstructure:"-"`

	SeedOnStart   bool   `mapstructure:"SEED_ON_START"`
	AdminEmail    string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`

	DatabaseFile string `mapstructure:"DATABASE_FILE"` // default: auth.db
	PepperFile   string `mapstructure:"PEPPER_FILE"`   // Optional: empty disables the pepper

	LoginRateLimit   int `mapstructure:"LOGIN_RATE_LIMIT"`   // Login/register requests per minute (default: 5)
	RefreshRateLimit int `mapstructure:"REFRESH_RATE_LIMIT"` // Refresh/logout requests per minute (default: 20)

	LogLevel            string        `mapstructure:"LOG_LEVEL"`  // debug, info, warn, error (default: info)
	LogFormat           string        `mapstructure:"LOG_FORMAT"` // json or text (default: json)
	Port                int           `mapstructure:"PORT"`       // default: 8080
	ShutdownGracePeriod time.Duration `mapstructure:"SHUTDOWN_GRACE_PERIOD"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_BASE", "/api/v1")
	v.SetDefault("APP_ENV", EnvDev)
	v.SetDefault("JWT_ALG", jwtx.AlgHS256)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_SECRET_FILE", "")
	v.SetDefault("ACCESS_TOKEN_EXPIRES_MINUTES", int(jwtx.DefaultAccessTokenTTL/time.Minute))
	v.SetDefault("REFRESH_TOKEN_EXPIRES_HOURS", int(jwtx.DefaultShortRefreshTTL/time.Hour))
	v.SetDefault("REFRESH_TOKEN_EXPIRES_DAYS", int(jwtx.DefaultLongRefreshTTL/(24*time.Hour)))
	v.SetDefault("REFRESH_COOKIE_NAME", "refresh_token")
	v.SetDefault("REFRESH_COOKIE_PATH", "")
	v.SetDefault("COOKIE_DOMAIN", "")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("COOKIE_SAMESITE", string(cookiex.SameSiteLax))
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("SEED_ON_START", false)
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("DATABASE_FILE", "auth.db")
	v.SetDefault("PEPPER_FILE", "")
	v.SetDefault("LOGIN_RATE_LIMIT", httpx.StrictLimit.Requests)
	v.SetDefault("REFRESH_RATE_LIMIT", httpx.ModerateLimit.Requests)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("PORT", 8080)
	v.SetDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second)
}

// LoadConfig reads an optional .env file in the working directory, then the
// environment (which wins), normalises the values and validates them. Any
// problem is returned wrapped in ErrConfigInvalid.
func LoadConfig() (Config, error) {
	return loadConfig(".env")
}

func loadConfig(envFile string) (Config, error) {
	v := viper.New()

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !missingConfig(err) {
			return Config{}, fmt.Errorf("%w: read %s: %w", ErrConfigInvalid, envFile, err)
		}
	}

	v.AutomaticEnv()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}

	if err := cfg.normalize(); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// normalize canonicalises case and paths and resolves derived values. It
// only fails on unreadable inputs; semantic checks live in Validate.
func (c *Config) normalize() error {
	c.APIBase = NormalizeAPIBase(c.APIBase)
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.JWTAlg = strings.ToUpper(strings.TrimSpace(c.JWTAlg))
	c.CookieSameSite = strings.ToLower(strings.TrimSpace(c.CookieSameSite))

	if c.RefreshCookiePath == "" {
		c.RefreshCookiePath = c.RoutePrefix() + "/auth"
	} else if !strings.HasPrefix(c.RefreshCookiePath, "/") {
		c.RefreshCookiePath = "/" + c.RefreshCookiePath
	}

	if c.JWTSecret == "" && c.JWTSecretFile != "" {
		b, err := os.ReadFile(c.JWTSecretFile)
		if err != nil {
			return fmt.Errorf("read JWT_SECRET_FILE: %w", err)
		}
		c.JWTSecret = strings.TrimSpace(string(b))
	}

	origins, err := ParseOrigins(c.CORSAllowedOrigins)
	if err != nil {
		return err
	}
	c.CORSOrigins = origins
	return nil
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error

	switch c.JWTAlg {
	case jwtx.AlgHS256:
		if len(c.JWTSecret) < jwtx.MinHMACSecretLength {
			errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters for %s", jwtx.MinHMACSecretLength, c.JWTAlg))
		}
	case jwtx.AlgRS256, jwtx.AlgES256:
		if strings.TrimSpace(c.JWTSecret) == "" {
			errs = append(errs, fmt.Errorf("JWT_SECRET must hold a PEM private key for %s", c.JWTAlg))
		}
	default:
		errs = append(errs, fmt.Errorf("JWT_ALG %q is not one of %s", c.JWTAlg, strings.Join(jwtx.SupportedAlgorithms(), ", ")))
	}

	if c.Env != EnvDev && c.Env != EnvProd {
		errs = append(errs, fmt.Errorf("APP_ENV %q must be %q or %q", c.Env, EnvDev, EnvProd))
	}

	if err := c.CookiePolicy().Validate(); err != nil {
		errs = append(errs, err)
	}

	errs = checkTTL(errs, "ACCESS_TOKEN_EXPIRES_MINUTES", c.AccessTokenMinutes, time.Minute)
	errs = checkTTL(errs, "REFRESH_TOKEN_EXPIRES_HOURS", c.RefreshTokenHours, time.Hour)
	errs = checkTTL(errs, "REFRESH_TOKEN_EXPIRES_DAYS", c.RefreshTokenDays, 24*time.Hour)
	if c.LoginRateLimit <= 0 || c.RefreshRateLimit <= 0 {
		errs = append(errs, errors.New("LOGIN_RATE_LIMIT and REFRESH_RATE_LIMIT must be positive"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.ShutdownGracePeriod <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_GRACE_PERIOD must be positive"))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrConfigInvalid, errors.Join(errs...))
}

// checkTTL rejects lifetimes that are not positive or that overflow
// time.Duration once multiplied by unit.
func checkTTL(errs []error, key string, n int, unit time.Duration) []error {
	switch {
	case n <= 0:
		return append(errs, fmt.Errorf("%s must be positive", key))
	case int64(n) > math.MaxInt64/int64(unit):
		return append(errs, fmt.Errorf("%s %d is too large", key, n))
	}
	return errs
}

// missingConfig reports whether err only says the .env file is absent.
func missingConfig(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.Is(err, os.ErrNotExist) || errors.As(err, &notFound)
}

// RoutePrefix is APIBase as a mux prefix: "" when the API sits at the root.
func (c Config) RoutePrefix() string {
	return strings.TrimSuffix(c.APIBase, "/")
}

func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTokenMinutes) * time.Minute
}

// ShortRefreshTTL is the refresh lifetime without remember-me.
func (c Config) ShortRefreshTTL() time.Duration {
	return time.Duration(c.RefreshTokenHours) * time.Hour
}

// LongRefreshTTL is the refresh lifetime with remember-me.
func (c Config) LongRefreshTTL() time.Duration {
	return time.Duration(c.RefreshTokenDays) * 24 * time.Hour
}

// CookiePolicy builds the refresh cookie policy. An unknown SameSite value
// is kept as-is so Validate can report it.
func (c Config) CookiePolicy() cookiex.Policy {
	return cookiex.Policy{
		Name:     c.RefreshCookieName,
		Path:     c.RefreshCookiePath,
		Domain:   c.CookieDomain,
		Secure:   c.CookieSecure,
		SameSite: cookiex.SameSite(c.CookieSameSite),
	}
}

func (c Config) CORS() httpx.CORSConfig {
	return httpx.CORSConfig{AllowedOrigins: c.CORSOrigins}
}

func (c Config) LoginLimit() httpx.RateLimit {
	return httpx.RateLimit{Requests: c.LoginRateLimit, Window: time.Minute, Burst: c.LoginRateLimit}
}

func (c Config) RefreshLimit() httpx.RateLimit {
	return httpx.RateLimit{Requests: c.RefreshRateLimit, Window: time.Minute, Burst: c.RefreshRateLimit}
}

// NormalizeAPIBase trims spaces and the trailing slash and makes the path
// absolute. An empty base becomes "/".
func NormalizeAPIBase(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	if s = strings.TrimRight(s, "/"); s == "" {
		return "/"
	}
	return s
}

// ParseOrigins accepts "*", a comma separated list or a JSON array of
// origins. Blank entries are dropped.
func ParseOrigins(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, nil
	case s == "*":
		return []string{"*"}, nil
	}

	var raw []string
	if strings.HasPrefix(s, "[") {
		if err := json.Unmarshal([]byte(s), &raw); err != nil {
			return nil, fmt.Errorf("CORS_ALLOWED_ORIGINS: %w", err)
		}
	} else {
		raw = strings.Split(s, ",")
	}

	out := make([]string, 0, len(raw))
	for _, o := range raw {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out, nil
}
