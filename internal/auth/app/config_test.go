package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/sessionauth/pkg/cookiex"
	"github.com/aussiebroadwan/sessionauth/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

const validSecret = "0123456789abcdef0123456789abcdef"

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", validSecret)

	cfg, err := loadConfig("")
	require.NoError(t, err)

	require.Equal(t, "/api/v1", cfg.APIBase)
	require.Equal(t, EnvDev, cfg.Env)
	require.Equal(t, "HS256", cfg.JWTAlg)
	require.Equal(t, 15*time.Minute, cfg.AccessTTL())
	require.Equal(t, 12*time.Hour, cfg.ShortRefreshTTL())
	require.Equal(t, 30*24*time.Hour, cfg.LongRefreshTTL())
	require.Equal(t, "refresh_token", cfg.RefreshCookieName)
	require.Equal(t, "/api/v1/auth", cfg.RefreshCookiePath)
	require.Equal(t, "lax", cfg.CookieSameSite)
	require.False(t, cfg.CookieSecure)
	require.Empty(t, cfg.CORSOrigins)
	require.Equal(t, "auth.db", cfg.DatabaseFile)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
	require.Equal(t, 5, cfg.LoginLimit().Requests)
	require.Equal(t, 20, cfg.RefreshLimit().Requests)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", validSecret)
	t.Setenv("JWT_ALG", "hs256")
	t.Setenv("APP_ENV", " PROD ")
	t.Setenv("API_BASE", "api/v2/")
	t.Setenv("COOKIE_SAMESITE", "None")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("ACCESS_TOKEN_EXPIRES_MINUTES", "5")
	t.Setenv("REFRESH_TOKEN_EXPIRES_DAYS", "7")
	t.Setenv("CORS_ALLOWED_ORIGINS", `["http://a.example.com", " http://b.example.com "]`)
	t.Setenv("SHUTDOWN_GRACE_PERIOD", "30s")

	cfg, err := loadConfig("")
	require.NoError(t, err)

	require.Equal(t, "HS256", cfg.JWTAlg)
	require.Equal(t, EnvProd, cfg.Env)
	require.Equal(t, "/api/v2", cfg.APIBase)
	require.Equal(t, "/api/v2/auth", cfg.RefreshCookiePath)
	require.Equal(t, 5*time.Minute, cfg.AccessTTL())
	require.Equal(t, 7*24*time.Hour, cfg.LongRefreshTTL())
	require.Equal(t, []string{"http://a.example.com", "http://b.example.com"}, cfg.CORSOrigins)
	require.True(t, cfg.CORS().AllowCredentials())
	require.Equal(t, 30*time.Second, cfg.ShutdownGracePeriod)

	p := cfg.CookiePolicy()
	require.Equal(t, cookiex.SameSiteNone, p.SameSite)
	require.True(t, p.Secure)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"JWT_SECRET="+validSecret+"\nPORT=9090\nADMIN_EMAIL=admin@example.com\n",
	), 0o600))
	t.Setenv("PORT", "9191")

	cfg, err := loadConfig(envFile)
	require.NoError(t, err)
	require.Equal(t, "admin@example.com", cfg.AdminEmail)
	require.Equal(t, 9191, cfg.Port, "environment wins over .env")
}

func TestLoadConfig_LargestTTLs(t *testing.T) {
	t.Setenv("JWT_SECRET", validSecret)
	t.Setenv("REFRESH_TOKEN_EXPIRES_DAYS", "106751")

	cfg, err := loadConfig("")
	require.NoError(t, err)
	require.Positive(t, cfg.LongRefreshTTL())
}

func TestLoadConfig_MissingEnvFile(t *testing.T) {
	t.Setenv("JWT_SECRET", validSecret)

	_, err := loadConfig(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
}

func TestLoadConfig_UnreadableEnvFile(t *testing.T) {
	t.Setenv("JWT_SECRET", validSecret)

	t.Run("malformed", func(t *testing.T) {
		envFile := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(envFile, []byte("this is not an env line\n"), 0o600))

		_, err := loadConfig(envFile)
		require.ErrorIs(t, err, ErrConfigInvalid)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := loadConfig(t.TempDir())
		require.ErrorIs(t, err, ErrConfigInvalid)
		require.ErrorContains(t, err, "read ")
	})
}

func TestLoadConfig_SecretFile(t *testing.T) {
	pem, err := cryptox.GenerateECKeyPEM()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "jwt.pem")
	require.NoError(t, os.WriteFile(path, []byte(pem), 0o600))
	t.Setenv("JWT_ALG", "ES256")
	t.Setenv("JWT_SECRET_FILE", path)

	cfg, err := loadConfig("")
	require.NoError(t, err)
	require.Contains(t, cfg.JWTSecret, "PRIVATE KEY")
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantMsg string
	}{
		{"short HMAC secret", map[string]string{"JWT_SECRET": "short"}, "at least 32"},
		{"unknown alg", map[string]string{"JWT_SECRET": validSecret, "JWT_ALG": "none"}, "JWT_ALG"},
		{"RS256 without key", map[string]string{"JWT_ALG": "RS256"}, "PEM private key"},
		{"unknown env", map[string]string{"JWT_SECRET": validSecret, "APP_ENV": "staging"}, "APP_ENV"},
		{"samesite none without secure", map[string]string{"JWT_SECRET": validSecret, "COOKIE_SAMESITE": "none"}, "SameSite=None requires Secure"},
		{"bad samesite", map[string]string{"JWT_SECRET": validSecret, "COOKIE_SAMESITE": "sometimes"}, "sometimes"},
		{"zero access ttl", map[string]string{"JWT_SECRET": validSecret, "ACCESS_TOKEN_EXPIRES_MINUTES": "0"}, "ACCESS_TOKEN_EXPIRES_MINUTES"},
		{"negative refresh ttl", map[string]string{"JWT_SECRET": validSecret, "REFRESH_TOKEN_EXPIRES_HOURS": "-1"}, "REFRESH_TOKEN_EXPIRES_HOURS"},
		{"access ttl overflows", map[string]string{"JWT_SECRET": validSecret, "ACCESS_TOKEN_EXPIRES_MINUTES": "999999999"}, "ACCESS_TOKEN_EXPIRES_MINUTES 999999999 is too large"},
		{"short refresh ttl overflows", map[string]string{"JWT_SECRET": validSecret, "REFRESH_TOKEN_EXPIRES_HOURS": "9999999"}, "REFRESH_TOKEN_EXPIRES_HOURS 9999999 is too large"},
		{"long refresh ttl overflows", map[string]string{"JWT_SECRET": validSecret, "REFRESH_TOKEN_EXPIRES_DAYS": "200000"}, "REFRESH_TOKEN_EXPIRES_DAYS 200000 is too large"},
		{"bad origins json", map[string]string{"JWT_SECRET": validSecret, "CORS_ALLOWED_ORIGINS": "[oops"}, "CORS_ALLOWED_ORIGINS"},
		{"missing secret file", map[string]string{"JWT_SECRET_FILE": "/does/not/exist"}, "JWT_SECRET_FILE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := loadConfig("")
			require.ErrorIs(t, err, ErrConfigInvalid)
			require.ErrorContains(t, err, tt.wantMsg)
		})
	}
}

func TestValidate_ReportsEverything(t *testing.T) {
	cfg := Config{
		JWTAlg:            "HS256",
		JWTSecret:         "short",
		Env:               "qa",
		RefreshCookieName: "refresh_token",
		RefreshCookiePath: "/auth",
		CookieSameSite:    "none",
		Port:              8080,
	}

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrConfigInvalid)
	require.ErrorIs(t, err, cookiex.ErrInsecureCrossSite)
	for _, want := range []string{"JWT_SECRET", "APP_ENV", "ACCESS_TOKEN_EXPIRES_MINUTES", "SHUTDOWN_GRACE_PERIOD"} {
		require.ErrorContains(t, err, want)
	}
}

func TestNormalizeAPIBase(t *testing.T) {
	for in, want := range map[string]string{
		"/api/v1":    "/api/v1",
		"api/v1":     "/api/v1",
		" /api/v1/ ": "/api/v1",
		"":           "/",
		"/":          "/",
		"//":         "/",
	} {
		require.Equal(t, want, NormalizeAPIBase(in), "input %q", in)
	}
}

func TestRootAPIBase(t *testing.T) {
	t.Setenv("JWT_SECRET", validSecret)
	t.Setenv("API_BASE", "/")

	cfg, err := loadConfig("")
	require.NoError(t, err)
	require.Equal(t, "/", cfg.APIBase)
	require.Empty(t, cfg.RoutePrefix())
	require.Equal(t, "/auth", cfg.RefreshCookiePath)
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"*", []string{"*"}},
		{" * ", []string{"*"}},
		{"http://a.com", []string{"http://a.com"}},
		{"http://a.com, http://b.com,,", []string{"http://a.com", "http://b.com"}},
		{`["http://a.com","http://b.com"]`, []string{"http://a.com", "http://b.com"}},
		{`["*"]`, []string{"*"}},
	}
	for _, tt := range tests {
		got, err := ParseOrigins(tt.in)
		require.NoError(t, err, tt.in)
		if tt.want == nil {
			require.Empty(t, got, tt.in)
			continue
		}
		require.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseOrigins(`["unterminated`)
	require.Error(t, err)
}

func TestWildcardOriginDisablesCredentials(t *testing.T) {
	t.Setenv("JWT_SECRET", validSecret)
	t.Setenv("CORS_ALLOWED_ORIGINS", "*")

	cfg, err := loadConfig("")
	require.NoError(t, err)
	require.False(t, cfg.CORS().AllowCredentials())
}
