package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/idkit/pkg/idsdk"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("IDSTUB_TENANT_KEY_ID", "tenant")
		t.Setenv("IDSTUB_TENANT_KEY_SECRET", "s3cret")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		require.Equal(t, idsdk.Credentials{ID: "tenant", Secret: "s3cret"}, cfg.Tenant())
		require.Equal(t, 8080, cfg.Port)
		require.Equal(t, "idstub.db", cfg.DatabaseFile)
		require.Equal(t, 24*time.Hour, cfg.ResetTokenTTL)
		require.Equal(t, time.Hour, cfg.HousekeepingInterval)
		require.Empty(t, cfg.BootstrapToken)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("IDSTUB_TENANT_KEY_ID", "tenant")
		t.Setenv("IDSTUB_TENANT_KEY_SECRET", "s3cret")
		t.Setenv("IDSTUB_PORT", "9090")
		t.Setenv("IDSTUB_RESET_TOKEN_TTL", "15m")
		t.Setenv("IDSTUB_PUBLIC_URL", "https://id.example.com")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		require.Equal(t, 9090, cfg.Port)
		require.Equal(t, 15*time.Minute, cfg.ResetTokenTTL)
		require.Equal(t, "https://id.example.com", cfg.PublicURL)
	})

	t.Run("tenant is required", func(t *testing.T) {
		t.Setenv("IDSTUB_TENANT_KEY_ID", "")
		t.Setenv("IDSTUB_TENANT_KEY_SECRET", "")

		_, err := LoadConfig()
		require.Error(t, err)
	})

	t.Run("rejects bad port", func(t *testing.T) {
		t.Setenv("IDSTUB_TENANT_KEY_ID", "tenant")
		t.Setenv("IDSTUB_TENANT_KEY_SECRET", "s3cret")
		t.Setenv("IDSTUB_PORT", "70000")

		_, err := LoadConfig()
		require.Error(t, err)
	})
}

func TestNewServesHealth(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		TenantKeyID:          "tenant",
		TenantKeySecret:      "s3cret",
		DatabaseFile:         filepath.Join(dir, "idstub.db"),
		PepperFile:           filepath.Join(dir, "pepper"),
		ResetTokenTTL:        time.Hour,
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "text",
		Port:                 0,
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	}

	application, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, application.db.Close()) })

	rec := httptest.NewRecorder()
	application.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var health idsdk.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, "ok", health.Status)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database)

	// Tenant routes reject anonymous callers.
	rec = httptest.NewRecorder()
	application.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/applications/x", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
