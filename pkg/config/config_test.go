package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_CONFIG_FILE", "")
	t.Setenv("PORT", "")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, EnvDev, cfg.Env)
	require.Equal(t, 3000, cfg.Server.Port)
	require.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	require.Equal(t, 5*time.Second, cfg.Billing.TickInterval)
	require.True(t, cfg.Billing.Enabled)
	require.Empty(t, cfg.Classifier.APIKey)
	require.Equal(t, "donation_events", cfg.Events.Exchange)
	require.True(t, cfg.IsDev())
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "8081")
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("APP_BILLING_TICK_INTERVAL", "2500ms")
	t.Setenv("APP_ENV", "prod")

	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, 8081, cfg.Server.Port)
	require.Equal(t, "secret", cfg.Classifier.APIKey)
	require.Equal(t, 2500*time.Millisecond, cfg.Billing.TickInterval)
	require.False(t, cfg.IsDev())
}

func TestNew_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	file := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte("storage:\n  driver: postgres\n  dsn: postgres://x\nbilling:\n  tick_interval: 10s\n"), 0o600))
	t.Setenv("APP_CONFIG_FILE", file)

	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
	require.Equal(t, "postgres://x", cfg.Storage.DSN)
	require.Equal(t, 10*time.Second, cfg.Billing.TickInterval)
}

func TestNew_RejectsBadValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_STORAGE_DRIVER", "sqlite")
	_, err := New()
	require.Error(t, err)

	t.Setenv("APP_STORAGE_DRIVER", "memory")
	t.Setenv("APP_BILLING_TICK_INTERVAL", "100ms")
	_, err = New()
	require.Error(t, err)
}
