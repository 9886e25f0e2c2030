package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresTelegramEnv(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("WEBHOOK_PUBLIC_URL", "https://example.test")
	_, err := Load()
	assert.ErrorContains(t, err, "TELEGRAM_BOT_TOKEN")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("WEBHOOK_PUBLIC_URL", "https://example.test")
	t.Setenv("PORT", "")
	t.Setenv("ENGINE_CONFIG", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9095", cfg.Port)
	assert.Empty(t, cfg.OpenAIKey)
	assert.Equal(t, DefaultEngine(), cfg.Engine)
}

func TestLoadEngine_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("risk_free: 0.035\nbenchmark: QQQ\nlags: [2, 4]\n"), 0o644))

	e, err := LoadEngine(path)
	require.NoError(t, err)
	assert.Equal(t, 0.035, e.RiskFree)
	assert.Equal(t, "QQQ", e.Benchmark)
	assert.Equal(t, []int{2, 4}, e.Lags)
	assert.Equal(t, 60, e.RegimeWindow)
}

func TestLoadEngine_Invalid(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("risk_free: 3\n"), 0o644))
	_, err := LoadEngine(bad)
	assert.Error(t, err)

	_, err = LoadEngine(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	short := filepath.Join(dir, "short.yaml")
	require.NoError(t, os.WriteFile(short, []byte("rolling_window: 1\n"), 0o644))
	_, err = LoadEngine(short)
	assert.ErrorContains(t, err, "rolling_window")
}

func TestLoadEngine_ZeroRiskFreeIsKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rf.yaml")
	require.NoError(t, os.WriteFile(path, []byte("risk_free: 0\n"), 0o644))
	e, err := LoadEngine(path)
	require.NoError(t, err)
	assert.Equal(t, 0.0, e.RiskFree)
}
