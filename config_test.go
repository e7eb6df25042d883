package main

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"FastEvaluate/engine"
	"FastEvaluate/loader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadConfig(t *testing.T) {
	p := writeConfig(t, `
RPCPort: 6000
HTTPPort: 6001
MetricsPort: 6002
workersNum: 1
threadSafe: true
logMode: development
extension:
  baseDir: /opt/fastevaluate/lib
  kind: goplugin
`)
	cfg, err := loadConfig(p)
	require.NoError(t, err)
	assert.Equal(t, 6000, cfg.RPCPort)
	assert.Equal(t, 6001, cfg.HTTPPort)
	assert.Equal(t, "development", cfg.LogMode)
	assert.Equal(t, engine.MultiThread, cfg.engineType())
	assert.Equal(t, "/opt/fastevaluate/lib", cfg.Extension.BaseDir)
	assert.Equal(t, loader.KindGoPlugin, cfg.Extension.Kind)
	// Untouched fields keep their defaults.
	assert.Equal(t, loader.DefaultPrefix, cfg.Extension.Prefix)
	assert.Equal(t, loader.DefaultSymbol, cfg.Extension.Symbol)
	// The suffix is derived from the decoded kind, not the native default.
	assert.Empty(t, cfg.Extension.Suffix)
	assert.Equal(t, loader.PlatformSuffix(loader.KindGoPlugin), loader.New(cfg.Extension).Config().Suffix)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := loadConfig(writeConfig(t, "RPCPort: [1, 2]"))
	assert.ErrorContains(t, err, "failed to parse config file")

	_, err = loadConfig(writeConfig(t, "HTTPPort: 70000"))
	assert.ErrorContains(t, err, "HTTPPort out of range")

	_, err = loadConfig(writeConfig(t, "UseRegServer: true"))
	assert.ErrorContains(t, err, "RegServerHost")

	_, err = loadConfig(writeConfig(t, "extension:\n  kind: wasm"))
	assert.ErrorContains(t, err, "unsupported extension kind")
}

func TestValidate_ClampsWorkers(t *testing.T) {
	cfg := defaultConfig()
	cfg.WorkersNum = 0
	require.NoError(t, cfg.validate())
	assert.Equal(t, 1, cfg.WorkersNum)

	cfg.WorkersNum = runtime.NumCPU() + 8
	require.NoError(t, cfg.validate())
	assert.Equal(t, runtime.NumCPU(), cfg.WorkersNum)
	assert.Equal(t, engine.SingleThread, cfg.engineType())
}
