package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"FastEvaluate/loader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocateCommand_NotFound(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "lib")
	require.NoError(t, os.Mkdir(base, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "fastevaluate.txt"), nil, 0o644))
	cfgPath := filepath.Join(root, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("logMode: development\nextension:\n  baseDir: "+base+"\n  suffix: .so\n"), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"locate", "--config", cfgPath})
	err := rootCmd.Execute()

	require.Error(t, err)
	assert.ErrorIs(t, err, loader.ErrExtensionNotFound)
	assert.Contains(t, err.Error(), base)
	assert.Contains(t, err.Error(), root)
	assert.Contains(t, out.String(), base+": ")
}

func TestSetup_BadLogMode(t *testing.T) {
	configPath = filepath.Join(t.TempDir(), "absent.yaml")
	logMode = "loud"
	defer func() { logMode = "" }()
	_, err := setup()
	assert.ErrorContains(t, err, "unknown log mode")
}
