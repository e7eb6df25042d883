//go:build (linux || darwin || freebsd) && cgo

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"FastEvaluate/fastevaluate"
	"FastEvaluate/loader"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const echoExtension = `
#include <stdlib.h>
#include <string.h>

int evaluate(const char *req, int len, char **out, int *out_len) {
	*out = malloc(len + 7);
	memcpy(*out, "scored:", 7);
	if (len > 0) {
		memcpy(*out + 7, req, len);
	}
	*out_len = len + 7;
	return 1;
}
`

// TestCommands_WithNativeExtension runs eval and serve against one compiled
// extension; the process loads it once.
func TestCommands_WithNativeExtension(t *testing.T) {
	cc, err := exec.LookPath("gcc")
	if err != nil {
		t.Skip("gcc not available")
	}
	root := t.TempDir()
	lib := filepath.Join(root, "lib")
	require.NoError(t, os.Mkdir(lib, 0o755))
	src := filepath.Join(root, "ext.c")
	require.NoError(t, os.WriteFile(src, []byte(echoExtension), 0o644))
	so := filepath.Join(lib, "fastevaluate"+loader.PlatformSuffix(loader.KindNative))
	output, err := exec.Command(cc, "-shared", "-fPIC", "-o", so, src).CombinedOutput()
	require.NoError(t, err, string(output))

	cfgPath := filepath.Join(root, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`
RPCPort: 0
HTTPPort: 0
MetricsPort: 0
logMode: development
extension:
  baseDir: %s
`, lib)), 0o644))

	t.Run("Test eval", func(t *testing.T) {
		in := filepath.Join(root, "request.json")
		outPath := filepath.Join(root, "result.json")
		require.NoError(t, os.WriteFile(in, []byte(`{"gt":[],"dt":[]}`), 0o644))

		rootCmd.SetArgs([]string{"eval", "--config", cfgPath, "--in", in, "--out", outPath})
		require.NoError(t, rootCmd.Execute())

		got, err := os.ReadFile(outPath)
		require.NoError(t, err)
		assert.Equal(t, `scored:{"gt":[],"dt":[]}`, string(got))

		ext, err := fastevaluate.Loaded()
		require.NoError(t, err)
		assert.Equal(t, so, ext.Path)
	})

	t.Run("Test eval stdin", func(t *testing.T) {
		var out bytes.Buffer
		rootCmd.SetIn(bytes.NewBufferString("x"))
		rootCmd.SetOut(&out)
		rootCmd.SetArgs([]string{"eval", "--config", cfgPath, "--in", "-", "--out", "-"})
		require.NoError(t, rootCmd.Execute())
		assert.Equal(t, "scored:x", out.String())
	})

	t.Run("Test serve stops on cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		rootCmd.SetArgs([]string{"serve", "--config", cfgPath})
		go func() {
			done <- rootCmd.ExecuteContext(ctx)
		}()
		time.Sleep(300 * time.Millisecond)
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Fatal("serve did not stop")
		}
	})
}
