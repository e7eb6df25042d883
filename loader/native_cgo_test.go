//go:build (linux || darwin || freebsd) && cgo

package loader

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const evaluateSource = `
#include <stdlib.h>
#include <string.h>

int released = 0;

int evaluate(const char *req, int len, char **out, int *out_len) {
	if (len == 3 && memcmp(req, "bad", 3) == 0) {
		*out = malloc(9);
		memcpy(*out, "bad input", 9);
		*out_len = 9;
		return 0;
	}
	if (len == 4 && memcmp(req, "mute", 4) == 0) {
		*out = NULL;
		*out_len = 0;
		return 0;
	}
	*out = malloc(len + 3);
	memcpy(*out, "ok:", 3);
	if (len > 0) {
		memcpy(*out + 3, req, len);
	}
	*out_len = len + 3;
	return 1;
}

void fastevaluate_free(char *p) {
	released++;
	free(p);
}
`

const noEvaluateSource = `
int PyInit_fastevaluate(void) { return 0; }
int compute_iou(void) { return 1; }
`

// buildShared compiles src into dir/name with the system C compiler.
func buildShared(t *testing.T, dir, name, src string) string {
	t.Helper()
	cc, err := exec.LookPath("gcc")
	if err != nil {
		t.Skip("gcc not available")
	}
	srcPath := filepath.Join(t.TempDir(), name+".c")
	require.NoError(t, os.WriteFile(srcPath, []byte(src), 0o644))
	out := filepath.Join(dir, name)
	cmd := exec.Command(cc, "-shared", "-fPIC", "-o", out, srcPath)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, string(output))
	return out
}

func nativeConfig(base string) Config {
	return Config{BaseDir: base, Kind: KindNative}
}

func TestNative_Evaluate(t *testing.T) {
	_, pkg := layout(t)
	suffix := PlatformSuffix(KindNative)
	path := buildShared(t, pkg, "fastevaluate"+suffix, evaluateSource)

	ext, err := New(nativeConfig(pkg)).Load()
	require.NoError(t, err)
	assert.Equal(t, path, ext.Path)
	assert.Contains(t, ext.Symbols(), "evaluate")
	assert.Contains(t, ext.Symbols(), "fastevaluate_free")

	lib := ext.lib.(*nativeLibrary)
	released := func() int32 {
		var p unsafe.Pointer = lib.sym("released")
		require.NotNil(t, p)
		return *(*int32)(p)
	}

	t.Run("Test success", func(t *testing.T) {
		out, err := ext.Evaluate(context.Background(), []byte("hi"))
		require.NoError(t, err)
		assert.Equal(t, "ok:hi", string(out))
	})

	t.Run("Test empty request", func(t *testing.T) {
		out, err := ext.Evaluate(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, "ok:", string(out))
	})

	t.Run("Test failure text", func(t *testing.T) {
		_, err := ext.Evaluate(context.Background(), []byte("bad"))
		assert.EqualError(t, err, "evaluate failed: bad input")
	})

	t.Run("Test failure without text", func(t *testing.T) {
		_, err := ext.Evaluate(context.Background(), []byte("mute"))
		assert.EqualError(t, err, "evaluate failed")
	})

	t.Run("Test buffers released", func(t *testing.T) {
		before := released()
		_, err := ext.Evaluate(context.Background(), []byte("again"))
		require.NoError(t, err)
		assert.Equal(t, before+1, released())
	})

	t.Run("Test cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := ext.Evaluate(ctx, []byte("hi"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNative_CorruptPrimaryFallsBackToParent(t *testing.T) {
	root, pkg := layout(t)
	suffix := PlatformSuffix(KindNative)
	require.NoError(t, os.WriteFile(filepath.Join(pkg, "fastevaluate"+suffix), []byte("not a library"), 0o644))
	path := buildShared(t, root, "fastevaluate"+suffix, evaluateSource)

	ext, err := New(nativeConfig(pkg)).Load()
	require.NoError(t, err)
	assert.Equal(t, path, ext.Path)
	assert.Equal(t, root, ext.Dir)

	out, err := ext.Evaluate(context.Background(), []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "ok:x", string(out))
}

func TestNative_MissingFunctionListsExports(t *testing.T) {
	_, pkg := layout(t)
	buildShared(t, pkg, "fastevaluate"+PlatformSuffix(KindNative), noEvaluateSource)

	_, err := New(nativeConfig(pkg)).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingFunction)

	var mf *MissingFunctionError
	require.ErrorAs(t, err, &mf)
	assert.Subset(t, mf.Available, []string{"PyInit_fastevaluate", "compute_iou"})
	assert.NotContains(t, mf.Available, "evaluate")
	assert.Contains(t, err.Error(), "compute_iou")
}
