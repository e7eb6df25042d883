//go:build windows

package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"unsafe"
)

const releaseSymbol = "fastevaluate_free"

type nativeLibrary struct {
	path    string
	mod     *syscall.LazyDLL
	release *syscall.LazyProc
}

// setDllDirectory lets the extension resolve its own dependencies from the
// directory it lives in.
func setDllDirectory(dir string) error {
	k32 := syscall.NewLazyDLL("kernel32.dll")
	proc := k32.NewProc("SetDllDirectoryW")
	ptr, err := syscall.UTF16PtrFromString(dir)
	if err != nil {
		return err
	}
	ret, _, callErr := proc.Call(uintptr(unsafe.Pointer(ptr)))
	if ret == 0 {
		old := os.Getenv("PATH")
		_ = os.Setenv("PATH", dir+";"+old)
		if callErr != nil && !errors.Is(callErr, syscall.Errno(0)) {
			return fmt.Errorf("SetDllDirectoryW failed: %v", callErr)
		}
	}
	return nil
}

func openNative(path string) (Library, error) {
	if err := setDllDirectory(filepath.Dir(path)); err != nil {
		return nil, err
	}
	mod := syscall.NewLazyDLL(path)
	if err := mod.Load(); err != nil {
		return nil, fmt.Errorf("load %s failed: %w", path, err)
	}
	lib := &nativeLibrary{path: path, mod: mod}
	if p := mod.NewProc(releaseSymbol); p.Find() == nil {
		lib.release = p
	}
	return lib, nil
}

func (l *nativeLibrary) Lookup(name string) (EvaluateFunc, bool) {
	proc := l.mod.NewProc(name)
	if err := proc.Find(); err != nil {
		return nil, false
	}
	return func(ctx context.Context, request []byte) ([]byte, error) {
		return l.call(ctx, proc, request)
	}, true
}

// Symbols is not available for PE files.
func (l *nativeLibrary) Symbols() []string {
	return exportedSymbols(l.path)
}

func (l *nativeLibrary) call(ctx context.Context, proc *syscall.LazyProc, request []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkRequestSize(int64(len(request))); err != nil {
		return nil, err
	}
	var reqPtr uintptr
	if len(request) > 0 {
		reqPtr = uintptr(unsafe.Pointer(&request[0]))
	}
	var outPtr uintptr
	var outLen int32
	r, _, _ := proc.Call(
		reqPtr,
		uintptr(len(request)),
		uintptr(unsafe.Pointer(&outPtr)),
		uintptr(unsafe.Pointer(&outLen)),
	)
	var out []byte
	if outPtr != 0 && outLen > 0 {
		out = append([]byte(nil), unsafe.Slice((*byte)(unsafe.Pointer(outPtr)), int(outLen))...)
	}
	if outPtr != 0 && l.release != nil {
		l.release.Call(outPtr)
	}
	if int32(r) == 0 {
		if len(out) > 0 {
			return nil, fmt.Errorf("evaluate failed: %s", out)
		}
		return nil, errors.New("evaluate failed")
	}
	if out == nil {
		out = []byte{}
	}
	return out, nil
}
