//go:build (linux || darwin || freebsd) && cgo

package loader

/*
#cgo linux LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>

typedef int (*fe_evaluate_fn)(const char *, int, char **, int *);
typedef void (*fe_release_fn)(char *);

static int fe_call_evaluate(void *fn, const char *req, int req_len, char **out, int *out_len) {
	return ((fe_evaluate_fn)fn)(req, req_len, out, out_len);
}

static void fe_call_release(void *fn, char *p) {
	if (p == NULL) {
		return;
	}
	if (fn != NULL) {
		((fe_release_fn)fn)(p);
		return;
	}
	free(p);
}
*/
import "C"

import (
	"context"
	"errors"
	"fmt"
	"unsafe"
)

// releaseSymbol frees result buffers; libc free is used when it is absent.
const releaseSymbol = "fastevaluate_free"

type nativeLibrary struct {
	path    string
	handle  unsafe.Pointer
	release unsafe.Pointer
}

func openNative(path string) (Library, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))
	handle := C.dlopen(cPath, C.RTLD_NOW|C.RTLD_LOCAL)
	if handle == nil {
		return nil, fmt.Errorf("dlopen %s: %s", path, dlerror())
	}
	lib := &nativeLibrary{path: path, handle: handle}
	lib.release = lib.sym(releaseSymbol)
	return lib, nil
}

func dlerror() string {
	msg := C.dlerror()
	if msg == nil {
		return "unknown error"
	}
	return C.GoString(msg)
}

func (l *nativeLibrary) sym(name string) unsafe.Pointer {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))
	return C.dlsym(l.handle, cName)
}

func (l *nativeLibrary) Lookup(name string) (EvaluateFunc, bool) {
	fn := l.sym(name)
	if fn == nil {
		return nil, false
	}
	return func(ctx context.Context, request []byte) ([]byte, error) {
		return l.call(ctx, fn, request)
	}, true
}

func (l *nativeLibrary) Symbols() []string {
	return exportedSymbols(l.path)
}

func (l *nativeLibrary) call(ctx context.Context, fn unsafe.Pointer, request []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkRequestSize(int64(len(request))); err != nil {
		return nil, err
	}
	var reqPtr *C.char
	if len(request) > 0 {
		reqPtr = (*C.char)(unsafe.Pointer(&request[0]))
	}
	var out *C.char
	var outLen C.int
	ret := C.fe_call_evaluate(fn, reqPtr, C.int(len(request)), &out, &outLen)
	if out != nil {
		// 结果缓冲区由扩展分配，必须由扩展释放
		defer C.fe_call_release(l.release, out)
	}
	if ret == 0 {
		if out != nil && outLen > 0 {
			return nil, fmt.Errorf("evaluate failed: %s", C.GoStringN(out, outLen))
		}
		return nil, errors.New("evaluate failed")
	}
	if out == nil || outLen <= 0 {
		return []byte{}, nil
	}
	return C.GoBytes(unsafe.Pointer(out), outLen), nil
}
