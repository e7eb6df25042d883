//go:build !windows && !((linux || darwin || freebsd) && cgo)

package loader

import (
	"fmt"
	"runtime"
)

func openNative(path string) (Library, error) {
	return nil, fmt.Errorf("cannot load %s: native extensions need a cgo build on %s", path, runtime.GOOS)
}
