package loader

import (
	"fmt"
	"math"
)

// checkRequestSize rejects requests whose length does not fit the C int
// length argument of the native ABI.
func checkRequestSize(n int64) error {
	if n > math.MaxInt32 {
		return fmt.Errorf("request of %d bytes exceeds the native limit of %d bytes", n, math.MaxInt32)
	}
	return nil
}

// Library is a dynamically loaded extension file.
type Library interface {
	// Lookup returns the named callable, or false when the file does not
	// export it with a usable signature.
	Lookup(name string) (EvaluateFunc, bool)
	// Symbols lists what the file exports, for diagnostics.
	Symbols() []string
}

// Opener loads a library from a path.
type Opener interface {
	Open(path string) (Library, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(path string) (Library, error)

func (f OpenerFunc) Open(path string) (Library, error) {
	return f(path)
}

func openerFor(kind string) (Opener, error) {
	switch kind {
	case KindNative:
		return OpenerFunc(openNative), nil
	case KindGoPlugin:
		return OpenerFunc(openGoPlugin), nil
	default:
		return nil, fmt.Errorf("unsupported extension kind: %s", kind)
	}
}
