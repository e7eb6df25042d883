// Package fastevaluate republishes the evaluate function of the native
// fastevaluate extension. The extension is discovered once per process and
// held until exit.
package fastevaluate

import (
	"context"
	"sync"

	"FastEvaluate/loader"
	"FastEvaluate/logger"
)

var (
	once    sync.Once
	ext     *loader.Extension
	loadErr error
)

// Init discovers and loads the extension. Only the first call does any work;
// every later call returns the same extension or error.
func Init(cfg loader.Config, opts ...loader.Option) (*loader.Extension, error) {
	once.Do(func() {
		opts = append([]loader.Option{loader.WithLogger(logger.Log())}, opts...)
		ext, loadErr = loader.New(cfg, opts...).Load()
	})
	return ext, loadErr
}

// Loaded returns the result of the first Init, loading with the default
// configuration if Init was never called.
func Loaded() (*loader.Extension, error) {
	return Init(loader.DefaultConfig())
}

// Evaluate calls the extension's evaluate function.
func Evaluate(ctx context.Context, request []byte) ([]byte, error) {
	e, err := Loaded()
	if err != nil {
		return nil, err
	}
	return e.Evaluate(ctx, request)
}
