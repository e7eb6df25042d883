// Package loader finds the precompiled fastevaluate extension, loads it and
// exposes its evaluate function.
//
// Discovery tries the base directory first and its parent second. Only the
// first matching file of each directory is tried. Failures while trying a
// directory are not reported on their own; if both directories come up
// empty a single NotFoundError names them.
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

type Loader struct {
	cfg    Config
	opener Opener
	log    *zap.Logger
}

type Option func(*Loader)

// WithOpener replaces the backend selected by Config.Kind.
func WithOpener(o Opener) Option {
	return func(l *Loader) {
		l.opener = o
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

func New(cfg Config, opts ...Option) *Loader {
	l := &Loader{
		cfg: cfg.withDefaults(),
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) Config() Config {
	return l.cfg
}

// Dirs returns the primary search directory followed by its parent.
func (l *Loader) Dirs() ([]string, error) {
	base := l.cfg.BaseDir
	if base == "" {
		exePath, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to get executable path: %w", err)
		}
		base = filepath.Dir(exePath)
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, err
	}
	return []string{base, filepath.Dir(base)}, nil
}

// Search lists the files in dir named prefix*suffix, in directory listing
// order.
func Search(dir, prefix, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var matches []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix) {
			matches = append(matches, filepath.Join(dir, name))
		}
	}
	return matches, nil
}

// Load runs the discovery procedure.
func (l *Loader) Load() (*Extension, error) {
	if err := l.cfg.Validate(); err != nil {
		return nil, err
	}
	opener := l.opener
	if opener == nil {
		var err error
		if opener, err = openerFor(l.cfg.Kind); err != nil {
			return nil, err
		}
	}
	dirs, err := l.Dirs()
	if err != nil {
		return nil, err
	}

	notFound := &NotFoundError{
		Pattern: l.cfg.Prefix + "*" + l.cfg.Suffix,
		Dirs:    dirs,
	}
	for _, dir := range dirs {
		path, lib, err := l.tryDir(opener, dir)
		if err != nil {
			l.log.Debug("extension not loaded from directory", zap.String("dir", dir), zap.Error(err))
			notFound.Attempts = append(notFound.Attempts, Attempt{Dir: dir, Path: path, Err: err})
			continue
		}
		return l.bind(dir, path, lib)
	}
	return nil, notFound
}

func (l *Loader) tryDir(opener Opener, dir string) (string, Library, error) {
	matches, err := Search(dir, l.cfg.Prefix, l.cfg.Suffix)
	if err != nil {
		return "", nil, err
	}
	if len(matches) == 0 {
		return "", nil, os.ErrNotExist
	}
	path := matches[0]
	lib, err := opener.Open(path)
	if err != nil {
		return path, nil, err
	}
	if lib == nil {
		return path, nil, fmt.Errorf("opener returned no library for %s", path)
	}
	return path, lib, nil
}

func (l *Loader) bind(dir, path string, lib Library) (*Extension, error) {
	fn, ok := lib.Lookup(l.cfg.Symbol)
	if !ok || fn == nil {
		return nil, &MissingFunctionError{
			Path:      path,
			Symbol:    l.cfg.Symbol,
			Available: lib.Symbols(),
		}
	}
	l.log.Info("fastevaluate extension loaded",
		zap.String("path", path),
		zap.String("symbol", l.cfg.Symbol),
		zap.String("kind", l.cfg.Kind),
	)
	return &Extension{
		Path:     path,
		Dir:      dir,
		Symbol:   l.cfg.Symbol,
		Kind:     l.cfg.Kind,
		evaluate: fn,
		lib:      lib,
	}, nil
}

// Extension is a loaded extension. It is never unloaded.
type Extension struct {
	Path   string
	Dir    string
	Symbol string
	Kind   string

	evaluate EvaluateFunc
	lib      Library
}

func (e *Extension) Evaluate(ctx context.Context, request []byte) ([]byte, error) {
	return e.evaluate(ctx, request)
}

// Func returns the republished callable itself.
func (e *Extension) Func() EvaluateFunc {
	return e.evaluate
}

func (e *Extension) Symbols() []string {
	return e.lib.Symbols()
}
