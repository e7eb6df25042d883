package loader

import (
	"context"
	"plugin"
)

type goPlugin struct {
	path string
	p    *plugin.Plugin
}

func openGoPlugin(path string) (Library, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, err
	}
	return &goPlugin{path: path, p: p}, nil
}

// Lookup accepts either signature an evaluate function may be built with.
// Go plugin symbols are exported, so "evaluate" also matches "Evaluate".
func (g *goPlugin) Lookup(name string) (EvaluateFunc, bool) {
	sym, err := g.p.Lookup(name)
	if err != nil {
		sym, err = g.p.Lookup(exportedName(name))
		if err != nil {
			return nil, false
		}
	}
	return asEvaluateFunc(sym)
}

func (g *goPlugin) Symbols() []string {
	return exportedSymbols(g.path)
}

func asEvaluateFunc(sym any) (EvaluateFunc, bool) {
	switch fn := sym.(type) {
	case func(context.Context, []byte) ([]byte, error):
		return fn, true
	case *func(context.Context, []byte) ([]byte, error):
		if fn == nil || *fn == nil {
			return nil, false
		}
		return *fn, true
	case func([]byte) ([]byte, error):
		return func(ctx context.Context, request []byte) ([]byte, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return fn(request)
		}, true
	default:
		return nil, false
	}
}

func exportedName(name string) string {
	if name == "" || name[0] < 'a' || name[0] > 'z' {
		return name
	}
	return string(name[0]-'a'+'A') + name[1:]
}
