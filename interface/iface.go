package iface

import "context"

// RetData is what a backend hands back for one evaluation.
type RetData struct {
	Success bool
	Data    []byte
	Err     error
}

type EngineConfig struct {
	Path    string
	Dir     string
	Symbol  string
	Kind    string
	Symbols []string
}

// Extension is the loaded evaluate function, satisfied by *loader.Extension.
type Extension interface {
	Evaluate(ctx context.Context, request []byte) ([]byte, error)
}

type Backend interface {
	Evaluate(ctx context.Context, request []byte) RetData
	CheckConfig() EngineConfig
	State() int
	Destroy()
}
