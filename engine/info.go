package engine

import iface "FastEvaluate/interface"

func StateName(state int) string {
	switch state {
	case UNREGISTERED:
		return "unregistered"
	case REGISTERED:
		return "registered"
	case IDLE:
		return "idle"
	case BUSY:
		return "busy"
	default:
		return "unknown"
	}
}

// Describe is the extension report shared by the RPC and HTTP surfaces.
// Values are limited to types structpb accepts.
func Describe(b iface.Backend, workers int) map[string]any {
	cfg := b.CheckConfig()
	symbols := make([]any, 0, len(cfg.Symbols))
	for _, s := range cfg.Symbols {
		symbols = append(symbols, s)
	}
	return map[string]any{
		"path":    cfg.Path,
		"dir":     cfg.Dir,
		"symbol":  cfg.Symbol,
		"kind":    cfg.Kind,
		"symbols": symbols,
		"state":   StateName(b.State()),
		"workers": workers,
	}
}
