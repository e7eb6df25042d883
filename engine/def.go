package engine

import (
	"context"
	"errors"
	"sync"

	iface "FastEvaluate/interface"
	"FastEvaluate/loader"
)

const UNREGISTERED = 0x0001
const REGISTERED = 0x0002
const IDLE = 0x0003
const BUSY = 0x0004

// SingleThread serialises calls into the extension; MultiThread lets every
// worker call it at once. Extensions are assumed not to be thread safe
// unless configured otherwise.
const SingleThread = 0x1001
const MultiThread = 0x1002

var (
	ErrUnregistered = errors.New("evaluator not registered")
	ErrNotStarted   = errors.New("evaluator registered but not started")
	ErrRegistered   = errors.New("evaluator already holds an extension")
)

type Evaluator struct {
	mu         sync.Mutex
	callMu     sync.Mutex
	ext        iface.Extension
	config     iface.EngineConfig
	engineType int
	state      int
	inflight   int
}

// New wraps an already loaded extension and starts it. A nil ext leaves the
// evaluator UNREGISTERED.
func New(ext iface.Extension, config iface.EngineConfig, engineType int) *Evaluator {
	if engineType != MultiThread {
		engineType = SingleThread
	}
	e := &Evaluator{
		engineType: engineType,
		state:      UNREGISTERED,
	}
	if ext != nil {
		_ = e.Register(ext, config)
		_ = e.Start()
	}
	return e
}

// Register attaches ext to an UNREGISTERED evaluator. Calls are refused
// until Start.
func (e *Evaluator) Register(ext iface.Extension, config iface.EngineConfig) error {
	if ext == nil {
		return ErrUnregistered
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != UNREGISTERED {
		return ErrRegistered
	}
	e.ext = ext
	e.config = config
	e.state = REGISTERED
	return nil
}

// Start moves a REGISTERED evaluator to IDLE. Starting a running evaluator
// is a no-op.
func (e *Evaluator) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case UNREGISTERED:
		return ErrUnregistered
	case REGISTERED:
		e.state = IDLE
	}
	return nil
}

// FromExtension builds an evaluator around a loader result.
func FromExtension(ext *loader.Extension, engineType int) *Evaluator {
	config := iface.EngineConfig{
		Path:    ext.Path,
		Dir:     ext.Dir,
		Symbol:  ext.Symbol,
		Kind:    ext.Kind,
		Symbols: ext.Symbols(),
	}
	return New(ext, config, engineType)
}

func (e *Evaluator) CheckConfig() iface.EngineConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config
}

func (e *Evaluator) State() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Evaluator) EngineType() int {
	return e.engineType
}

func (e *Evaluator) Evaluate(ctx context.Context, request []byte) iface.RetData {
	e.mu.Lock()
	switch e.state {
	case UNREGISTERED:
		e.mu.Unlock()
		return iface.RetData{Success: false, Err: ErrUnregistered}
	case REGISTERED:
		e.mu.Unlock()
		return iface.RetData{Success: false, Err: ErrNotStarted}
	}
	ext := e.ext
	e.inflight++
	e.state = BUSY
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.inflight--
		if e.inflight == 0 && e.state == BUSY {
			e.state = IDLE
		}
		e.mu.Unlock()
	}()

	if e.engineType == SingleThread {
		e.callMu.Lock()
		defer e.callMu.Unlock()
	}
	out, err := ext.Evaluate(ctx, request)
	if err != nil {
		return iface.RetData{Success: false, Err: err}
	}
	return iface.RetData{Success: true, Data: out}
}

// Destroy drops the extension reference. The library itself stays mapped
// for the life of the process.
func (e *Evaluator) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ext = nil
	e.config = iface.EngineConfig{}
	e.state = UNREGISTERED
}
