package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	iface "FastEvaluate/interface"
	"FastEvaluate/logger"
	"FastEvaluate/monitor"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrPoolClosed = errors.New("worker pool closed")

// MaxRequestBytes bounds a single evaluate request on every transport.
const MaxRequestBytes = 256 << 20

// restartDelay is how long a worker that panicked waits before it is
// replaced.
var restartDelay = 1 * time.Second

type job struct {
	id      string
	ctx     context.Context
	request []byte
	result  chan iface.RetData
}

// Pool runs evaluations on a fixed set of workers.
type Pool struct {
	backend iface.Backend
	workers int

	mu        sync.RWMutex
	jobs      chan *job
	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewPool(backend iface.Backend, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	p := &Pool{
		backend: backend,
		workers: workers,
		jobs:    make(chan *job, workers),
		closed:  make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.runWorker(i)
	}
	return p
}

func (p *Pool) Workers() int {
	return p.workers
}

func (p *Pool) Backend() iface.Backend {
	return p.backend
}

// Submit queues one evaluation and waits for its result. It gives up when
// ctx is done or the pool is closed.
func (p *Pool) Submit(ctx context.Context, request []byte) iface.RetData {
	j := &job{
		id:      uuid.NewString(),
		ctx:     ctx,
		request: request,
		result:  make(chan iface.RetData, 1),
	}
	p.mu.RLock()
	select {
	case <-p.closed:
		p.mu.RUnlock()
		return iface.RetData{Err: ErrPoolClosed}
	case <-ctx.Done():
		p.mu.RUnlock()
		return iface.RetData{Err: ctx.Err()}
	case p.jobs <- j:
	}
	p.mu.RUnlock()

	select {
	case res := <-j.result:
		return res
	case <-ctx.Done():
		return iface.RetData{Err: ctx.Err()}
	}
}

// Close stops accepting jobs, lets queued jobs finish and waits for the
// workers to exit.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.closed)
		p.mu.Lock()
		close(p.jobs)
		p.mu.Unlock()
	})
	p.wg.Wait()
}

func (p *Pool) runWorker(workerID int) {
	var current *job
	defer func() {
		if r := recover(); r != nil {
			logger.Log().Error("worker panic, restarting",
				zap.Int("worker", workerID),
				zap.Any("panic", r),
				zap.Duration("delay", restartDelay),
			)
			if current != nil {
				current.result <- iface.RetData{Err: fmt.Errorf("evaluate panicked: %v", r)}
			}
			time.Sleep(restartDelay)
			go p.runWorker(workerID)
			return
		}
		p.wg.Done()
	}()
	// 扩展可能依赖线程局部状态
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	logger.Log().Debug("worker started", zap.Int("worker", workerID))
	for j := range p.jobs {
		current = j
		if err := j.ctx.Err(); err != nil {
			j.result <- iface.RetData{Err: err}
			current = nil
			continue
		}
		start := time.Now()
		res := p.backend.Evaluate(j.ctx, j.request)
		monitor.ObserveEvaluate(time.Since(start), res.Err)
		if res.Err != nil {
			logger.Log().Warn("evaluate failed", zap.String("job", j.id), zap.Int("worker", workerID), zap.Error(res.Err))
		}
		j.result <- res
		current = nil
	}
}
