package monitor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"time"

	"FastEvaluate/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
)

var (
	Registry = prometheus.NewRegistry()

	memUsage = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "memory_usage_Megabytes",
		Help: "Memory usage in Megabytes",
	})
	cpuUsage = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cpu_usage_percent",
		Help: "CPU usage in percent",
	})
	GRPCTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "grpc_requests_total",
		Help: "Total number of gRPC requests processed",
	})
	HTTPTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP API requests processed",
	})
	EvaluateTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "evaluate_calls_total",
		Help: "Calls into the fastevaluate extension by outcome",
	}, []string{"outcome"})
	EvaluateSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "evaluate_duration_seconds",
		Help:    "Time spent inside the fastevaluate extension",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
	})
)

func init() {
	Registry.MustRegister(memUsage, cpuUsage, GRPCTotal, HTTPTotal, EvaluateTotal, EvaluateSeconds)
}

// ObserveEvaluate records one extension call.
func ObserveEvaluate(elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	EvaluateTotal.WithLabelValues(outcome).Inc()
	EvaluateSeconds.Observe(elapsed.Seconds())
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

func checkProcessInfo(p *process.Process) {
	memInfo, err := p.MemoryInfo()
	if err == nil {
		memUsage.Set(float64(memInfo.RSS / 1024 / 1024))
	}
	cpuPercent, err := p.CPUPercent()
	if err == nil {
		cpuUsage.Set(math.Round(cpuPercent*100) / 100)
	}
}

// StartMon serves /metrics on port and samples this process until ctx is
// done.
func StartMon(ctx context.Context, port int) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return fmt.Errorf("inspect own process: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log().Error("metrics server stopped", zap.Error(err))
		}
	}()
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
checkPcs:
	for {
		select {
		case <-ctx.Done():
			break checkPcs
		case <-ticker.C:
			checkProcessInfo(p)
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
