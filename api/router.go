package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"FastEvaluate/engine"
	"FastEvaluate/logger"
	"FastEvaluate/monitor"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const MaxBodyBytes = engine.MaxRequestBytes

func NewRouter(pool *engine.Pool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), func(c *gin.Context) {
		monitor.HTTPTotal.Inc()
		c.Next()
	})
	r.GET("/api/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/api/extension", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": engine.Describe(pool.Backend(), pool.Workers())})
	})
	r.POST("/api/evaluate", func(c *gin.Context) {
		body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request: " + err.Error()})
			return
		}
		if len(body) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "empty request body"})
			return
		}
		res := pool.Submit(c.Request.Context(), body)
		if res.Err != nil {
			c.JSON(statusFor(res.Err), gin.H{"error": res.Err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/octet-stream", res.Data)
	})
	return r
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrPoolClosed), errors.Is(err, engine.ErrUnregistered), errors.Is(err, engine.ErrNotStarted):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return 499
	default:
		return http.StatusInternalServerError
	}
}

// StartHTTPServer serves the router on addr in the background.
func StartHTTPServer(addr string, handler http.Handler) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Log().Info("HTTP server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log().Error("HTTP server stopped", zap.Error(err))
		}
	}()
	return srv
}
