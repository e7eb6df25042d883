package Adhoc

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendAliveMessage(t *testing.T) {
	var mu sync.Mutex
	var got []RegisterRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/register", r.URL.Path)
		var req RegisterRequest
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			mu.Lock()
			got = append(got, req)
			mu.Unlock()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(RegisterResponse{Id: req.Id, Success: true})
	}))
	defer srv.Close()

	host, portStr, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	cfg := RegServerConfig{Interval: 20 * time.Millisecond}
	cfg.SetAddress(host, port)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		SendAliveMessage(ctx, cfg, Instance{IP: "10.0.0.7", Port: 50051, HTTPPort: 8080, Extension: "/opt/fastevaluate.so", Platform: "linux-x64"})
		close(done)
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) >= 2
	}, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, got[0].Id, got[1].Id)
	assert.Equal(t, "10.0.0.7", got[0].IP)
	assert.Equal(t, 50051, got[0].Port)
	assert.Equal(t, "/opt/fastevaluate.so", got[0].Extension)
}

func TestSendAliveMessage_ServerDown(t *testing.T) {
	cfg := RegServerConfig{Addr: "127.0.0.1", Port: 1, Interval: 10 * time.Millisecond}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	SendAliveMessage(ctx, cfg, Instance{})
}
