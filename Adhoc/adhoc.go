package Adhoc

import (
	"context"
	"fmt"
	"time"

	"FastEvaluate/logger"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const TimeOutSeconds = 5

type RegisterRequest struct {
	Id        string `json:"id"`
	IP        string `json:"ip"`
	Port      int    `json:"port"`
	HTTPPort  int    `json:"httpPort"`
	Extension string `json:"extension"`
	Platform  string `json:"platform"`
	TimeStamp int64  `json:"timestamp"`
}

type RegisterResponse struct {
	Id      string `json:"id"`
	Success bool   `json:"success"`
}

type RegServerConfig struct {
	Port int
	Addr string
	// Interval between announcements; TimeOutSeconds when zero.
	Interval time.Duration
}

func (reg *RegServerConfig) SetAddress(addr string, port int) {
	reg.Addr = addr
	reg.Port = port
}

func (reg *RegServerConfig) URL() string {
	return fmt.Sprintf("http://%s:%d/api/register", reg.Addr, reg.Port)
}

// Instance describes this evaluator to the registration server.
type Instance struct {
	IP        string
	Port      int
	HTTPPort  int
	Extension string
	Platform  string
}

// SendAliveMessage announces inst immediately and then every interval until
// ctx is done. Failures are logged and retried on the next tick.
func SendAliveMessage(ctx context.Context, cfg RegServerConfig, inst Instance) {
	interval := cfg.Interval
	if interval <= 0 {
		interval = TimeOutSeconds * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	client := resty.New().SetTimeout(TimeOutSeconds * time.Second)
	id := uuid.NewString()
	url := cfg.URL()
	send := func() {
		var respBody RegisterResponse
		resp, err := client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(RegisterRequest{
				Id:        id,
				IP:        inst.IP,
				Port:      inst.Port,
				HTTPPort:  inst.HTTPPort,
				Extension: inst.Extension,
				Platform:  inst.Platform,
				TimeStamp: time.Now().Unix(),
			}).
			SetResult(&respBody).
			Post(url)
		if err != nil {
			if ctx.Err() == nil {
				logger.Log().Error("register request failed", zap.String("url", url), zap.Error(err))
			}
			return
		}
		if resp.IsError() {
			logger.Log().Error("register server returned error", zap.String("status", resp.Status()), zap.String("body", resp.String()))
			return
		}
		if !respBody.Success {
			logger.Log().Warn("register server rejected instance", zap.String("id", id))
		}
	}
	send()
	for {
		select {
		case <-ctx.Done():
			logger.Log().Info("SendAliveMessage context cancelled, exiting goroutine.")
			return
		case <-ticker.C:
			send()
		}
	}
}
