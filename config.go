package main

import (
	"fmt"
	"os"
	"runtime"

	"FastEvaluate/engine"
	"FastEvaluate/loader"

	"gopkg.in/yaml.v3"
)

type configStruct struct {
	RPCPort       int           `yaml:"RPCPort"`
	HTTPPort      int           `yaml:"HTTPPort"`
	MetricsPort   int           `yaml:"MetricsPort"`
	WorkersNum    int           `yaml:"workersNum"`
	ThreadSafe    bool          `yaml:"threadSafe"`
	UseRegServer  bool          `yaml:"UseRegServer"`
	RegServerPort int           `yaml:"RegServerPort"`
	RegServerHost string        `yaml:"RegServerHost"`
	LogMode       string        `yaml:"logMode"`
	LogLevel      string        `yaml:"logLevel"`
	Extension     loader.Config `yaml:"extension"`
}

func defaultConfig() configStruct {
	return configStruct{
		RPCPort:     50051,
		HTTPPort:    8080,
		MetricsPort: 50053,
		WorkersNum:  1,
		LogMode:     "production",
		Extension:   loader.DefaultConfig(),
	}
}

// loadConfig reads path over the defaults. A missing file is not an error.
func loadConfig(path string) (configStruct, error) {
	config := defaultConfig()
	configData, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(configData, &config); err != nil {
		return config, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, config.validate()
}

func (c *configStruct) validate() error {
	if c.WorkersNum <= 0 {
		c.WorkersNum = 1
	}
	if c.WorkersNum > runtime.NumCPU() {
		c.WorkersNum = runtime.NumCPU()
	}
	for name, port := range map[string]int{"RPCPort": c.RPCPort, "HTTPPort": c.HTTPPort, "MetricsPort": c.MetricsPort} {
		if port < 0 || port > 65535 {
			return fmt.Errorf("%s out of range: %d", name, port)
		}
	}
	if c.UseRegServer && (c.RegServerHost == "" || c.RegServerPort <= 0) {
		return fmt.Errorf("UseRegServer needs RegServerHost and RegServerPort")
	}
	return c.Extension.Validate()
}

func (c *configStruct) engineType() int {
	if c.ThreadSafe {
		return engine.MultiThread
	}
	return engine.SingleThread
}
