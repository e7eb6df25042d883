package loader

import (
	"context"
	"fmt"
	"runtime"
)

const (
	DefaultPrefix = "fastevaluate"
	DefaultSymbol = "evaluate"

	// KindNative is a C ABI shared library.
	KindNative = "native"
	// KindGoPlugin is a library built with -buildmode=plugin.
	KindGoPlugin = "goplugin"
)

// EvaluateFunc is the shape every backend republishes the extension's
// evaluate symbol as. Payloads are opaque to this package.
type EvaluateFunc func(ctx context.Context, request []byte) ([]byte, error)

type Config struct {
	// BaseDir is the primary search directory. Empty means the directory of
	// the running executable.
	BaseDir string `yaml:"baseDir"`
	Prefix  string `yaml:"prefix"`
	// Suffix defaults to PlatformSuffix(Kind), resolved after Kind is final.
	Suffix string `yaml:"suffix"`
	Symbol string `yaml:"symbol"`
	Kind   string `yaml:"kind"`
}

func DefaultConfig() Config {
	return Config{
		Prefix: DefaultPrefix,
		Symbol: DefaultSymbol,
		Kind:   KindNative,
	}
}

// withDefaults fills every empty field of c from DefaultConfig.
func (c Config) withDefaults() Config {
	return c.withDefaultsFor(runtime.GOOS)
}

func (c Config) withDefaultsFor(system string) Config {
	if c.Kind == "" {
		c.Kind = KindNative
	}
	if c.Prefix == "" {
		c.Prefix = DefaultPrefix
	}
	if c.Symbol == "" {
		c.Symbol = DefaultSymbol
	}
	if c.Suffix == "" {
		c.Suffix = platformSuffix(system, c.Kind)
	}
	return c
}

func (c Config) Validate() error {
	switch c.Kind {
	case "", KindNative, KindGoPlugin:
	default:
		return fmt.Errorf("unsupported extension kind: %s", c.Kind)
	}
	return nil
}

// PlatformSuffix is the binary suffix an extension of the given kind carries
// on the running platform.
func PlatformSuffix(kind string) string {
	return platformSuffix(runtime.GOOS, kind)
}

func platformSuffix(system, kind string) string {
	if kind == KindGoPlugin {
		return ".so"
	}
	switch system {
	case "windows":
		return ".dll"
	case "darwin":
		return ".dylib"
	default:
		return ".so"
	}
}

// Platform returns "<os>-<arch>" in the naming used by prebuilt extension
// archives, e.g. linux-x64.
func Platform() string {
	return detArch(runtime.GOOS, runtime.GOARCH)
}

func detArch(system, arch string) string {
	switch arch {
	case "amd64":
		return fmt.Sprintf("%s-%s", system, "x64")
	case "386":
		return fmt.Sprintf("%s-%s", system, "x86")
	default:
		return fmt.Sprintf("%s-%s", system, arch)
	}
}
