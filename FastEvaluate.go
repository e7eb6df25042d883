package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	adhoc "FastEvaluate/Adhoc"
	"FastEvaluate/api"
	"FastEvaluate/engine"
	"FastEvaluate/fastevaluate"
	backend "FastEvaluate/gRPC"
	"FastEvaluate/loader"
	"FastEvaluate/logger"
	"FastEvaluate/monitor"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	logMode    string
)

var rootCmd = &cobra.Command{
	Use:           "fastevaluate",
	Short:         "Serve the fastevaluate detection-metric extension",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load the extension and serve it over gRPC and HTTP",
	RunE:  runServe,
}

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Run extension discovery and print the selected file",
	RunE:  runLocate,
}

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Call evaluate once with a request file",
	RunE:  runEval,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", "", "production or development (overrides config)")
	evalCmd.Flags().String("in", "-", "request file, - for stdin")
	evalCmd.Flags().String("out", "-", "result file, - for stdout")
	rootCmd.AddCommand(serveCmd, locateCmd, evalCmd)
}

func GetOutboundIP() (string, error) {
	// 只为取得本机出口 IP，UDP 不会真正建立连接
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()
	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}

// setup loads the config and initialises logging.
func setup() (configStruct, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return config, err
	}
	if logMode != "" {
		config.LogMode = logMode
	}
	if err := logger.Init(config.LogMode, config.LogLevel); err != nil {
		return config, err
	}
	return config, nil
}

func runLocate(cmd *cobra.Command, args []string) error {
	config, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()
	l := loader.New(config.Extension, loader.WithLogger(logger.Log()))
	dirs, err := l.Dirs()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, d := range dirs {
		matches, err := loader.Search(d, l.Config().Prefix, l.Config().Suffix)
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", d, err)
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", d, strings.Join(matches, ", "))
	}
	ext, err := l.Load()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "selected: %s (symbol %s)\n", ext.Path, ext.Symbol)
	return nil
}

func runEval(cmd *cobra.Command, args []string) error {
	config, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()
	in, _ := cmd.Flags().GetString("in")
	outPath, _ := cmd.Flags().GetString("out")

	var request []byte
	if in == "-" {
		request, err = io.ReadAll(cmd.InOrStdin())
	} else {
		request, err = os.ReadFile(in)
	}
	if err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	if _, err := fastevaluate.Init(config.Extension); err != nil {
		return err
	}
	result, err := fastevaluate.Evaluate(cmd.Context(), request)
	if err != nil {
		return err
	}
	if outPath == "-" {
		_, err = cmd.OutOrStdout().Write(result)
		return err
	}
	return os.WriteFile(outPath, result, 0o644)
}

func runServe(cmd *cobra.Command, args []string) error {
	config, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()
	log := logger.Log()
	log.Info("starting fastevaluate",
		zap.Int("RPCPort", config.RPCPort),
		zap.Int("HTTPPort", config.HTTPPort),
		zap.Int("MetricsPort", config.MetricsPort),
		zap.Int("workers", config.WorkersNum),
		zap.String("platform", loader.Platform()),
	)

	ext, err := fastevaluate.Init(config.Extension)
	if err != nil {
		return err
	}
	evaluator := engine.FromExtension(ext, config.engineType())
	pool := engine.NewPool(evaluator, config.WorkersNum)
	defer pool.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := monitor.StartMon(ctx, config.MetricsPort); err != nil {
			log.Error("metrics monitor stopped", zap.Error(err))
		}
	}()

	if config.UseRegServer {
		ip, err := GetOutboundIP()
		if err != nil {
			log.Warn("failed to get outbound IP", zap.Error(err))
		}
		regCfg := adhoc.RegServerConfig{}
		regCfg.SetAddress(config.RegServerHost, config.RegServerPort)
		wg.Add(1)
		go func() {
			defer wg.Done()
			adhoc.SendAliveMessage(ctx, regCfg, adhoc.Instance{
				IP:        ip,
				Port:      config.RPCPort,
				HTTPPort:  config.HTTPPort,
				Extension: ext.Path,
				Platform:  loader.Platform(),
			})
		}()
	} else {
		log.Info("UseRegServer is set to false, skipping registration")
	}

	rpc := backend.NewServer(pool)
	grpcServer, err := backend.StartGRPCServer(config.RPCPort, rpc)
	if err != nil {
		stop()
		wg.Wait()
		return err
	}
	if config.LogMode != logger.ModeDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}
	httpServer := api.StartHTTPServer(fmt.Sprintf(":%d", config.HTTPPort), api.NewRouter(pool))

	select {
	case <-ctx.Done():
		log.Info("signal received, shutting down")
	case <-rpc.CloseChannel:
		log.Info("shutdown requested, shutting down")
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("HTTP server shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
	wg.Wait()
	log.Info("Safely exited")
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
