package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"contesthub/internal/mockjudge"
	"contesthub/pkg/utils/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultConfigPath = "configs/mockjudge.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	addr := flag.String("addr", "", "Override listen address")
	fixtures := flag.String("fixtures", "", "Override fixture file")
	verdict := flag.String("verdict", "", "Override the verdict given to non-blank solutions")
	flag.Parse()

	appCfg, err := loadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config failed: %v\n", err)
		return
	}
	if *addr != "" {
		appCfg.Server.Addr = *addr
	}
	if *fixtures != "" {
		appCfg.Fixtures = *fixtures
	}
	if *verdict != "" {
		appCfg.Judge.Verdict = *verdict
	}

	if err := logger.Init(appCfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		return
	}
	defer func() { _ = logger.Sync() }()

	data, err := mockjudge.LoadFixtures(appCfg.Fixtures)
	if err != nil {
		logger.Error(context.Background(), "load fixtures failed", zap.Error(err))
		return
	}

	gin.SetMode(appCfg.Server.Mode)
	router := mockjudge.NewRouter(mockjudge.NewStore(data), mockjudge.Options{
		Verdict:  appCfg.Judge.Verdict,
		Behavior: appCfg.Judge.Behavior,
		Latency:  appCfg.Judge.Latency,
		CORS:     appCfg.CORS,
	})
	httpServer := &http.Server{
		Addr:           appCfg.Server.Addr,
		Handler:        router,
		ReadTimeout:    appCfg.Server.ReadTimeout,
		WriteTimeout:   appCfg.Server.WriteTimeout,
		IdleTimeout:    appCfg.Server.IdleTimeout,
		MaxHeaderBytes: appCfg.Server.MaxHeaderBytes,
	}

	listener, err := net.Listen("tcp", appCfg.Server.Addr)
	if err != nil {
		logger.Error(context.Background(), "init http listener failed", zap.Error(err))
		return
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(context.Background(), "mock judge started",
			zap.String("addr", appCfg.Server.Addr),
			zap.Int("contests", len(data.Contests)),
			zap.String("behavior", string(appCfg.Judge.Behavior)),
		)
		errCh <- httpServer.Serve(listener)
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "http server stopped", zap.Error(err))
		}
	case <-shutdownCtx.Done():
		logger.Info(context.Background(), "shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error(context.Background(), "http server shutdown failed", zap.Error(err))
	}
}
