package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"contesthub/internal/cli/clipboard"
	"contesthub/internal/cli/config"
	"contesthub/internal/cli/repl"
	"contesthub/internal/contest"
	"contesthub/internal/identity"
	"contesthub/internal/judgeclient"
	"contesthub/internal/registration"
	"contesthub/pkg/utils/logger"

	"go.uber.org/zap"
)

const defaultConfigPath = "configs/contesthub.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	baseURL := flag.String("base", "", "Override judge base URL")
	timeout := flag.Duration("timeout", 0, "Override HTTP timeout (e.g. 10s)")
	identityDriver := flag.String("identity", "", "Override identity store: file|redis|memory")
	identityPath := flag.String("identity-path", "", "Override identity file path")
	redisAddr := flag.String("redis", "", "Override redis address for the redis identity store")
	logLevel := flag.String("log-level", "", "Override log level")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *timeout > 0 {
		cfg.Timeout = *timeout
	}
	if *identityDriver != "" {
		cfg.Identity.Driver = *identityDriver
	}
	if *identityPath != "" {
		cfg.Identity.Path = *identityPath
	}
	if *redisAddr != "" {
		cfg.Identity.Redis.Addr = *redisAddr
	}
	if *logLevel != "" {
		cfg.Logger.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	store, closeStore, err := cfg.Identity.OpenIdentityStore()
	if err != nil {
		logger.Error(ctx, "open identity store failed", zap.String("driver", cfg.Identity.Driver), zap.Error(err))
		fmt.Fprintf(os.Stderr, "open identity store failed: %v\n", err)
		return
	}
	defer func() { _ = closeStore() }()

	ident, err := identity.Open(ctx, store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load identity failed: %v\n", err)
		return
	}

	term, err := repl.NewTerminal(cfg.HistoryFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init terminal failed: %v\n", err)
		return
	}
	defer func() { _ = term.Close() }()

	client := judgeclient.New(cfg.BaseURL, cfg.Timeout)
	session := repl.New(repl.Deps{
		Client:    client,
		Identity:  ident,
		Catalog:   contest.NewCatalog(client, ident),
		Registrar: registration.NewRegistrar(client),
		Clipboard: clipboard.NewOSC52(os.Stdout),
		Prompter:  term,
		Config:    cfg,
		Out:       term.Out(),
	})
	session.Run(ctx, term.Next)
}
