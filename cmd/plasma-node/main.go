package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"plasma.dev/node/node"
)

func main() {
	defaults := node.DefaultConfig()

	cfg := defaults
	configPath := flag.String("config", "", "path to TOML config file")
	flag.StringVar(&cfg.ChainIDHex, "chain-id", defaults.ChainIDHex, "chain id, hex")
	flag.StringVar(&cfg.DataDir, "datadir", defaults.DataDir, "node data directory")
	flag.StringVar(&cfg.LogLevel, "log-level", defaults.LogLevel, "log level: debug|info|warn|error")
	flag.Uint64Var(&cfg.MinExitPeriod, "min-exit-period", defaults.MinExitPeriod, "minimum exit period, seconds")
	flag.Uint64Var(&cfg.QuarantinePeriod, "quarantine-period", defaults.QuarantinePeriod, "registry quarantine period, seconds")
	dryRun := flag.Bool("dry-run", false, "print effective config and exit")
	flag.Parse()

	if *configPath != "" {
		loaded, err := node.LoadConfig(*configPath)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
			os.Exit(2)
		}
		cfg = loaded
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if err := node.ValidateConfig(cfg); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(2)
	}

	rt, err := node.NewRuntime(cfg, nil)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "runtime init failed: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = rt.Close() }()

	m := rt.Store().Manifest()
	_, _ = fmt.Fprintf(os.Stdout, "chain: id=%s next_child_block=%d next_deposit_block=%d\n",
		m.ChainIDHex, m.NextChildBlock, m.NextDepositBlock)
	_, _ = fmt.Fprintf(os.Stdout, "exit game: min_exit_period=%ds quarantine=%ds\n",
		cfg.MinExitPeriod, cfg.QuarantinePeriod)
	if *dryRun {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, _ = fmt.Fprintln(os.Stdout, "plasma-node running")
	<-ctx.Done()
	_, _ = fmt.Fprintln(os.Stdout, "plasma-node stopped")
}
