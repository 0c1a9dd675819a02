package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fleetmon/internal/config"
	"fleetmon/internal/logger"
	"fleetmon/internal/monitor"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	if flag.NArg() > 0 {
		cfg.CSVPath = flag.Arg(0)
	}
	if cfg.CSVPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fleetmon [-config file] <vehicles.csv>")
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := monitor.New(cfg)

	// run monitor in background
	errCh := make(chan error, 1)
	go func() {
		errCh <- m.Run(ctx)
	}()

	// wait for termination signals
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigs:
		logger.Logger.Info().Msg("shutting down")
		cancel()
		if err := <-errCh; err != nil {
			os.Exit(1)
		}
	case err := <-errCh:
		if err != nil {
			logger.Logger.Error().Err(err).Msg("monitor exited")
			if errors.Is(err, monitor.ErrNoFleet) {
				os.Exit(2)
			}
			os.Exit(1)
		}
	}
}
