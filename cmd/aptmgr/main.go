package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("aptmgr %s (built %s)\n", Version, BuildTime)
		os.Exit(ExitSuccess)
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(ExitConfigError)
	}

	logger := SetupLogger(cfg)
	logger.Info("starting aptmgr",
		"version", Version,
		"config", *configPath,
	)

	server, err := NewServer(cfg, logger)
	if err != nil {
		os.Exit(exitCode(logger, "failed to create server", err))
	}

	if err := server.Start(context.Background()); err != nil {
		os.Exit(exitCode(logger, "server error", err))
	}
}

// exitCode logs the failure and picks the process exit code, honoring the
// code carried by a ServerError.
func exitCode(logger *slog.Logger, msg string, err error) int {
	var sErr *ServerError
	if errors.As(err, &sErr) {
		logger.Error(msg, "error", sErr.Err, "operation", sErr.Op)
		return sErr.ExitCode
	}
	logger.Error(msg, "error", err)
	return ExitConfigError
}
