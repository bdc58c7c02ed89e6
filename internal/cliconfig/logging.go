package cliconfig

import (
	"os"

	"github.com/rs/zerolog"

	xlog "github.com/bft-labs/xferdump/pkg/log"
)

var logger = xlog.NewConsoleLogger(os.Stderr, "info")

// Logger returns the CLI logger.
func Logger() zerolog.Logger {
	return logger
}

// SetLogLevel rebuilds the CLI logger at level.
func SetLogLevel(level string) {
	logger = xlog.NewConsoleLogger(os.Stderr, level)
}
