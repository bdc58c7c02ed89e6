// Package log provides a logging abstraction for xferdump components.
//
// Library packages log through the Logger interface so they never depend on a
// concrete logging library. A zerolog adapter is used by the CLI and a no-op
// logger by tests.
//
//	logger := log.NewZerologAdapterWithLogger(log.NewConsoleLogger(os.Stderr, "info"))
//	logger.Info("walk complete", log.Int("frames", n))
package log
