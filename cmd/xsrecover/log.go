package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"

	"github.com/xsrecover/xsrecover/recovery"
	"github.com/xsrecover/xsrecover/store"
)

// logWriter implements an io.Writer that outputs to both standard error and
// the write-end pipe of an initialized log rotator.
type logWriter struct{}

// Write writes the data in p to standard error and the log rotator.
func (logWriter) Write(p []byte) (n int, err error) {
	if logRotator == nil {
		return os.Stderr.Write(p)
	}
	os.Stderr.Write(p)
	return logRotator.Write(p)
}

// Loggers per subsystem. A single backend logger is created and all subsystem
// loggers created from it will write to the backend.
var (
	// logRotator is one of the logging outputs. Use initLogRotator to set it.
	// It should be closed on application shutdown.
	logRotator *rotator.Rotator

	backendLog = slog.NewBackend(logWriter{})

	log     = backendLog.Logger("MAIN")
	rcvrLog = backendLog.Logger("RCVR")
	storLog = backendLog.Logger("STOR")

	subsystemLoggers = map[string]slog.Logger{
		"MAIN": log,
		"RCVR": rcvrLog,
		"STOR": storLog,
	}
)

func init() {
	recovery.UseLogger(rcvrLog)
	store.UseLogger(storLog)
}

// initLogRotator initializes the logging rotater to write logs to logFile and
// create roll files in the same directory.
func initLogRotator(logFile string, maxRolls int) error {
	logDir, _ := filepath.Split(logFile)
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0700); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	r, err := rotator.New(logFile, 32*1024, false, maxRolls)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}
	logRotator = r

	return nil
}

// setLogLevels sets the level of every subsystem logger.
func setLogLevels(level string) error {
	lvl, ok := slog.LevelFromString(level)
	if !ok {
		return fmt.Errorf("invalid debug level %q", level)
	}

	for _, logger := range subsystemLoggers {
		logger.SetLevel(lvl)
	}

	return nil
}
