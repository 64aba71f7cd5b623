package testanalyze

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/taskrank/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0o600
)

// SetupLogging initializes the global logger on stderr, and additionally on
// logFile when it is not empty. It returns a func that closes the file.
func SetupLogging(logFile string, verbose bool) (func() error, error) {
	level := "info"
	if verbose {
		level = "debug"
	}
	var w io.Writer = os.Stderr
	closeFn := func() error { return nil }

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, file)
		closeFn = file.Close
	}

	if err := logger.InitWithOptions(logger.Options{Level: level, Writer: w}); err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if logFile != "" {
		logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	}
	return closeFn, nil
}
