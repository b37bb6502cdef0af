package seeder

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/fplpicks/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging writes logs to stdout and to logFile. An empty logFile gets a
// timestamped name.
func SetupLogging(logFile string) (io.Closer, error) {
	if logFile == "" {
		logFile = "seed_log_" + time.Now().Format("20060102_150405") + ".log"
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.Init(logger.WithOutput(io.MultiWriter(os.Stdout, file))); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return file, nil
}

// ShowHelp prints usage information.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `fplpicks seeder
===============

Creates sessions, fills them with random valid squads, submits them and checks
the community view counts every accepted squad.

Usage:
  seed-submissions [options]

Options:
  -url string       Base URL of the service (default "http://localhost:9080")
  -squads int       Number of squads to submit (default 200)
  -workers int      Concurrent submitters (default CPU cores * 2)
  -timeout duration HTTP request timeout (default 30s)
  -seed int         Random seed (default 1)
  -output string    Write generated squads as JSON to this file
  -log string       Log file (default: seed_log_TIMESTAMP.log)
  -verbose          Log every rejected squad
  -help             Show this help message

Run against a fresh gameweek to also verify the top captain.
`)
}
