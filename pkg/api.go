package mydups

import (
	"fmt"
	"io"
	"os"
)

// This file holds the entry points used by the command line tool

// InitLogging applies verbose level and debug flags, preferring explicit
// values over the configuration file. The level is clamped to 0-3.
func InitLogging(cfg *Config, verboseLevel int, debugFlagsStr string) {
	verboseConfig := cfg.GetVerboseConfig()

	if verboseLevel <= 0 {
		verboseLevel = verboseConfig.Level
	}
	SetVerboseLevel(min(max(verboseLevel, 0), MaxVerboseLevel))

	if debugFlagsStr == "" {
		debugFlagsStr = verboseConfig.Debug
	}
	SetDebugFlags(debugFlagsStr)

	if debugFlagsStr != "" {
		VerboseLog(1, "Debug flags initialised: %s", debugFlagsStr)
	}
	if path := cfg.Path(); path != "" {
		VerboseLog(1, "configuration: %s", path)
	}
}

// Run executes a complete duplicate search and writes the report to out.
// When the search fails, any report output already produced is flushed
// before the error is returned.
func Run(cfg RunConfig, shutdownChan <-chan struct{}, out io.Writer) (*Summary, error) {
	reporter, err := NewReporter(cfg, out)
	if err != nil {
		return nil, &UsageError{Msg: "invalid output format", Err: err}
	}

	VerboseLog(1, "source: %s", cfg.SourceDir)
	VerboseLog(1, "repository: %s", cfg.RepositoryDir)
	VerboseLog(1, "hash: %s, include zero-size: %t, workers: %d",
		cfg.Algorithm.Name, cfg.IncludeZero, cfg.HashWorkers)

	summary, err := NewFinder(cfg).FindDuplicates(shutdownChan, reporter)
	if err != nil {
		if flushErr := reporter.Flush(); flushErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to flush report: %v\n", flushErr)
		}
		return summary, err
	}

	VerboseLog(1, "reported %d duplicate(s): %d type 1, %d type 2, %d type 3",
		summary.Total, summary.Type1, summary.Type2, summary.Type3)
	return summary, nil
}
