package mydups

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// UsageError reports invalid arguments or configuration, detected before any
// directory is walked
type UsageError struct {
	Msg string
	Err error
}

func (e *UsageError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// NewUsageError creates a usage error with a formatted message
func NewUsageError(format string, args ...interface{}) *UsageError {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

// RunConfig is the validated, immutable configuration of one run. It is
// built once at startup and passed by value to the walker and fingerprinter.
type RunConfig struct {
	SourceDir     string
	RepositoryDir string
	IncludeZero   bool
	Algorithm     *HashAlgorithm
	OutputFormat  string
	HashWorkers   int
	HashBuffer    int
	MmapLimit     int
	IgnoreFile    string
}

// NewRunConfig validates cfg and both directories and freezes them into a RunConfig.
// Directories are resolved to absolute paths. Every failure is a *UsageError.
func NewRunConfig(sourceDir, repositoryDir string, cfg *Config) (RunConfig, error) {
	if err := cfg.Validate(); err != nil {
		return RunConfig{}, &UsageError{Msg: "invalid configuration", Err: err}
	}
	all := cfg.GetAllConfig()

	algorithm, err := GetHashAlgorithm(all.Hash.Default)
	if err != nil {
		return RunConfig{}, &UsageError{Msg: "invalid configuration", Err: err}
	}

	// Validate already parsed both sizes.
	hashBuffer, _ := ParseHumanSize(all.Performance.HashBuffer)
	mmapLimit, _ := ParseHumanSize(all.Performance.MmapLimit)

	if err := ValidateIgnoreFile(all.Scan.IgnoreFile); err != nil {
		return RunConfig{}, &UsageError{Msg: "invalid ignore file", Err: err}
	}

	sourceAbs, err := resolveDirectory(sourceDir)
	if err != nil {
		return RunConfig{}, err
	}
	repositoryAbs, err := resolveDirectory(repositoryDir)
	if err != nil {
		return RunConfig{}, err
	}

	if isPathUnder(repositoryAbs, sourceAbs) || isPathUnder(sourceAbs, repositoryAbs) || sourceAbs == repositoryAbs {
		VerboseLog(1, "warning: source %s and repository %s overlap; shared files match themselves", sourceAbs, repositoryAbs)
	}

	return RunConfig{
		SourceDir:     sourceAbs,
		RepositoryDir: repositoryAbs,
		IncludeZero:   all.Scan.IncludeZero,
		Algorithm:     algorithm,
		OutputFormat:  strings.ToLower(all.Output.Format),
		HashWorkers:   all.Performance.HashWorkers,
		HashBuffer:    hashBuffer,
		MmapLimit:     mmapLimit,
		IgnoreFile:    all.Scan.IgnoreFile,
	}, nil
}

// resolveDirectory makes dir absolute and checks that it is an existing directory
func resolveDirectory(dir string) (string, error) {
	if dir == "" {
		return "", NewUsageError("directory path must not be empty")
	}
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return "", &UsageError{Msg: fmt.Sprintf("cannot resolve %s", dir), Err: err}
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return "", &UsageError{Msg: fmt.Sprintf("non-existent directory %s", dir), Err: err}
	}
	if !info.IsDir() {
		return "", NewUsageError("not a directory: %s", dir)
	}
	return absPath, nil
}
