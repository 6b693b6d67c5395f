package mydups

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-ini/ini"
)

// Config holds tool defaults read from an optional ini file.
// The file is only ever read; the tool keeps no state between runs.
type Config struct {
	configPath string
	ini        *ini.File
}

// HashConfig represents hash algorithm configuration
type HashConfig struct {
	Default string // Default hash algorithm: crc32, sha256
}

// ScanConfig represents tree walking configuration
type ScanConfig struct {
	IncludeZero bool   // Report zero-size files too
	IgnoreFile  string // Optional file of ignore regexes
}

// OutputConfig represents output format configuration
type OutputConfig struct {
	Format string // human, json, yaml, msgpack, fdupes
}

// VerboseConfig represents verbosity configuration
type VerboseConfig struct {
	Level int    // Default verbose level (0=quiet, 1=basic, 2=detailed, 3=trace)
	Debug string // Default debug flags (comma-separated)
}

// PerformanceConfig represents performance-related configuration
type PerformanceConfig struct {
	HashWorkers int    // Number of concurrent hash workers (default: 1)
	HashBuffer  string // Read buffer for streamed hashing (default: "2M")
	MmapLimit   string // Largest file hashed through mmap (default: "64M")
}

// AllConfig represents all configuration options
type AllConfig struct {
	Hash        *HashConfig
	Scan        *ScanConfig
	Output      *OutputConfig
	Verbose     *VerboseConfig
	Performance *PerformanceConfig
}

// NewDefaultConfig returns a configuration holding only the defaults
func NewDefaultConfig() *Config {
	cfg := &Config{ini: ini.Empty()}
	// Section creation on an empty file cannot fail for these fixed names.
	_ = cfg.setDefaults()
	return cfg
}

// LoadConfig reads configuration from configPath; an empty path yields the defaults.
// Keys missing from the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return NewDefaultConfig(), nil
	}

	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	iniFile, err := ini.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	return &Config{configPath: configPath, ini: iniFile}, nil
}

// Path returns the file the configuration was read from, if any
func (c *Config) Path() string {
	return c.configPath
}

// setDefaults sets default configuration values
func (c *Config) setDefaults() error {
	defaults := []struct {
		section, key, value string
	}{
		{"filehash", "default", DefaultHashAlgorithm},
		{"scan", "include_zero", "false"},
		{"scan", "ignore_file", ""},
		{"output", "format", DefaultOutputFormat},
		{"verbose", "level", "0"},
		{"verbose", "debug", ""},
		{"performance", "hash_workers", strconv.Itoa(DefaultHashWorkers)},
		{"performance", "hash_buffer", DefaultHashBuffer},
		{"performance", "mmap_limit", DefaultMmapLimit},
	}

	for _, d := range defaults {
		section, err := c.ini.NewSection(d.section)
		if err != nil {
			return fmt.Errorf("failed to create %s section: %w", d.section, err)
		}
		if _, err := section.NewKey(d.key, d.value); err != nil {
			return fmt.Errorf("failed to set default %s.%s: %w", d.section, d.key, err)
		}
	}
	return nil
}

// GetHashConfig returns the hash configuration
func (c *Config) GetHashConfig() *HashConfig {
	hashConfig := &HashConfig{
		Default: DefaultHashAlgorithm, // fallback default
	}

	if c.ini.HasSection("filehash") {
		section := c.ini.Section("filehash")
		if section.HasKey("default") {
			hashConfig.Default = section.Key("default").String()
		}
	}

	return hashConfig
}

// GetScanConfig returns the scan configuration
func (c *Config) GetScanConfig() *ScanConfig {
	scanConfig := &ScanConfig{}

	if c.ini.HasSection("scan") {
		section := c.ini.Section("scan")
		if section.HasKey("include_zero") {
			if includeZero, err := section.Key("include_zero").Bool(); err == nil {
				scanConfig.IncludeZero = includeZero
			}
		}
		if section.HasKey("ignore_file") {
			scanConfig.IgnoreFile = section.Key("ignore_file").String()
		}
	}

	return scanConfig
}

// GetOutputConfig returns the output configuration
func (c *Config) GetOutputConfig() *OutputConfig {
	outputConfig := &OutputConfig{
		Format: DefaultOutputFormat, // fallback default
	}

	if c.ini.HasSection("output") {
		section := c.ini.Section("output")
		if section.HasKey("format") {
			outputConfig.Format = section.Key("format").String()
		}
	}

	return outputConfig
}

// GetVerboseConfig returns the verbose configuration
func (c *Config) GetVerboseConfig() *VerboseConfig {
	verboseConfig := &VerboseConfig{}

	if c.ini.HasSection("verbose") {
		section := c.ini.Section("verbose")
		if section.HasKey("level") {
			if level, err := section.Key("level").Int(); err == nil {
				verboseConfig.Level = level
			}
		}
		if section.HasKey("debug") {
			verboseConfig.Debug = section.Key("debug").String()
		}
	}

	return verboseConfig
}

// GetPerformanceConfig returns the performance configuration
func (c *Config) GetPerformanceConfig() *PerformanceConfig {
	performanceConfig := &PerformanceConfig{
		HashWorkers: DefaultHashWorkers,
		HashBuffer:  DefaultHashBuffer,
		MmapLimit:   DefaultMmapLimit,
	}

	if c.ini.HasSection("performance") {
		section := c.ini.Section("performance")
		if section.HasKey("hash_workers") {
			if workers, err := section.Key("hash_workers").Int(); err == nil {
				performanceConfig.HashWorkers = workers
			}
		}
		if section.HasKey("hash_buffer") {
			if bufferSize := section.Key("hash_buffer").String(); bufferSize != "" {
				performanceConfig.HashBuffer = bufferSize
			}
		}
		if section.HasKey("mmap_limit") {
			if mmapLimit := section.Key("mmap_limit").String(); mmapLimit != "" {
				performanceConfig.MmapLimit = mmapLimit
			}
		}
	}

	return performanceConfig
}

// GetAllConfig returns all configuration options
func (c *Config) GetAllConfig() *AllConfig {
	return &AllConfig{
		Hash:        c.GetHashConfig(),
		Scan:        c.GetScanConfig(),
		Output:      c.GetOutputConfig(),
		Verbose:     c.GetVerboseConfig(),
		Performance: c.GetPerformanceConfig(),
	}
}

// overrideKeys maps override keys to their ini section
var overrideKeys = map[string]string{
	"default":      "filehash",
	"include_zero": "scan",
	"ignore_file":  "scan",
	"format":       "output",
	"level":        "verbose",
	"debug":        "verbose",
	"hash_workers": "performance",
	"hash_buffer":  "performance",
	"mmap_limit":   "performance",
}

// ApplyOverrides applies command-line overrides to the configuration
// Accepts strings like "default:sha256", "format:json", "level:2", "debug:scan"
func (c *Config) ApplyOverrides(overrides []string) error {
	for _, override := range overrides {
		parts := strings.SplitN(override, ":", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid override format '%s', expected 'key:value'", override)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		sectionName, ok := overrideKeys[key]
		if !ok {
			return fmt.Errorf("unsupported override key '%s' (supported: default, include_zero, ignore_file, format, level, debug, hash_workers, hash_buffer, mmap_limit)", key)
		}
		c.ini.Section(sectionName).Key(key).SetValue(value)
	}

	return nil
}

// Validate checks every configuration value
func (c *Config) Validate() error {
	allConfig := c.GetAllConfig()

	if err := ValidateHashAlgorithm(allConfig.Hash.Default); err != nil {
		return err
	}
	if err := c.validateBool("scan", "include_zero"); err != nil {
		return err
	}
	if err := ValidateOutputFormat(allConfig.Output.Format); err != nil {
		return err
	}
	if err := c.validateInt("verbose", "level"); err != nil {
		return err
	}
	if err := ValidateVerboseLevel(allConfig.Verbose.Level); err != nil {
		return err
	}
	if err := c.validateInt("performance", "hash_workers"); err != nil {
		return err
	}
	if err := ValidateHashWorkers(allConfig.Performance.HashWorkers); err != nil {
		return err
	}
	if _, err := ParseHumanSize(allConfig.Performance.HashBuffer); err != nil {
		return fmt.Errorf("invalid hash_buffer: %w", err)
	}
	if _, err := ParseHumanSize(allConfig.Performance.MmapLimit); err != nil {
		return fmt.Errorf("invalid mmap_limit: %w", err)
	}
	return nil
}

// validateBool rejects a present key that does not parse as a boolean
func (c *Config) validateBool(sectionName, key string) error {
	section := c.ini.Section(sectionName)
	if !section.HasKey(key) {
		return nil
	}
	if _, err := section.Key(key).Bool(); err != nil {
		return fmt.Errorf("invalid boolean value for %s: %s", key, section.Key(key).String())
	}
	return nil
}

// validateInt rejects a present key that does not parse as an integer
func (c *Config) validateInt(sectionName, key string) error {
	section := c.ini.Section(sectionName)
	if !section.HasKey(key) {
		return nil
	}
	if _, err := section.Key(key).Int(); err != nil {
		return fmt.Errorf("invalid integer value for %s: %s", key, section.Key(key).String())
	}
	return nil
}

// ValidateHashAlgorithm validates that a hash algorithm is supported
func ValidateHashAlgorithm(algorithm string) error {
	if _, err := GetHashAlgorithm(algorithm); err != nil {
		return fmt.Errorf("%w (supported: crc32, sha256)", err)
	}
	return nil
}

// ValidateOutputFormat validates that an output format is supported
func ValidateOutputFormat(format string) error {
	switch strings.ToLower(format) {
	case FormatHuman, FormatJSON, FormatYAML, FormatMsgpack, FormatFdupes:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s (supported: human, json, yaml, msgpack, fdupes)", format)
	}
}

// ValidateVerboseLevel validates that a verbose level is valid
func ValidateVerboseLevel(level int) error {
	if level < 0 || level > MaxVerboseLevel {
		return fmt.Errorf("invalid verbose level: %d (supported: 0-%d)", level, MaxVerboseLevel)
	}
	return nil
}

// ValidateHashWorkers validates that the hash worker count is reasonable
func ValidateHashWorkers(workers int) error {
	if workers < 1 {
		return fmt.Errorf("hash workers must be at least 1, got: %d", workers)
	}
	if workers > MaxHashWorkers {
		return fmt.Errorf("hash workers should not exceed %d, got: %d", MaxHashWorkers, workers)
	}
	return nil
}
