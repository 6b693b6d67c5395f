package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	mydups "github.com/mattkeenan/mydups/pkg"
)

var version = "dev"

// Exit statuses
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	shutdownChan := setupSignalHandler()
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr, shutdownChan))
}

// options holds the parsed command line
type options struct {
	includeZero bool
	hash        string
	format      string
	configFile  string
	overrides   []string
	verbose     int
	debug       string
	workers     int
	ignoreFile  string
}

// choiceValue is a string flag restricted to a fixed set of values, so
// unsupported values are rejected while the command line is parsed
type choiceValue struct {
	value   *string
	choices []string
}

func newChoiceValue(value *string, choices ...string) *choiceValue {
	return &choiceValue{value: value, choices: choices}
}

func (c *choiceValue) String() string { return *c.value }
func (c *choiceValue) Type() string   { return "string" }

func (c *choiceValue) Set(s string) error {
	for _, choice := range c.choices {
		if strings.EqualFold(s, choice) {
			*c.value = choice
			return nil
		}
	}
	return fmt.Errorf("unsupported value %q (choose from %s)", s, strings.Join(c.choices, ", "))
}

var _ pflag.Value = (*choiceValue)(nil)

// execute runs the command and returns the process exit status
func execute(args []string, stdout, stderr io.Writer, shutdownChan <-chan struct{}) int {
	cmd := newRootCommand(stdout, shutdownChan)
	// cobra falls back to os.Args when given nil
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	defer mydups.SetLogOutput(mydups.SetLogOutput(stderr))

	err := cmd.Execute()
	if err == nil {
		return exitOK
	}

	var usageErr *mydups.UsageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(stderr, "mydups: %v\n", err)
		fmt.Fprintf(stderr, "Try 'mydups --help' for more information.\n")
		return exitUsage
	}

	fmt.Fprintf(stderr, "mydups: %v\n", err)
	return exitError
}

func newRootCommand(stdout io.Writer, shutdownChan <-chan struct{}) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "mydups [flags] <source_dir> <repository_dir>",
		Short: "List duplicate files of a source directory",
		Long: `mydups lists files of the source directory (dir_A) that have a duplicate in
the source directory itself or in the repository directory (dir_B), leaving
out files whose only duplicates are inside the repository directory.

  Type 1 dup.  one source file matching the repository
  Type 2 dup.  several identical source files matching the repository
  Type 3 dup.  several identical source files, no match in the repository`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return mydups.NewUsageError("expected <source_dir> and <repository_dir>, got %d argument(s)", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd, opts, args[0], args[1], stdout, shutdownChan)
		},
	}

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &mydups.UsageError{Msg: "invalid arguments", Err: err}
	})

	opts.hash = mydups.DefaultHashAlgorithm
	opts.format = mydups.DefaultOutputFormat

	flags := cmd.Flags()
	flags.SortFlags = false
	flags.BoolVarP(&opts.includeZero, "include-zero", "0", false, "do not exclude files whose size is 0")
	flags.VarP(newChoiceValue(&opts.hash, "crc32", "sha256"), "hash", "H", "hashing mode: crc32 (default) or sha256")
	flags.VarP(newChoiceValue(&opts.format, mydups.FormatHuman, mydups.FormatJSON, mydups.FormatYAML,
		mydups.FormatMsgpack, mydups.FormatFdupes), "format", "f", "output format: human, json, yaml, msgpack, fdupes")
	flags.IntVarP(&opts.workers, "workers", "j", mydups.DefaultHashWorkers, "number of concurrent hash workers")
	flags.StringVar(&opts.ignoreFile, "ignore-file", "", "file of regular expressions for paths to skip")
	flags.StringVar(&opts.configFile, "config", "", "ini configuration file")
	flags.StringArrayVar(&opts.overrides, "set", nil, "configuration override key:value (repeatable)")
	flags.CountVarP(&opts.verbose, "verbose", "v", "verbose diagnostics on stderr (repeat for more)")
	flags.StringVar(&opts.debug, "debug", "", "comma-separated debug flags: scan,hash,index,classify")

	return cmd
}

// runFind layers defaults, config file, --set overrides and dedicated flags,
// then runs the search
func runFind(cmd *cobra.Command, opts *options, sourceDir, repositoryDir string, stdout io.Writer, shutdownChan <-chan struct{}) error {
	cfg, err := mydups.LoadConfig(opts.configFile)
	if err != nil {
		return &mydups.UsageError{Msg: "invalid configuration", Err: err}
	}

	overrides := append([]string{}, opts.overrides...)
	flags := cmd.Flags()
	if flags.Changed("hash") {
		overrides = append(overrides, "default:"+opts.hash)
	}
	if flags.Changed("include-zero") {
		overrides = append(overrides, "include_zero:"+strconv.FormatBool(opts.includeZero))
	}
	if flags.Changed("format") {
		overrides = append(overrides, "format:"+opts.format)
	}
	if flags.Changed("workers") {
		overrides = append(overrides, "hash_workers:"+strconv.Itoa(opts.workers))
	}
	if flags.Changed("ignore-file") {
		overrides = append(overrides, "ignore_file:"+opts.ignoreFile)
	}
	if err := cfg.ApplyOverrides(overrides); err != nil {
		return &mydups.UsageError{Msg: "invalid override", Err: err}
	}

	mydups.InitLogging(cfg, opts.verbose, opts.debug)

	runConfig, err := mydups.NewRunConfig(sourceDir, repositoryDir, cfg)
	if err != nil {
		return err
	}

	_, err = mydups.Run(runConfig, shutdownChan, stdout)
	return err
}
