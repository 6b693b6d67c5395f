// Package mydups finds duplicate files between a source tree and a repository
// tree, reporting only duplicates that involve at least one source file.
//
// # Core API
//
// Build an immutable run configuration, then run the finder with a reporter:
//
//	cfg, err := mydups.NewRunConfig("/data/incoming", "/data/archive", mydups.NewDefaultConfig())
//	if err != nil {
//		return err
//	}
//	reporter, err := mydups.NewReporter(cfg, os.Stdout)
//	summary, err := mydups.NewFinder(cfg).FindDuplicates(nil, reporter)
//
// # Classification
//
// The source tree is indexed by fingerprint (size plus content hash). The
// repository tree is then streamed against that index without being stored:
//
//   - Type 1: exactly one source file matches the repository.
//   - Type 2: several identical source files, at least one of them (and so
//     all of them) matching the repository.
//   - Type 3: several identical source files with no repository match.
//
// A fingerprint is resolved against the repository at most once; whatever is
// left after the repository pass is scanned for Type 3 groups.
//
// Files that only have duplicates inside the repository are never reported.
//
// # Configuration
//
// Defaults can be read from an ini file (see LoadConfig) and overridden with
// "key:value" strings, the same way the command line does:
//
//	cfg, _ := mydups.LoadConfig("/etc/mydups.ini")
//	_ = cfg.ApplyOverrides([]string{"default:sha256", "hash_workers:4"})
//
// Enable diagnostics on stderr:
//
//	mydups.SetDebugFlags("scan,classify")
//	mydups.SetVerboseLevel(2)
package mydups
