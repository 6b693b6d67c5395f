package mydups

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// IgnoreManager holds the regular expressions of an ignore file.
// Patterns are matched against slash-separated paths relative to the walk
// root; directories are matched with a trailing slash.
type IgnoreManager struct {
	ignorePath string
	patterns   []*regexp.Regexp
	loaded     bool
}

// NewIgnoreManager creates an ignore manager reading ignorePath; an empty
// path means nothing is ignored
func NewIgnoreManager(ignorePath string) *IgnoreManager {
	return &IgnoreManager{
		ignorePath: ignorePath,
		patterns:   make([]*regexp.Regexp, 0),
	}
}

// LoadIgnorePatterns loads patterns from the ignore file once
func (im *IgnoreManager) LoadIgnorePatterns() error {
	if im.loaded {
		return nil
	}
	if im.ignorePath == "" {
		im.loaded = true
		return nil
	}

	file, err := os.Open(im.ignorePath)
	if err != nil {
		return fmt.Errorf("failed to open ignore file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		pattern, err := regexp.Compile(line)
		if err != nil {
			return fmt.Errorf("invalid regex pattern at line %d: %s - %w", lineNum, line, err)
		}
		im.patterns = append(im.patterns, pattern)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading ignore file: %w", err)
	}

	VerboseLog(1, "loaded %d ignore pattern(s) from %s", len(im.patterns), im.ignorePath)
	im.loaded = true
	return nil
}

// ShouldIgnore checks if a relative path matches any pattern
func (im *IgnoreManager) ShouldIgnore(relativePath string) bool {
	normalisedPath := filepath.ToSlash(relativePath)

	for _, pattern := range im.patterns {
		if pattern.MatchString(normalisedPath) {
			return true
		}
	}
	return false
}

// HasPatterns returns true if there are any ignore patterns
func (im *IgnoreManager) HasPatterns() bool {
	return len(im.patterns) > 0
}

// ValidateIgnoreFile checks that an ignore file can be read and compiles
func ValidateIgnoreFile(ignorePath string) error {
	if ignorePath == "" {
		return nil
	}
	return NewIgnoreManager(ignorePath).LoadIgnorePatterns()
}
