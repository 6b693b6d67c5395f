package mydups

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTestFile creates path (and its parent directories) holding content
func writeTestFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// setupTrees creates source and repository directories under a temp dir
// and fills them from name->content maps
func setupTrees(t *testing.T, source, repository map[string]string) (string, string) {
	t.Helper()
	base := t.TempDir()
	sourceDir := filepath.Join(base, "source")
	repositoryDir := filepath.Join(base, "repository")
	require.NoError(t, os.MkdirAll(sourceDir, 0755))
	require.NoError(t, os.MkdirAll(repositoryDir, 0755))

	for name, content := range source {
		writeTestFile(t, filepath.Join(sourceDir, name), content)
	}
	for name, content := range repository {
		writeTestFile(t, filepath.Join(repositoryDir, name), content)
	}
	return sourceDir, repositoryDir
}

// newTestRunConfig builds a validated run configuration from defaults plus overrides
func newTestRunConfig(t *testing.T, sourceDir, repositoryDir string, overrides ...string) RunConfig {
	t.Helper()
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.ApplyOverrides(overrides))
	runConfig, err := NewRunConfig(sourceDir, repositoryDir, cfg)
	require.NoError(t, err)
	return runConfig
}

// reportedGroup is one ReportGroup call seen by collectingReporter
type reportedGroup struct {
	Type        DuplicateType
	Fingerprint Fingerprint
	Paths       []string
}

// collectingReporter records groups in the order they are reported
type collectingReporter struct {
	groups   []reportedGroup
	summary  *Summary
	flushed  int
	failWith error
}

func (cr *collectingReporter) ReportGroup(dupType DuplicateType, fp Fingerprint, records []FileRecord) error {
	if cr.failWith != nil {
		return cr.failWith
	}
	paths := make([]string, 0, len(records))
	for _, record := range records {
		paths = append(paths, record.Path())
	}
	cr.groups = append(cr.groups, reportedGroup{Type: dupType, Fingerprint: fp, Paths: paths})
	return nil
}

func (cr *collectingReporter) Finish(summary *Summary) error {
	cr.summary = summary
	return nil
}

func (cr *collectingReporter) Flush() error {
	cr.flushed++
	return nil
}

// lines returns the reported groups flattened into "type path" pairs
func (cr *collectingReporter) lines() []string {
	var lines []string
	for _, group := range cr.groups {
		for _, path := range group.Paths {
			lines = append(lines, FormatDuplicateLine(group.Type, path))
		}
	}
	return lines
}
