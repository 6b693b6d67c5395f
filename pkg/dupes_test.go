package mydups

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// findDuplicates runs a complete search and returns what the reporter saw
func findDuplicates(t *testing.T, cfg RunConfig) (*collectingReporter, *Summary) {
	t.Helper()
	reporter := &collectingReporter{}
	summary, err := NewFinder(cfg).FindDuplicates(nil, reporter)
	require.NoError(t, err)
	require.Same(t, summary, reporter.summary)
	return reporter, summary
}

func TestDuplicateTypeString(t *testing.T) {
	assert.Equal(t, "1", DupType1.String())
	assert.Equal(t, "2", DupType2.String())
	assert.Equal(t, "3", DupType3.String())
}

func TestFindDuplicatesScenarios(t *testing.T) {
	testCases := []struct {
		name       string
		source     map[string]string
		repository map[string]string
		want       []string
	}{
		{
			name:   "identical source files without repository match",
			source: map[string]string{"a.txt": "X", "b.txt": "X"},
			want:   []string{"Type 3 dup. :=> a.txt", "Type 3 dup. :=> b.txt"},
		},
		{
			name:       "single source file matched in repository",
			source:     map[string]string{"a.txt": "X"},
			repository: map[string]string{"c.txt": "X"},
			want:       []string{"Type 1 dup. :=> a.txt"},
		},
		{
			name:       "identical source files matched in repository",
			source:     map[string]string{"a.txt": "X", "b.txt": "X"},
			repository: map[string]string{"c.txt": "X"},
			want:       []string{"Type 2 dup. :=> a.txt", "Type 2 dup. :=> b.txt"},
		},
		{
			name:   "unique source file",
			source: map[string]string{"a.txt": "X"},
		},
		{
			name:       "repository-only duplicates are not reported",
			source:     map[string]string{"a.txt": "A"},
			repository: map[string]string{"c.txt": "X", "d.txt": "X"},
		},
		{
			name:       "different sizes never match",
			source:     map[string]string{"a.txt": "X", "b.txt": "XX"},
			repository: map[string]string{"c.txt": "XXX"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sourceDir, repositoryDir := setupTrees(t, tc.source, tc.repository)
			reporter, summary := findDuplicates(t, newTestRunConfig(t, sourceDir, repositoryDir))

			var want []string
			for _, line := range tc.want {
				prefix, name := line[:len("Type N dup. :=> ")], line[len("Type N dup. :=> "):]
				want = append(want, prefix+filepath.Join(sourceDir, name))
			}
			assert.Equal(t, want, reporter.lines())
			assert.Equal(t, len(tc.want), summary.Total)
			assert.Equal(t, len(tc.source), summary.SourceFiles)
			assert.Equal(t, len(tc.repository), summary.RepositoryFiles)
		})
	}
}

func TestFingerprintResolvedOnceAgainstRepository(t *testing.T) {
	sourceDir, repositoryDir := setupTrees(t,
		map[string]string{"a.txt": "X", "b.txt": "X", "solo.txt": "S"},
		map[string]string{"c1": "X", "c2": "X", "sub/c3": "X", "s1": "S", "s2": "S"},
	)

	for _, workers := range []string{"1", "4"} {
		t.Run("workers="+workers, func(t *testing.T) {
			reporter, summary := findDuplicates(t, newTestRunConfig(t, sourceDir, repositoryDir, "hash_workers:"+workers))

			require.Len(t, reporter.groups, 2)
			byType := make(map[DuplicateType]reportedGroup)
			for _, group := range reporter.groups {
				byType[group.Type] = group
			}
			assert.Equal(t, []string{filepath.Join(sourceDir, "solo.txt")}, byType[DupType1].Paths)
			assert.Equal(t, []string{filepath.Join(sourceDir, "a.txt"), filepath.Join(sourceDir, "b.txt")},
				byType[DupType2].Paths)

			assert.Equal(t, 1, summary.Type1)
			assert.Equal(t, 2, summary.Type2)
			assert.Equal(t, 0, summary.Type3)
			assert.Equal(t, 3, summary.Total)
			assert.Equal(t, 5, summary.RepositoryFiles)
		})
	}
}

func TestReportedLinesMatchTotal(t *testing.T) {
	sourceDir, repositoryDir := setupTrees(t,
		map[string]string{
			"one":       "1",
			"two/a":     "2",
			"two/b":     "2",
			"three/a":   "3",
			"three/b":   "3",
			"three/c/d": "3",
			"unique":    "u",
		},
		map[string]string{"r1": "1", "r2": "2", "elsewhere": "e"},
	)

	reporter, summary := findDuplicates(t, newTestRunConfig(t, sourceDir, repositoryDir))

	assert.Len(t, reporter.lines(), summary.Total)
	assert.Equal(t, summary.Type1+summary.Type2+summary.Type3, summary.Total)
	assert.Equal(t, 1, summary.Type1)
	assert.Equal(t, 2, summary.Type2)
	assert.Equal(t, 3, summary.Type3)

	// Type 3 is always reported after the repository pass.
	last := reporter.groups[len(reporter.groups)-1]
	assert.Equal(t, DupType3, last.Type)
	assert.Equal(t, []string{
		filepath.Join(sourceDir, "three", "a"),
		filepath.Join(sourceDir, "three", "b"),
		filepath.Join(sourceDir, "three", "c", "d"),
	}, last.Paths)
}

func TestZeroSizeFiles(t *testing.T) {
	sourceDir, repositoryDir := setupTrees(t,
		map[string]string{"empty": ""},
		map[string]string{"empty": ""},
	)

	reporter, summary := findDuplicates(t, newTestRunConfig(t, sourceDir, repositoryDir))
	assert.Empty(t, reporter.groups)
	assert.Equal(t, 0, summary.Total)

	reporter, summary = findDuplicates(t, newTestRunConfig(t, sourceDir, repositoryDir, "include_zero:true"))
	require.Len(t, reporter.groups, 1)
	assert.Equal(t, DupType1, reporter.groups[0].Type)
	assert.Equal(t, NewFingerprint(0, "0x0"), reporter.groups[0].Fingerprint)
	assert.Equal(t, 1, summary.Total)
}

func TestSymlinkedSubdirectoryNotReported(t *testing.T) {
	sourceDir, repositoryDir := setupTrees(t,
		map[string]string{"keep.txt": "K"},
		map[string]string{"target/dup.txt": "D"},
	)
	require.NoError(t, os.Symlink(filepath.Join(repositoryDir, "target"), filepath.Join(sourceDir, "linked")))

	reporter, summary := findDuplicates(t, newTestRunConfig(t, sourceDir, repositoryDir))
	assert.Empty(t, reporter.groups)
	assert.Equal(t, 0, summary.Total)
	assert.Equal(t, 1, summary.SourceFiles)
}

func TestFindDuplicatesIsRepeatable(t *testing.T) {
	sourceDir, repositoryDir := setupTrees(t,
		map[string]string{"a": "X", "b": "X", "c": "Y", "d": "Z", "e": "Z"},
		map[string]string{"r": "Y"},
	)
	cfg := newTestRunConfig(t, sourceDir, repositoryDir)

	first, _ := findDuplicates(t, cfg)
	second, _ := findDuplicates(t, cfg)
	assert.Equal(t, first.lines(), second.lines())
}

func TestFindDuplicatesReporterError(t *testing.T) {
	sourceDir, repositoryDir := setupTrees(t,
		map[string]string{"a": "X"},
		map[string]string{"b": "X"},
	)
	failure := errors.New("disk full")
	reporter := &collectingReporter{failWith: failure}

	_, err := NewFinder(newTestRunConfig(t, sourceDir, repositoryDir)).FindDuplicates(nil, reporter)
	assert.ErrorIs(t, err, failure)
	assert.Nil(t, reporter.summary)
}

func TestFindDuplicatesUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	sourceDir, repositoryDir := setupTrees(t, map[string]string{"a": "X", "b": "X"}, nil)
	require.NoError(t, os.Chmod(filepath.Join(sourceDir, "b"), 0))

	reporter := &collectingReporter{}
	_, err := NewFinder(newTestRunConfig(t, sourceDir, repositoryDir)).FindDuplicates(nil, reporter)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to index source directory")
	assert.Nil(t, reporter.summary)
}

func TestClassifyLeavesUnmatchedInIndex(t *testing.T) {
	sourceDir, repositoryDir := setupTrees(t,
		map[string]string{"a": "X", "b": "Y", "c": "Y"},
		map[string]string{"r": "X"},
	)
	finder := NewFinder(newTestRunConfig(t, sourceDir, repositoryDir))
	reporter := &collectingReporter{}
	summary := &Summary{}

	indexed, err := finder.BuildSourceIndex(nil)
	require.NoError(t, err)
	assert.Equal(t, 3, indexed)
	assert.Equal(t, 2, finder.index.Len())

	require.NoError(t, finder.ClassifyRepository(nil, reporter, summary))
	assert.Equal(t, 1, finder.index.Len())
	assert.Equal(t, 2, finder.index.RecordCount())

	require.NoError(t, finder.ScanResidual(reporter, summary))
	assert.Equal(t, []string{
		FormatDuplicateLine(DupType1, filepath.Join(sourceDir, "a")),
		FormatDuplicateLine(DupType3, filepath.Join(sourceDir, "b")),
		FormatDuplicateLine(DupType3, filepath.Join(sourceDir, "c")),
	}, reporter.lines())
}

func TestNewDuplicateGroup(t *testing.T) {
	fp := NewFingerprint(1, "0x1")
	group := NewDuplicateGroup(DupType2, fp, []FileRecord{
		testRecord("/src", "a", 1),
		testRecord("/src/sub", "b", 1),
	})

	assert.Equal(t, DupType2, group.Type)
	assert.Equal(t, "1#0x1", group.Hash)
	assert.Equal(t, []string{"/src/a", "/src/sub/b"}, group.Files)
	assert.Equal(t, 2, group.Count)
}
