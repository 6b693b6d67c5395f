package mydups

import (
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/google/vectorio"
)

// NewReporter creates the reporter selected by the run's output format
func NewReporter(cfg RunConfig, out io.Writer) (Reporter, error) {
	switch cfg.OutputFormat {
	case "", FormatHuman:
		return newHumanReporter(out), nil
	case FormatFdupes:
		return newFdupesReporter(out), nil
	case FormatJSON, FormatYAML, FormatMsgpack:
		return newStructuredReporter(cfg, out), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", cfg.OutputFormat)
	}
}

// ============================================================================
// LINE BATCHING
// ============================================================================

// lineBatch collects report lines and writes them in batches. When the
// destination is a file descriptor the batch goes out with one writev per
// IOV_MAX lines.
type lineBatch struct {
	out     io.Writer
	fd      uintptr
	isFile  bool
	pending [][]byte
	limit   int
}

func newLineBatch(out io.Writer, limit int) *lineBatch {
	lb := &lineBatch{out: out, limit: limit}
	if file, ok := out.(*os.File); ok {
		lb.fd = file.Fd()
		lb.isFile = true
	}
	return lb
}

// WriteLine queues one line, flushing when the batch is full
func (lb *lineBatch) WriteLine(line string) error {
	lb.pending = append(lb.pending, []byte(line+"\n"))
	if len(lb.pending) >= lb.limit {
		return lb.Flush()
	}
	return nil
}

// Flush writes all queued lines. Lines are dropped from the batch only once
// written, so a failed flush can be retried.
func (lb *lineBatch) Flush() error {
	for len(lb.pending) > 0 {
		var nw int
		var err error
		if lb.isFile {
			nw, err = lb.writev(lb.pending[:min(maxIovecs, len(lb.pending))])
		} else {
			nw, err = lb.out.Write(lb.pending[0])
		}
		if nw > 0 {
			lb.consume(nw)
		}
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		if nw <= 0 {
			return fmt.Errorf("failed to write report: %w", io.ErrShortWrite)
		}
	}
	lb.pending = lb.pending[:0]
	return nil
}

// consume drops n written bytes from the front of the batch
func (lb *lineBatch) consume(n int) {
	for n > 0 && len(lb.pending) > 0 {
		if n < len(lb.pending[0]) {
			lb.pending[0] = lb.pending[0][n:]
			return
		}
		n -= len(lb.pending[0])
		lb.pending = lb.pending[1:]
	}
}

// writev writes lines with a single vectorio call and returns the byte count;
// a short count leaves the rest for the next call
func (lb *lineBatch) writev(lines [][]byte) (int, error) {
	iovecs := make([]syscall.Iovec, len(lines))
	for i, line := range lines {
		iovecs[i].Base = &line[0]
		iovecs[i].SetLen(len(line))
	}

	nw, err := vectorio.WritevRaw(lb.fd, iovecs)
	if err != nil {
		return 0, fmt.Errorf("vectorio writev: %w", err)
	}
	return nw, nil
}

// ============================================================================
// HUMAN FORMAT
// ============================================================================

// humanReporter prints one "Type N dup. :=> path" line per reported file
// and a final count
type humanReporter struct {
	batch *lineBatch
}

func newHumanReporter(out io.Writer) *humanReporter {
	return &humanReporter{batch: newLineBatch(out, reportBatchLines)}
}

// FormatDuplicateLine renders one report line
func FormatDuplicateLine(dupType DuplicateType, path string) string {
	return fmt.Sprintf("Type %s dup. :=> %s", dupType, path)
}

// FormatSummaryLine renders the final count line
func FormatSummaryLine(total int) string {
	return fmt.Sprintf("Found %d dupes", total)
}

func (hr *humanReporter) ReportGroup(dupType DuplicateType, fp Fingerprint, records []FileRecord) error {
	for _, record := range records {
		if err := hr.batch.WriteLine(FormatDuplicateLine(dupType, record.Path())); err != nil {
			return err
		}
	}
	return nil
}

func (hr *humanReporter) Finish(summary *Summary) error {
	if err := hr.batch.WriteLine(""); err != nil {
		return err
	}
	if err := hr.batch.WriteLine(FormatSummaryLine(summary.Total)); err != nil {
		return err
	}
	return hr.batch.Flush()
}

func (hr *humanReporter) Flush() error {
	return hr.batch.Flush()
}

// ============================================================================
// FDUPES FORMAT
// ============================================================================

// fdupesReporter prints each group's paths one per line with a blank line
// after every group, so the output can be fed to tools expecting fdupes
type fdupesReporter struct {
	batch *lineBatch
}

func newFdupesReporter(out io.Writer) *fdupesReporter {
	return &fdupesReporter{batch: newLineBatch(out, reportBatchLines)}
}

func (fr *fdupesReporter) ReportGroup(dupType DuplicateType, fp Fingerprint, records []FileRecord) error {
	for _, record := range records {
		if err := fr.batch.WriteLine(record.Path()); err != nil {
			return err
		}
	}
	return fr.batch.WriteLine("")
}

func (fr *fdupesReporter) Finish(summary *Summary) error {
	return fr.batch.Flush()
}

func (fr *fdupesReporter) Flush() error {
	return fr.batch.Flush()
}
