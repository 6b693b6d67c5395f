package mydups

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Report is the document written by the structured output formats
type Report struct {
	Source     string           `json:"source" yaml:"source" msgpack:"source"`
	Repository string           `json:"repository" yaml:"repository" msgpack:"repository"`
	Algorithm  string           `json:"algorithm" yaml:"algorithm" msgpack:"algorithm"`
	Duplicates []DuplicateGroup `json:"duplicates" yaml:"duplicates" msgpack:"duplicates"`
	Summary    Summary          `json:"summary" yaml:"summary" msgpack:"summary"`
}

// structuredReporter collects groups in classification order and encodes a
// single document when the run finishes. An aborted run writes nothing.
type structuredReporter struct {
	format string
	out    io.Writer
	report Report
}

func newStructuredReporter(cfg RunConfig, out io.Writer) *structuredReporter {
	algorithm := ""
	if cfg.Algorithm != nil {
		algorithm = cfg.Algorithm.Name
	}
	return &structuredReporter{
		format: cfg.OutputFormat,
		out:    out,
		report: Report{
			Source:     cfg.SourceDir,
			Repository: cfg.RepositoryDir,
			Algorithm:  algorithm,
			Duplicates: []DuplicateGroup{},
		},
	}
}

func (sr *structuredReporter) ReportGroup(dupType DuplicateType, fp Fingerprint, records []FileRecord) error {
	sr.report.Duplicates = append(sr.report.Duplicates, NewDuplicateGroup(dupType, fp, records))
	return nil
}

func (sr *structuredReporter) Finish(summary *Summary) error {
	sr.report.Summary = *summary

	switch sr.format {
	case FormatJSON:
		encoder := json.NewEncoder(sr.out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(sr.report)
	case FormatYAML:
		encoder := yaml.NewEncoder(sr.out)
		encoder.SetIndent(2)
		if err := encoder.Encode(sr.report); err != nil {
			return err
		}
		return encoder.Close()
	case FormatMsgpack:
		encoder := msgpack.NewEncoder(sr.out)
		return encoder.Encode(sr.report)
	default:
		return fmt.Errorf("unsupported output format: %s", sr.format)
	}
}

func (sr *structuredReporter) Flush() error {
	return nil
}
