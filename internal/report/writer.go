package report

import (
	"io"

	"github.com/yashikota/maildigest/internal/model"
)

// Writer defines the interface for report output.
// Implementations write aggregate reports in various formats.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.AggregateReport) (int, error)

	// WriteArtifact outputs a single summary artifact without email
	// context. Used by the summarize command for local documents.
	WriteArtifact(artifact *model.SummaryArtifact) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// Useful for outputting to both terminal and file. It is a separate
// type rather than io.MultiWriter because our Writer interface writes
// reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.AggregateReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteArtifact outputs the artifact to all configured Writers.
func (m *MultiWriter) WriteArtifact(artifact *model.SummaryArtifact) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteArtifact(artifact)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
