package model

import (
	"time"

	"github.com/google/uuid"
)

// ReportMetadata identifies the email an aggregate report was built for.
type ReportMetadata struct {
	// Subject is the email subject.
	Subject string `json:"subject"`

	// Sender is the email From address.
	Sender string `json:"sender"`

	// Date is the email Date header as received.
	Date string `json:"date"`

	// GeneratedAt is the timestamp the report was assembled.
	GeneratedAt time.Time `json:"generated_at"`
}

// AggregateReport merges one email-level summary artifact with zero or
// more attachment-level artifacts for a single email.
//
// Invariants: AttachmentSummaries preserves the input ordering of the
// attachments, and failed artifacts are kept alongside successful ones.
// The report always contains one entry per processed document, never a gap.
type AggregateReport struct {
	// ReportID uniquely identifies this report.
	ReportID string `json:"report_id"`

	// Metadata identifies the source email.
	Metadata ReportMetadata `json:"metadata"`

	// EmailSummary is the artifact produced for the email body itself.
	EmailSummary SummaryArtifact `json:"email_summary"`

	// AttachmentSummaries holds one artifact per attachment, in
	// attachment order.
	AttachmentSummaries []SummaryArtifact `json:"attachment_summaries"`
}

// NewAggregateReport assembles an aggregate report for the given email.
// The attachments slice is stored as-is to preserve input ordering.
func NewAggregateReport(email EmailMessage, emailSummary SummaryArtifact, attachments []SummaryArtifact) *AggregateReport {
	return &AggregateReport{
		ReportID: uuid.NewString(),
		Metadata: ReportMetadata{
			Subject:     email.Subject,
			Sender:      email.Sender,
			Date:        email.Date,
			GeneratedAt: time.Now(),
		},
		EmailSummary:        emailSummary,
		AttachmentSummaries: attachments,
	}
}

// FailureCount returns the number of non-success artifacts in the report,
// the email-level artifact included.
func (r *AggregateReport) FailureCount() int {
	count := 0
	if !r.EmailSummary.Success {
		count++
	}
	for _, a := range r.AttachmentSummaries {
		if !a.Success {
			count++
		}
	}
	return count
}
