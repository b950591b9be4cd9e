package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/yashikota/maildigest/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for human review and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full aggregate report in Markdown format.
func (w *MarkdownWriter) Write(report *model.AggregateReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeEmailSummary(md, report)
	w.writeAttachments(md, report)
	w.writeFooter(md, report)

	return len(md.String()), md.Build()
}

// WriteArtifact outputs a single document artifact in Markdown format.
func (w *MarkdownWriter) WriteArtifact(artifact *model.SummaryArtifact) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Document Summary")
	md.PlainText("")
	w.writeArtifactSection(md, artifact)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with email metadata.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.AggregateReport) {
	md.H1("Email Digest")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Subject", report.Metadata.Subject},
			{"Sender", "`" + report.Metadata.Sender + "`"},
			{"Date", report.Metadata.Date},
			{"Generated", report.Metadata.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Attachments", strconv.Itoa(len(report.AttachmentSummaries))},
		},
	})
	md.PlainText("")

	if count := report.FailureCount(); count > 0 {
		md.Warningf("%d of %d summaries failed. Details are included below.",
			count, len(report.AttachmentSummaries)+1)
		md.PlainText("")
	}
}

// writeEmailSummary writes the email-body summary section.
func (w *MarkdownWriter) writeEmailSummary(md *markdown.Markdown, report *model.AggregateReport) {
	md.H2("Email Body")
	md.PlainText("")

	if !report.EmailSummary.Success {
		md.Cautionf("Email body summary failed: %s", report.EmailSummary.Err)
		md.PlainText("")
		return
	}

	if report.EmailSummary.Summary == "" {
		md.PlainText("The email body was empty.")
	} else {
		md.PlainText(report.EmailSummary.Summary)
	}
	md.PlainText("")
}

// writeAttachments writes one section per attachment artifact, in
// attachment order.
func (w *MarkdownWriter) writeAttachments(md *markdown.Markdown, report *model.AggregateReport) {
	if len(report.AttachmentSummaries) == 0 {
		return
	}

	md.H2("Attachments")
	md.PlainText("")

	for i := range report.AttachmentSummaries {
		artifact := &report.AttachmentSummaries[i]
		md.H3(fmt.Sprintf("%d. %s", i+1, artifact.Metadata.Filename))
		md.PlainText("")
		w.writeArtifactSection(md, artifact)
	}
}

// writeArtifactSection writes one document artifact: the narrative on
// success, the failure reason otherwise, plus the extracted image list.
func (w *MarkdownWriter) writeArtifactSection(md *markdown.Markdown, artifact *model.SummaryArtifact) {
	if !artifact.Success {
		md.Cautionf("Summary failed: %s", artifact.Err)
		md.PlainText("")
		return
	}

	md.PlainText(artifact.Summary)
	md.PlainText("")

	if len(artifact.Metadata.Images) > 0 {
		md.H4("Extracted Images")
		md.PlainText("")

		rows := make([][]string, 0, len(artifact.Metadata.Images))
		for _, img := range artifact.Metadata.Images {
			rows = append(rows, []string{
				strconv.Itoa(img.Page),
				strconv.Itoa(img.Index),
				fmt.Sprintf("%dx%d", img.Width, img.Height),
				img.Caption,
			})
		}

		md.Table(markdown.TableSet{
			Header: []string{"Page", "Image", "Size", "Caption"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown, report *model.AggregateReport) {
	md.HorizontalRule()
	md.PlainTextf("Report ID: `%s`", report.ReportID)
	md.PlainText("")
	md.PlainText("Generated by maildigest.")
}
