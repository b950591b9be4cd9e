package model

// DocumentMeta carries identifying metadata of the analyzed document
// through the summary artifact and into the report.
type DocumentMeta struct {
	// Filename is the original filename of the document.
	Filename string `json:"filename"`

	// Images are the extracted images, captions included, in page order
	// then in-page order.
	Images []ExtractedImage `json:"images,omitempty"`
}

// SummaryArtifact is the immutable result of one document analysis
// session. Exactly one of Summary or Err carries content depending on
// Success.
type SummaryArtifact struct {
	// Success reports whether the analysis session reached the
	// completed state and produced a narrative.
	Success bool `json:"success"`

	// Summary is the assistant-authored narrative. Present iff Success.
	Summary string `json:"summary,omitempty"`

	// Metadata identifies the analyzed document.
	Metadata DocumentMeta `json:"metadata"`

	// Err is a human-readable failure reason. Present iff not Success.
	Err string `json:"error,omitempty"`
}

// NewSummaryArtifact builds a success artifact.
func NewSummaryArtifact(filename, summary string, images []ExtractedImage) SummaryArtifact {
	return SummaryArtifact{
		Success: true,
		Summary: summary,
		Metadata: DocumentMeta{
			Filename: filename,
			Images:   images,
		},
	}
}

// NewFailureArtifact builds a failure artifact with the given reason.
// Failures are surfaced through the report, never dropped, so the reason
// should be meaningful to a human reader.
func NewFailureArtifact(filename, reason string) SummaryArtifact {
	return SummaryArtifact{
		Success: false,
		Metadata: DocumentMeta{
			Filename: filename,
		},
		Err: reason,
	}
}
