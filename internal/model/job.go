package model

// DocumentJob is the unit of work the pipeline drives through visual
// extraction, caption fan-out, and the analysis session. Steps accumulate
// their results on the job; the final artifact is the job's output.
type DocumentJob struct {
	// Path is the local path of the normalized (PDF) document.
	Path string `json:"path"`

	// Filename is the original filename shown in reports. For converted
	// attachments this is the attachment name, not the temp PDF name.
	Filename string `json:"filename"`

	// Images holds the extracted images after the extraction step, with
	// captions attached after the caption step.
	Images []ExtractedImage `json:"images,omitempty"`

	// Artifact is the summary artifact produced by the analysis step,
	// or a failure artifact when the job failed partway.
	Artifact SummaryArtifact `json:"artifact"`

	// PerformedSteps records which pipeline steps ran for this job.
	PerformedSteps []string `json:"performed_steps,omitempty"`
}

// NewDocumentJob creates a job for one normalized document.
func NewDocumentJob(path, filename string) *DocumentJob {
	return &DocumentJob{
		Path:     path,
		Filename: filename,
	}
}
