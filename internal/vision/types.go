package vision

// RunStatus is the remote state of an analysis run.
type RunStatus string

// Run statuses reported by the analysis capability.
const (
	StatusQueued     RunStatus = "queued"
	StatusInProgress RunStatus = "in_progress"
	StatusCancelling RunStatus = "cancelling"
	StatusCompleted  RunStatus = "completed"
	StatusFailed     RunStatus = "failed"
	StatusCancelled  RunStatus = "cancelled"
	StatusExpired    RunStatus = "expired"
)

// Terminal reports whether the run has left the pending set.
// A session polls until Terminal is true, sleeping between polls.
func (s RunStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusExpired:
		return true
	case StatusQueued, StatusInProgress, StatusCancelling:
		return false
	default:
		// Unknown statuses are treated as pending so a new remote
		// status cannot wedge a session into a false terminal state;
		// the caller's context bounds the wait.
		return false
	}
}

// Run describes one analysis run against a conversation thread.
type Run struct {
	// ID is the remote run identifier.
	ID string

	// Status is the last observed run status.
	Status RunStatus

	// LastError carries remote-supplied error detail for terminal
	// non-completed runs. Empty otherwise.
	LastError string
}

// AssistantConfig describes the assistant to create for a profile.
type AssistantConfig struct {
	// Name is the human-readable assistant name.
	Name string

	// Description explains what the assistant is for.
	Description string

	// Model is the model the assistant runs on.
	Model string

	// Tools lists the tool types enabled for the assistant
	// (e.g. "file_search").
	Tools []string
}
