package summarize

import (
	"errors"
	"fmt"

	"github.com/yashikota/maildigest/internal/vision"
)

// ErrUnknownProfile is returned when the configured assistant profile
// name matches no built-in profile. This is a configuration error, not a
// per-document failure, so it aborts the run.
var ErrUnknownProfile = errors.New("summarize: unknown assistant profile")

// Profile describes one built-in assistant persona. The profile supplies
// the assistant-level instructions; the per-document prompt is composed
// separately at session time.
type Profile struct {
	// Name is the profile identifier used in configuration.
	Name string

	// Description is the human-readable assistant description.
	Description string

	// Instructions is the persona text sent as the analysis request
	// preamble.
	Instructions string

	// Tools lists the tool types the assistant needs.
	Tools []string
}

// builtinProfiles are the assistant personas shipped with maildigest.
var builtinProfiles = map[string]Profile{
	"pdf_summarizer": {
		Name:        "pdf_summarizer",
		Description: "Summarizes documents into concise bullet points",
		Instructions: "You are a document summarization assistant. " +
			"Produce clear, factual bullet point summaries that capture the " +
			"key findings, arguments, and data of the attached document.",
		Tools: []string{"file_search"},
	},
	"legal_analyzer": {
		Name:        "legal_analyzer",
		Description: "Reviews documents for legal obligations and risks",
		Instructions: "You are a legal document analyst. Identify parties, " +
			"obligations, deadlines, and potential risks in the attached " +
			"document, and summarize them as bullet points.",
		Tools: []string{"file_search"},
	},
	"research_helper": {
		Name:        "research_helper",
		Description: "Extracts methodology and results from research papers",
		Instructions: "You are a research assistant. Summarize the research " +
			"question, methodology, results, and limitations of the attached " +
			"document as bullet points.",
		Tools: []string{"file_search"},
	},
}

// ProfileFor resolves a profile name to its definition.
func ProfileFor(name string) (Profile, error) {
	p, ok := builtinProfiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return p, nil
}

// ProfileNames returns the available profile names for help output.
func ProfileNames() []string {
	names := make([]string, 0, len(builtinProfiles))
	for name := range builtinProfiles {
		names = append(names, name)
	}
	return names
}

// assistantConfig builds the remote assistant definition for a profile
// and model pairing.
func (p Profile) assistantConfig(model string) vision.AssistantConfig {
	return vision.AssistantConfig{
		Name:        "maildigest " + p.Name,
		Description: p.Description,
		Model:       model,
		Tools:       p.Tools,
	}
}
