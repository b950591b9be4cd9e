package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yashikota/maildigest/internal/config"
)

// configTemplate is the annotated starter configuration written by the
// init command. Credentials deliberately have no place in this file;
// the API key is read from the OPENAI_API_KEY environment variable.
const configTemplate = `# maildigest configuration file
#
# All settings are optional. CLI flags override file settings.
# The OpenAI API key is NOT configured here; set OPENAI_API_KEY instead.

# OpenAI model used for captioning and summarization.
#model: gpt-4o

# Assistant profile for document analysis.
# Available: pdf_summarizer, legal_analyzer, research_helper
#profile: pdf_summarizer

# Number of concurrent caption requests.
#captionWorkers: 4

# Pacing delay imposed before each caption request.
#captionDelay: 500ms

# Number of documents processed concurrently.
#batchSize: 3

# Maximum number of unread emails fetched per run.
#pollLimit: 5

# Where extracted images and converted documents are written.
#scratchDir: /tmp/maildigest

# Where durable state lives (seen-image database, assistant cache).
#dataDir: ~/.local/share/maildigest
`

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new maildigest configuration file",
		Long: `Initialize creates a new .maildigest configuration file in the current directory.

The generated file includes commented defaults for every tunable
setting. Credentials are never stored in the file; set the
OPENAI_API_KEY environment variable instead.

Examples:
  # Create .maildigest in current directory
  maildigest init

  # Create config file at a specific path
  maildigest init -o myconfig.yaml

  # Force overwrite existing file
  maildigest init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, []byte(configTemplate), 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nEdit this file to tune settings such as:")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Model and assistant profile")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Caption concurrency and pacing")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Scratch and data directories")

	return nil
}
