// Package main provides the entry point for the maildigest CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for maildigest.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maildigest",
		Short: "AI-assisted email and attachment summarization",
		Long: `maildigest summarizes emails and their attachments with AI assistance.

Attachments are normalized to PDF, embedded images are extracted,
deduplicated against every previously seen image, and captioned. Each
document then goes through an assistant analysis session, and the
results are merged into one aggregate report per email.

The OpenAI API key is read from the OPENAI_API_KEY environment variable.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewProcessCmd())
	cmd.AddCommand(NewSummarizeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
