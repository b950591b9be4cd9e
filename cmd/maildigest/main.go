// Package main provides the entry point for the maildigest CLI.
//
// maildigest summarizes emails and their attachments with AI assistance.
// Attachments are normalized to PDF, embedded images are extracted,
// deduplicated, and captioned, and each document is summarized through
// an assistant analysis session. The results are merged into a single
// aggregate report per email.
//
// Usage:
//
//	maildigest process [attachment files...]
//	maildigest summarize <pdf files...>
//
// See --help for all available options.
package main

// main is the entry point for maildigest.
func main() {
	Execute()
}
