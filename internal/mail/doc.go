// Package mail provides the email ingestion surface: a Source that
// lists unread messages with their attachments, plus helpers for
// flattening HTML bodies to plain text and decoding non-UTF-8 charsets.
//
// The stub source ships canned messages so the full pipeline can be
// exercised without mailbox credentials. A real IMAP source satisfies
// the same interface.
package mail
