// Package report renders aggregate email reports in Markdown and JSON.
//
// A report merges the email-level summary with one artifact per
// attachment, failures included. Writers implement a small shared
// interface, allowing them to be used interchangeably and composed for
// multi-destination output (stdout plus a file, for example).
package report
