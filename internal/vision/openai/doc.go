// Package openai implements the vision.Service interfaces against the
// OpenAI HTTP API: chat completions for image captioning and text
// summaries, and the assistants API (files, threads, runs) for the
// document analysis session.
//
// The client is a thin hand-rolled net/http wrapper. It covers exactly
// the endpoints maildigest calls, decodes API error payloads into Go
// errors, and takes a configurable base URL so tests can point it at a
// local httptest server.
package openai
