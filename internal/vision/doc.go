// Package vision defines the interfaces to the external vision and
// analysis capability: image captioning, plain text completion, and the
// assistant session surface (file upload, threads, runs, teardown).
//
// Keeping the capability behind small interfaces lets the summarization
// agent be exercised in tests with the mock subpackage, while the openai
// subpackage provides the production implementation.
package vision
