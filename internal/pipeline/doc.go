// Package pipeline executes the document processing stages in sequence:
// visual extraction, caption fan-out, and the analysis session. Each
// stage is a Step that receives the current job and accumulates results
// on it.
//
// The pipeline supports both single-document execution and batch
// processing with concurrency control using errgroup. Batch processing
// isolates faults per document: one failing or panicking document never
// takes down the others, it just yields a failure artifact at its
// position in the results.
package pipeline
