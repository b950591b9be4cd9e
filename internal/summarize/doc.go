// Package summarize runs the AI analysis stages of the pipeline: the
// concurrent caption fan-out over extracted images, the assistant
// analysis session that turns a document plus captions into a narrative
// summary, and the lightweight email-body summary.
//
// The assistant session follows a strict lifecycle: upload the document,
// open a thread, post the analysis request with the document attached,
// run the assistant, poll until the run terminates, then read back the
// latest assistant message. Remote resources (file, thread) are torn
// down via defers registered the moment each is created, so a failure at
// any later stage still cleans up everything created before it.
package summarize
