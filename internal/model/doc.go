// Package model defines the core data structures used throughout maildigest.
//
// This package contains the following main types:
//   - EmailMessage: An ingested email with its attachments
//   - ExtractedImage: A raster image pulled out of a normalized document
//   - SummaryArtifact: The structured result of one document analysis session
//   - AggregateReport: The per-email report merging all summary artifacts
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (extract, summarize, pipeline, report) need
// these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output.
package model
