// Package document models a normalized document as an ordered sequence of
// pages carrying embedded raster images, and provides a pdfcpu-backed
// reader that pulls those images out of a PDF file.
//
// The rest of the pipeline only sees the Document structure; how images
// were located inside the container format stays behind the Reader
// interface, which also keeps extraction testable without PDF fixtures.
package document
