// Package convert normalizes email attachments to PDF so the rest of
// the pipeline handles a single document format. PDFs pass through
// untouched, office documents go through a headless LibreOffice
// conversion, and standalone images are wrapped into a one-page PDF
// with pdfcpu.
package convert
