// Package extract implements visual extraction: pulling embedded raster
// images out of a normalized document, filtering icon-sized ones,
// deduplicating against the seen-image ledger, and persisting accepted
// images to the scratch directory.
//
// Failure handling follows a strict absorption policy: a single image
// that fails to decode or persist is logged and handled locally, and a
// document-level failure yields an empty result. Extraction never fails a
// document's siblings.
package extract
