package document

import "context"

// EmbeddedImage is one raster image embedded in a document page, still in
// its encoded byte form.
type EmbeddedImage struct {
	// Data holds the encoded image bytes.
	Data []byte

	// Format is the byte format as declared by the document container
	// (e.g. "png", "jpg", "tiff").
	Format string
}

// Page is one document page with its embedded images in in-page order.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Images are the embedded raster images on this page.
	Images []EmbeddedImage
}

// Document is a normalized document: an ordered sequence of pages.
type Document struct {
	// Pages holds the document pages in page order.
	Pages []Page
}

// ImageCount returns the total number of embedded images across all pages.
func (d *Document) ImageCount() int {
	count := 0
	for _, p := range d.Pages {
		count += len(p.Images)
	}
	return count
}

// Reader reads a normalized document from a local file.
// Implementations return an error for container-level failures (missing
// file, corrupt structure); per-image problems surface later, during
// decoding in visual extraction.
type Reader interface {
	// Read parses the document at path and returns its page/image
	// structure. Pages with no embedded images are still present so
	// page numbering stays faithful to the source.
	Read(ctx context.Context, path string) (*Document, error)
}
