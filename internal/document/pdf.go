package document

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFReader reads normalized PDF documents using pdfcpu.
// It extracts every embedded raster image in its original encoded form;
// decoding and filtering happen downstream in visual extraction.
type PDFReader struct {
	// conf is the pdfcpu configuration. Nil selects pdfcpu defaults,
	// which is what we want: no encryption handling, no validation
	// beyond what extraction itself needs.
	conf *pdfmodel.Configuration
}

// NewPDFReader creates a PDF document reader.
func NewPDFReader() *PDFReader {
	return &PDFReader{}
}

// Read parses the PDF at path into its page/image structure.
// A container-level failure (unreadable file, corrupt cross-reference
// table) returns an error; the caller decides how to absorb it.
func (r *PDFReader) Read(ctx context.Context, path string) (*Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	pageCount, err := api.PageCountFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read page count of %s: %w", path, err)
	}

	f, err := os.Open(path) //nolint:gosec // Path comes from our own scratch area
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	// One map per selected page, keyed by PDF object number.
	pageImages, err := api.ExtractImagesRaw(f, nil, r.conf)
	if err != nil {
		return nil, fmt.Errorf("failed to extract images from %s: %w", path, err)
	}

	doc := &Document{Pages: make([]Page, pageCount)}
	for i := range doc.Pages {
		doc.Pages[i].Number = i + 1
	}

	for _, images := range pageImages {
		// Object-number order is the closest stable proxy for the
		// in-page order the images were written in.
		objNrs := make([]int, 0, len(images))
		for objNr := range images {
			objNrs = append(objNrs, objNr)
		}
		sort.Ints(objNrs)

		for _, objNr := range objNrs {
			img := images[objNr]
			if img.PageNr < 1 || img.PageNr > pageCount {
				continue
			}

			data, err := io.ReadAll(img)
			if err != nil {
				return nil, fmt.Errorf("failed to read image object %d on page %d: %w", objNr, img.PageNr, err)
			}

			page := &doc.Pages[img.PageNr-1]
			page.Images = append(page.Images, EmbeddedImage{
				Data:   data,
				Format: img.FileType,
			})
		}
	}

	return doc, nil
}
