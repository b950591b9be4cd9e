package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrUnsupportedFormat is returned for attachment types the pipeline
// cannot normalize to PDF. The caller reports these as per-document
// failures rather than aborting the batch.
var ErrUnsupportedFormat = errors.New("convert: unsupported attachment format")

// officeExtensions are attachment types handled by LibreOffice.
var officeExtensions = map[string]bool{
	".doc": true, ".docx": true,
	".ppt": true, ".pptx": true,
	".xls": true, ".xlsx": true,
	".odt": true, ".odp": true, ".ods": true,
	".rtf": true, ".txt": true,
}

// imageExtensions are attachment types wrapped into a one-page PDF.
var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true,
	".gif": true, ".tif": true, ".tiff": true, ".webp": true,
}

// Normalizer converts an attachment to a PDF on local disk.
type Normalizer interface {
	// Normalize converts the file at path and returns the path of the
	// resulting PDF. For files that already are PDFs the input path is
	// returned unchanged.
	Normalize(ctx context.Context, path string) (string, error)
}

// Converter is the production Normalizer. Office formats require a
// LibreOffice binary on PATH; image formats are converted in-process.
type Converter struct {
	// outDir is where converted PDFs are written.
	outDir string

	// timeout bounds one LibreOffice invocation.
	timeout time.Duration

	// sofficePath is the LibreOffice binary. Defaults to "libreoffice".
	sofficePath string

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithTimeout bounds each office conversion.
func WithTimeout(d time.Duration) Option {
	return func(c *Converter) {
		c.timeout = d
	}
}

// WithSofficePath overrides the LibreOffice binary path.
func WithSofficePath(path string) Option {
	return func(c *Converter) {
		c.sofficePath = path
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

// New creates a Converter writing PDFs into outDir.
func New(outDir string, opts ...Option) *Converter {
	c := &Converter{
		outDir:      outDir,
		timeout:     60 * time.Second,
		sofficePath: "libreoffice",
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Normalize implements Normalizer. Routing is by file extension, which
// is what mail clients key attachment handling on as well.
func (c *Converter) Normalize(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case ext == ".pdf":
		return path, nil
	case officeExtensions[ext]:
		return c.convertOffice(ctx, path)
	case imageExtensions[ext]:
		return c.convertImage(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// convertOffice shells out to headless LibreOffice. The output filename
// is the input stem with a .pdf extension, which is LibreOffice's own
// naming rule for --convert-to.
func (c *Converter) convertOffice(ctx context.Context, path string) (string, error) {
	if err := os.MkdirAll(c.outDir, 0750); err != nil {
		return "", fmt.Errorf("create conversion directory: %w", err)
	}

	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, c.sofficePath,
		"--headless",
		"--convert-to", "pdf",
		"--outdir", c.outDir,
		path,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("libreoffice conversion of %s failed: %w (output: %s)",
			filepath.Base(path), err, strings.TrimSpace(string(output)))
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(c.outDir, stem+".pdf")
	if _, err := os.Stat(outPath); err != nil {
		return "", fmt.Errorf("libreoffice reported success but %s is missing: %w", outPath, err)
	}

	c.logger.Debug("office attachment converted",
		slog.String("input", filepath.Base(path)),
		slog.String("output", outPath))

	return outPath, nil
}

// convertImage wraps a standalone image into a one-page PDF.
func (c *Converter) convertImage(path string) (string, error) {
	if err := os.MkdirAll(c.outDir, 0750); err != nil {
		return "", fmt.Errorf("create conversion directory: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(c.outDir, stem+".pdf")

	if err := api.ImportImagesFile([]string{path}, outPath, nil, nil); err != nil {
		return "", fmt.Errorf("image to pdf conversion of %s failed: %w", filepath.Base(path), err)
	}

	c.logger.Debug("image attachment converted",
		slog.String("input", filepath.Base(path)),
		slog.String("output", outPath))

	return outPath, nil
}
