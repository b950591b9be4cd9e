package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// Timings mirror the behavior of the original summarization service where
// applicable (caption pacing, run polling).
const (
	// DefaultModel is the vision-capable model used for both image
	// captioning and the assistant that writes the document summary.
	DefaultModel = "gpt-4o"

	// DefaultProfile is the assistant profile used for document analysis.
	DefaultProfile = "pdf_summarizer"

	// DefaultCaptionDelay is the pacing delay imposed before each caption
	// request. The delay is local to each concurrent request rather than a
	// global serialization, so total wall time is not N x delay.
	DefaultCaptionDelay = 500 * time.Millisecond

	// DefaultCaptionWorkers bounds how many caption requests run at once.
	DefaultCaptionWorkers = 4

	// DefaultRunPollInterval is how often a pending analysis run is polled.
	// The poller sleeps between polls; it never busy-spins.
	DefaultRunPollInterval = 1 * time.Second

	// DefaultMaxCaptionTokens bounds the caption response length.
	DefaultMaxCaptionTokens = 150

	// DefaultCaptionTemperature is the sampling temperature for captions.
	DefaultCaptionTemperature = 0.5

	// DefaultIconMaxDimension is the icon filter threshold. Images whose
	// width AND height are both at or below this value are presumed
	// logos or icons, not content, and are dropped before fingerprinting.
	DefaultIconMaxDimension = 100

	// DefaultBatchSize is the number of documents processed concurrently.
	DefaultBatchSize = 3

	// DefaultPollLimit is the maximum number of unread emails fetched
	// per processing run.
	DefaultPollLimit = 5

	// DefaultRequestTimeout bounds each individual API request.
	DefaultRequestTimeout = 2 * time.Minute

	// DefaultConvertTimeout bounds one office-to-PDF conversion.
	DefaultConvertTimeout = 60 * time.Second

	// AppName is the application name used for XDG directory paths.
	AppName = "maildigest"
)

// Config holds all configuration options for maildigest.
// It is populated from CLI flags and the optional .maildigest file and
// passed through the application via dependency injection rather than
// global state.
type Config struct {
	// Model is the OpenAI model for captioning and summarization.
	Model string

	// Profile is the assistant profile name used for document analysis.
	// Unknown profile names are a fatal configuration error at the point
	// of use.
	Profile string

	// APIKey is the OpenAI API key. Loaded from the OPENAI_API_KEY
	// environment variable; never from the config file, so credentials
	// stay out of checked-in files.
	APIKey string

	// CaptionDelay is the per-request pacing delay before each caption
	// request.
	CaptionDelay time.Duration

	// CaptionWorkers is the maximum number of concurrent caption requests.
	CaptionWorkers int

	// RunPollInterval is the sleep between analysis run status polls.
	RunPollInterval time.Duration

	// MaxCaptionTokens bounds caption response length.
	MaxCaptionTokens int

	// CaptionTemperature is the caption sampling temperature.
	CaptionTemperature float64

	// IconMaxDimension is the icon filter threshold (see
	// DefaultIconMaxDimension). An image is dropped only when both
	// dimensions are at or below this value.
	IconMaxDimension int

	// BatchSize is the number of documents processed concurrently.
	BatchSize int

	// PollLimit is the maximum number of unread emails fetched per run.
	PollLimit int

	// ScratchDir is where extracted images and converted documents are
	// written. Defaults to a maildigest directory under os.TempDir.
	ScratchDir string

	// DataDir is where durable state lives: the seen-image database and
	// the assistant cache. Defaults to the XDG data directory.
	DataDir string

	// RequestTimeout bounds each individual API request.
	RequestTimeout time.Duration

	// ConvertTimeout bounds one office-to-PDF conversion.
	ConvertTimeout time.Duration

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport enables JSON report output.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output (the default when
	// neither format flag is set).
	MarkdownReport bool

	// ReportFile is the output file path for reports. When set, reports
	// are written to this file instead of stdout. Directories are created
	// automatically if they don't exist.
	ReportFile string

	// ConfigFilePath is the path to the configuration file. If empty,
	// the tool searches for .maildigest in the current directory and
	// then in the user's home directory.
	ConfigFilePath string

	// Targets is the list of local documents to summarize when running
	// the summarize command (rather than polling a mailbox).
	Targets []string
}

// NewConfig creates a new Config with default values.
// Many defaults are non-zero, so relying on zero values is not an option;
// this constructor also documents what the defaults are.
func NewConfig() *Config {
	return &Config{
		Model:              DefaultModel,
		Profile:            DefaultProfile,
		APIKey:             os.Getenv("OPENAI_API_KEY"),
		CaptionDelay:       DefaultCaptionDelay,
		CaptionWorkers:     DefaultCaptionWorkers,
		RunPollInterval:    DefaultRunPollInterval,
		MaxCaptionTokens:   DefaultMaxCaptionTokens,
		CaptionTemperature: DefaultCaptionTemperature,
		IconMaxDimension:   DefaultIconMaxDimension,
		BatchSize:          DefaultBatchSize,
		PollLimit:          DefaultPollLimit,
		ScratchDir:         filepath.Join(os.TempDir(), AppName),
		DataDir:            XDGDataDir(),
		RequestTimeout:     DefaultRequestTimeout,
		ConvertTimeout:     DefaultConvertTimeout,
	}
}

// XDGDataDir returns the XDG data directory for maildigest.
// On Linux: ~/.local/share/maildigest
// On macOS: ~/Library/Application Support/maildigest
// On Windows: %LOCALAPPDATA%\maildigest
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks the configuration for invalid combinations.
// It returns a sentinel error describing the first problem found.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.CaptionWorkers <= 0 {
		return ErrInvalidCaptionWorkers
	}

	// A zero or negative poll interval would busy-spin against the API.
	if c.RunPollInterval <= 0 {
		return ErrInvalidPollInterval
	}

	// A negative pacing delay is invalid; use 0 for no pacing.
	if c.CaptionDelay < 0 {
		return ErrInvalidCaptionDelay
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
