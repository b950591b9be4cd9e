package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".maildigest"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .maildigest configuration file.
// Only tuning knobs live here; credentials come from the environment.
type File struct {
	// Model overrides the OpenAI model name.
	Model string `yaml:"model,omitempty"`

	// Profile overrides the assistant profile name.
	Profile string `yaml:"profile,omitempty"`

	// CaptionWorkers overrides the caption fan-out concurrency.
	CaptionWorkers int `yaml:"captionWorkers,omitempty"`

	// CaptionDelay overrides the per-request caption pacing delay.
	CaptionDelay time.Duration `yaml:"captionDelay,omitempty"`

	// BatchSize overrides the document processing concurrency.
	BatchSize int `yaml:"batchSize,omitempty"`

	// PollLimit overrides the unread email fetch limit.
	PollLimit int `yaml:"pollLimit,omitempty"`

	// ScratchDir overrides the scratch directory for extracted images
	// and converted documents.
	ScratchDir string `yaml:"scratchDir,omitempty"`

	// DataDir overrides the durable state directory.
	DataDir string `yaml:"dataDir,omitempty"`
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Callers should
// handle this based on whether the path was explicitly specified.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// Apply overlays the non-zero values of the file onto the config.
// CLI flags are applied after the file, so flags win over file settings.
func (cf *File) Apply(c *Config) {
	if cf.Model != "" {
		c.Model = cf.Model
	}
	if cf.Profile != "" {
		c.Profile = cf.Profile
	}
	if cf.CaptionWorkers != 0 {
		c.CaptionWorkers = cf.CaptionWorkers
	}
	if cf.CaptionDelay != 0 {
		c.CaptionDelay = cf.CaptionDelay
	}
	if cf.BatchSize != 0 {
		c.BatchSize = cf.BatchSize
	}
	if cf.PollLimit != 0 {
		c.PollLimit = cf.PollLimit
	}
	if cf.ScratchDir != "" {
		c.ScratchDir = cf.ScratchDir
	}
	if cf.DataDir != "" {
		c.DataDir = cf.DataDir
	}
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .maildigest in the current directory
// 3. Look for .maildigest in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	// If explicit path is provided, use it
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	// Check home directory
	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
