package summarize

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/yashikota/maildigest/internal/vision"
)

// cacheFileName is the assistant cache file under the data directory.
const cacheFileName = "assistants.json"

// cacheEntry records one cached assistant.
type cacheEntry struct {
	// AssistantID is the remote assistant identifier.
	AssistantID string `json:"assistant_id"`

	// Version fingerprints the profile definition the assistant was
	// created from. A changed model or tool set invalidates the entry.
	Version string `json:"version"`
}

// AssistantCache maps profile names to remote assistant IDs, persisted
// as JSON in the data directory so assistants are reused across runs
// instead of accumulating on the remote account.
type AssistantCache struct {
	path    string
	service vision.AssistantService
	logger  *slog.Logger

	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewAssistantCache creates a cache backed by dataDir/assistants.json.
// A missing or unreadable cache file starts the cache empty; corruption
// is logged, never fatal.
func NewAssistantCache(dataDir string, service vision.AssistantService, logger *slog.Logger) *AssistantCache {
	if logger == nil {
		logger = slog.Default()
	}

	c := &AssistantCache{
		path:    filepath.Join(dataDir, cacheFileName),
		service: service,
		logger:  logger,
		entries: make(map[string]cacheEntry),
	}
	c.load()
	return c
}

// load reads the cache file into memory.
func (c *AssistantCache) load() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("assistant cache unreadable, starting empty",
				slog.String("path", c.path),
				slog.String("error", err.Error()))
		}
		return
	}

	if err := json.Unmarshal(data, &c.entries); err != nil {
		c.logger.Warn("assistant cache corrupt, starting empty",
			slog.String("path", c.path),
			slog.String("error", err.Error()))
		c.entries = make(map[string]cacheEntry)
	}
}

// save writes the cache file. Failures are logged; the in-memory cache
// still serves the current run.
func (c *AssistantCache) save() {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		c.logger.Warn("assistant cache encode failed", slog.String("error", err.Error()))
		return
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0750); err != nil {
		c.logger.Warn("assistant cache directory unavailable",
			slog.String("path", c.path),
			slog.String("error", err.Error()))
		return
	}

	if err := os.WriteFile(c.path, data, 0600); err != nil {
		c.logger.Warn("assistant cache write failed",
			slog.String("path", c.path),
			slog.String("error", err.Error()))
	}
}

// profileVersion fingerprints the parts of a profile that require a new
// remote assistant when they change.
func profileVersion(p Profile, model string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + p.Instructions + "\x00" + strings.Join(p.Tools, ",")))
	return hex.EncodeToString(sum[:8])
}

// GetOrCreate returns the assistant ID for the profile, reusing a cached
// assistant when its definition still matches and it still exists
// remotely, and creating a fresh one otherwise.
func (c *AssistantCache) GetOrCreate(ctx context.Context, p Profile, model string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	version := profileVersion(p, model)

	if entry, ok := c.entries[p.Name]; ok && entry.Version == version {
		if err := c.service.RetrieveAssistant(ctx, entry.AssistantID); err == nil {
			return entry.AssistantID, nil
		}
		c.logger.Debug("cached assistant no longer valid, recreating",
			slog.String("profile", p.Name),
			slog.String("assistant_id", entry.AssistantID))
	}

	id, err := c.service.CreateAssistant(ctx, p.assistantConfig(model))
	if err != nil {
		return "", fmt.Errorf("create assistant for profile %s: %w", p.Name, err)
	}

	c.entries[p.Name] = cacheEntry{AssistantID: id, Version: version}
	c.save()

	return id, nil
}
