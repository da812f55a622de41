// Package cache persists finished page translations between runs. Entries
// are keyed by a digest of the page content and the language pair, so a
// re-run over the same document only pays for the pages that never
// completed.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"pdf-translator/internal/logger"
	"pdf-translator/internal/types"
)

// fileVersion is written into every cache file. Files carrying a different
// version are ignored rather than parsed.
const fileVersion = "1.0"

// Entry is one cached page translation.
type Entry struct {
	Key         string    `json:"key"`
	Translation string    `json:"translation"`
	CreatedAt   time.Time `json:"created_at"`
}

// cacheFile is the on-disk layout.
type cacheFile struct {
	Version string  `json:"version"`
	Entries []Entry `json:"entries"`
}

// Cache is a file backed translation cache, safe for concurrent use. An
// empty path keeps the cache purely in memory: Load and Save become
// no-ops.
type Cache struct {
	path    string
	mu      sync.RWMutex
	entries map[string]Entry
}

// New creates an empty cache backed by the given file path.
func New(path string) *Cache {
	return &Cache{
		path:    path,
		entries: make(map[string]Entry),
	}
}

// Key derives the cache key for a page: a SHA-256 digest over the language
// pair and the page content. The NUL separators keep adjacent fields from
// running together.
func Key(sourceLanguage, targetLanguage, content string) string {
	h := sha256.New()
	h.Write([]byte(sourceLanguage))
	h.Write([]byte{0})
	h.Write([]byte(targetLanguage))
	h.Write([]byte{0})
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}

// Get looks up a cached translation for the page content and language pair.
func (c *Cache) Get(sourceLanguage, targetLanguage, content string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[Key(sourceLanguage, targetLanguage, content)]
	if !ok {
		return "", false
	}
	return entry.Translation, true
}

// Put stores a finished translation, overwriting any previous entry for
// the same content and language pair.
func (c *Cache) Put(sourceLanguage, targetLanguage, content, translation string) {
	key := Key(sourceLanguage, targetLanguage, content)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = Entry{
		Key:         key,
		Translation: translation,
		CreatedAt:   time.Now(),
	}
}

// Load reads the cache file. A missing file loads as an empty cache.
func (c *Cache) Load() error {
	if c.path == "" {
		return nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return types.NewAppError(types.ErrInternal, fmt.Sprintf("failed to read cache file: %s", c.path), err)
	}

	var file cacheFile
	if err := json.Unmarshal(data, &file); err != nil {
		return types.NewAppError(types.ErrInternal, fmt.Sprintf("failed to parse cache file: %s", c.path), err)
	}

	if file.Version != fileVersion {
		logger.Warn("ignoring cache file with unknown version",
			logger.String("path", c.path),
			logger.String("version", file.Version))
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Entry, len(file.Entries))
	for _, entry := range file.Entries {
		c.entries[entry.Key] = entry
	}

	logger.Debug("translation cache loaded",
		logger.String("path", c.path),
		logger.Int("entries", len(c.entries)))
	return nil
}

// Save writes the cache file, creating parent directories as needed.
func (c *Cache) Save() error {
	if c.path == "" {
		return nil
	}

	c.mu.RLock()
	file := cacheFile{Version: fileVersion, Entries: make([]Entry, 0, len(c.entries))}
	for _, entry := range c.entries {
		file.Entries = append(file.Entries, entry)
	}
	c.mu.RUnlock()

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return types.NewAppError(types.ErrInternal, "failed to encode translation cache", err)
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return types.NewAppError(types.ErrInternal, fmt.Sprintf("failed to create cache directory: %s", dir), err)
		}
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return types.NewAppError(types.ErrInternal, fmt.Sprintf("failed to write cache file: %s", c.path), err)
	}

	logger.Debug("translation cache saved",
		logger.String("path", c.path),
		logger.Int("entries", len(file.Entries)))
	return nil
}

// Size returns the number of cached translations.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes every entry. The cache file is untouched until the next
// Save.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry)
}

// Path returns the backing file path, empty for an in-memory cache.
func (c *Cache) Path() string {
	return c.path
}
