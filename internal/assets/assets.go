// Package assets supplies immutable mesh data and textures: built-in
// geometry, a procedural texture and image files from disk.
package assets

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/nodering/internal/logger"
)

// ErrNotFound is returned when no search directory holds an asset.
var ErrNotFound = errors.New("assets: not found")

// Manager loads image assets from a list of directories.
type Manager struct {
	dirs    []string
	maxSize int
	cache   *Cache[*image.RGBA]
	mu      sync.RWMutex
}

// NewManager creates a manager searching dirs.
// Directories are searched in reverse order (last added = highest priority).
func NewManager(dirs ...string) *Manager {
	return &Manager{
		dirs:  append([]string(nil), dirs...),
		cache: NewCache[*image.RGBA](),
	}
}

// AddDir adds a search directory with the highest priority.
func (m *Manager) AddDir(dir string) {
	m.mu.Lock()
	m.dirs = append(m.dirs, dir)
	m.mu.Unlock()
}

// SetMaxSize makes LoadImage downscale images whose larger side exceeds
// n pixels. Zero disables scaling.
func (m *Manager) SetMaxSize(n int) {
	m.mu.Lock()
	m.maxSize = n
	m.mu.Unlock()
}

// Resolve returns the path of name in the highest priority directory
// holding it. Absolute names are returned as is if they exist.
func (m *Manager) Resolve(name string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return name, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.dirs) - 1; i >= 0; i-- {
		p := filepath.Join(m.dirs[i], name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// LoadImage decodes the named image into RGBA. Files ending in .tga are
// read as TGA, anything else by its registered image format. Results are
// cached by name.
func (m *Manager) LoadImage(name string) (*image.RGBA, error) {
	if img, ok := m.cache.Get(name); ok {
		return img, nil
	}

	path, err := m.Resolve(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image %s: %w", path, err)
	}
	defer f.Close()

	var img *image.RGBA
	format := "tga"
	if strings.EqualFold(filepath.Ext(path), ".tga") {
		img, err = DecodeTGA(f)
	} else {
		img, format, err = DecodeImage(f)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding image %s: %w", path, err)
	}

	m.mu.RLock()
	maxSize := m.maxSize
	m.mu.RUnlock()
	if maxSize > 0 {
		img = FitImage(img, maxSize)
	}

	logger.Debug("image loaded",
		zap.String("path", path),
		zap.String("format", format),
		zap.Int("width", img.Rect.Dx()),
		zap.Int("height", img.Rect.Dy()))
	m.cache.Set(name, img)
	return img, nil
}

// Close drops every cached image.
func (m *Manager) Close() {
	m.cache.Clear()
}

// Cache is a simple in-memory cache for loaded assets.
type Cache[V any] struct {
	data map[string]V
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache[V any]() *Cache[V] {
	return &Cache[V]{
		data: make(map[string]V),
	}
}

// Get retrieves an item from cache.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// Set stores an item in cache.
func (c *Cache[V]) Set(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = v
}

// Clear clears the cache.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]V)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache hit/miss counts.
func (c *Cache[V]) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Len returns the number of cached items.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
