package cache

import (
	"bytes"
	"encoding/gob"
	"os"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const (
	defaultTTL      = 4 * time.Hour
	cleanupInterval = 6 * time.Hour
)

func init() {
	// widened label lists and encoded snapshots
	gob.Register([]string{})
	gob.Register([]byte{})
}

// Cache wraps go-cache with GOB persistence.
type Cache struct {
	inner *gocache.Cache
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{inner: gocache.New(defaultTTL, cleanupInterval)}
}

// LoadFromFile loads a cache from a GOB file. A missing or unreadable cache
// file yields a fresh cache; only I/O errors other than not-exist are returned.
func LoadFromFile(filename string, log logrus.FieldLogger) (*Cache, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, err
	}
	items := map[string]gocache.Item{}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&items); err != nil {
		if log != nil {
			log.WithError(err).WithField("file", filename).Warn("cache decode error, starting fresh")
		}
		return New(), nil
	}
	return &Cache{inner: gocache.NewFrom(defaultTTL, cleanupInterval, items)}, nil
}

// SaveToFile saves the unexpired entries to a GOB file.
func (c *Cache) SaveToFile(filename string) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(c.inner.Items()); err != nil {
		return err
	}
	return os.WriteFile(filename, buf.Bytes(), 0600)
}

// Get retrieves a value by key.
func (c *Cache) Get(key string) (any, bool) {
	return c.inner.Get(key)
}

// Set stores a value with default expiration.
func (c *Cache) Set(key string, val any) {
	c.inner.Set(key, val, gocache.DefaultExpiration)
}

// Delete drops one key.
func (c *Cache) Delete(key string) {
	c.inner.Delete(key)
}

// Len reports the number of stored entries, expired ones included until cleanup.
func (c *Cache) Len() int {
	return c.inner.ItemCount()
}

// Flush clears all cached items.
func (c *Cache) Flush() {
	c.inner.Flush()
}
