package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
)

// CachedPage keeps both encodings of a page. Each has its own strong ETag.
type CachedPage struct {
	HTML     []byte
	Gzip     []byte
	ETag     string
	GzipETag string
}

// PageCache holds rendered pages keyed by template name. Pages take no input,
// so one entry per page is all there is to cache.
type PageCache struct {
	mu    sync.RWMutex
	pages map[string]*CachedPage
}

func NewPageCache() *PageCache {
	return &PageCache{pages: make(map[string]*CachedPage)}
}

func (c *PageCache) Get(key string) (*CachedPage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.pages[key]
	return p, ok
}

func (c *PageCache) Put(key string, html []byte) *CachedPage {
	etag := generateETag(html)
	p := &CachedPage{
		HTML:     html,
		Gzip:     gzipBytes(html),
		ETag:     etag,
		GzipETag: strings.TrimSuffix(etag, `"`) + `-gz"`,
	}

	c.mu.Lock()
	c.pages[key] = p
	c.mu.Unlock()
	return p
}

func (c *PageCache) Reset() {
	c.mu.Lock()
	c.pages = make(map[string]*CachedPage)
	c.mu.Unlock()
}

func generateETag(data []byte) string {
	sum := sha256.Sum256(data)
	return `"` + hex.EncodeToString(sum[:])[:16] + `"`
}
