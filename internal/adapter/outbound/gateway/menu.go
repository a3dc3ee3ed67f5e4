package gateway

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/tableside/tableside/internal/domain/menu"
)

// menuCacheEntry is a cached menu response with expiry.
type menuCacheEntry struct {
	items      []menu.Item
	categories []menu.Category
	expiresAt  time.Time
}

// menuCacheKey hashes the request path so category-filtered fetches get
// distinct entries.
func menuCacheKey(path string) uint64 {
	return xxhash.Sum64String(path)
}

// cachedMenuEntry returns a live cache entry for the path, or nil.
func (c *Client) cachedMenuEntry(key uint64) *menuCacheEntry {
	if c.menuCacheTTL <= 0 {
		return nil
	}
	val, ok := c.menuCache.Load(key)
	if !ok {
		return nil
	}
	entry := val.(*menuCacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.menuCache.Delete(key)
		return nil
	}
	return entry
}

func (c *Client) storeMenuEntry(key uint64, entry *menuCacheEntry) {
	if c.menuCacheTTL <= 0 {
		return
	}
	entry.expiresAt = time.Now().Add(c.menuCacheTTL)
	c.menuCache.Store(key, entry)
}

// FetchMenu returns the menu items, optionally filtered by category
// (categoryID 0 means all). Menus change rarely and the UI refetches
// them on every navigation, so responses are served from a client-side
// cache within the configured TTL.
func (c *Client) FetchMenu(ctx context.Context, categoryID int64) ([]menu.Item, error) {
	path := "/menu"
	if categoryID != 0 {
		path = "/menu?category_id=" + strconv.FormatInt(categoryID, 10)
	}

	key := menuCacheKey(path)
	if entry := c.cachedMenuEntry(key); entry != nil {
		c.metrics.observeMenuCache(true)
		return entry.items, nil
	}

	c.metrics.observeMenuCache(false)
	var items []menu.Item
	if err := c.do(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}

	c.storeMenuEntry(key, &menuCacheEntry{items: items})
	return items, nil
}

// FetchCategories returns the menu categories, cached like FetchMenu.
func (c *Client) FetchCategories(ctx context.Context) ([]menu.Category, error) {
	const path = "/menu/categories"

	key := menuCacheKey(path)
	if entry := c.cachedMenuEntry(key); entry != nil {
		c.metrics.observeMenuCache(true)
		return entry.categories, nil
	}

	c.metrics.observeMenuCache(false)
	var categories []menu.Category
	if err := c.do(ctx, http.MethodGet, path, nil, &categories); err != nil {
		return nil, err
	}

	c.storeMenuEntry(key, &menuCacheEntry{categories: categories})
	return categories, nil
}
