//go:build unit || e2e

package fake

import (
	"context"
	"sort"
	"sync"
)

// Catalog is an in-memory commands.CatalogStore.
type Catalog struct {
	mu    sync.Mutex
	stock map[string]int64
}

func NewCatalog() *Catalog {
	return &Catalog{stock: make(map[string]int64)}
}

func (c *Catalog) Seed(productID string, stock int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stock[productID] = stock
}

func (c *Catalog) Products(_ context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.stock))
	for id := range c.stock {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (c *Catalog) GetStock(_ context.Context, productID string) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stock, ok := c.stock[productID]
	return stock, ok, nil
}

func (c *Catalog) SetStock(_ context.Context, productID string, stock int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stock[productID] = stock
	return nil
}
