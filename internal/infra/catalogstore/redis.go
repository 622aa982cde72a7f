package catalogstore

import (
	"context"
	"strconv"

	"keyshop/internal/infra"

	"github.com/redis/go-redis/v9"
)

const (
	productSetKey    = "catalog:products"
	productKeyPrefix = "catalog:product:"

	stockField       = "stock"
	nameField        = "name"
	priceField       = "price_cents"
	descriptionField = "description"
)

// Entry is the display-oriented catalog projection the storefront reads. The
// stock field is a cache of the available-unit count and is never
// authoritative; only the stock sync reconciler writes it.
type Entry struct {
	ProductID   string
	Name        string
	PriceCents  int64
	Description string
	Stock       int64
}

type RedisCatalog struct {
	client *redis.Client
}

func NewRedisCatalog(client *redis.Client) *RedisCatalog {
	return &RedisCatalog{client: client}
}

func (c *RedisCatalog) Products(ctx context.Context) ([]string, error) {
	ids, err := c.client.SMembers(ctx, productSetKey).Result()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list catalog products", err, infra.KindUnavailable)
	}
	return ids, nil
}

// GetStock returns ok=false when the product has no catalog entry yet.
func (c *RedisCatalog) GetStock(ctx context.Context, productID string) (int64, bool, error) {
	val, err := c.client.HGet(ctx, productKeyPrefix+productID, stockField).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, false, nil
		}
		return 0, false, infra.WrapRepoErr("failed to read cached stock", err, infra.KindUnavailable)
	}
	stock, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, infra.WrapRepoErr("cached stock is not a number", err)
	}
	return stock, true, nil
}

func (c *RedisCatalog) SetStock(ctx context.Context, productID string, stock int64) error {
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, productKeyPrefix+productID, stockField, stock)
	pipe.SAdd(ctx, productSetKey, productID)
	if _, err := pipe.Exec(ctx); err != nil {
		return infra.WrapRepoErr("failed to write cached stock", err, infra.KindUnavailable)
	}
	return nil
}

// Upsert writes a full catalog entry. Display fields are maintained by the
// back-office import; the fulfillment core only ever touches stock.
func (c *RedisCatalog) Upsert(ctx context.Context, e Entry) error {
	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, productKeyPrefix+e.ProductID, map[string]any{
		nameField:        e.Name,
		priceField:       e.PriceCents,
		descriptionField: e.Description,
		stockField:       e.Stock,
	})
	pipe.SAdd(ctx, productSetKey, e.ProductID)
	if _, err := pipe.Exec(ctx); err != nil {
		return infra.WrapRepoErr("failed to upsert catalog entry", err, infra.KindUnavailable)
	}
	return nil
}

func (c *RedisCatalog) Get(ctx context.Context, productID string) (*Entry, error) {
	vals, err := c.client.HGetAll(ctx, productKeyPrefix+productID).Result()
	if err != nil {
		return nil, infra.WrapRepoErr("failed to read catalog entry", err, infra.KindUnavailable)
	}
	if len(vals) == 0 {
		return nil, infra.WrapRepoErr("catalog entry not found", nil, infra.KindNotFound)
	}

	e := &Entry{ProductID: productID, Name: vals[nameField], Description: vals[descriptionField]}
	if v, ok := vals[priceField]; ok {
		e.PriceCents, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := vals[stockField]; ok {
		e.Stock, _ = strconv.ParseInt(v, 10, 64)
	}
	return e, nil
}
