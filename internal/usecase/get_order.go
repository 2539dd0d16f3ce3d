package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/order-ingest/internal/domain/order"

	"github.com/redis/go-redis/v9"
)

// RecordGetter reads the canonical record back from the document store.
type RecordGetter interface {
	GetByID(ctx context.Context, id string) (*order.Record, error)
}

// GetOrder returns the canonical record for an identifier, cache-aside
// through Redis when a client is configured.
type GetOrder struct {
	redisClient *redis.Client
	records     RecordGetter
}

func NewGetOrder(redisClient *redis.Client, records RecordGetter) *GetOrder {
	return &GetOrder{
		redisClient: redisClient,
		records:     records,
	}
}

func (uc *GetOrder) Execute(ctx context.Context, id string) (*order.Record, error) {
	cacheKey := fmt.Sprintf("order:%s", id)

	if uc.redisClient != nil {
		val, err := uc.redisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			var rec order.Record
			if err := json.Unmarshal([]byte(val), &rec); err == nil {
				return &rec, nil
			}
		}
	}

	rec, err := uc.records.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	if uc.redisClient != nil {
		data, _ := json.Marshal(rec)
		// Short TTL so a fresh upsert becomes visible quickly.
		uc.redisClient.Set(ctx, cacheKey, data, 5*time.Second)
	}

	return rec, nil
}
