package cache

import (
	"context"
	"time"

	"warungpos/backend/internal/domain"
)

type SummaryCache interface {
	GetSummary(ctx context.Context, key string) (*domain.SalesSummary, bool, error)
	SetSummary(ctx context.Context, key string, value *domain.SalesSummary, ttl time.Duration) error
}

type RestockCache interface {
	GetRestock(ctx context.Context, key string) (*domain.RestockResponse, bool, error)
	SetRestock(ctx context.Context, key string, value *domain.RestockResponse, ttl time.Duration) error
}

// NoopCache satisfies both cache interfaces and is used when Redis is not
// configured.
type NoopCache struct{}

func (NoopCache) GetSummary(_ context.Context, _ string) (*domain.SalesSummary, bool, error) {
	return nil, false, nil
}

func (NoopCache) SetSummary(_ context.Context, _ string, _ *domain.SalesSummary, _ time.Duration) error {
	return nil
}

func (NoopCache) GetRestock(_ context.Context, _ string) (*domain.RestockResponse, bool, error) {
	return nil, false, nil
}

func (NoopCache) SetRestock(_ context.Context, _ string, _ *domain.RestockResponse, _ time.Duration) error {
	return nil
}
