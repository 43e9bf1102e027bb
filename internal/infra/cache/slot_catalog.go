package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/dental-clinic/internal/domain/appointment"
	"github.com/BruksfildServices01/dental-clinic/internal/models"
)

// SlotCatalog caches each branch's time-slot list in Redis. Branch lookups
// always go to the wrapped catalog so a removed branch is seen at once.
// Any Redis failure falls back to the wrapped catalog.
type SlotCatalog struct {
	next  domain.Catalog
	redis *redis.Client
	ttl   time.Duration
	log   *zap.Logger
}

func NewSlotCatalog(
	next domain.Catalog,
	client *redis.Client,
	ttl time.Duration,
	log *zap.Logger,
) *SlotCatalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &SlotCatalog{next: next, redis: client, ttl: ttl, log: log}
}

func (c *SlotCatalog) key(branchID uint) string {
	return fmt.Sprintf("clinic:slots:branch:%d", branchID)
}

func (c *SlotCatalog) GetBranch(ctx context.Context, id uint) (*models.Branch, error) {
	return c.next.GetBranch(ctx, id)
}

func (c *SlotCatalog) ListTimeSlots(ctx context.Context, branchID uint) ([]models.TimeSlot, error) {
	data, err := c.redis.Get(ctx, c.key(branchID)).Bytes()
	switch {
	case err == nil:
		var slots []models.TimeSlot
		if err := json.Unmarshal(data, &slots); err == nil {
			return slots, nil
		}
		c.log.Warn("slot cache entry unreadable", zap.Uint("branch_id", branchID))
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn("slot cache read failed", zap.Uint("branch_id", branchID), zap.Error(err))
	}

	slots, err := c.next.ListTimeSlots(ctx, branchID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(slots); err == nil {
		if err := c.redis.Set(ctx, c.key(branchID), data, c.ttl).Err(); err != nil {
			c.log.Warn("slot cache write failed", zap.Uint("branch_id", branchID), zap.Error(err))
		}
	}

	return slots, nil
}

var _ domain.Catalog = (*SlotCatalog)(nil)
