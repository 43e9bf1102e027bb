package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/dental-clinic/internal/models"
)

type countingCatalog struct {
	calls int
	slots []models.TimeSlot
}

func (c *countingCatalog) GetBranch(_ context.Context, id uint) (*models.Branch, error) {
	return &models.Branch{ID: id, Name: "Centro", Timezone: "UTC"}, nil
}

func (c *countingCatalog) ListTimeSlots(_ context.Context, _ uint) ([]models.TimeSlot, error) {
	c.calls++
	return c.slots, nil
}

func newCatalog(t *testing.T) (*SlotCatalog, *countingCatalog, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	inner := &countingCatalog{slots: []models.TimeSlot{
		{ID: 1, BranchID: 1, StartTime: "09:00", EndTime: "09:30"},
		{ID: 2, BranchID: 1, StartTime: "09:30", EndTime: "10:00"},
	}}
	return NewSlotCatalog(inner, client, time.Minute, nil), inner, mr
}

func TestSlotCatalogCachesSlots(t *testing.T) {
	c, inner, mr := newCatalog(t)
	ctx := context.Background()

	first, err := c.ListTimeSlots(ctx, 1)
	require.NoError(t, err)
	second, err := c.ListTimeSlots(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
	assert.True(t, mr.Exists("clinic:slots:branch:1"))

	mr.FastForward(2 * time.Minute)
	_, err = c.ListTimeSlots(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls, "expired entry is reloaded")
}

func TestSlotCatalogFallsBackWhenRedisIsDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	inner := &countingCatalog{slots: []models.TimeSlot{{ID: 1}, {ID: 2}}}
	c := NewSlotCatalog(inner, client, time.Minute, nil)

	slots, err := c.ListTimeSlots(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, slots, 2)
	assert.Equal(t, 1, inner.calls)
}
