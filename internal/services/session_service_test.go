package services

import (
	"context"
	"testing"
	"time"

	"github.com/epeers/shortpositions/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestSessionService_IsolatesSessions(t *testing.T) {
	svc := NewSessionService(3, time.Hour)
	ctx := context.Background()

	svc.Upsert(ctx, "a", snapshotDataset("20250814", map[string]float64{"ACM": 1}))
	svc.Upsert(ctx, "b", snapshotDataset("20250815", map[string]float64{"BTA": 1}))

	assert.Equal(t, []string{"20250814"}, svc.Get("a").Window.Dates())
	assert.Equal(t, []string{"20250815"}, svc.Get("b").Window.Dates())
	assert.Equal(t, 2, svc.Len())
}

func TestSessionService_EvictionWarns(t *testing.T) {
	svc := NewSessionService(3, time.Hour)
	ctx, wc := NewWarningContext(context.Background())

	for _, d := range []string{"20250811", "20250812", "20250813", "20250814"} {
		svc.Upsert(ctx, "a", snapshotDataset(d, map[string]float64{"ACM": 1}))
	}

	assert.Equal(t, 3, svc.Get("a").Window.Len())
	assert.Equal(t, []models.WarningCode{models.WarnDatasetEvicted}, warningCodes(wc))
}

func TestSessionService_EvictClearAndAutoLoaded(t *testing.T) {
	svc := NewSessionService(5, time.Hour)
	ctx := context.Background()

	svc.Upsert(ctx, "a", snapshotDataset("20250814", map[string]float64{"ACM": 1}))
	svc.Upsert(ctx, "a", snapshotDataset("20250815", map[string]float64{"ACM": 2}))
	assert.False(t, svc.Get("a").AutoLoaded)

	svc.MarkAutoLoaded("a")
	assert.True(t, svc.Get("a").AutoLoaded)

	w := svc.Evict("a", "20250814")
	assert.Equal(t, []string{"20250815"}, w.Dates())

	w = svc.Clear("a")
	assert.Equal(t, 0, w.Len())
	assert.Equal(t, 0, svc.Get("a").Window.Len())
	assert.True(t, svc.Get("a").AutoLoaded, "clearing keeps the auto-load flag")
}

func TestSessionService_ExpiresIdleSessions(t *testing.T) {
	svc := NewSessionService(5, time.Hour)
	now := time.Date(2025, 8, 15, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	svc.Upsert(context.Background(), "idle", snapshotDataset("20250814", map[string]float64{"ACM": 1}))
	assert.Equal(t, 1, svc.Len())

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 0, svc.Len())
	assert.Equal(t, 0, svc.Get("idle").Window.Len(), "expired session starts over")
}
