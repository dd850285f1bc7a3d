package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakmere/storequery/internal/model"
)

// Tenant isolation is the engine's core correctness property: for any two
// tenants T1 != T2, no accessor scoped to T1 may return a T2 row.

func TestIsolation_AcrossAllAccessors(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	t1 := mustTenant(t, s, "tenant-1")
	t2 := mustTenant(t, s, "tenant-2")

	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, t1.InsertProduct(ctx, testProduct("Blue Mug", true)))
	require.NoError(t, t2.InsertProduct(ctx, testProduct("Red Mug", true)))

	require.NoError(t, t1.InsertOrder(ctx, testOrder("ORD-001", "a@x.com", "Ada", now)))
	require.NoError(t, t2.InsertOrder(ctx, testOrder("ORD-900", "z@y.com", "Zed", now)))

	require.NoError(t, t1.InsertTurn(ctx, &model.ConversationTurn{
		ID: "turn-1", Message: "hi", Response: "hello", Sequence: 1, CreatedAt: now,
	}))
	require.NoError(t, t2.InsertTurn(ctx, &model.ConversationTurn{
		ID: "turn-2", Message: "hey", Response: "hello", Sequence: 1, CreatedAt: now,
	}))

	require.NoError(t, t1.InsertEvent(ctx, testEvent(model.EventQuestionAsked, "s1", "c1", now, nil)))
	require.NoError(t, t2.InsertEvent(ctx, testEvent(model.EventQuestionAsked, "s9", "c9", now, nil)))

	products, err := t1.ActiveProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "tenant-1", products[0].TenantID)

	orders, err := t1.OrdersMatching(ctx, "ORD", 10)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "ORD-001", orders[0].Code)

	turns, err := t1.Turns(ctx)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "turn-1", turns[0].ID)

	events, err := t1.EventsInWindow(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "tenant-1", events[0].TenantID)
}

func TestIsolation_OrderCodeIsPerTenant(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	t1 := mustTenant(t, s, "tenant-1")
	t2 := mustTenant(t, s, "tenant-2")

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, t1.InsertOrder(ctx, testOrder("ORD-001", "a@x.com", "Ada", now)))

	// Same code is free for another tenant, and invisible to it until used.
	_, err := t2.OrderByCode(ctx, "ORD-001")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, t2.InsertOrder(ctx, testOrder("ORD-001", "z@y.com", "Zed", now)))
	got, err := t2.OrderByCode(ctx, "ORD-001")
	require.NoError(t, err)
	assert.Equal(t, "z@y.com", got.CustomerEmail)
}

func TestIsolation_DuplicateCodeWithinTenantRejected(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	ts := mustTenant(t, s, "tenant-1")

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, ts.InsertOrder(ctx, testOrder("ORD-001", "a@x.com", "Ada", now)))
	assert.Error(t, ts.InsertOrder(ctx, testOrder("ORD-001", "b@x.com", "Bob", now)))
}

func TestIsolation_AggregatesScopedToTenant(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	t1 := mustTenant(t, s, "tenant-1")
	t2 := mustTenant(t, s, "tenant-2")

	now := time.Date(2025, 11, 20, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, t2.InsertEvent(ctx, testEvent(model.EventQuestionAsked, "s9", "c9", now, nil)))
	}

	counts, err := t1.EventCountsByType(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, counts)

	daily, err := t1.DailyEventCounts(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, daily)
}
