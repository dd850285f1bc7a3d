package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oakmere/storequery/internal/model"
	"github.com/oakmere/storequery/internal/storage"
)

func TestRun(t *testing.T) {
	store, err := storage.OpenInMemory(zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	s := New(store, zap.NewNop(), 1)
	require.NoError(t, s.Run(context.Background(), "shop-a", 10))

	ts, err := store.Tenant("shop-a")
	require.NoError(t, err)

	products, err := ts.ActiveProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, len(sampleProducts))

	o, err := ts.OrderByCode(context.Background(), "ORD-10000")
	require.NoError(t, err)
	assert.Equal(t, "customer0@example.com", o.CustomerEmail)
	assert.Equal(t, model.PaymentPaid, o.PaymentStatus)
	assert.True(t, o.Total.Equal(o.Subtotal.Add(o.Tax).Add(o.Shipping)))

	turns, err := ts.Turns(context.Background())
	require.NoError(t, err)
	assert.Len(t, turns, len(sampleQuestions))

	start := time.Now().UTC().AddDate(0, 0, -8)
	end := time.Now().UTC().Add(time.Minute)
	events, err := ts.EventsInWindow(context.Background(), start, end)
	require.NoError(t, err)
	assert.NotEmpty(t, events)
}

func TestRun_OtherTenantUnaffected(t *testing.T) {
	store, err := storage.OpenInMemory(zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, New(store, zap.NewNop(), 1).Run(context.Background(), "shop-a", 5))

	ts, err := store.Tenant("shop-b")
	require.NoError(t, err)
	products, err := ts.ActiveProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestRun_Reproducible(t *testing.T) {
	a, err := storage.OpenInMemory(zap.NewNop())
	require.NoError(t, err)
	defer a.Close()
	b, err := storage.OpenInMemory(zap.NewNop())
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, New(a, zap.NewNop(), 42).Run(context.Background(), "shop-a", 5))
	require.NoError(t, New(b, zap.NewNop(), 42).Run(context.Background(), "shop-a", 5))

	ta, err := a.Tenant("shop-a")
	require.NoError(t, err)
	tb, err := b.Tenant("shop-a")
	require.NoError(t, err)

	oa, err := ta.OrderByCode(context.Background(), "ORD-10002")
	require.NoError(t, err)
	ob, err := tb.OrderByCode(context.Background(), "ORD-10002")
	require.NoError(t, err)
	assert.True(t, oa.Total.Equal(ob.Total))
	assert.Equal(t, oa.Status, ob.Status)
}
