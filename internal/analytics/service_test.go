package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakmere/storequery/internal/model"
	"github.com/oakmere/storequery/internal/query"
	"github.com/oakmere/storequery/internal/storage"
	"github.com/oakmere/storequery/internal/tenant"
)

const tenantA = tenant.ID("tenant-a")

var fixedNow = time.Date(2025, 11, 20, 15, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) (*Service, *storage.Store) {
	t.Helper()
	store, err := storage.OpenInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := NewService(store, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc, store
}

func insertEvent(t *testing.T, store *storage.Store, id tenant.ID, typ, session, customer string, createdAt time.Time, payload map[string]any) {
	t.Helper()
	ts, err := store.Tenant(id)
	require.NoError(t, err)
	require.NoError(t, ts.InsertEvent(context.Background(), &model.AnalyticsEvent{
		ID:                 uuid.NewString(),
		Type:               typ,
		Payload:            payload,
		SessionID:          session,
		CustomerIdentifier: customer,
		CreatedAt:          createdAt,
	}))
}

func viewPayload(id, name string) map[string]any {
	return map[string]any{model.PayloadProductID: id, model.PayloadProductName: name}
}

func TestEventCounts(t *testing.T) {
	svc, store := newFixture(t)
	for i := 0; i < 3; i++ {
		insertEvent(t, store, tenantA, model.EventQuestionAsked, "s1", "c1", fixedNow.Add(-time.Hour), nil)
	}
	insertEvent(t, store, tenantA, model.EventProductView, "s1", "c1", fixedNow.Add(-time.Hour), viewPayload("p1", "Blue Mug"))

	got, err := svc.EventCounts(context.Background(), tenantA, fixedNow.AddDate(0, 0, -7), fixedNow)
	require.NoError(t, err)
	assert.Equal(t, []TypeCount{
		{Type: model.EventQuestionAsked, Count: 3},
		{Type: model.EventProductView, Count: 1},
	}, got)
}

func TestEventCounts_UnrecognizedTypesCounted(t *testing.T) {
	svc, store := newFixture(t)
	insertEvent(t, store, tenantA, "custom_plugin_event", "", "", fixedNow.Add(-time.Hour), nil)

	got, err := svc.EventCounts(context.Background(), tenantA, fixedNow.AddDate(0, 0, -7), fixedNow)
	require.NoError(t, err)
	assert.Equal(t, []TypeCount{{Type: "custom_plugin_event", Count: 1}}, got)
}

func TestEventCounts_InvalidWindow(t *testing.T) {
	svc, _ := newFixture(t)

	_, err := svc.EventCounts(context.Background(), tenantA, fixedNow, fixedNow.AddDate(0, 0, -7))
	require.Error(t, err)
	assert.Equal(t, query.KindInvalidArgument, query.KindOf(err))
}

func TestDailyVolume_ZeroFilledBuckets(t *testing.T) {
	svc, store := newFixture(t)
	insertEvent(t, store, tenantA, model.EventQuestionAsked, "s1", "c1", fixedNow.Add(-time.Hour), nil)
	insertEvent(t, store, tenantA, model.EventQuestionAsked, "s1", "c1", fixedNow.Add(-time.Hour), nil)
	insertEvent(t, store, tenantA, model.EventProductView, "s1", "c1", fixedNow.AddDate(0, 0, -3), viewPayload("p1", "Blue Mug"))

	got, err := svc.DailyVolume(context.Background(), tenantA, 7)
	require.NoError(t, err)
	require.Len(t, got, 7)

	assert.Equal(t, DailyCount{Date: "2025-11-20", Count: 2}, got[0])
	assert.Equal(t, DailyCount{Date: "2025-11-17", Count: 1}, got[3])
	assert.Equal(t, DailyCount{Date: "2025-11-14", Count: 0}, got[6])

	// Dates strictly descending, counts non-negative, sum equals the
	// windowed event count.
	sum := 0
	for i, d := range got {
		assert.GreaterOrEqual(t, d.Count, 0)
		if i > 0 {
			assert.Less(t, d.Date, got[i-1].Date)
		}
		sum += d.Count
	}
	assert.Equal(t, 3, sum)
}

func TestDailyVolume_ExcludesEventsOutsideWindow(t *testing.T) {
	svc, store := newFixture(t)
	insertEvent(t, store, tenantA, model.EventQuestionAsked, "s1", "c1", fixedNow.AddDate(0, 0, -10), nil)

	got, err := svc.DailyVolume(context.Background(), tenantA, 7)
	require.NoError(t, err)
	for _, d := range got {
		assert.Zero(t, d.Count)
	}
}

func TestTopProductMentions(t *testing.T) {
	svc, store := newFixture(t)
	for i := 0; i < 3; i++ {
		insertEvent(t, store, tenantA, model.EventProductView, "s1", "c1", fixedNow.Add(-time.Hour), viewPayload("p1", "Blue Mug"))
	}
	insertEvent(t, store, tenantA, model.EventProductView, "s1", "c1", fixedNow.Add(-time.Hour), viewPayload("p2", "Red Mug"))
	// Lacks a product id: skipped, not fatal.
	insertEvent(t, store, tenantA, model.EventProductView, "s1", "c1", fixedNow.Add(-time.Hour), map[string]any{"source": "carousel"})
	// Other event types never feed this rollup.
	insertEvent(t, store, tenantA, model.EventOrderLookup, "s1", "c1", fixedNow.Add(-time.Hour), viewPayload("p3", "Teapot"))

	got, err := svc.TopProductMentions(context.Background(), tenantA, 7, 10)
	require.NoError(t, err)
	assert.Equal(t, []ProductMention{
		{ProductID: "p1", ProductName: "Blue Mug", Count: 3},
		{ProductID: "p2", ProductName: "Red Mug", Count: 1},
	}, got)

	// Counts are monotonically non-increasing.
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i].Count, got[i-1].Count)
	}
}

func TestTopProductMentions_LimitTruncates(t *testing.T) {
	svc, store := newFixture(t)
	for i, id := range []string{"p1", "p2", "p3"} {
		for j := 0; j <= i; j++ {
			insertEvent(t, store, tenantA, model.EventProductView, "s1", "c1", fixedNow.Add(-time.Hour), viewPayload(id, id))
		}
	}

	got, err := svc.TopProductMentions(context.Background(), tenantA, 7, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p3", got[0].ProductID)
}

func TestEngagement(t *testing.T) {
	svc, store := newFixture(t)
	// 4 questions across 2 customers and 2 sessions.
	insertEvent(t, store, tenantA, model.EventQuestionAsked, "s1", "c1", fixedNow.Add(-time.Hour), nil)
	insertEvent(t, store, tenantA, model.EventQuestionAsked, "s1", "c1", fixedNow.Add(-time.Hour), nil)
	insertEvent(t, store, tenantA, model.EventQuestionAsked, "s2", "c2", fixedNow.Add(-time.Hour), nil)
	insertEvent(t, store, tenantA, model.EventQuestionAsked, "s2", "c2", fixedNow.Add(-time.Hour), nil)
	insertEvent(t, store, tenantA, model.EventProductView, "s1", "c1", fixedNow.Add(-time.Hour), viewPayload("p1", "Blue Mug"))

	got, err := svc.Engagement(context.Background(), tenantA, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalConversations)
	assert.Equal(t, 2, got.UniqueCustomers)
	assert.Equal(t, 2.00, got.AvgMessagesPerCustomer)
	assert.Equal(t, 5, got.TotalEvents)
}

func TestEngagement_ZeroCustomers(t *testing.T) {
	svc, store := newFixture(t)
	insertEvent(t, store, tenantA, model.EventSettingsUpdated, "", "", fixedNow.Add(-time.Hour), nil)

	got, err := svc.Engagement(context.Background(), tenantA, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, got.UniqueCustomers)
	assert.Equal(t, 0.0, got.AvgMessagesPerCustomer)
	assert.Equal(t, 1, got.TotalEvents)
}

func TestEngagement_SessionlessQuestionsExcludedFromConversations(t *testing.T) {
	svc, store := newFixture(t)
	insertEvent(t, store, tenantA, model.EventQuestionAsked, "", "c1", fixedNow.Add(-time.Hour), nil)
	insertEvent(t, store, tenantA, model.EventQuestionAsked, "s1", "c1", fixedNow.Add(-time.Hour), nil)

	got, err := svc.Engagement(context.Background(), tenantA, 7)
	require.NoError(t, err)
	// The sessionless question is out of the conversation numerator but
	// still in the totals and the questions-per-customer numerator.
	assert.Equal(t, 1, got.TotalConversations)
	assert.Equal(t, 2, got.TotalEvents)
	assert.Equal(t, 2.00, got.AvgMessagesPerCustomer)
}

func TestEngagement_Rounding(t *testing.T) {
	svc, store := newFixture(t)
	// 1 question, 3 customers: 1/3 rounds to 0.33.
	insertEvent(t, store, tenantA, model.EventQuestionAsked, "s1", "c1", fixedNow.Add(-time.Hour), nil)
	insertEvent(t, store, tenantA, model.EventProductView, "s1", "c2", fixedNow.Add(-time.Hour), viewPayload("p1", "Blue Mug"))
	insertEvent(t, store, tenantA, model.EventProductView, "s1", "c3", fixedNow.Add(-time.Hour), viewPayload("p1", "Blue Mug"))

	got, err := svc.Engagement(context.Background(), tenantA, 7)
	require.NoError(t, err)
	assert.Equal(t, 0.33, got.AvgMessagesPerCustomer)
}

func TestDashboardSummary(t *testing.T) {
	svc, store := newFixture(t)
	insertEvent(t, store, tenantA, model.EventQuestionAsked, "s1", "c1", fixedNow.Add(-time.Hour), nil)
	insertEvent(t, store, tenantA, model.EventQuestionAsked, "s1", "c1", fixedNow.AddDate(0, 0, -2), nil)
	insertEvent(t, store, tenantA, model.EventProductView, "s1", "c1", fixedNow.Add(-time.Hour), viewPayload("p1", "Blue Mug"))

	got, err := svc.DashboardSummary(context.Background(), tenantA, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalQuestions)
	assert.Equal(t, 2, got.QuestionsToday) // today's bucket counts all events
	require.Len(t, got.TopProducts, 1)
	assert.Equal(t, "p1", got.TopProducts[0].ProductID)
	assert.Len(t, got.DailyVolume, 7)
	assert.Equal(t, 3, got.Engagement.TotalEvents)
}

func TestAggregates_TenantIsolation(t *testing.T) {
	svc, store := newFixture(t)
	insertEvent(t, store, "tenant-b", model.EventQuestionAsked, "s9", "c9", fixedNow.Add(-time.Hour), nil)

	counts, err := svc.EventCounts(context.Background(), tenantA, fixedNow.AddDate(0, 0, -7), fixedNow)
	require.NoError(t, err)
	assert.Empty(t, counts)

	engagement, err := svc.Engagement(context.Background(), tenantA, 7)
	require.NoError(t, err)
	assert.Zero(t, engagement.TotalEvents)
}

func TestAggregates_MissingTenant(t *testing.T) {
	svc, _ := newFixture(t)

	_, err := svc.Engagement(context.Background(), "", 7)
	assert.Equal(t, query.KindInvalidArgument, query.KindOf(err))

	_, err = svc.DailyVolume(context.Background(), "", 7)
	assert.Equal(t, query.KindInvalidArgument, query.KindOf(err))
}
