// Package analytics computes time-windowed rollups over a tenant's events.
//
// All operations are read-only, on-demand aggregations over persisted rows.
// Ratios floor a zero denominator to zero, never an error or NaN. Malformed
// events (a product_view with no product id) are skipped, not fatal: one bad
// event must not block the rest of the rollup.
package analytics

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/oakmere/storequery/internal/model"
	"github.com/oakmere/storequery/internal/query"
	"github.com/oakmere/storequery/internal/storage"
	"github.com/oakmere/storequery/internal/tenant"
)

// TypeCount is a per-type event count within the window.
type TypeCount struct {
	Type  string `json:"event_type"`
	Count int    `json:"count"`
}

// DailyCount is one calendar-day bucket. Date is the UTC date (YYYY-MM-DD)
// of the events' creation timestamps.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"event_count"`
}

// ProductMention is one ranked row of the top-products rollup.
type ProductMention struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Count       int    `json:"mention_count"`
}

// EngagementMetrics holds the four engagement numbers, computed in one pass
// over one windowed snapshot.
type EngagementMetrics struct {
	TotalConversations     int     `json:"total_conversations"`
	UniqueCustomers        int     `json:"unique_customers"`
	AvgMessagesPerCustomer float64 `json:"avg_messages_per_customer"`
	TotalEvents            int     `json:"total_events"`
}

// Summary is the dashboard rollup combining the windowed aggregates.
type Summary struct {
	TotalQuestions int               `json:"total_questions"`
	QuestionsToday int               `json:"questions_today"`
	TopProducts    []ProductMention  `json:"top_products"`
	DailyVolume    []DailyCount      `json:"daily_volume"`
	Engagement     EngagementMetrics `json:"engagement"`
}

// Service aggregates a tenant's analytics events.
type Service struct {
	store  *storage.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates an analytics aggregation service.
func NewService(store *storage.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger.Named("analytics"), now: time.Now}
}

func (s *Service) scoped(tenantID tenant.ID) (*storage.TenantStore, error) {
	if err := tenantID.Validate(); err != nil {
		return nil, query.InvalidArgumentf("tenant is required")
	}
	ts, err := s.store.Tenant(tenantID)
	if err != nil {
		return nil, query.InvalidArgumentf("tenant is required")
	}
	return ts, nil
}

// EventCounts groups the tenant's events by type within [start, end),
// highest count first.
func (s *Service) EventCounts(ctx context.Context, tenantID tenant.ID, start, end time.Time) ([]TypeCount, error) {
	ts, err := s.scoped(tenantID)
	if err != nil {
		return nil, err
	}
	if !end.After(start) {
		return nil, query.InvalidArgumentf("window end must be after start")
	}

	rows, err := ts.EventCountsByType(ctx, start, end)
	if err != nil {
		return nil, query.StorageErr("count events by type", err)
	}

	out := make([]TypeCount, len(rows))
	for i, r := range rows {
		out[i] = TypeCount{Type: r.Type, Count: r.Count}
	}
	return out, nil
}

// DailyVolume buckets the tenant's events by calendar day over the trailing
// daysBack days. Every day in the window gets a row, zero-filled when no
// events landed on it, sorted date descending.
func (s *Service) DailyVolume(ctx context.Context, tenantID tenant.ID, daysBack int) ([]DailyCount, error) {
	ts, err := s.scoped(tenantID)
	if err != nil {
		return nil, err
	}
	w, err := query.TrailingWindow(daysBack, s.now())
	if err != nil {
		return nil, err
	}

	// Day buckets are calendar days, so the window starts at midnight of the
	// oldest bucket. That keeps the bucket count equal to daysBack and the
	// bucket sum equal to the windowed event count.
	end := w.End
	firstDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -(w.Days() - 1))

	rows, err := ts.DailyEventCounts(ctx, firstDay, end)
	if err != nil {
		return nil, query.StorageErr("count events by day", err)
	}

	byDate := make(map[string]int, len(rows))
	for _, r := range rows {
		byDate[r.Date] = r.Count
	}

	// One bucket per day, newest first; today's partial day comes first.
	out := make([]DailyCount, 0, w.Days())
	for d := 0; d < w.Days(); d++ {
		date := end.AddDate(0, 0, -d).Format("2006-01-02")
		out = append(out, DailyCount{Date: date, Count: byDate[date]})
	}
	return out, nil
}

// TopProductMentions ranks products by product_view events within the
// trailing window. Events whose payload lacks a product id are skipped.
func (s *Service) TopProductMentions(ctx context.Context, tenantID tenant.ID, daysBack, limit int) ([]ProductMention, error) {
	ts, err := s.scoped(tenantID)
	if err != nil {
		return nil, err
	}
	w, err := query.TrailingWindow(daysBack, s.now())
	if err != nil {
		return nil, err
	}
	limit, err = query.Limit(limit)
	if err != nil {
		return nil, err
	}

	events, err := ts.EventsOfTypeInWindow(ctx, model.EventProductView, w.Start, w.End)
	if err != nil {
		return nil, query.StorageErr("load product view events", err)
	}

	type key struct{ id, name string }
	counts := make(map[key]int)
	skipped := 0
	for i := range events {
		e := &events[i]
		id := e.PayloadString(model.PayloadProductID)
		if id == "" {
			skipped++
			continue
		}
		counts[key{id: id, name: e.PayloadString(model.PayloadProductName)}]++
	}
	if skipped > 0 {
		s.logger.Warn("product view events without product id skipped",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("skipped", skipped),
		)
	}

	out := make([]ProductMention, 0, len(counts))
	for k, n := range counts {
		out = append(out, ProductMention{ProductID: k.id, ProductName: k.name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ProductID < out[j].ProductID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Engagement computes the four engagement numbers over the trailing window
// in one pass over a single fetch, so they describe one snapshot:
//
//   - total conversations: distinct sessions containing a question_asked
//     event; events without a session id stay out of this numerator
//   - unique customers: distinct non-empty customer identifiers on any event
//   - avg messages per customer: question_asked count over unique customers,
//     rounded half-up to 2 decimals, zero when there are no customers
//   - total events: every event in the window, malformed or not
func (s *Service) Engagement(ctx context.Context, tenantID tenant.ID, daysBack int) (EngagementMetrics, error) {
	ts, err := s.scoped(tenantID)
	if err != nil {
		return EngagementMetrics{}, err
	}
	w, err := query.TrailingWindow(daysBack, s.now())
	if err != nil {
		return EngagementMetrics{}, err
	}

	events, err := ts.EventsInWindow(ctx, w.Start, w.End)
	if err != nil {
		return EngagementMetrics{}, query.StorageErr("load events", err)
	}

	sessions := make(map[string]struct{})
	customers := make(map[string]struct{})
	questions := 0
	for i := range events {
		e := &events[i]
		if e.CustomerIdentifier != "" {
			customers[e.CustomerIdentifier] = struct{}{}
		}
		if e.Type == model.EventQuestionAsked {
			questions++
			if e.SessionID != "" {
				sessions[e.SessionID] = struct{}{}
			}
		}
	}

	m := EngagementMetrics{
		TotalConversations: len(sessions),
		UniqueCustomers:    len(customers),
		TotalEvents:        len(events),
	}
	if len(customers) > 0 {
		m.AvgMessagesPerCustomer = round2(float64(questions) / float64(len(customers)))
	}
	return m, nil
}

// DashboardSummary combines the windowed aggregates into one response.
func (s *Service) DashboardSummary(ctx context.Context, tenantID tenant.ID, daysBack int) (*Summary, error) {
	w, err := query.TrailingWindow(daysBack, s.now())
	if err != nil {
		return nil, err
	}

	counts, err := s.EventCounts(ctx, tenantID, w.Start, w.End)
	if err != nil {
		return nil, err
	}
	daily, err := s.DailyVolume(ctx, tenantID, daysBack)
	if err != nil {
		return nil, err
	}
	top, err := s.TopProductMentions(ctx, tenantID, daysBack, 10)
	if err != nil {
		return nil, err
	}
	engagement, err := s.Engagement(ctx, tenantID, daysBack)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		TopProducts: top,
		DailyVolume: daily,
		Engagement:  engagement,
	}
	for _, c := range counts {
		if c.Type == model.EventQuestionAsked {
			sum.TotalQuestions = c.Count
		}
	}
	today := s.now().UTC().Format("2006-01-02")
	for _, d := range daily {
		if d.Date == today {
			sum.QuestionsToday = d.Count
		}
	}

	s.logger.Info("dashboard summary generated",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("total_questions", sum.TotalQuestions),
	)
	return sum, nil
}

// round2 rounds half-up (away from zero) to 2 decimal places. Inputs here
// are never negative.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
