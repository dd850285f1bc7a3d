package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/oakmere/storequery/internal/model"
)

const eventColumns = `id, tenant_id, event_type, event_data, session_id,
	customer_identifier, created_at`

// TypeCount is one row of a per-type event rollup.
type TypeCount struct {
	Type  string
	Count int
}

// DateCount is one calendar-day bucket of the daily volume rollup. Date is
// the UTC date component (YYYY-MM-DD) of created_at.
type DateCount struct {
	Date  string
	Count int
}

// EventsInWindow returns all events with created_at in [start, end), oldest
// first. One fetch backs the one-pass engagement rollup so its numbers come
// from a single snapshot.
func (t *TenantStore) EventsInWindow(ctx context.Context, start, end time.Time) ([]model.AnalyticsEvent, error) {
	return t.queryEvents(ctx, `
		SELECT `+eventColumns+`
		FROM analytics_events
		WHERE tenant_id = ? AND created_at >= ? AND created_at < ?
		ORDER BY created_at`,
		t.tenantID.String(), encodeTime(start), encodeTime(end),
	)
}

// EventsOfTypeInWindow returns events of one type within [start, end).
func (t *TenantStore) EventsOfTypeInWindow(ctx context.Context, eventType string, start, end time.Time) ([]model.AnalyticsEvent, error) {
	return t.queryEvents(ctx, `
		SELECT `+eventColumns+`
		FROM analytics_events
		WHERE tenant_id = ? AND event_type = ? AND created_at >= ? AND created_at < ?
		ORDER BY created_at`,
		t.tenantID.String(), eventType, encodeTime(start), encodeTime(end),
	)
}

// EventCountsByType groups windowed events by type, highest count first.
func (t *TenantStore) EventCountsByType(ctx context.Context, start, end time.Time) ([]TypeCount, error) {
	rows, err := t.db().QueryContext(ctx, `
		SELECT event_type, COUNT(*) AS n
		FROM analytics_events
		WHERE tenant_id = ? AND created_at >= ? AND created_at < ?
		GROUP BY event_type
		ORDER BY n DESC, event_type`,
		t.tenantID.String(), encodeTime(start), encodeTime(end),
	)
	if err != nil {
		return nil, fmt.Errorf("group events by type: %w", err)
	}
	defer rows.Close()

	var out []TypeCount
	for rows.Next() {
		var tc TypeCount
		if err := rows.Scan(&tc.Type, &tc.Count); err != nil {
			return nil, fmt.Errorf("scan type count: %w", err)
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

// DailyEventCounts groups windowed events by the UTC date of created_at.
// Days with no events are absent here; the aggregator zero-fills them.
func (t *TenantStore) DailyEventCounts(ctx context.Context, start, end time.Time) ([]DateCount, error) {
	// created_at is RFC3339 UTC, so the first 10 bytes are the date.
	rows, err := t.db().QueryContext(ctx, `
		SELECT substr(created_at, 1, 10) AS day, COUNT(*) AS n
		FROM analytics_events
		WHERE tenant_id = ? AND created_at >= ? AND created_at < ?
		GROUP BY day
		ORDER BY day DESC`,
		t.tenantID.String(), encodeTime(start), encodeTime(end),
	)
	if err != nil {
		return nil, fmt.Errorf("group events by day: %w", err)
	}
	defer rows.Close()

	var out []DateCount
	for rows.Next() {
		var dc DateCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, fmt.Errorf("scan date count: %w", err)
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}

// InsertEvent stores an analytics event for the bound tenant.
func (t *TenantStore) InsertEvent(ctx context.Context, e *model.AnalyticsEvent) error {
	payload, err := encodeJSON(e.Payload)
	if err != nil {
		return err
	}

	_, err = t.db().ExecContext(ctx, `
		INSERT INTO analytics_events (`+eventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		t.tenantID.String(),
		e.Type,
		payload,
		e.SessionID,
		e.CustomerIdentifier,
		encodeTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert event %s: %w", e.ID, err)
	}
	return nil
}

func (t *TenantStore) queryEvents(ctx context.Context, q string, args ...any) ([]model.AnalyticsEvent, error) {
	rows, err := t.db().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []model.AnalyticsEvent
	for rows.Next() {
		var (
			e         model.AnalyticsEvent
			payload   string
			createdAt string
		)
		if err := rows.Scan(
			&e.ID, &e.TenantID, &e.Type, &payload, &e.SessionID,
			&e.CustomerIdentifier, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		if err := decodeJSON(payload, &e.Payload); err != nil {
			return nil, fmt.Errorf("event %s: malformed payload: %w", e.ID, err)
		}
		if e.CreatedAt, err = decodeTime(createdAt); err != nil {
			return nil, fmt.Errorf("event %s: malformed created_at: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
