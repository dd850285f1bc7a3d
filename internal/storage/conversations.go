package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/oakmere/storequery/internal/model"
)

const conversationColumns = `id, tenant_id, customer_identifier, customer_message,
	ai_response, message_count, products_referenced, intent_detected,
	sentiment_score, response_time_ms, created_at`

// Turns returns all conversation turns for the tenant, newest first. There is
// no active/inactive filter; every turn is searchable.
func (t *TenantStore) Turns(ctx context.Context) ([]model.ConversationTurn, error) {
	rows, err := t.db().QueryContext(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations
		WHERE tenant_id = ?
		ORDER BY created_at DESC`,
		t.tenantID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	var out []model.ConversationTurn
	for rows.Next() {
		c, err := scanTurn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// InsertTurn stores a conversation turn for the bound tenant.
func (t *TenantStore) InsertTurn(ctx context.Context, c *model.ConversationTurn) error {
	refs, err := encodeJSON(c.ProductsReferenced)
	if err != nil {
		return err
	}

	var sentiment, latency any
	if c.SentimentScore != nil {
		sentiment = *c.SentimentScore
	}
	if c.ResponseTimeMS != nil {
		latency = *c.ResponseTimeMS
	}

	_, err = t.db().ExecContext(ctx, `
		INSERT INTO conversations (`+conversationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		t.tenantID.String(),
		c.CustomerIdentifier,
		c.Message,
		c.Response,
		c.Sequence,
		refs,
		c.Intent,
		sentiment,
		latency,
		encodeTime(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert conversation %s: %w", c.ID, err)
	}
	return nil
}

func scanTurn(row rowScanner) (*model.ConversationTurn, error) {
	var (
		c         model.ConversationTurn
		refs      string
		sentiment sql.NullFloat64
		latency   sql.NullInt64
		createdAt string
	)
	if err := row.Scan(
		&c.ID, &c.TenantID, &c.CustomerIdentifier, &c.Message, &c.Response,
		&c.Sequence, &refs, &c.Intent, &sentiment, &latency, &createdAt,
	); err != nil {
		return nil, fmt.Errorf("scan conversation row: %w", err)
	}

	if err := decodeJSON(refs, &c.ProductsReferenced); err != nil {
		return nil, fmt.Errorf("conversation %s: malformed products_referenced: %w", c.ID, err)
	}
	if sentiment.Valid {
		v := sentiment.Float64
		c.SentimentScore = &v
	}
	if latency.Valid {
		v := int(latency.Int64)
		c.ResponseTimeMS = &v
	}
	var err error
	if c.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, fmt.Errorf("conversation %s: malformed created_at: %w", c.ID, err)
	}
	return &c, nil
}
