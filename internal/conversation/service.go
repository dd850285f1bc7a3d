// Package conversation implements ranked full-text search over historical
// chat turns.
package conversation

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/oakmere/storequery/internal/query"
	"github.com/oakmere/storequery/internal/relevance"
	"github.com/oakmere/storequery/internal/storage"
	"github.com/oakmere/storequery/internal/tenant"
)

// TurnHit is one ranked conversation search result.
type TurnHit struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
	Score     float64   `json:"score"`
}

// Service ranks a tenant's conversation turns against a query.
type Service struct {
	store  *storage.Store
	logger *zap.Logger
}

// NewService creates a conversation search service.
func NewService(store *storage.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger.Named("conversation")}
}

// Search returns conversation turns for tenantID ranked by relevance to q
// over message+response text, highest score first, ties broken by recency.
// All turns are searchable; there is no active filter. An empty query lists
// every turn with a uniform score, newest first.
func (s *Service) Search(ctx context.Context, tenantID tenant.ID, q string, limit int) ([]TurnHit, error) {
	if err := tenantID.Validate(); err != nil {
		return nil, query.InvalidArgumentf("tenant is required")
	}
	limit, err := query.Limit(limit)
	if err != nil {
		return nil, err
	}

	ts, err := s.store.Tenant(tenantID)
	if err != nil {
		return nil, query.InvalidArgumentf("tenant is required")
	}

	turns, err := ts.Turns(ctx)
	if err != nil {
		return nil, query.StorageErr("load conversation turns", err)
	}

	tokens := relevance.QueryTokens(q)

	hits := make([]TurnHit, 0, len(turns))
	for i := range turns {
		c := &turns[i]
		score := relevance.ScoreText(c.SearchText(), tokens)
		if score == 0 {
			continue
		}
		hits = append(hits, TurnHit{
			ID:        c.ID,
			Message:   c.Message,
			Response:  c.Response,
			CreatedAt: c.CreatedAt,
			Score:     score,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].CreatedAt.After(hits[j].CreatedAt)
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}

	s.logger.Debug("conversation search",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("query_tokens", len(tokens)),
		zap.Int("results", len(hits)),
	)
	return hits, nil
}
