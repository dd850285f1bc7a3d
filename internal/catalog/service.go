// Package catalog implements relevance-ranked search over product catalogs.
package catalog

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/oakmere/storequery/internal/query"
	"github.com/oakmere/storequery/internal/relevance"
	"github.com/oakmere/storequery/internal/storage"
	"github.com/oakmere/storequery/internal/tenant"
)

// ProductHit is one ranked catalog search result.
type ProductHit struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	Score       float64         `json:"score"`
}

// Service ranks a tenant's active products against a query.
type Service struct {
	store  *storage.Store
	logger *zap.Logger
}

// NewService creates a catalog search service.
func NewService(store *storage.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger.Named("catalog")}
}

// Search returns active products for tenantID ranked by relevance to q,
// highest score first, truncated to limit. An empty query lists all active
// products with a uniform score. Inactive products are excluded by the
// storage predicate before ranking ever runs.
func (s *Service) Search(ctx context.Context, tenantID tenant.ID, q string, limit int) ([]ProductHit, error) {
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

	products, err := ts.ActiveProducts(ctx)
	if err != nil {
		return nil, query.StorageErr("load active products", err)
	}

	tokens := relevance.QueryTokens(q)

	hits := make([]ProductHit, 0, len(products))
	for i := range products {
		p := &products[i]
		score := relevance.ScoreText(p.SearchText(), tokens)
		if score == 0 {
			continue
		}
		hits = append(hits, ProductHit{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Category:    p.Category,
			ImageURL:    p.ImageURL,
			Score:       score,
		})
	}

	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}

	s.logger.Debug("catalog search",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("query_tokens", len(tokens)),
		zap.Int("results", len(hits)),
	)
	return hits, nil
}
