// Package order locates orders by fuzzy multi-field search or exact code.
package order

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/oakmere/storequery/internal/model"
	"github.com/oakmere/storequery/internal/query"
	"github.com/oakmere/storequery/internal/storage"
	"github.com/oakmere/storequery/internal/tenant"
)

// Order search queries shorter than this are rejected; one or two characters
// match far too much to be a useful order lookup.
const minQueryLength = 3

// Service locates orders within a tenant.
type Service struct {
	store  *storage.Store
	logger *zap.Logger
}

// NewService creates an order locator service.
func NewService(store *storage.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger.Named("order")}
}

// Search returns orders whose code, customer email or customer name contains
// q (case-insensitive substring, no ranking), newest first, truncated to
// limit.
func (s *Service) Search(ctx context.Context, tenantID tenant.ID, q string, limit int) ([]model.Order, error) {
	if err := tenantID.Validate(); err != nil {
		return nil, query.InvalidArgumentf("tenant is required")
	}
	limit, err := query.Limit(limit)
	if err != nil {
		return nil, err
	}
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < minQueryLength {
		return nil, query.InvalidArgumentf("order search query must be at least %d characters", minQueryLength)
	}

	ts, err := s.store.Tenant(tenantID)
	if err != nil {
		return nil, query.InvalidArgumentf("tenant is required")
	}

	orders, err := ts.OrdersMatching(ctx, q, limit)
	if err != nil {
		return nil, query.StorageErr("search orders", err)
	}

	s.logger.Debug("order search",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("results", len(orders)),
	)
	return orders, nil
}

// GetByCode returns the tenant's order with the given code, or a NotFound
// error. Never an empty-but-successful result.
func (s *Service) GetByCode(ctx context.Context, tenantID tenant.ID, code string) (*model.Order, error) {
	if err := tenantID.Validate(); err != nil {
		return nil, query.InvalidArgumentf("tenant is required")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, query.InvalidArgumentf("order code is required")
	}

	ts, err := s.store.Tenant(tenantID)
	if err != nil {
		return nil, query.InvalidArgumentf("tenant is required")
	}

	o, err := ts.OrderByCode(ctx, code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, query.NotFoundf("order %s not found", code)
		}
		return nil, query.StorageErr("get order by code", err)
	}
	return o, nil
}
