// Package tenant carries the tenant identity that scopes every query.
package tenant

import (
	"context"
	"errors"
)

// Tenant isolation error types - fail closed security model.
var (
	// ErrMissingTenant is returned when tenant identity is missing from context.
	// This triggers "fail closed" behavior - no empty results, just errors.
	ErrMissingTenant = errors.New("tenant identity missing from context")

	// ErrInvalidTenant is returned when the tenant identifier is invalid.
	ErrInvalidTenant = errors.New("invalid tenant identifier")
)

// ID is an opaque store-owner identifier. It is the unit of data isolation:
// every persisted row carries exactly one ID and no query may span two of them.
type ID string

// Validate checks that the identifier is usable in a query predicate.
func (id ID) Validate() error {
	if id == "" {
		return ErrInvalidTenant
	}
	return nil
}

// String returns the raw identifier.
func (id ID) String() string {
	return string(id)
}

// tenantContextKey is the context key for the tenant ID.
type tenantContextKey struct{}

// WithTenant adds a tenant ID to a context.
func WithTenant(ctx context.Context, id ID) context.Context {
	return context.WithValue(ctx, tenantContextKey{}, id)
}

// FromContext extracts the tenant ID from a context.
// Returns ErrMissingTenant if not present - fail closed.
func FromContext(ctx context.Context) (ID, error) {
	val := ctx.Value(tenantContextKey{})
	if val == nil {
		return "", ErrMissingTenant
	}
	id, ok := val.(ID)
	if !ok || id == "" {
		return "", ErrMissingTenant
	}
	return id, nil
}

// HasTenant checks whether a tenant ID is present in the context.
func HasTenant(ctx context.Context) bool {
	_, err := FromContext(ctx)
	return err == nil
}
