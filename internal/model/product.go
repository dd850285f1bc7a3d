// Package model defines the persisted entities the query engine reads.
//
// All entities carry exactly one tenant ID, set at creation by the ingestion
// collaborators (CSV upload, chat pipeline, order import, event emitter) and
// never mutated here. The engine only reads them.
package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a store inventory item. Only active products are searchable.
type Product struct {
	ID            string            `json:"id"`
	TenantID      string            `json:"tenant_id"`
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	Price         decimal.Decimal   `json:"price"`
	Category      string            `json:"category,omitempty"`
	SKU           string            `json:"sku,omitempty"`
	ImageURL      string            `json:"image_url,omitempty"`
	StockQuantity int               `json:"stock_quantity"`
	Active        bool              `json:"is_active"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// SearchText returns the combined text the relevance indexer scores against.
func (p *Product) SearchText() string {
	parts := make([]string, 0, 3)
	parts = append(parts, p.Name)
	if p.Description != "" {
		parts = append(parts, p.Description)
	}
	if p.Category != "" {
		parts = append(parts, p.Category)
	}
	return strings.Join(parts, " ")
}
