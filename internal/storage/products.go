package storage

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/oakmere/storequery/internal/model"
)

const productColumns = `id, tenant_id, name, description, price, category, sku,
	image_url, stock_quantity, is_active, metadata, created_at, updated_at`

// ActiveProducts returns the tenant's active products in insertion order.
// The active filter is part of the predicate, applied before any ranking.
func (t *TenantStore) ActiveProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := t.db().QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE tenant_id = ? AND is_active = 1
		ORDER BY rowid`,
		t.tenantID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("query active products: %w", err)
	}
	defer rows.Close()

	var out []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// InsertProduct stores a product for the bound tenant. The tenant column is
// taken from the handle, never from the entity.
func (t *TenantStore) InsertProduct(ctx context.Context, p *model.Product) error {
	meta, err := encodeJSON(p.Metadata)
	if err != nil {
		return err
	}

	_, err = t.db().ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		t.tenantID.String(),
		p.Name,
		p.Description,
		p.Price.String(),
		p.Category,
		p.SKU,
		p.ImageURL,
		p.StockQuantity,
		boolToInt(p.Active),
		meta,
		encodeTime(p.CreatedAt),
		encodeTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert product %s: %w", p.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*model.Product, error) {
	var (
		p                    model.Product
		price, meta          string
		active               int
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&p.ID, &p.TenantID, &p.Name, &p.Description, &price, &p.Category,
		&p.SKU, &p.ImageURL, &p.StockQuantity, &active, &meta,
		&createdAt, &updatedAt,
	); err != nil {
		return nil, fmt.Errorf("scan product row: %w", err)
	}

	var err error
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("product %s: malformed price %q: %w", p.ID, price, err)
	}
	p.Active = active != 0
	if err := decodeJSON(meta, &p.Metadata); err != nil {
		return nil, fmt.Errorf("product %s: malformed metadata: %w", p.ID, err)
	}
	if p.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, fmt.Errorf("product %s: malformed created_at: %w", p.ID, err)
	}
	if p.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return nil, fmt.Errorf("product %s: malformed updated_at: %w", p.ID, err)
	}
	return &p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
