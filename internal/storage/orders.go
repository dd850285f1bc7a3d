package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/oakmere/storequery/internal/model"
)

const orderColumns = `id, tenant_id, code, customer_email, customer_name,
	customer_phone, items, subtotal, tax, shipping, total, status,
	payment_status, shipping_address, billing_address, estimated_delivery,
	actual_delivery, tracking_number, tracking_url, notes, created_at, updated_at`

// OrdersMatching returns orders whose code, customer email or customer name
// contains q (case-insensitive), newest first, truncated to limit. No
// relevance ranking - order identifiers are queried verbatim or near-verbatim.
func (t *TenantStore) OrdersMatching(ctx context.Context, q string, limit int) ([]model.Order, error) {
	pattern := "%" + escapeLike(strings.ToLower(q)) + "%"

	rows, err := t.db().QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE tenant_id = ?
		  AND (lower(code) LIKE ? ESCAPE '\'
		    OR lower(customer_email) LIKE ? ESCAPE '\'
		    OR lower(customer_name) LIKE ? ESCAPE '\')
		ORDER BY created_at DESC
		LIMIT ?`,
		t.tenantID.String(), pattern, pattern, pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search orders: %w", err)
	}
	defer rows.Close()

	var out []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// OrderByCode returns the single order with the given code, or ErrNotFound.
// (tenant_id, code) is unique by construction, so at most one row can match.
func (t *TenantStore) OrderByCode(ctx context.Context, code string) (*model.Order, error) {
	row := t.db().QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE tenant_id = ? AND code = ?`,
		t.tenantID.String(), code,
	)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

// InsertOrder stores an order for the bound tenant.
func (t *TenantStore) InsertOrder(ctx context.Context, o *model.Order) error {
	items, err := encodeJSON(o.Items)
	if err != nil {
		return err
	}
	shipAddr, err := encodeNullJSON(o.ShippingAddress)
	if err != nil {
		return err
	}
	billAddr, err := encodeNullJSON(o.BillingAddress)
	if err != nil {
		return err
	}

	_, err = t.db().ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID,
		t.tenantID.String(),
		o.Code,
		o.CustomerEmail,
		o.CustomerName,
		o.CustomerPhone,
		items,
		o.Subtotal.String(),
		o.Tax.String(),
		o.Shipping.String(),
		o.Total.String(),
		string(o.Status),
		string(o.PaymentStatus),
		shipAddr,
		billAddr,
		encodeNullTime(o.EstimatedDelivery),
		encodeNullTime(o.ActualDelivery),
		o.TrackingNumber,
		o.TrackingURL,
		o.Notes,
		encodeTime(o.CreatedAt),
		encodeTime(o.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert order %s: %w", o.Code, err)
	}
	return nil
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var (
		o                              model.Order
		items                          string
		subtotal, tax, shipping, total string
		status, payStatus              string
		shipAddr, billAddr             sql.NullString
		estDelivery, actDelivery       sql.NullString
		createdAt, updatedAt           string
	)
	if err := row.Scan(
		&o.ID, &o.TenantID, &o.Code, &o.CustomerEmail, &o.CustomerName,
		&o.CustomerPhone, &items, &subtotal, &tax, &shipping, &total,
		&status, &payStatus, &shipAddr, &billAddr, &estDelivery,
		&actDelivery, &o.TrackingNumber, &o.TrackingURL, &o.Notes,
		&createdAt, &updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan order row: %w", err)
	}

	if err := decodeJSON(items, &o.Items); err != nil {
		return nil, fmt.Errorf("order %s: malformed items: %w", o.Code, err)
	}
	var err error
	for _, col := range []struct {
		dst *decimal.Decimal
		raw string
	}{
		{&o.Subtotal, subtotal}, {&o.Tax, tax}, {&o.Shipping, shipping}, {&o.Total, total},
	} {
		if *col.dst, err = decimal.NewFromString(col.raw); err != nil {
			return nil, fmt.Errorf("order %s: malformed amount %q: %w", o.Code, col.raw, err)
		}
	}
	o.Status = model.OrderStatus(status)
	o.PaymentStatus = model.PaymentStatus(payStatus)

	if shipAddr.Valid && shipAddr.String != "" {
		o.ShippingAddress = &model.Address{}
		if err := decodeJSON(shipAddr.String, o.ShippingAddress); err != nil {
			return nil, fmt.Errorf("order %s: malformed shipping_address: %w", o.Code, err)
		}
	}
	if billAddr.Valid && billAddr.String != "" {
		o.BillingAddress = &model.Address{}
		if err := decodeJSON(billAddr.String, o.BillingAddress); err != nil {
			return nil, fmt.Errorf("order %s: malformed billing_address: %w", o.Code, err)
		}
	}
	if o.EstimatedDelivery, err = decodeNullTime(estDelivery); err != nil {
		return nil, fmt.Errorf("order %s: malformed estimated_delivery: %w", o.Code, err)
	}
	if o.ActualDelivery, err = decodeNullTime(actDelivery); err != nil {
		return nil, fmt.Errorf("order %s: malformed actual_delivery: %w", o.Code, err)
	}
	if o.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, fmt.Errorf("order %s: malformed created_at: %w", o.Code, err)
	}
	if o.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return nil, fmt.Errorf("order %s: malformed updated_at: %w", o.Code, err)
	}
	return &o, nil
}

func encodeNullJSON(addr *model.Address) (any, error) {
	if addr == nil {
		return nil, nil
	}
	s, err := encodeJSON(addr)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// escapeLike escapes LIKE metacharacters so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
