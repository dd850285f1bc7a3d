// Package seed populates a tenant with sample data for demos and local
// development.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/oakmere/storequery/internal/model"
	"github.com/oakmere/storequery/internal/storage"
	"github.com/oakmere/storequery/internal/tenant"
)

// Seeder writes sample products, orders, conversations, and events for one
// tenant. Runs are additive; seeding twice doubles everything except orders,
// whose codes collide on the per-tenant uniqueness constraint.
type Seeder struct {
	store  *storage.Store
	logger *zap.Logger
	rng    *rand.Rand
	now    func() time.Time
}

// New creates a Seeder. A fixed rngSeed makes runs reproducible.
func New(store *storage.Store, logger *zap.Logger, rngSeed int64) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{
		store:  store,
		logger: logger.Named("seed"),
		rng:    rand.New(rand.NewSource(rngSeed)),
		now:    time.Now,
	}
}

type sampleProduct struct {
	name        string
	description string
	category    string
	price       string
}

var sampleProducts = []sampleProduct{
	{"Wireless Headphones", "Over-ear noise cancelling headphones with 30 hour battery", "electronics", "129.99"},
	{"Smart Watch", "Fitness tracking watch with heart rate monitor", "electronics", "249.99"},
	{"Laptop Stand", "Adjustable aluminium laptop stand", "accessories", "39.99"},
	{"USB-C Cable", "Braided 2m USB-C charging cable", "accessories", "19.99"},
	{"Phone Case", "Shockproof phone case with card holder", "accessories", "24.99"},
	{"Blue Ceramic Mug", "Handmade ceramic mug, 350ml", "homeware", "14.50"},
	{"Canvas Tote Bag", "Heavy duty canvas tote for everyday use", "bags", "22.00"},
	{"Desk Lamp", "LED desk lamp with adjustable warmth", "homeware", "45.00"},
}

var sampleQuestions = []struct{ message, response string }{
	{"Do you have wireless headphones in stock?", "Yes, the Wireless Headphones are in stock and ship within 2 days."},
	{"What is your return policy?", "You can return any unused item within 30 days for a full refund."},
	{"Where is my order ORD-10002?", "Order ORD-10002 is in transit and should arrive within 3 days."},
	{"Is the smart watch waterproof?", "The Smart Watch is water resistant to 50m, suitable for swimming."},
	{"Do the mugs come in other colours?", "The ceramic mugs currently come in blue only; more colours are planned."},
}

// Run seeds every data kind for tenantID. orderCount controls order volume;
// the other kinds use fixed sample sets.
func (s *Seeder) Run(ctx context.Context, tenantID tenant.ID, orderCount int) error {
	ts, err := s.store.Tenant(tenantID)
	if err != nil {
		return fmt.Errorf("resolve tenant: %w", err)
	}
	if orderCount <= 0 {
		orderCount = 10
	}

	if err := s.seedProducts(ctx, ts); err != nil {
		return err
	}
	if err := s.seedOrders(ctx, ts, orderCount); err != nil {
		return err
	}
	if err := s.seedConversations(ctx, ts); err != nil {
		return err
	}
	if err := s.seedEvents(ctx, ts); err != nil {
		return err
	}

	s.logger.Info("seed complete",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("orders", orderCount),
		zap.Int("products", len(sampleProducts)),
	)
	return nil
}

func (s *Seeder) seedProducts(ctx context.Context, ts *storage.TenantStore) error {
	now := s.now().UTC()
	for _, sp := range sampleProducts {
		price, err := decimal.NewFromString(sp.price)
		if err != nil {
			return fmt.Errorf("parse sample price %q: %w", sp.price, err)
		}
		p := &model.Product{
			ID:            uuid.NewString(),
			Name:          sp.name,
			Description:   sp.description,
			Price:         price,
			Category:      sp.category,
			StockQuantity: 5 + s.rng.Intn(50),
			Active:        true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := ts.InsertProduct(ctx, p); err != nil {
			return fmt.Errorf("insert product %q: %w", sp.name, err)
		}
	}
	return nil
}

func (s *Seeder) seedOrders(ctx context.Context, ts *storage.TenantStore, count int) error {
	statuses := []model.OrderStatus{
		model.OrderPending,
		model.OrderProcessing,
		model.OrderShipped,
		model.OrderInTransit,
		model.OrderDelivered,
	}
	now := s.now().UTC()

	for i := 0; i < count; i++ {
		numItems := 1 + s.rng.Intn(3)
		items := make([]model.OrderItem, 0, numItems)
		subtotal := decimal.Zero
		for j := 0; j < numItems; j++ {
			sp := sampleProducts[s.rng.Intn(len(sampleProducts))]
			price, err := decimal.NewFromString(sp.price)
			if err != nil {
				return fmt.Errorf("parse sample price %q: %w", sp.price, err)
			}
			qty := 1 + s.rng.Intn(3)
			items = append(items, model.OrderItem{
				ProductName: sp.name,
				Quantity:    qty,
				Price:       price,
			})
			subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(qty))))
		}

		tax := subtotal.Mul(decimal.NewFromFloat(0.09)).Round(2)
		shipping := decimal.NewFromInt(10)
		status := statuses[s.rng.Intn(len(statuses))]

		estimated := now.AddDate(0, 0, 3+s.rng.Intn(5))
		o := &model.Order{
			ID:                uuid.NewString(),
			Code:              fmt.Sprintf("ORD-%d", 10000+i),
			CustomerEmail:     fmt.Sprintf("customer%d@example.com", i),
			CustomerName:      fmt.Sprintf("Customer %d", i),
			Items:             items,
			Subtotal:          subtotal,
			Tax:               tax,
			Shipping:          shipping,
			Total:             subtotal.Add(tax).Add(shipping),
			Status:            status,
			PaymentStatus:     model.PaymentPaid,
			EstimatedDelivery: &estimated,
			CreatedAt:         now.AddDate(0, 0, -s.rng.Intn(14)),
			UpdatedAt:         now,
		}
		switch status {
		case model.OrderShipped, model.OrderInTransit, model.OrderDelivered:
			o.TrackingNumber = fmt.Sprintf("TRK%d", 1000000000+i)
		}
		if err := ts.InsertOrder(ctx, o); err != nil {
			return fmt.Errorf("insert order %s: %w", o.Code, err)
		}
	}
	return nil
}

func (s *Seeder) seedConversations(ctx context.Context, ts *storage.TenantStore) error {
	now := s.now().UTC()
	for i, q := range sampleQuestions {
		c := &model.ConversationTurn{
			ID:                 uuid.NewString(),
			CustomerIdentifier: fmt.Sprintf("customer%d@example.com", i%3),
			Message:            q.message,
			Response:           q.response,
			Sequence:           i + 1,
			CreatedAt:          now.Add(-time.Duration(i) * time.Hour),
		}
		if err := ts.InsertTurn(ctx, c); err != nil {
			return fmt.Errorf("insert conversation turn: %w", err)
		}
	}
	return nil
}

func (s *Seeder) seedEvents(ctx context.Context, ts *storage.TenantStore) error {
	now := s.now().UTC()

	// A question event per sample turn, plus product views spread over the
	// trailing week so the analytics endpoints have something to roll up.
	for i := range sampleQuestions {
		e := &model.AnalyticsEvent{
			ID:                 uuid.NewString(),
			Type:               model.EventQuestionAsked,
			SessionID:          fmt.Sprintf("session-%d", i/2),
			CustomerIdentifier: fmt.Sprintf("customer%d@example.com", i%3),
			CreatedAt:          now.Add(-time.Duration(i) * time.Hour),
		}
		if err := ts.InsertEvent(ctx, e); err != nil {
			return fmt.Errorf("insert question event: %w", err)
		}
	}

	products, err := ts.ActiveProducts(ctx)
	if err != nil {
		return fmt.Errorf("load products for view events: %w", err)
	}
	for i := 0; i < 20 && len(products) > 0; i++ {
		p := products[s.rng.Intn(len(products))]
		e := &model.AnalyticsEvent{
			ID:   uuid.NewString(),
			Type: model.EventProductView,
			Payload: map[string]any{
				model.PayloadProductID:   p.ID,
				model.PayloadProductName: p.Name,
			},
			SessionID: fmt.Sprintf("session-%d", s.rng.Intn(5)),
			CreatedAt: now.Add(-time.Duration(s.rng.Intn(6*24)) * time.Hour),
		}
		if err := ts.InsertEvent(ctx, e); err != nil {
			return fmt.Errorf("insert product view event: %w", err)
		}
	}
	return nil
}
