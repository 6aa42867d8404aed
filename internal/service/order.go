package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/microshop/orders-service/internal/catalog"
	"github.com/microshop/orders-service/internal/domain"
	"github.com/microshop/orders-service/internal/event"
	"github.com/microshop/orders-service/internal/repository"
	apperrors "github.com/microshop/orders-service/pkg/errors"
)

// OrderService orchestrates order operations: it validates products against
// the catalog service, computes totals, drives the repository, and enriches
// responses with catalog data.
type OrderService struct {
	repo     repository.OrderRepository
	catalog  catalog.Client
	producer *event.Producer
	logger   *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(repo repository.OrderRepository, catalogClient catalog.Client, producer *event.Producer, logger *slog.Logger) *OrderService {
	return &OrderService{
		repo:     repo,
		catalog:  catalogClient,
		producer: producer,
		logger:   logger,
	}
}

// CreateOrderItemInput holds the parameters for an order line item.
type CreateOrderItemInput struct {
	ProductID string
	Quantity  int
}

// CreateOrderInput holds the parameters for creating an order.
type CreateOrderInput struct {
	Items []CreateOrderItemInput
}

// CreateOrder validates every referenced product against the catalog, computes
// the order totals from catalog prices, and persists the order with its items
// atomically. The returned order has each item enriched with the product name
// from the same catalog response; no second lookup is made.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, apperrors.InvalidInput("order must contain at least one item")
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, apperrors.InvalidInput("item quantity must be a positive integer")
		}
	}

	products, err := s.lookupProducts(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	orderID := uuid.New().String()

	// Build items with the catalog price snapshotted per line, and compute
	// the derived totals from the same snapshot.
	var (
		totalAmount int64
		totalItems  int
	)
	items := make([]domain.OrderItem, len(input.Items))
	names := make([]string, len(input.Items))
	for i, itemInput := range input.Items {
		product, ok := products[itemInput.ProductID]
		if !ok {
			return nil, apperrors.NotFoundMsg(fmt.Sprintf("product %s unavailable", itemInput.ProductID))
		}
		items[i] = domain.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			ProductID: itemInput.ProductID,
			Price:     product.Price,
			Quantity:  itemInput.Quantity,
		}
		names[i] = product.Name
		totalAmount += items[i].LineTotal()
		totalItems += itemInput.Quantity
	}

	order := &domain.Order{
		ID:          orderID,
		Status:      domain.OrderStatusPending,
		Items:       items,
		TotalAmount: totalAmount,
		TotalItems:  totalItems,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	// Enrich the response in-memory from the catalog data already fetched.
	for i := range order.Items {
		order.Items[i].Name = names[i]
	}

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.Int64("total_amount", order.TotalAmount),
		slog.Int("total_items", order.TotalItems),
	)

	return order, nil
}

// GetOrder retrieves an order by its ID and re-validates every line item
// against the catalog on this read. If a referenced product can no longer be
// confirmed, the read fails with a not-found error even though the order row
// exists; catalog state may have changed since creation.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order by id: %w", err)
	}

	if len(order.Items) == 0 {
		return order, nil
	}

	inputs := make([]CreateOrderItemInput, len(order.Items))
	for i, item := range order.Items {
		inputs[i] = CreateOrderItemInput{ProductID: item.ProductID}
	}
	products, err := s.lookupProducts(ctx, inputs)
	if err != nil {
		return nil, err
	}

	for i := range order.Items {
		product, ok := products[order.Items[i].ProductID]
		if !ok {
			return nil, apperrors.NotFoundMsg(fmt.Sprintf("product %s unavailable", order.Items[i].ProductID))
		}
		order.Items[i].Name = product.Name
	}

	return order, nil
}

// ListOrders returns a filtered, paginated list of orders. List views carry
// no line items and no catalog enrichment; those are detail-read concerns.
func (s *OrderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	return orders, total, nil
}

// ChangeOrderStatus sets the order to the given status. The order is read
// through GetOrder first, reusing its enrichment and not-found semantics. If
// the order already has the requested status the store is not touched and the
// order is returned unchanged.
func (s *OrderService) ChangeOrderStatus(ctx context.Context, id string, newStatus string) (*domain.Order, error) {
	if !domain.IsValidStatus(newStatus) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid status %q, must be one of: %s", newStatus, strings.Join(domain.ValidStatuses(), ", ")))
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	// Idempotent short-circuit.
	if order.Status == newStatus {
		return order, nil
	}

	oldStatus := order.Status

	if err := s.repo.UpdateStatus(ctx, id, newStatus); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	if err := s.producer.PublishOrderStatusChanged(ctx, id, oldStatus, newStatus); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
			slog.String("order_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order status changed",
		slog.String("order_id", id),
		slog.String("old_status", oldStatus),
		slog.String("new_status", newStatus),
	)

	order.Status = newStatus
	order.UpdatedAt = time.Now().UTC()

	return order, nil
}

// lookupProducts calls the catalog with the distinct product ids from the
// given items and returns the confirmed products keyed by id.
func (s *OrderService) lookupProducts(ctx context.Context, items []CreateOrderItemInput) (map[string]domain.Product, error) {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}

	products, err := s.catalog.ValidateProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("validate products: %w", err)
	}

	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}
