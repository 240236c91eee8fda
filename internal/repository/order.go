package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"umkmorder/internal/entity"
	"umkmorder/internal/pricing"
)

const DefaultOrdersKey = "umkmOrders"

// OrderRepository stores the whole order collection as one JSON array
// document. Every write rewrites the collection.
type OrderRepository struct {
	store DocumentStore
	key   string
}

func NewOrderRepository(store DocumentStore, key string) *OrderRepository {
	if key == "" {
		key = DefaultOrdersKey
	}
	return &OrderRepository{store: store, key: key}
}

func (r *OrderRepository) Create(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	const op = "repository.OrderRepository.Create"

	err := r.store.Update(ctx, r.key, func(current []byte) ([]byte, error) {
		orders, err := decodeOrders(current)
		if err != nil {
			return nil, err
		}
		for _, o := range orders {
			if o.HasOrderID(order.OrderID) {
				return nil, fmt.Errorf("order %s: %w", order.OrderID, entity.ErrConflictingData)
			}
		}
		return encodeOrders(append(orders, order.Clone()))
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return order.Clone(), nil
}

func (r *OrderRepository) GetByOrderID(ctx context.Context, orderID string) (*entity.Order, error) {
	const op = "repository.OrderRepository.GetByOrderID"

	orders, err := r.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, o := range orders {
		if o.HasOrderID(orderID) {
			return o, nil
		}
	}
	return nil, fmt.Errorf("%s: order %s: %w", op, orderID, entity.ErrDataNotFound)
}

// List returns every order in insertion order.
func (r *OrderRepository) List(ctx context.Context) ([]*entity.Order, error) {
	const op = "repository.OrderRepository.List"

	doc, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, entity.ErrDataNotFound) {
			return []*entity.Order{}, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	orders, err := decodeOrders(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

// Update applies fn to one order and persists the collection. fn must not
// change OrderID.
func (r *OrderRepository) Update(
	ctx context.Context,
	orderID string,
	fn func(*entity.Order) error,
) (*entity.Order, error) {
	const op = "repository.OrderRepository.Update"

	var updated *entity.Order
	err := r.store.Update(ctx, r.key, func(current []byte) ([]byte, error) {
		orders, err := decodeOrders(current)
		if err != nil {
			return nil, err
		}

		for _, o := range orders {
			if !o.HasOrderID(orderID) {
				continue
			}
			originalID := o.OrderID
			if err = fn(o); err != nil {
				return nil, err
			}
			o.OrderID = originalID
			updated = o.Clone()
			return encodeOrders(orders)
		}
		return nil, fmt.Errorf("order %s: %w", orderID, entity.ErrDataNotFound)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

// UpdateAll hands the whole collection to fn and persists it only when fn
// reports a change.
func (r *OrderRepository) UpdateAll(
	ctx context.Context,
	fn func([]*entity.Order) (bool, error),
) error {
	const op = "repository.OrderRepository.UpdateAll"

	err := r.store.Update(ctx, r.key, func(current []byte) ([]byte, error) {
		orders, err := decodeOrders(current)
		if err != nil {
			return nil, err
		}

		changed, err := fn(orders)
		if err != nil || !changed {
			return nil, err
		}
		return encodeOrders(orders)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func decodeOrders(doc []byte) ([]*entity.Order, error) {
	if len(doc) == 0 {
		return []*entity.Order{}, nil
	}

	var orders []*entity.Order
	if err := json.Unmarshal(doc, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	out := orders[:0]
	for _, o := range orders {
		if o == nil {
			continue
		}
		normalize(o)
		out = append(out, o)
	}
	return out, nil
}

// normalize fills in fields that older documents may lack.
func normalize(o *entity.Order) {
	if o.Priority == "" {
		o.Priority = entity.PriorityMedium
	}
	if o.Products == nil {
		o.Products = []entity.OrderProduct{}
	}
	o.TotalAmount = pricing.RecomputeTotal(o.Products)
}

func encodeOrders(orders []*entity.Order) ([]byte, error) {
	if orders == nil {
		orders = []*entity.Order{}
	}
	doc, err := json.Marshal(orders)
	if err != nil {
		return nil, fmt.Errorf("encode orders: %w", err)
	}
	return doc, nil
}
