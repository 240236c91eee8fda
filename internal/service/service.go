package service

//go:generate mockgen -source=service.go -destination=mock/service.go -package=mock_service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"umkmorder/internal/entity"
	"umkmorder/internal/lifecycle"
	"umkmorder/internal/notify"
	"umkmorder/internal/pricing"
	"umkmorder/pkg/cache"
	"umkmorder/pkg/logger"
	"umkmorder/pkg/metric"

	"github.com/go-playground/validator/v10"
)

const (
	_defaultStoreTimeout = 2 * time.Second
	_slowOperation       = 200 * time.Millisecond
)

type (
	OrderRepository interface {
		Create(ctx context.Context, order *entity.Order) (*entity.Order, error)
		GetByOrderID(ctx context.Context, orderID string) (*entity.Order, error)
		List(ctx context.Context) ([]*entity.Order, error)
		Update(ctx context.Context, orderID string, fn func(*entity.Order) error) (*entity.Order, error)
		UpdateAll(ctx context.Context, fn func([]*entity.Order) (bool, error)) error
	}

	OrderService struct {
		orderRepo OrderRepository
		engine    *lifecycle.Engine
		catalog   *pricing.Catalog
		formatter *notify.Formatter
		logger    logger.Logger
		cache     cache.Cache[string, *entity.Order]
		cacheTTL  time.Duration
		// cachedReads lets GetOrder answer from the cache. Only safe when
		// no other process writes the same store.
		cachedReads bool
		// writes counts committed updates; a read that overlaps one is not
		// cached.
		writes atomic.Uint64
		metrics   metric.Order
		validate  *validator.Validate

		now           func() time.Time
		location      *time.Location
		cutoffDay     int
		windowMonths  int
		idPrefix      string
		fallbackPhone string
	}
)

func NewOrderService(
	orderRepo OrderRepository,
	engine *lifecycle.Engine,
	catalog *pricing.Catalog,
	formatter *notify.Formatter,
	logger logger.Logger,
	cache cache.Cache[string, *entity.Order],
	opts ...Option,
) *OrderService {
	cache.SetOnEvicted(func(key string, order *entity.Order) {
		if order == nil {
			return
		}
		logger.Debugw("order evicted from cache",
			"key", key,
			"status", order.Status,
		)
	})

	s := &OrderService{
		orderRepo:    orderRepo,
		engine:       engine,
		catalog:      catalog,
		formatter:    formatter,
		logger:       logger,
		cache:        cache,
		cacheTTL:     _defaultCacheTTL,
		metrics:      nopMetrics{},
		validate:     newValidator(),
		now:          time.Now,
		location:     time.UTC,
		cutoffDay:    pricing.DefaultCutoffDay,
		windowMonths: pricing.DefaultWindowMonths,
		idPrefix:     _defaultIDPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WarmCache loads the most recent stored orders into the cache until it is
// full.
func (s *OrderService) WarmCache(ctx context.Context) error {
	const op = "service.WarmCache"
	log := s.logger.Ctx(ctx)

	if !s.cachedReads {
		log.LogAttrs(ctx, logger.InfoLevel, "cached reads disabled, skipping cache warm-up")
		return nil
	}

	log.LogAttrs(ctx, logger.InfoLevel, "starting cache warm-up from store")
	seen := s.writes.Load()

	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("%s: list orders: %w", op, err)
	}

	if len(orders) == 0 {
		log.LogAttrs(ctx, logger.InfoLevel, "no orders in store to warm cache")
		return nil
	}

	start := 0
	if capacity := s.cache.Capacity(); capacity > 0 && len(orders) > capacity {
		start = len(orders) - capacity
	}

	now := s.now()
	var warmed int
	for _, o := range orders[start:] {
		if s.engine.IsExpired(o, now) {
			continue
		}
		s.cachePut(o, seen)
		warmed++
	}

	log.LogAttrs(ctx, logger.InfoLevel, "cache warm-up finished",
		logger.Int("total_orders_in_store", len(orders)),
		logger.Int("warmed", warmed),
	)

	return nil
}

// GetOrder returns one order by its human-readable ID. An unpaid order past
// its deadline is cancelled before it is returned. The store is read on
// every call unless cached reads are enabled.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*entity.Order, error) {
	const op = "service.GetOrder"
	log := s.logger.Ctx(ctx)

	startTime := time.Now()
	defer s.warnSlow(ctx, op, orderID, startTime)

	key := entity.NormalizeOrderID(orderID)
	if key == "" {
		return nil, fmt.Errorf("%s: empty order id: %w", op, entity.ErrDataNotFound)
	}

	now := s.now()
	if s.cachedReads {
		if cached, found := s.cache.Get(key); found {
			if !s.engine.IsExpired(cached, now) {
				log.LogAttrs(ctx, logger.DebugLevel, "order served from cache",
					logger.String("op", op),
					logger.String("order_id", orderID),
				)
				return cached.Clone(), nil
			}
			s.cache.Remove(key)
		}
	}

	seen := s.writes.Load()
	order, err := s.fetchOrder(ctx, orderID)
	if err != nil {
		if !errors.Is(err, entity.ErrDataNotFound) {
			log.LogAttrs(ctx, logger.ErrorLevel, "failed to get order from store",
				logger.String("op", op),
				logger.Err(err),
				logger.String("order_id", orderID),
			)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.engine.IsExpired(order, now) {
		if _, err = s.SweepExpired(ctx); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		seen = s.writes.Load()
		if order, err = s.fetchOrder(ctx, orderID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	s.cachePut(order, seen)

	log.LogAttrs(ctx, logger.DebugLevel, "order served from store",
		logger.String("op", op),
		logger.String("order_id", order.OrderID),
	)

	return order, nil
}

func (s *OrderService) fetchOrder(ctx context.Context, orderID string) (*entity.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, _defaultStoreTimeout)
	defer cancel()

	return s.orderRepo.GetByOrderID(ctx, orderID)
}

// ListOrders applies the expiry sweep and returns the orders matching filter
// in insertion order.
func (s *OrderService) ListOrders(ctx context.Context, filter entity.OrderFilter) ([]*entity.Order, error) {
	const op = "service.ListOrders"

	if err := s.validateStruct(filter); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	orders, err := s.sweptOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return filter.Apply(orders), nil
}

// Stats summarizes the collection for the admin dashboard. Revenue counts
// every order past payment confirmation that was not cancelled.
func (s *OrderService) Stats(ctx context.Context) (*entity.OrderStats, error) {
	const op = "service.Stats"

	orders, err := s.sweptOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stats := &entity.OrderStats{
		Total:      len(orders),
		ByStatus:   make(map[entity.OrderStatus]int),
		ByPriority: make(map[entity.Priority]int),
	}
	for _, o := range orders {
		stats.ByStatus[o.Status]++
		stats.ByPriority[o.Priority]++

		switch {
		case o.Status == entity.StatusPaymentConfirmation:
			stats.AwaitingPayment++
		case o.Status == entity.StatusPosted:
			stats.Posted++
		case o.Status == entity.StatusCancelled:
			stats.Cancelled++
		case o.Status.Index() > 0:
			stats.InProgress++
		}

		if o.Status.Index() > 0 {
			stats.ConfirmedRevenue += o.TotalAmount
		}
	}

	return stats, nil
}

func (s *OrderService) sweptOrders(ctx context.Context) ([]*entity.Order, error) {
	if _, err := s.SweepExpired(ctx); err != nil {
		return nil, err
	}
	return s.orderRepo.List(ctx)
}

func (s *OrderService) Packages() []entity.EndorsementPackage {
	return s.catalog.Packages()
}

// EndorseMonths returns the months a new submission may book as of now.
func (s *OrderService) EndorseMonths() pricing.Window {
	return pricing.WindowFor(s.now().In(s.location), s.cutoffDay, s.windowMonths)
}

// cachePut stores order unless cached reads are off or a write committed
// since seen was loaded, in which case order may already be stale.
func (s *OrderService) cachePut(order *entity.Order, seen uint64) {
	if !s.cachedReads || s.writes.Load() != seen {
		return
	}
	s.cache.Put(entity.NormalizeOrderID(order.OrderID), order.Clone(), s.cacheTTL)
}

// invalidate records a committed write and drops the affected orders.
func (s *OrderService) invalidate(orderIDs ...string) {
	s.writes.Add(1)
	for _, id := range orderIDs {
		s.cache.Remove(entity.NormalizeOrderID(id))
	}
}

func (s *OrderService) warnSlow(ctx context.Context, op, orderID string, startTime time.Time) {
	duration := time.Since(startTime)
	if duration > _slowOperation {
		s.logger.Ctx(ctx).LogAttrs(ctx, logger.WarnLevel, "slow service operation",
			logger.String("op", op),
			logger.String("order_id", orderID),
			logger.Duration("duration", duration),
		)
	}
}

type nopMetrics struct{}

func (nopMetrics) Submitted(string)             {}
func (nopMetrics) StatusChanged(string, string) {}
func (nopMetrics) Expired(int)                  {}
func (nopMetrics) NotificationRendered(string)  {}
