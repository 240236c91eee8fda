package httpt

import (
	"context"
	"time"

	"umkmorder/internal/entity"
	"umkmorder/internal/pricing"
	"umkmorder/pkg/logger"
	"umkmorder/pkg/metric"

	"github.com/gin-gonic/gin"
)

const (
	_defaultRequestTimeout = 2 * time.Second
	_defaultRealm          = "umkm-admin"
)

type (
	OrderService interface {
		SubmitOrder(ctx context.Context, sub *entity.Submission) (*entity.Order, error)
		CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error)
		GetOrder(ctx context.Context, orderID string) (*entity.Order, error)
		ListOrders(ctx context.Context, filter entity.OrderFilter) ([]*entity.Order, error)
		UpdateOrder(ctx context.Context, orderID string, patch entity.OrderPatch) (*entity.Order, error)
		SweepExpired(ctx context.Context) (int, error)
		Stats(ctx context.Context) (*entity.OrderStats, error)
		Track(ctx context.Context, orderID string) (*entity.TrackingView, error)
		Notification(ctx context.Context, orderID, template string) (*entity.Notification, error)
		Packages() []entity.EndorsementPackage
		EndorseMonths() pricing.Window
	}

	OrderHandler struct {
		svc            OrderService
		log            logger.Logger
		metrics        metric.HTTP
		router         *gin.Engine
		requestTimeout time.Duration
		adminUsers     map[string]string
		realm          string
	}
)

func NewOrderHandler(
	svc OrderService,
	log logger.Logger,
	metrics metric.HTTP,
	opts ...Option,
) *OrderHandler {
	h := &OrderHandler{
		svc:            svc,
		log:            log,
		metrics:        metrics,
		requestTimeout: _defaultRequestTimeout,
		adminUsers:     map[string]string{},
		realm:          _defaultRealm,
	}
	for _, opt := range opts {
		opt(h)
	}

	if len(h.adminUsers) == 0 {
		log.Warnw("no admin users configured, admin endpoints will reject every request")
	}

	router := gin.New()

	router.Use(h.requestIDMiddleware())
	router.Use(h.loggingMiddleware())
	router.Use(gin.Recovery())

	h.router = router

	h.setupRoutes()

	return h
}

func (h *OrderHandler) Engine() *gin.Engine {
	return h.router
}

func (h *OrderHandler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.requestTimeout)
}

type Option func(*OrderHandler)

func RequestTimeout(timeout time.Duration) Option {
	return func(h *OrderHandler) {
		if timeout > 0 {
			h.requestTimeout = timeout
		}
	}
}

// AdminUsers sets the accepted admin logins; values are bcrypt hashes.
func AdminUsers(users map[string]string, realm string) Option {
	return func(h *OrderHandler) {
		h.adminUsers = make(map[string]string, len(users))
		for login, hash := range users {
			h.adminUsers[login] = hash
		}
		if realm != "" {
			h.realm = realm
		}
	}
}
