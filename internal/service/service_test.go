package service_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"umkmorder/internal/entity"
	"umkmorder/internal/lifecycle"
	"umkmorder/internal/notify"
	"umkmorder/internal/pricing"
	"umkmorder/internal/service"
	mock_service "umkmorder/internal/service/mock"
	"umkmorder/pkg/cache"
	"umkmorder/pkg/logger"
	mock_metric "umkmorder/pkg/metric/mock"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var wib = time.FixedZone("WIB", 7*60*60)

// 16 October 2026, 10:00 WIB: past the cutoff day, so November is the
// earliest bookable month.
var testNow = time.Date(2026, time.October, 16, 10, 0, 0, 0, wib)

func newTestCache(t *testing.T, ctrl *gomock.Controller) cache.Cache[string, *entity.Order] {
	t.Helper()

	metrics := mock_metric.NewMockCache(ctrl)
	metrics.EXPECT().Hit(gomock.Any()).AnyTimes()
	metrics.EXPECT().Miss(gomock.Any()).AnyTimes()
	metrics.EXPECT().Eviction(gomock.Any(), gomock.Any()).AnyTimes()
	metrics.EXPECT().Size(gomock.Any(), gomock.Any()).AnyTimes()

	c, err := cache.NewLRUCache[string, *entity.Order]("orders", 100, logger.NewNop(), metrics)
	require.NoError(t, err)
	return c
}

func newTestService(
	t *testing.T,
	ctrl *gomock.Controller,
	repo service.OrderRepository,
	now func() time.Time,
	opts ...service.Option,
) *service.OrderService {
	t.Helper()

	base := []service.Option{
		service.Clock(now),
		service.Location(wib),
		service.FallbackPhone("6281234567890"),
	}
	return service.NewOrderService(
		repo,
		lifecycle.NewEngine(),
		pricing.NewCatalog(nil),
		notify.NewFormatter(nil),
		logger.NewNop(),
		newTestCache(t, ctrl),
		append(base, opts...)...,
	)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func generateFakeSubmission(types ...string) *entity.Submission {
	if len(types) == 0 {
		types = []string{"basic"}
	}
	products := make([]entity.SubmissionProduct, 0, len(types))
	for i, typ := range types {
		products = append(products, entity.SubmissionProduct{
			Description:     gofakeit.ProductDescription(),
			EndorsementType: typ,
			EndorseMonth:    entity.YearMonth{Year: 2026, Month: time.November + time.Month(i%2)},
		})
	}
	return &entity.Submission{
		CustomerName: gofakeit.Name(),
		BrandName:    gofakeit.Company(),
		Instagram:    "@" + gofakeit.Username(),
		Email:        gofakeit.Email(),
		Phone:        "08" + gofakeit.Numerify("##########"),
		Products:     products,
	}
}

func generateFakeOrder(orderID string, status entity.OrderStatus) *entity.Order {
	expires := testNow.Add(48 * time.Hour)
	return &entity.Order{
		ID:           uuid.NewString(),
		OrderID:      orderID,
		CustomerName: gofakeit.Name(),
		BrandName:    gofakeit.Company(),
		Instagram:    "@" + gofakeit.Username(),
		Products: []entity.OrderProduct{{
			ID:              uuid.NewString(),
			Description:     gofakeit.ProductDescription(),
			EndorsementType: "premium",
			EndorseMonth:    entity.YearMonth{Year: 2026, Month: time.November},
			Price:           1000000,
		}},
		TotalAmount: 1000000,
		Status:      status,
		Priority:    entity.PriorityMedium,
		CreatedAt:   testNow,
		ExpiresAt:   &expires,
	}
}

type submitOrderTestExpected struct {
	total int64
	err   error
}

func TestOrderService_SubmitOrder(t *testing.T) {
	t.Parallel()

	idPattern := regexp.MustCompile(`^SMB101626\d{3}$`)

	testCases := []struct {
		desc       string
		submission func() *entity.Submission
		mocks      func(repo *mock_service.MockOrderRepository)
		expected   submitOrderTestExpected
	}{
		{
			desc:       "Success",
			submission: func() *entity.Submission { return generateFakeSubmission("basic", "premium") },
			mocks: func(repo *mock_service.MockOrderRepository) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, o *entity.Order) (*entity.Order, error) {
						return o, nil
					}).Times(1)
			},
			expected: submitOrderTestExpected{total: 1500000},
		},
		{
			desc:       "UnknownPackagePricedAtZero",
			submission: func() *entity.Submission { return generateFakeSubmission("basic", "mystery") },
			mocks: func(repo *mock_service.MockOrderRepository) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, o *entity.Order) (*entity.Order, error) {
						return o, nil
					}).Times(1)
			},
			expected: submitOrderTestExpected{total: 500000},
		},
		{
			desc:       "DuplicateIDRetriedOnce",
			submission: func() *entity.Submission { return generateFakeSubmission("deluxe") },
			mocks: func(repo *mock_service.MockOrderRepository) {
				gomock.InOrder(
					repo.EXPECT().Create(gomock.Any(), gomock.Any()).
						Return(nil, entity.ErrConflictingData).Times(1),
					repo.EXPECT().Create(gomock.Any(), gomock.Any()).
						DoAndReturn(func(_ context.Context, o *entity.Order) (*entity.Order, error) {
							return o, nil
						}).Times(1),
				)
			},
			expected: submitOrderTestExpected{total: 2000000},
		},
		{
			desc:       "DuplicateIDTwice",
			submission: func() *entity.Submission { return generateFakeSubmission("deluxe") },
			mocks: func(repo *mock_service.MockOrderRepository) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					Return(nil, entity.ErrConflictingData).Times(2)
			},
			expected: submitOrderTestExpected{err: entity.ErrConflictingData},
		},
		{
			desc: "MissingBrandName",
			submission: func() *entity.Submission {
				sub := generateFakeSubmission("basic")
				sub.BrandName = ""
				return sub
			},
			mocks:    func(*mock_service.MockOrderRepository) {},
			expected: submitOrderTestExpected{err: entity.ErrInvalidData},
		},
		{
			desc: "NoProducts",
			submission: func() *entity.Submission {
				sub := generateFakeSubmission()
				sub.Products = nil
				return sub
			},
			mocks:    func(*mock_service.MockOrderRepository) {},
			expected: submitOrderTestExpected{err: entity.ErrInvalidData},
		},
		{
			desc: "MonthBeforeWindow",
			submission: func() *entity.Submission {
				sub := generateFakeSubmission("basic")
				sub.Products[0].EndorseMonth = entity.YearMonth{Year: 2026, Month: time.October}
				return sub
			},
			mocks:    func(*mock_service.MockOrderRepository) {},
			expected: submitOrderTestExpected{err: entity.ErrInvalidData},
		},
		{
			desc: "RepositoryFailure",
			submission: func() *entity.Submission {
				return generateFakeSubmission("basic")
			},
			mocks: func(repo *mock_service.MockOrderRepository) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					Return(nil, errors.New("store unavailable")).Times(1)
			},
			expected: submitOrderTestExpected{err: errors.New("store unavailable")},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			repo := mock_service.NewMockOrderRepository(ctrl)
			tc.mocks(repo)

			svc := newTestService(t, ctrl, repo, fixedClock(testNow))

			order, err := svc.SubmitOrder(context.Background(), tc.submission())
			if tc.expected.err != nil {
				require.Error(t, err)
				if errors.Is(tc.expected.err, entity.ErrInvalidData) ||
					errors.Is(tc.expected.err, entity.ErrConflictingData) {
					require.ErrorIs(t, err, tc.expected.err)
				} else {
					require.ErrorContains(t, err, tc.expected.err.Error())
				}
				return
			}

			require.NoError(t, err)
			require.Regexp(t, idPattern, order.OrderID)
			require.NotEmpty(t, order.ID)
			require.Equal(t, tc.expected.total, order.TotalAmount)
			require.Equal(t, entity.StatusPaymentConfirmation, order.Status)
			require.Equal(t, entity.PriorityMedium, order.Priority)
			require.NotNil(t, order.ExpiresAt)
			require.Equal(t, testNow.Add(48*time.Hour), *order.ExpiresAt)
			for _, p := range order.Products {
				require.NotEmpty(t, p.ID)
			}
		})
	}
}

func TestOrderService_SubmitOrder_ValidationFields(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc := newTestService(t, ctrl, mock_service.NewMockOrderRepository(ctrl), fixedClock(testNow))

	sub := generateFakeSubmission("basic")
	sub.CustomerName = ""
	sub.Products[0].Description = ""

	_, err := svc.SubmitOrder(context.Background(), sub)
	require.ErrorIs(t, err, entity.ErrInvalidData)

	fields := make([]string, 0)
	for _, ve := range service.ValidationErrors(err) {
		fields = append(fields, ve.Field)
	}
	require.ElementsMatch(t, []string{"customerName", "products[0].description"}, fields)
}

type updateOrderTestExpected struct {
	status        entity.OrderStatus
	scheduledDate string
	total         int64
	err           error
}

func TestOrderService_UpdateOrder(t *testing.T) {
	t.Parallel()

	statusPtr := func(s entity.OrderStatus) *entity.OrderStatus { return &s }
	strPtr := func(s string) *string { return &s }

	testCases := []struct {
		desc     string
		stored   entity.OrderStatus
		strict   bool
		patch    entity.OrderPatch
		expected updateOrderTestExpected
	}{
		{
			desc:     "AdvanceStatus",
			stored:   entity.StatusPaymentConfirmation,
			patch:    entity.OrderPatch{Status: statusPtr(entity.StatusPaymentConfirmed)},
			expected: updateOrderTestExpected{status: entity.StatusPaymentConfirmed, total: 1000000},
		},
		{
			desc:   "ScheduleWithStatusChange",
			stored: entity.StatusItemReceived,
			patch: entity.OrderPatch{
				Status:        statusPtr(entity.StatusScheduledShoot),
				ScheduledDate: strPtr("2026-11-03"),
			},
			expected: updateOrderTestExpected{
				status:        entity.StatusScheduledShoot,
				scheduledDate: "2026-11-03",
				total:         1000000,
			},
		},
		{
			desc:     "ScheduleTooEarly",
			stored:   entity.StatusPaymentConfirmed,
			patch:    entity.OrderPatch{ScheduledDate: strPtr("2026-11-03")},
			expected: updateOrderTestExpected{err: entity.ErrInvalidData},
		},
		{
			desc:     "MalformedScheduledDate",
			stored:   entity.StatusScheduledShoot,
			patch:    entity.OrderPatch{ScheduledDate: strPtr("03/11/2026")},
			expected: updateOrderTestExpected{err: entity.ErrInvalidData},
		},
		{
			desc:     "BackwardsRejectedWhenStrict",
			stored:   entity.StatusFinalEditing,
			strict:   true,
			patch:    entity.OrderPatch{Status: statusPtr(entity.StatusItemReceived)},
			expected: updateOrderTestExpected{err: entity.ErrInvalidTransition},
		},
		{
			desc:     "BackwardsAllowedByDefault",
			stored:   entity.StatusFinalEditing,
			patch:    entity.OrderPatch{Status: statusPtr(entity.StatusItemReceived)},
			expected: updateOrderTestExpected{status: entity.StatusItemReceived, total: 1000000},
		},
		{
			desc:   "ProductsRepriced",
			stored: entity.StatusPaymentConfirmed,
			patch: entity.OrderPatch{Products: &[]entity.OrderProduct{
				{Description: "reel", EndorsementType: "basic", EndorseMonth: entity.YearMonth{Year: 2026, Month: 11}},
				{Description: "story", EndorsementType: "custom", EndorseMonth: entity.YearMonth{Year: 2026, Month: 12}, Price: 750000},
			}},
			expected: updateOrderTestExpected{status: entity.StatusPaymentConfirmed, total: 1250000},
		},
		{
			desc:     "UnknownStatus",
			stored:   entity.StatusPaymentConfirmed,
			patch:    entity.OrderPatch{Status: statusPtr("shipped")},
			expected: updateOrderTestExpected{err: entity.ErrInvalidData},
		},
		{
			desc:     "EmptyPatch",
			stored:   entity.StatusPaymentConfirmed,
			patch:    entity.OrderPatch{},
			expected: updateOrderTestExpected{err: entity.ErrInvalidData},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			repo := mock_service.NewMockOrderRepository(ctrl)
			stored := generateFakeOrder("SMB101626042", tc.stored)

			repo.EXPECT().Update(gomock.Any(), "SMB101626042", gomock.Any()).
				DoAndReturn(func(_ context.Context, _ string, fn func(*entity.Order) error) (*entity.Order, error) {
					o := stored.Clone()
					if err := fn(o); err != nil {
						return nil, err
					}
					return o, nil
				}).AnyTimes()

			engine := lifecycle.NewEngine(lifecycle.WithStrictTransitions(tc.strict))
			svc := service.NewOrderService(
				repo, engine, pricing.NewCatalog(nil), notify.NewFormatter(nil),
				logger.NewNop(), newTestCache(t, ctrl), service.Clock(fixedClock(testNow)),
			)

			updated, err := svc.UpdateOrder(context.Background(), "SMB101626042", tc.patch)
			if tc.expected.err != nil {
				require.ErrorIs(t, err, tc.expected.err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.expected.status, updated.Status)
			require.Equal(t, tc.expected.scheduledDate, updated.ScheduledDate)
			require.Equal(t, tc.expected.total, updated.TotalAmount)
			require.Equal(t, pricing.RecomputeTotal(updated.Products), updated.TotalAmount)
			require.NotNil(t, updated.LastUpdated)
		})
	}
}

func TestOrderService_UpdateOrder_NotFound(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := mock_service.NewMockOrderRepository(ctrl)
	repo.EXPECT().Update(gomock.Any(), "SMB000000000", gomock.Any()).
		Return(nil, entity.ErrDataNotFound).Times(1)

	svc := newTestService(t, ctrl, repo, fixedClock(testNow))

	status := entity.StatusPosted
	_, err := svc.UpdateOrder(context.Background(), "SMB000000000", entity.OrderPatch{Status: &status})
	require.ErrorIs(t, err, entity.ErrDataNotFound)
}

func TestOrderService_Submitted_Metrics(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := mock_service.NewMockOrderRepository(ctrl)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, o *entity.Order) (*entity.Order, error) {
			return o, nil
		}).Times(1)

	metrics := mock_metric.NewMockOrder(ctrl)
	metrics.EXPECT().Submitted(service.SourceKafka).Times(1)

	svc := newTestService(t, ctrl, repo, fixedClock(testNow), service.Metrics(metrics))

	ctx := service.WithSource(context.Background(), service.SourceKafka)
	_, err := svc.SubmitOrder(ctx, generateFakeSubmission("basic"))
	require.NoError(t, err)
}
