package service

import (
	"context"
	"errors"
	bookingserrors "staybook/internal/bookings/errors"
	"staybook/internal/bookings/repository"
	"staybook/internal/bookings/validator"
	apperrors "staybook/pkg/errors"
	"staybook/pkg/logger"
	"staybook/pkg/metrics"
	"staybook/pkg/model"
	"staybook/pkg/sanitizer"
	"time"
)

type DiscountService interface {
	FindActive(ctx context.Context, code, propertyID string) (*model.Discount, error)
	Verify(ctx context.Context, req *model.DiscountRequest) (*model.Discount, error)
	Apply(ctx context.Context, req *model.DiscountRequest) (*model.Discount, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

type discountService struct {
	discounts repository.DiscountRepository
	usages    repository.DiscountUsageRepository
	validator *validator.BookingValidator
	metrics   *metrics.Metrics
	log       *logger.Logger
	now       func() time.Time
}

func NewDiscountService(
	discounts repository.DiscountRepository,
	usages repository.DiscountUsageRepository,
	validator *validator.BookingValidator,
	m *metrics.Metrics,
	log *logger.Logger,
) DiscountService {
	return &discountService{
		discounts: discounts,
		usages:    usages,
		validator: validator,
		metrics:   m,
		log:       log.WithComponent("discounts"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// FindActive returns the discount for code if it is active, unexpired and
// valid for propertyID.
func (s *discountService) FindActive(ctx context.Context, code, propertyID string) (*model.Discount, error) {
	code = sanitizer.NormalizeCode(code)
	if code == "" {
		return nil, apperrors.InvalidInput("Discount code cannot be empty")
	}

	discount, err := s.discounts.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrDiscountNotFound) {
			return nil, apperrors.NotFound("Discount")
		}
		return nil, translate(err, "Discount", code, "Failed to look up discount")
	}

	switch {
	case !discount.IsActive:
		return nil, apperrors.Validation("Discount code is not active", map[string]any{"code": code})
	case discount.Expired(s.now()):
		return nil, apperrors.Validation("Discount code has expired", map[string]any{"code": code})
	case propertyID != "" && !discount.AppliesTo(propertyID):
		return nil, apperrors.Validation("Discount code is not valid for this property", map[string]any{"code": code})
	}

	return discount, nil
}

func (s *discountService) Verify(ctx context.Context, req *model.DiscountRequest) (*model.Discount, error) {
	if err := s.validator.ValidateDiscount(req); err != nil {
		return nil, apperrors.Validation("Discount request validation failed", map[string]any{"errors": err})
	}
	if req.UserID == "" {
		return nil, apperrors.InvalidInput("User ID is required")
	}

	discount, err := s.FindActive(ctx, req.Code, req.PropertyID)
	if err != nil {
		return nil, err
	}

	used, err := s.usages.Exists(ctx, req.UserID, discount.Code)
	if err != nil {
		return nil, translate(err, "Discount", discount.Code, "Failed to check discount usage")
	}
	if used {
		return nil, apperrors.Conflict("Discount code already used")
	}

	return discount, nil
}

// Apply verifies the code and records the redemption. The usage store's
// uniqueness turns a racing second redemption into a conflict.
func (s *discountService) Apply(ctx context.Context, req *model.DiscountRequest) (*model.Discount, error) {
	discount, err := s.Verify(ctx, req)
	if err != nil {
		return nil, err
	}

	usage := &model.DiscountUsage{
		UserID:       req.UserID,
		DiscountCode: discount.Code,
		UsedAt:       s.now(),
	}
	if err := s.usages.Create(ctx, usage); err != nil {
		return nil, translate(err, "Discount", discount.Code, "Failed to record discount usage")
	}

	s.log.Info("Discount applied", "code", discount.Code, "user_id", req.UserID)
	return discount, nil
}

func (s *discountService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.discounts.DeleteExpired(ctx, s.now())
	if err != nil {
		s.log.Error("Failed to purge expired discounts", "error", err)
		return 0, translate(err, "Discount", "", "Failed to purge expired discounts")
	}

	s.metrics.DiscountsPurged(n)
	if n > 0 {
		s.log.Info("Expired discounts purged", "count", n)
	}
	return n, nil
}
