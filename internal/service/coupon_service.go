package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"coupon-service/internal/coupon"
	"coupon-service/internal/metrics"
	"coupon-service/internal/model"
	"coupon-service/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	opCreate = "create"
	opDelete = "delete"

	resultOK    = "ok"
	resultError = "error"
)

// couponService implements CouponService.
type couponService struct {
	repo    repository.CouponRepository
	metrics *metrics.Metrics
	now     func() time.Time
	logger  zerolog.Logger
}

// NewCouponService creates a new coupon service.
func NewCouponService(
	repo repository.CouponRepository,
	m *metrics.Metrics,
	logger zerolog.Logger,
) CouponService {
	return &couponService{
		repo:    repo,
		metrics: m,
		now:     time.Now,
		logger:  logger.With().Str("service", "coupon").Logger(),
	}
}

// Create validates the request and stores a new ACTIVE coupon.
func (s *couponService) Create(ctx context.Context, req *model.CouponRequest) (c *coupon.Coupon, err error) {
	defer func() { s.record(opCreate, err) }()

	if err := s.validateCouponRequest(req); err != nil {
		return nil, err
	}

	candidate, err := coupon.New(coupon.Params{
		Code:           req.Code,
		Description:    req.Description,
		DiscountValue:  req.DiscountValue,
		ExpirationDate: req.ExpirationDate,
		Published:      req.Published,
	}, s.now())
	if err != nil {
		s.logger.Warn().
			Str("raw_code", req.Code).
			Err(err).
			Msg("coupon rejected")
		return nil, err
	}

	code := candidate.Code().String()

	existing, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		s.logger.Error().Err(err).Str("code", code).Msg("failed to check coupon code")
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}
	if existing != nil {
		s.logger.Warn().
			Str("code", code).
			Str("existing_id", existing.ID().String()).
			Msg("coupon code already exists")
		return nil, model.ErrDuplicateCode
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	saved, err := s.repo.Save(ctx, tx, candidate)
	if err != nil {
		// A concurrent create with the same code loses on the unique constraint.
		if errors.Is(err, model.ErrDuplicateCode) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("code", code).Msg("failed to save coupon")
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("coupon_id", saved.ID().String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}

	s.logger.Info().
		Str("coupon_id", saved.ID().String()).
		Str("code", code).
		Msg("coupon created successfully")

	return saved, nil
}

// GetByID retrieves a coupon by ID.
func (s *couponService) GetByID(ctx context.Context, id uuid.UUID) (*coupon.Coupon, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("coupon_id", id.String()).Msg("failed to get coupon")
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}

	if c == nil {
		s.logger.Debug().Str("coupon_id", id.String()).Msg("coupon not found")
		return nil, model.ErrCouponNotFound
	}

	return c, nil
}

// List retrieves one page of ACTIVE coupons ordered by expiration date.
func (s *couponService) List(ctx context.Context, page model.PageRequest) (model.Page[*coupon.Coupon], error) {
	if err := page.Validate(); err != nil {
		return model.Page[*coupon.Coupon]{}, err
	}

	result, err := s.repo.ListByStatus(ctx, coupon.StatusActive, page)
	if err != nil {
		s.logger.Error().Err(err).
			Int("page", page.Page).
			Int("size", page.Size).
			Msg("failed to list coupons")
		return model.Page[*coupon.Coupon]{}, fmt.Errorf("failed to list coupons: %w", err)
	}

	return result, nil
}

// Delete soft-deletes a coupon. The row stays locked from load to commit so
// two concurrent deletes cannot both succeed.
func (s *couponService) Delete(ctx context.Context, id uuid.UUID) (err error) {
	defer func() { s.record(opDelete, err) }()

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to delete coupon: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	c, err := s.repo.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("coupon_id", id.String()).Msg("failed to load coupon")
		return fmt.Errorf("failed to delete coupon: %w", err)
	}

	if c == nil {
		s.logger.Debug().Str("coupon_id", id.String()).Msg("coupon not found")
		return model.ErrCouponNotFound
	}

	if err = c.MarkDeleted(); err != nil {
		s.logger.Warn().Str("coupon_id", id.String()).Err(err).Msg("coupon already deleted")
		return err
	}

	if _, err = s.repo.Save(ctx, tx, c); err != nil {
		s.logger.Error().Err(err).Str("coupon_id", id.String()).Msg("failed to save coupon")
		return fmt.Errorf("failed to delete coupon: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("coupon_id", id.String()).Msg("failed to commit transaction")
		return fmt.Errorf("failed to delete coupon: %w", err)
	}

	s.logger.Info().Str("coupon_id", id.String()).Msg("coupon deleted successfully")

	return nil
}

// validateCouponRequest checks request-level constraints that are not part
// of the coupon's own validation.
func (s *couponService) validateCouponRequest(req *model.CouponRequest) error {
	if req == nil {
		return fmt.Errorf("coupon request is nil")
	}

	if strings.TrimSpace(req.Description) == "" {
		return model.ErrMissingDescription
	}

	return nil
}

// record reports the outcome of a workflow to the metrics collectors.
func (s *couponService) record(operation string, err error) {
	if s.metrics == nil {
		return
	}

	result := resultOK
	if err != nil {
		result = resultError
		if de, ok := model.AsDomainError(err); ok {
			result = de.Code
		}
	}
	s.metrics.CouponOperation(operation, result)
}
