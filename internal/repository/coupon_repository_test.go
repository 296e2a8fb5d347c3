package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"coupon-service/internal/coupon"
	"coupon-service/internal/database"
	"coupon-service/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer and returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.EnsureSchema(ctx, pool, zerolog.Nop()))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// newTestCoupon builds a valid coupon expiring after the given offset.
func newTestCoupon(t *testing.T, code string, expiresIn time.Duration) *coupon.Coupon {
	now := time.Now()
	discount := decimal.RequireFromString("10.25")
	expiration := now.Add(expiresIn)

	c, err := coupon.New(coupon.Params{
		Code:           code,
		Description:    "Test coupon " + code,
		DiscountValue:  &discount,
		ExpirationDate: &expiration,
		Published:      true,
	}, now)
	require.NoError(t, err)
	return c
}

// saveCoupon saves c in its own committed transaction.
func saveCoupon(t *testing.T, repo CouponRepository, c *coupon.Coupon) *coupon.Coupon {
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	saved, err := repo.Save(ctx, tx, c)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	return saved
}

func TestCouponRepository_SaveAndFind(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCouponRepository(pool, zerolog.Nop())
	ctx := context.Background()

	original := newTestCoupon(t, "SAVE01", 48*time.Hour)
	saved := saveCoupon(t, repo, original)

	assert.Equal(t, original.ID(), saved.ID())
	assert.Equal(t, coupon.Code("SAVE01"), saved.Code())
	assert.Equal(t, coupon.StatusActive, saved.Status())
	assert.True(t, decimal.RequireFromString("10.25").Equal(saved.DiscountValue()))
	assert.True(t, saved.Published())
	assert.False(t, saved.Redeemed())

	t.Run("FindByID returns the stored coupon", func(t *testing.T) {
		found, err := repo.FindByID(ctx, original.ID())
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "SAVE01", found.Code().String())
		assert.Equal(t, "Test coupon SAVE01", found.Description())
		assert.WithinDuration(t, original.ExpirationDate(), found.ExpirationDate(), time.Millisecond)
	})

	t.Run("FindByCode returns the stored coupon", func(t *testing.T) {
		found, err := repo.FindByCode(ctx, "SAVE01")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, original.ID(), found.ID())
	})

	t.Run("Missing rows return nil", func(t *testing.T) {
		found, err := repo.FindByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, found)

		found, err = repo.FindByCode(ctx, "NOPE00")
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestCouponRepository_SaveKeepsDecimalPrecision(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCouponRepository(pool, zerolog.Nop())
	ctx := context.Background()

	now := time.Now()
	discount := decimal.RequireFromString("0.500000000000000000001")
	expiration := now.Add(time.Hour)
	c, err := coupon.New(coupon.Params{
		Code:           "PREC01",
		Description:    "precision",
		DiscountValue:  &discount,
		ExpirationDate: &expiration,
	}, now)
	require.NoError(t, err)

	saveCoupon(t, repo, c)

	found, err := repo.FindByID(ctx, c.ID())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, discount.Equal(found.DiscountValue()), "got %s", found.DiscountValue())
}

func TestCouponRepository_SaveDuplicateCode(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCouponRepository(pool, zerolog.Nop())
	ctx := context.Background()

	saveCoupon(t, repo, newTestCoupon(t, "DUPLIC", time.Hour))

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	_, err = repo.Save(ctx, tx, newTestCoupon(t, "du-pl-ic", time.Hour))

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrDuplicateCode)
}

func TestCouponRepository_ConcurrentDuplicateInsert(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCouponRepository(pool, zerolog.Nop())
	ctx := context.Background()

	const workers = 5
	candidates := make([]*coupon.Coupon, workers)
	for i := range candidates {
		candidates[i] = newTestCoupon(t, "RACE01", time.Hour)
	}

	errs := make([]error, workers)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			tx, err := repo.BeginTx(ctx)
			if err != nil {
				errs[i] = err
				return
			}
			defer tx.Rollback(ctx)

			if _, err := repo.Save(ctx, tx, candidates[i]); err != nil {
				errs[i] = err
				return
			}
			errs[i] = tx.Commit(ctx)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, model.ErrDuplicateCode)
	}
	assert.Equal(t, 1, succeeded)
}

func TestCouponRepository_SaveUpdatesStatus(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCouponRepository(pool, zerolog.Nop())
	ctx := context.Background()

	c := saveCoupon(t, repo, newTestCoupon(t, "UPD001", time.Hour))

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	locked, err := repo.FindByIDForUpdate(ctx, tx, c.ID())
	require.NoError(t, err)
	require.NotNil(t, locked)
	require.NoError(t, locked.MarkDeleted())

	saved, err := repo.Save(ctx, tx, locked)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	assert.Equal(t, coupon.StatusDeleted, saved.Status())
	assert.False(t, saved.UpdatedAt().Before(c.UpdatedAt()))

	found, err := repo.FindByID(ctx, c.ID())
	require.NoError(t, err)
	assert.Equal(t, coupon.StatusDeleted, found.Status())

	// Deleted coupons keep their code reserved.
	byCode, err := repo.FindByCode(ctx, "UPD001")
	require.NoError(t, err)
	require.NotNil(t, byCode)
	assert.Equal(t, coupon.StatusDeleted, byCode.Status())
}

func TestCouponRepository_FindByIDForUpdate_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCouponRepository(pool, zerolog.Nop())
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	found, err := repo.FindByIDForUpdate(ctx, tx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestCouponRepository_ListByStatus(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCouponRepository(pool, zerolog.Nop())
	ctx := context.Background()

	// Inserted out of expiration order on purpose.
	third := saveCoupon(t, repo, newTestCoupon(t, "LIST03", 72*time.Hour))
	first := saveCoupon(t, repo, newTestCoupon(t, "LIST01", 24*time.Hour))
	second := saveCoupon(t, repo, newTestCoupon(t, "LIST02", 48*time.Hour))
	deleted := newTestCoupon(t, "LIST00", time.Hour)
	require.NoError(t, deleted.MarkDeleted())
	saveCoupon(t, repo, deleted)

	tests := []struct {
		name          string
		page          model.PageRequest
		expectedCodes []string
		expectedPages int
	}{
		{
			name:          "All active coupons ordered by expiration",
			page:          model.PageRequest{Page: 0, Size: 10},
			expectedCodes: []string{first.Code().String(), second.Code().String(), third.Code().String()},
			expectedPages: 1,
		},
		{
			name:          "First page of two",
			page:          model.PageRequest{Page: 0, Size: 2},
			expectedCodes: []string{"LIST01", "LIST02"},
			expectedPages: 2,
		},
		{
			name:          "Second page of two",
			page:          model.PageRequest{Page: 1, Size: 2},
			expectedCodes: []string{"LIST03"},
			expectedPages: 2,
		},
		{
			name:          "Page past the end",
			page:          model.PageRequest{Page: 5, Size: 2},
			expectedCodes: []string{},
			expectedPages: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := repo.ListByStatus(ctx, coupon.StatusActive, tt.page)
			require.NoError(t, err)

			codes := make([]string, 0, len(page.Content))
			for _, c := range page.Content {
				assert.Equal(t, coupon.StatusActive, c.Status())
				codes = append(codes, c.Code().String())
			}

			assert.Equal(t, tt.expectedCodes, codes)
			assert.Equal(t, int64(3), page.TotalElements)
			assert.Equal(t, tt.expectedPages, page.TotalPages)
		})
	}

	t.Run("Deleted status lists only deleted coupons", func(t *testing.T) {
		page, err := repo.ListByStatus(ctx, coupon.StatusDeleted, model.PageRequest{Page: 0, Size: 10})
		require.NoError(t, err)
		require.Len(t, page.Content, 1)
		assert.Equal(t, "LIST00", page.Content[0].Code().String())
	})
}

func TestCouponRepository_ListByStatus_TotalsMatchContentUnderWrites(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCouponRepository(pool, zerolog.Nop())
	ctx := context.Background()

	const inserts = 60
	pending := make([]*coupon.Coupon, inserts)
	for i := range pending {
		pending[i] = newTestCoupon(t, fmt.Sprintf("CW%04d", i), time.Duration(i+1)*time.Hour)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for _, c := range pending {
			tx, err := repo.BeginTx(ctx)
			if !assert.NoError(t, err) {
				return
			}
			if _, err := repo.Save(ctx, tx, c); !assert.NoError(t, err) {
				_ = tx.Rollback(ctx)
				return
			}
			if !assert.NoError(t, tx.Commit(ctx)) {
				return
			}
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for {
		page, err := repo.ListByStatus(ctx, coupon.StatusActive, model.PageRequest{Page: 0, Size: model.MaxPageSize})
		require.NoError(t, err)
		require.Equal(t, page.TotalElements, int64(len(page.Content)))

		select {
		case <-done:
			final, err := repo.ListByStatus(ctx, coupon.StatusActive, model.PageRequest{Page: 0, Size: model.MaxPageSize})
			require.NoError(t, err)
			assert.Len(t, final.Content, inserts)
			assert.Equal(t, int64(inserts), final.TotalElements)
			return
		default:
		}
	}
}

