package repository

import (
	"context"
	"time"

	"coupon-service/internal/coupon"
	"coupon-service/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

// cachedCouponRepository serves FindByID from an in-memory cache and
// delegates everything else. Entries are snapshots, so callers never share
// a mutable aggregate. Save evicts the entry for the saved coupon and, when
// the tx came from BeginTx, evicts it again once the tx commits so a read
// that raced the uncommitted write cannot keep the old row cached.
type cachedCouponRepository struct {
	next   CouponRepository
	cache  *gocache.Cache
	logger zerolog.Logger
}

// NewCachedCouponRepository wraps next with a read-through cache keyed by coupon ID.
func NewCachedCouponRepository(next CouponRepository, ttl, cleanupInterval time.Duration, logger zerolog.Logger) CouponRepository {
	return &cachedCouponRepository{
		next:   next,
		cache:  gocache.New(ttl, cleanupInterval),
		logger: logger.With().Str("repository", "coupon-cache").Logger(),
	}
}

func (r *cachedCouponRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.next.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return &evictingTx{Tx: tx, cache: r.cache}, nil
}

func (r *cachedCouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	return r.next.FindByCode(ctx, code)
}

// FindByID returns the cached coupon when present, otherwise loads and caches it.
// Misses are not cached.
func (r *cachedCouponRepository) FindByID(ctx context.Context, id uuid.UUID) (*coupon.Coupon, error) {
	key := id.String()

	if cached, ok := r.cache.Get(key); ok {
		r.logger.Debug().Str("coupon_id", key).Msg("coupon cache hit")
		return coupon.Restore(cached.(coupon.Snapshot)), nil
	}

	c, err := r.next.FindByID(ctx, id)
	if err != nil || c == nil {
		return c, err
	}

	r.cache.SetDefault(key, c.Snapshot())

	return c, nil
}

// FindByIDForUpdate always reads through so the row lock is taken.
func (r *cachedCouponRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*coupon.Coupon, error) {
	return r.next.FindByIDForUpdate(ctx, tx, id)
}

func (r *cachedCouponRepository) Save(ctx context.Context, tx pgx.Tx, c *coupon.Coupon) (*coupon.Coupon, error) {
	saved, err := r.next.Save(ctx, tx, c)
	if err != nil {
		return nil, err
	}

	key := saved.ID().String()
	r.cache.Delete(key)
	if etx, ok := tx.(*evictingTx); ok {
		etx.keys = append(etx.keys, key)
	}

	return saved, nil
}

func (r *cachedCouponRepository) ListByStatus(ctx context.Context, status coupon.Status, page model.PageRequest) (model.Page[*coupon.Coupon], error) {
	return r.next.ListByStatus(ctx, status, page)
}

// evictingTx drops the cache entries of coupons saved through it after a
// successful commit. A tx is used by one goroutine at a time.
type evictingTx struct {
	pgx.Tx
	cache *gocache.Cache
	keys  []string
}

func (t *evictingTx) Commit(ctx context.Context) error {
	if err := t.Tx.Commit(ctx); err != nil {
		return err
	}
	for _, key := range t.keys {
		t.cache.Delete(key)
	}
	t.keys = nil
	return nil
}
