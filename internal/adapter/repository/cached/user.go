package cached

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"signage-user-service/internal/adapter/cache"
	domain "signage-user-service/internal/domain/user"
	"signage-user-service/internal/usecase/user"
)

// CachedUserRepository implements user.Repository with caching support.
// It wraps a persistent repository (DB) and a cache implementation.
// Only positive lookups are cached; a name that was missing may be
// created at any time.
type CachedUserRepository struct {
	dbRepo user.Repository
	cache  cache.UserCache
	log    *zap.Logger
	group  singleflight.Group
}

// NewCachedUserRepository creates a new instance of CachedUserRepository.
func NewCachedUserRepository(dbRepo user.Repository, cache cache.UserCache, log *zap.Logger) user.Repository {
	return &CachedUserRepository{
		dbRepo: dbRepo,
		cache:  cache,
		log:    log,
	}
}

// Create delegates to the DB repository and primes the cache on success.
func (r *CachedUserRepository) Create(ctx context.Context, u *domain.User) error {
	if err := r.dbRepo.Create(ctx, u); err != nil {
		return err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, u); err != nil {
			r.log.Warn("failed to cache created user", zap.String("name", u.Name), zap.Error(err))
		}
	}
	return nil
}

// Exists answers from the cache when it holds the user and from the
// DB otherwise.
func (r *CachedUserRepository) Exists(ctx context.Context, name string) (bool, error) {
	if r.cache != nil {
		cachedUser, err := r.cache.Get(ctx, name)
		if err != nil {
			r.log.Warn("cache get error, falling back to database", zap.String("name", name), zap.Error(err))
		} else if cachedUser != nil {
			return true, nil
		}
	}
	return r.dbRepo.Exists(ctx, name)
}

// GetByName retrieves a user by name using Cache-Aside pattern.
func (r *CachedUserRepository) GetByName(ctx context.Context, name string) (*domain.User, error) {
	// Try to get from cache first
	if r.cache != nil {
		cachedUser, err := r.cache.Get(ctx, name)
		if err != nil {
			r.log.Warn("cache get error, falling back to database", zap.String("name", name), zap.Error(err))
		} else if cachedUser != nil {
			r.log.Debug("user retrieved from cache", zap.String("name", name))
			return cachedUser, nil
		}
	}

	// Cache miss or cache disabled - use single-flight to prevent stampede
	result, err, _ := r.group.Do("user:"+name, func() (any, error) {
		// Double-check cache in case another request populated it while we were waiting
		if r.cache != nil {
			cachedUser, err := r.cache.Get(ctx, name)
			if err == nil && cachedUser != nil {
				r.log.Debug("user retrieved from cache after single-flight wait", zap.String("name", name))
				return cachedUser, nil
			}
		}

		// Only one request hits database
		u, err := r.dbRepo.GetByName(ctx, name)
		if err != nil {
			return nil, err
		}

		// Store in cache for future requests
		if r.cache != nil {
			if err := r.cache.Set(ctx, u); err != nil {
				r.log.Warn("failed to cache user", zap.String("name", name), zap.Error(err))
			}
		}

		return u, nil
	})

	if err != nil {
		return nil, err
	}

	// Callers get their own copy of the shared result
	u := *result.(*domain.User)
	u.Groups = append([]string{}, u.Groups...)
	return &u, nil
}
