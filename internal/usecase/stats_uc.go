package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/encoreinstant/avito-moderation/internal/entity"
	"github.com/encoreinstant/avito-moderation/internal/port/cache"
	"github.com/encoreinstant/avito-moderation/internal/port/gateway"
)

const statsCacheTTL = 1 * time.Minute

var ErrInvalidPeriod = errors.New("unknown stats period")

// StatsUsecase proxies the stats and moderator-profile endpoints with short
// per-(endpoint, period) caching. Stats are display data; a minute of staleness
// is acceptable.
type StatsUsecase struct {
	stats      gateway.StatsGateway
	moderators gateway.ModeratorGateway
	cacheRepo  cache.CacheRepository
	logger     *zap.Logger
}

func NewStatsUsecase(
	stats gateway.StatsGateway,
	moderators gateway.ModeratorGateway,
	cacheRepo cache.CacheRepository,
	logger *zap.Logger,
) *StatsUsecase {
	return &StatsUsecase{stats: stats, moderators: moderators, cacheRepo: cacheRepo, logger: logger}
}

func statsCacheKey(endpoint string, q gateway.StatsQuery) string {
	return fmt.Sprintf("stats:%s:%s:%s:%s", endpoint, q.Period, q.StartDate, q.EndDate)
}

func validateQuery(q gateway.StatsQuery) error {
	if q.Period != "" && !q.Period.Valid() {
		return ErrInvalidPeriod
	}
	return nil
}

func (uc *StatsUsecase) Summary(ctx context.Context, q gateway.StatsQuery) (*entity.StatsSummary, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	var out entity.StatsSummary
	err := uc.cached(ctx, statsCacheKey("summary", q), &out, func(ctx context.Context) (any, error) {
		return uc.stats.Summary(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (uc *StatsUsecase) Activity(ctx context.Context, q gateway.StatsQuery) ([]entity.ActivityPoint, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	var out []entity.ActivityPoint
	err := uc.cached(ctx, statsCacheKey("activity", q), &out, func(ctx context.Context) (any, error) {
		return uc.stats.Activity(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *StatsUsecase) Decisions(ctx context.Context, q gateway.StatsQuery) (*entity.DecisionsBreakdown, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	var out entity.DecisionsBreakdown
	err := uc.cached(ctx, statsCacheKey("decisions", q), &out, func(ctx context.Context) (any, error) {
		return uc.stats.Decisions(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (uc *StatsUsecase) Categories(ctx context.Context, q gateway.StatsQuery) (map[string]int, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}
	out := map[string]int{}
	err := uc.cached(ctx, statsCacheKey("categories", q), &out, func(ctx context.Context) (any, error) {
		return uc.stats.Categories(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *StatsUsecase) Me(ctx context.Context) (*entity.Moderator, error) {
	mod, err := uc.moderators.Me(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			uc.logger.Error("Failed to fetch moderator profile", zap.Error(err))
		}
		return nil, err
	}
	return mod, nil
}

// cached fills out from the cache when possible, otherwise fetches and stores.
// out must be a pointer to the same shape fetch returns.
func (uc *StatsUsecase) cached(ctx context.Context, key string, out any, fetch func(context.Context) (any, error)) error {
	if uc.cacheRepo != nil {
		if data, err := uc.cacheRepo.Get(ctx, key); err == nil {
			if err := json.Unmarshal(data, out); err == nil {
				return nil
			}
			_ = uc.cacheRepo.Delete(ctx, key)
		}
	}

	fresh, err := fetch(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			uc.logger.Error("Failed to fetch stats", zap.String("key", key), zap.Error(err))
		}
		return err
	}

	data, err := json.Marshal(fresh)
	if err != nil {
		return fmt.Errorf("StatsUsecase: failed to marshal stats for %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("StatsUsecase: failed to decode stats for %s: %w", key, err)
	}
	if uc.cacheRepo != nil {
		if err := uc.cacheRepo.Set(ctx, key, data, statsCacheTTL); err != nil {
			uc.logger.Warn("Failed to cache stats", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}
