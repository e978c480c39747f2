package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/encoreinstant/avito-moderation/internal/filter"
	"github.com/encoreinstant/avito-moderation/internal/port/cache"
	"github.com/encoreinstant/avito-moderation/internal/port/gateway"
)

const (
	navIndexLimit = 500
	navCacheTTL   = 5 * time.Minute
)

// Neighbors holds the previous/next ad ids for a detail view. A nil id means
// there is no neighbor in that direction (or the current ad left the index).
type Neighbors struct {
	Prev *int64 `json:"prevId"`
	Next *int64 `json:"nextId"`
}

// NavigationUsecase derives the ordered id sequence used for previous/next
// navigation on the detail view. The index is one large-page fetch of the
// originating list's predicate and sort, pagination excluded; it is best-effort
// and may lag behind the live list.
type NavigationUsecase struct {
	ads       gateway.AdsGateway
	cacheRepo cache.CacheRepository
	logger    *zap.Logger
}

func NewNavigationUsecase(ads gateway.AdsGateway, cacheRepo cache.CacheRepository, logger *zap.Logger) *NavigationUsecase {
	return &NavigationUsecase{ads: ads, cacheRepo: cacheRepo, logger: logger}
}

// BuildIndex returns the ordered ad ids matching the filter predicate,
// pagination ignored, capped at navIndexLimit items.
func (uc *NavigationUsecase) BuildIndex(ctx context.Context, f filter.State) ([]int64, error) {
	key := navCachePrefix + filter.NavigationFingerprint(f)
	if uc.cacheRepo != nil {
		if data, err := uc.cacheRepo.Get(ctx, key); err == nil {
			var ids []int64
			if err := json.Unmarshal(data, &ids); err == nil {
				return ids, nil
			}
			_ = uc.cacheRepo.Delete(ctx, key)
		}
	}

	probe := f
	probe.Page = 1
	probe.Limit = navIndexLimit
	list, err := uc.ads.List(ctx, probe)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			uc.logger.Error("Failed to build navigation index", zap.Error(err))
		}
		return nil, err
	}

	ids := make([]int64, len(list.Ads))
	for i, ad := range list.Ads {
		ids[i] = ad.ID
	}

	if uc.cacheRepo != nil {
		if data, err := json.Marshal(ids); err == nil {
			if err := uc.cacheRepo.Set(ctx, key, data, navCacheTTL); err != nil {
				uc.logger.Warn("Failed to cache navigation index", zap.Error(err))
			}
		}
	}
	return ids, nil
}

// Neighbors locates currentID in the index and returns its neighbors. An id
// that is not part of the index yields none in both directions.
func (uc *NavigationUsecase) Neighbors(ctx context.Context, f filter.State, currentID int64) (Neighbors, error) {
	ids, err := uc.BuildIndex(ctx, f)
	if err != nil {
		return Neighbors{}, err
	}
	return neighborsOf(ids, currentID), nil
}

func neighborsOf(ids []int64, currentID int64) Neighbors {
	idx := -1
	for i, id := range ids {
		if id == currentID {
			idx = i
			break
		}
	}
	var n Neighbors
	if idx > 0 {
		prev := ids[idx-1]
		n.Prev = &prev
	}
	if idx >= 0 && idx < len(ids)-1 {
		next := ids[idx+1]
		n.Next = &next
	}
	return n
}
