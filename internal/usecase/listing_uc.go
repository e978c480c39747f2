package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/encoreinstant/avito-moderation/internal/entity"
	"github.com/encoreinstant/avito-moderation/internal/filter"
	"github.com/encoreinstant/avito-moderation/internal/port/cache"
	"github.com/encoreinstant/avito-moderation/internal/port/gateway"
)

const (
	listCachePrefix      = "ads:list:"
	navCachePrefix       = "ads:nav:"
	itemCacheKeyFormat   = "ads:item:%d"
	categoriesCacheKey   = "ads:categories"
	listCacheTTL         = 30 * time.Second
	itemCacheTTL         = 1 * time.Minute
	categoriesCacheTTL   = 5 * time.Minute
	categoriesProbeLimit = 500
)

// inflightCall is a listing fetch shared by every caller with the same
// fingerprint.
type inflightCall struct {
	done chan struct{}
	list *entity.AdsList
	err  error
}

// ListingView is the last page the dashboard rendered. While a fetch for a new
// fingerprint is in flight the previous page stays visible (stale-while-
// revalidate); a superseded fetch never overwrites the view of a newer one.
type ListingView struct {
	Fingerprint string
	Data        *entity.AdsList
	IsFetching  bool
}

type ListingUsecase struct {
	ads       gateway.AdsGateway
	cacheRepo cache.CacheRepository
	logger    *zap.Logger

	mu       sync.Mutex
	inflight map[string]*inflightCall
	lastFP   string
	view     ListingView
}

func NewListingUsecase(ads gateway.AdsGateway, cacheRepo cache.CacheRepository, logger *zap.Logger) *ListingUsecase {
	return &ListingUsecase{
		ads:       ads,
		cacheRepo: cacheRepo,
		logger:    logger,
		inflight:  make(map[string]*inflightCall),
	}
}

// List returns one page of ads for the filter state. Calls with an identical
// fingerprint share a single upstream request and a single cached result.
func (uc *ListingUsecase) List(ctx context.Context, f filter.State) (*entity.AdsList, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	fp := filter.Fingerprint(f)

	uc.mu.Lock()
	uc.lastFP = fp
	if uc.view.Fingerprint != fp {
		uc.view.IsFetching = true
	}
	if call, ok := uc.inflight[fp]; ok {
		uc.mu.Unlock()
		select {
		case <-call.done:
			return call.list, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &inflightCall{done: make(chan struct{})}
	uc.inflight[fp] = call
	uc.mu.Unlock()

	list, err := uc.fetchPage(ctx, f, fp)
	call.list, call.err = list, err

	uc.mu.Lock()
	delete(uc.inflight, fp)
	// Latest request wins: record the result only if no newer fingerprint has
	// been asked for since this fetch started.
	if uc.lastFP == fp {
		if err == nil {
			uc.view = ListingView{Fingerprint: fp, Data: list, IsFetching: false}
		} else if !errors.Is(err, context.Canceled) {
			uc.view.IsFetching = false
		}
	}
	uc.mu.Unlock()
	close(call.done)

	return list, err
}

// CurrentView returns the last rendered page snapshot.
func (uc *ListingUsecase) CurrentView() ListingView {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.view
}

func (uc *ListingUsecase) fetchPage(ctx context.Context, f filter.State, fp string) (*entity.AdsList, error) {
	key := listCachePrefix + fp
	if uc.cacheRepo != nil {
		if data, err := uc.cacheRepo.Get(ctx, key); err == nil {
			var list entity.AdsList
			if err := json.Unmarshal(data, &list); err == nil {
				return &list, nil
			}
			// Corrupt cache entry, drop it and refetch.
			_ = uc.cacheRepo.Delete(ctx, key)
		}
	}

	list, err := uc.ads.List(ctx, f)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			uc.logger.Error("Failed to fetch ads listing", zap.Error(err), zap.String("fingerprint", fp))
		}
		return nil, err
	}

	if uc.cacheRepo != nil {
		if data, err := json.Marshal(list); err == nil {
			if err := uc.cacheRepo.Set(ctx, key, data, listCacheTTL); err != nil {
				uc.logger.Warn("Failed to cache ads listing", zap.Error(err), zap.String("fingerprint", fp))
			}
		}
	}
	return list, nil
}

// Get returns a single ad, cached briefly by id.
func (uc *ListingUsecase) Get(ctx context.Context, id int64) (*entity.Advertisement, error) {
	key := fmt.Sprintf(itemCacheKeyFormat, id)
	if uc.cacheRepo != nil {
		if data, err := uc.cacheRepo.Get(ctx, key); err == nil {
			var ad entity.Advertisement
			if err := json.Unmarshal(data, &ad); err == nil {
				return &ad, nil
			}
			_ = uc.cacheRepo.Delete(ctx, key)
		}
	}

	ad, err := uc.ads.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return nil, ErrAdNotFound
		}
		if !errors.Is(err, context.Canceled) {
			uc.logger.Error("Failed to fetch ad", zap.Int64("ad_id", id), zap.Error(err))
		}
		return nil, err
	}

	if uc.cacheRepo != nil {
		if data, err := json.Marshal(ad); err == nil {
			if err := uc.cacheRepo.Set(ctx, key, data, itemCacheTTL); err != nil {
				uc.logger.Warn("Failed to cache ad", zap.Int64("ad_id", id), zap.Error(err))
			}
		}
	}
	return ad, nil
}

// CategoryOptions builds the stable category select from one large unfiltered
// page, so the options do not shrink when the listing is narrowed down.
func (uc *ListingUsecase) CategoryOptions(ctx context.Context) ([]entity.CategoryOption, error) {
	if uc.cacheRepo != nil {
		if data, err := uc.cacheRepo.Get(ctx, categoriesCacheKey); err == nil {
			var opts []entity.CategoryOption
			if err := json.Unmarshal(data, &opts); err == nil {
				return opts, nil
			}
		}
	}

	probe := filter.State{
		SortBy:    filter.SortByCreatedAt,
		SortOrder: filter.SortDesc,
		Page:      1,
		Limit:     categoriesProbeLimit,
	}
	list, err := uc.ads.List(ctx, probe)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			uc.logger.Error("Failed to fetch category options", zap.Error(err))
		}
		return nil, err
	}

	seen := make(map[int64]string)
	for _, ad := range list.Ads {
		if _, ok := seen[ad.CategoryID]; !ok {
			seen[ad.CategoryID] = ad.Category
		}
	}
	opts := make([]entity.CategoryOption, 0, len(seen))
	for id, label := range seen {
		opts = append(opts, entity.CategoryOption{ID: id, Label: label})
	}
	sort.Slice(opts, func(i, j int) bool { return opts[i].Label < opts[j].Label })

	if uc.cacheRepo != nil {
		if data, err := json.Marshal(opts); err == nil {
			if err := uc.cacheRepo.Set(ctx, categoriesCacheKey, data, categoriesCacheTTL); err != nil {
				uc.logger.Warn("Failed to cache category options", zap.Error(err))
			}
		}
	}
	return opts, nil
}
