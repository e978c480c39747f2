package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/encoreinstant/avito-moderation/internal/entity"
	"github.com/encoreinstant/avito-moderation/internal/platform/metrics"
	"github.com/encoreinstant/avito-moderation/internal/port/cache"
	"github.com/encoreinstant/avito-moderation/internal/port/gateway"
)

var (
	ErrAdNotFound         = errors.New("advertisement not found")
	ErrInvalidReason      = errors.New("moderation reason is not one of the allowed templates")
	ErrUnknownBulkAction  = errors.New("unknown bulk moderation action")
	ErrBulkPartialFailure = errors.New("bulk moderation completed with failures")
)

// DecisionNotifier publishes moderation decisions to interested consumers.
type DecisionNotifier interface {
	PublishDecision(ctx context.Context, adID int64, action entity.ModerationAction, reason, comment string) error
}

// ModerationUsecase issues approve/reject/request-changes calls and invalidates
// every dependent cached query on success. Invalidation is deliberately coarse:
// the cached item entry plus all list and navigation entries, any fingerprint.
type ModerationUsecase struct {
	ads       gateway.AdsGateway
	cacheRepo cache.CacheRepository
	notifier  DecisionNotifier
	metrics   *metrics.MetricsManager
	logger    *zap.Logger
}

func NewModerationUsecase(
	ads gateway.AdsGateway,
	cacheRepo cache.CacheRepository,
	notifier DecisionNotifier,
	mm *metrics.MetricsManager,
	logger *zap.Logger,
) *ModerationUsecase {
	return &ModerationUsecase{
		ads:       ads,
		cacheRepo: cacheRepo,
		notifier:  notifier,
		metrics:   mm,
		logger:    logger,
	}
}

func (uc *ModerationUsecase) Approve(ctx context.Context, id int64) (*entity.Advertisement, error) {
	ad, err := uc.ads.Approve(ctx, id)
	if err != nil {
		return nil, uc.upstreamError("approve", id, err)
	}
	uc.afterDecision(ctx, id, entity.ActionApproved, "", "")
	return ad, nil
}

func (uc *ModerationUsecase) Reject(ctx context.Context, id int64, reason, comment string) (*entity.Advertisement, error) {
	if !entity.ValidReason(reason) {
		return nil, ErrInvalidReason
	}
	ad, err := uc.ads.Reject(ctx, id, reason, comment)
	if err != nil {
		return nil, uc.upstreamError("reject", id, err)
	}
	uc.afterDecision(ctx, id, entity.ActionRejected, reason, comment)
	return ad, nil
}

func (uc *ModerationUsecase) RequestChanges(ctx context.Context, id int64, reason, comment string) (*entity.Advertisement, error) {
	if !entity.ValidReason(reason) {
		return nil, ErrInvalidReason
	}
	ad, err := uc.ads.RequestChanges(ctx, id, reason, comment)
	if err != nil {
		return nil, uc.upstreamError("request-changes", id, err)
	}
	uc.afterDecision(ctx, id, entity.ActionRequestChanges, reason, comment)
	return ad, nil
}

// BulkResult reports per-id outcomes of a bulk moderation action. Successes are
// never rolled back when other ids fail.
type BulkResult struct {
	Succeeded []int64          `json:"succeeded"`
	Failed    map[int64]string `json:"failed,omitempty"`
}

// Bulk fans out one concurrent call per id and joins on all of them. The
// returned error is ErrBulkPartialFailure when at least one id failed; the
// result still lists what went through.
func (uc *ModerationUsecase) Bulk(ctx context.Context, action entity.ModerationAction, ids []int64, reason, comment string) (*BulkResult, error) {
	switch action {
	case entity.ActionApproved:
	case entity.ActionRejected, entity.ActionRequestChanges:
		if !entity.ValidReason(reason) {
			return nil, ErrInvalidReason
		}
	default:
		return nil, ErrUnknownBulkAction
	}

	result := &BulkResult{Failed: make(map[int64]string)}
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			var err error
			switch action {
			case entity.ActionApproved:
				_, err = uc.ads.Approve(ctx, id)
			case entity.ActionRejected:
				_, err = uc.ads.Reject(ctx, id, reason, comment)
			case entity.ActionRequestChanges:
				_, err = uc.ads.RequestChanges(ctx, id, reason, comment)
			}
			mu.Lock()
			if err != nil {
				result.Failed[id] = err.Error()
			} else {
				result.Succeeded = append(result.Succeeded, id)
			}
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	sort.Slice(result.Succeeded, func(i, j int) bool { return result.Succeeded[i] < result.Succeeded[j] })

	for _, id := range result.Succeeded {
		uc.afterDecision(ctx, id, action, reason, comment)
	}

	if len(result.Failed) > 0 {
		uc.logger.Warn("Bulk moderation finished with failures",
			zap.String("action", string(action)),
			zap.Int("succeeded", len(result.Succeeded)),
			zap.Int("failed", len(result.Failed)),
		)
		return result, ErrBulkPartialFailure
	}
	return result, nil
}

// afterDecision runs the success path of a moderation call: invalidate caches,
// bump counters, publish the decision event. Cache and publish failures are
// logged, not propagated; the decision itself has already been applied.
func (uc *ModerationUsecase) afterDecision(ctx context.Context, id int64, action entity.ModerationAction, reason, comment string) {
	uc.invalidate(ctx, id)

	if uc.metrics != nil {
		switch action {
		case entity.ActionApproved:
			uc.metrics.AdsApprovedTotal.Inc()
		case entity.ActionRejected:
			uc.metrics.AdsRejectedTotal.Inc()
		case entity.ActionRequestChanges:
			uc.metrics.ChangesRequestedTotal.Inc()
		}
	}

	if uc.notifier != nil {
		if err := uc.notifier.PublishDecision(ctx, id, action, reason, comment); err != nil {
			uc.logger.Warn("Failed to publish decision event", zap.Int64("ad_id", id), zap.Error(err))
		}
	}
}

func (uc *ModerationUsecase) invalidate(ctx context.Context, id int64) {
	if uc.cacheRepo == nil {
		return
	}
	if err := uc.cacheRepo.Delete(ctx, fmt.Sprintf(itemCacheKeyFormat, id)); err != nil {
		uc.logger.Warn("Failed to invalidate cached ad", zap.Int64("ad_id", id), zap.Error(err))
	}
	if err := uc.cacheRepo.DeleteByPrefix(ctx, listCachePrefix); err != nil {
		uc.logger.Warn("Failed to invalidate cached listings", zap.Error(err))
	}
	if err := uc.cacheRepo.DeleteByPrefix(ctx, navCachePrefix); err != nil {
		uc.logger.Warn("Failed to invalidate navigation indexes", zap.Error(err))
	}
}

func (uc *ModerationUsecase) upstreamError(op string, id int64, err error) error {
	if uc.metrics != nil {
		uc.metrics.UpstreamErrorsTotal.WithLabelValues(op).Inc()
	}
	if errors.Is(err, gateway.ErrNotFound) {
		return ErrAdNotFound
	}
	uc.logger.Error("Moderation call failed", zap.String("operation", op), zap.Int64("ad_id", id), zap.Error(err))
	return err
}
