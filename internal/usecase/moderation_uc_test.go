package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/encoreinstant/avito-moderation/internal/entity"
	"github.com/encoreinstant/avito-moderation/internal/port/gateway"
)

func moderationFixture(t *testing.T) (*MockAdsGateway, *fakeCache, *recordingNotifier, *ModerationUsecase) {
	t.Helper()
	ads := new(MockAdsGateway)
	cacheRepo := newFakeCache()
	notifier := new(recordingNotifier)
	uc := NewModerationUsecase(ads, cacheRepo, notifier, nil, zap.NewNop())
	return ads, cacheRepo, notifier, uc
}

func TestModerationApprove_InvalidatesCaches(t *testing.T) {
	ads, cacheRepo, _, uc := moderationFixture(t)

	ctx := context.Background()
	require.NoError(t, cacheRepo.Set(ctx, "ads:item:10", []byte("{}"), 0))
	require.NoError(t, cacheRepo.Set(ctx, listCachePrefix+"abc", []byte("{}"), 0))
	require.NoError(t, cacheRepo.Set(ctx, navCachePrefix+"abc", []byte("{}"), 0))
	require.NoError(t, cacheRepo.Set(ctx, "prefs:7:theme", []byte("dark"), 0))

	ads.On("Approve", mock.Anything, int64(10)).
		Return(&entity.Advertisement{ID: 10, Status: entity.StatusApproved}, nil).Once()

	ad, err := uc.Approve(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, ad.Status)

	// Item, list and navigation entries are gone; unrelated keys survive.
	assert.Equal(t, []string{"prefs:7:theme"}, cacheRepo.keys())
}

func TestModerationApprove_NotFound(t *testing.T) {
	ads, _, notifier, uc := moderationFixture(t)

	ads.On("Approve", mock.Anything, int64(10)).Return(nil, gateway.ErrNotFound).Once()

	_, err := uc.Approve(context.Background(), 10)
	assert.ErrorIs(t, err, ErrAdNotFound)
	assert.Empty(t, notifier.events)
}

func TestModerationReject_ValidatesReason(t *testing.T) {
	ads, _, notifier, uc := moderationFixture(t)

	_, err := uc.Reject(context.Background(), 10, "потому что", "")
	assert.ErrorIs(t, err, ErrInvalidReason)
	ads.AssertNotCalled(t, "Reject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, notifier.events)
}

func TestModerationReject_PublishesDecision(t *testing.T) {
	ads, _, notifier, uc := moderationFixture(t)

	reason := entity.ModerationReasons[0]
	ads.On("Reject", mock.Anything, int64(10), reason, "дубликат").
		Return(&entity.Advertisement{ID: 10, Status: entity.StatusRejected}, nil).Once()

	_, err := uc.Reject(context.Background(), 10, reason, "дубликат")
	require.NoError(t, err)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, publishedDecision{
		AdID:    10,
		Action:  entity.ActionRejected,
		Reason:  reason,
		Comment: "дубликат",
	}, notifier.events[0])
}

func TestModerationRequestChanges(t *testing.T) {
	ads, _, notifier, uc := moderationFixture(t)

	reason := entity.ModerationReasons[1]
	ads.On("RequestChanges", mock.Anything, int64(3), reason, "").
		Return(&entity.Advertisement{ID: 3, Status: entity.StatusPending}, nil).Once()

	_, err := uc.RequestChanges(context.Background(), 3, reason, "")
	require.NoError(t, err)
	require.Len(t, notifier.events, 1)
	assert.Equal(t, entity.ActionRequestChanges, notifier.events[0].Action)
}

func TestModerationBulk_PartialFailure(t *testing.T) {
	ads, _, notifier, uc := moderationFixture(t)

	ads.On("Approve", mock.Anything, int64(1)).
		Return(&entity.Advertisement{ID: 1, Status: entity.StatusApproved}, nil).Once()
	ads.On("Approve", mock.Anything, int64(2)).
		Return(nil, errors.New("upstream API error 500")).Once()
	ads.On("Approve", mock.Anything, int64(3)).
		Return(&entity.Advertisement{ID: 3, Status: entity.StatusApproved}, nil).Once()

	result, err := uc.Bulk(context.Background(), entity.ActionApproved, []int64{1, 2, 3}, "", "")
	assert.ErrorIs(t, err, ErrBulkPartialFailure)
	require.NotNil(t, result)

	// ids 1 and 3 went through even though id 2 failed.
	assert.Equal(t, []int64{1, 3}, result.Succeeded)
	assert.Contains(t, result.Failed, int64(2))
	assert.Len(t, notifier.events, 2)
}

func TestModerationBulk_AllSucceed(t *testing.T) {
	ads, cacheRepo, _, uc := moderationFixture(t)

	ctx := context.Background()
	require.NoError(t, cacheRepo.Set(ctx, listCachePrefix+"x", []byte("{}"), 0))

	reason := entity.ModerationReasons[2]
	for _, id := range []int64{4, 5} {
		ads.On("Reject", mock.Anything, id, reason, "").
			Return(&entity.Advertisement{ID: id, Status: entity.StatusRejected}, nil).Once()
	}

	result, err := uc.Bulk(ctx, entity.ActionRejected, []int64{4, 5}, reason, "")
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 5}, result.Succeeded)
	assert.Empty(t, result.Failed)
	assert.Empty(t, cacheRepo.keys())
}

func TestModerationBulk_ValidatesReasonUpfront(t *testing.T) {
	ads, _, _, uc := moderationFixture(t)

	_, err := uc.Bulk(context.Background(), entity.ActionRejected, []int64{1, 2}, "не причина", "")
	assert.ErrorIs(t, err, ErrInvalidReason)
	ads.AssertNotCalled(t, "Reject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestModerationBulk_UnknownAction(t *testing.T) {
	_, _, _, uc := moderationFixture(t)

	_, err := uc.Bulk(context.Background(), entity.ModerationAction("publish"), []int64{1}, "", "")
	assert.ErrorIs(t, err, ErrUnknownBulkAction)
}
