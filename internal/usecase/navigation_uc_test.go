package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/encoreinstant/avito-moderation/internal/filter"
)

func TestNavigationNeighbors(t *testing.T) {
	ads := new(MockAdsGateway)
	uc := NewNavigationUsecase(ads, newFakeCache(), zap.NewNop())

	f := filter.Defaults()
	ads.On("List", mock.Anything, mock.MatchedBy(func(probe filter.State) bool {
		return probe.Page == 1 && probe.Limit == navIndexLimit
	})).Return(adsPage(5, 9, 12, 20), nil).Once()

	tests := []struct {
		name    string
		current int64
		prev    *int64
		next    *int64
	}{
		{"middle", 12, int64Ptr(9), int64Ptr(20)},
		{"first", 5, nil, int64Ptr(9)},
		{"last", 20, int64Ptr(12), nil},
		{"not in index", 999, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := uc.Neighbors(context.Background(), f, tt.current)
			require.NoError(t, err)
			assert.Equal(t, tt.prev, n.Prev)
			assert.Equal(t, tt.next, n.Next)
		})
	}

	// All four lookups share the one cached index.
	ads.AssertNumberOfCalls(t, "List", 1)
}

func TestNavigationBuildIndex_PaginationIgnored(t *testing.T) {
	ads := new(MockAdsGateway)
	cacheRepo := newFakeCache()
	uc := NewNavigationUsecase(ads, cacheRepo, zap.NewNop())

	f := filter.Defaults()
	f.Page = 4
	f.Limit = 25
	ads.On("List", mock.Anything, mock.MatchedBy(func(probe filter.State) bool {
		return probe.Page == 1 && probe.Limit == navIndexLimit
	})).Return(adsPage(1, 2, 3), nil).Once()

	ids, err := uc.BuildIndex(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)

	// A different page over the same predicate reuses the cached index.
	f.Page = 7
	ids, err = uc.BuildIndex(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)
	ads.AssertNumberOfCalls(t, "List", 1)

	assert.Contains(t, cacheRepo.keys(), navCachePrefix+filter.NavigationFingerprint(f))
}

func TestNavigationNeighbors_UpstreamErrorPropagates(t *testing.T) {
	ads := new(MockAdsGateway)
	uc := NewNavigationUsecase(ads, newFakeCache(), zap.NewNop())

	boom := errors.New("upstream API error 503")
	ads.On("List", mock.Anything, mock.Anything).Return(nil, boom).Once()

	_, err := uc.Neighbors(context.Background(), filter.Defaults(), 5)
	assert.ErrorIs(t, err, boom)
}

func int64Ptr(v int64) *int64 { return &v }
