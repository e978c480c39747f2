package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/encoreinstant/avito-moderation/internal/entity"
	"github.com/encoreinstant/avito-moderation/internal/filter"
	"github.com/encoreinstant/avito-moderation/internal/port/cache"
)

type MockAdsGateway struct{ mock.Mock }

func (m *MockAdsGateway) List(ctx context.Context, f filter.State) (*entity.AdsList, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AdsList), args.Error(1)
}

func (m *MockAdsGateway) Get(ctx context.Context, id int64) (*entity.Advertisement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Advertisement), args.Error(1)
}

func (m *MockAdsGateway) Approve(ctx context.Context, id int64) (*entity.Advertisement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Advertisement), args.Error(1)
}

func (m *MockAdsGateway) Reject(ctx context.Context, id int64, reason, comment string) (*entity.Advertisement, error) {
	args := m.Called(ctx, id, reason, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Advertisement), args.Error(1)
}

func (m *MockAdsGateway) RequestChanges(ctx context.Context, id int64, reason, comment string) (*entity.Advertisement, error) {
	args := m.Called(ctx, id, reason, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Advertisement), args.Error(1)
}

// fakeCache is an in-memory CacheRepository good enough for asserting what got
// cached and what got invalidated.
type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.data[key]; ok {
		return v, nil
	}
	return nil, cache.ErrNotFound
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *fakeCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *fakeCache) keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	return keys
}

type publishedDecision struct {
	AdID    int64
	Action  entity.ModerationAction
	Reason  string
	Comment string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []publishedDecision
}

func (n *recordingNotifier) PublishDecision(ctx context.Context, adID int64, action entity.ModerationAction, reason, comment string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, publishedDecision{AdID: adID, Action: action, Reason: reason, Comment: comment})
	return nil
}
