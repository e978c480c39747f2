package gateway

import (
	"context"
	"errors"

	"github.com/encoreinstant/avito-moderation/internal/entity"
	"github.com/encoreinstant/avito-moderation/internal/filter"
)

// ErrNotFound is returned when the upstream API reports 404 for a resource.
var ErrNotFound = errors.New("upstream resource not found")

// AdsGateway is the remote moderation API. Implementations are responsible for
// the pending/draft status dance: a "pending" selection is expanded to both
// statuses on the wire, and "draft" in responses is normalized back to pending.
type AdsGateway interface {
	List(ctx context.Context, f filter.State) (*entity.AdsList, error)
	Get(ctx context.Context, id int64) (*entity.Advertisement, error)
	Approve(ctx context.Context, id int64) (*entity.Advertisement, error)
	Reject(ctx context.Context, id int64, reason, comment string) (*entity.Advertisement, error)
	RequestChanges(ctx context.Context, id int64, reason, comment string) (*entity.Advertisement, error)
}

// StatsQuery selects a stats window: a named period, or custom with dates.
type StatsQuery struct {
	Period    entity.Period
	StartDate string
	EndDate   string
}

type StatsGateway interface {
	Summary(ctx context.Context, q StatsQuery) (*entity.StatsSummary, error)
	Activity(ctx context.Context, q StatsQuery) ([]entity.ActivityPoint, error)
	Decisions(ctx context.Context, q StatsQuery) (*entity.DecisionsBreakdown, error)
	Categories(ctx context.Context, q StatsQuery) (map[string]int, error)
}

type ModeratorGateway interface {
	Me(ctx context.Context) (*entity.Moderator, error)
}
