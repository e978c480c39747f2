package adsapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/encoreinstant/avito-moderation/internal/entity"
	"github.com/encoreinstant/avito-moderation/internal/filter"
	"github.com/encoreinstant/avito-moderation/internal/port/gateway"
)

// Client talks to the remote moderation REST API. It implements the ads, stats
// and moderator gateways.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

type Options struct {
	BaseURL string
	Timeout time.Duration
}

func NewClient(opts Options, logger *zap.Logger) *Client {
	rc := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: rc, logger: logger}
}

type moderationPayload struct {
	Reason  string `json:"reason"`
	Comment string `json:"comment,omitempty"`
}

type moderationResponse struct {
	Message string               `json:"message"`
	Ad      entity.Advertisement `json:"ad"`
}

// buildListQuery flattens the filter state into upstream query parameters.
// A "pending" selection matches both pending and draft upstream, since the
// server keeps reworked ads in "draft" while the dashboard shows them as
// pending.
func buildListQuery(f filter.State) url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(f.Page))
	v.Set("limit", strconv.Itoa(f.Limit))
	for _, st := range f.Statuses {
		if st == entity.StatusPending {
			v.Add("status", string(entity.StatusPending))
			v.Add("status", string(entity.StatusDraft))
			continue
		}
		v.Add("status", string(st))
	}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	if f.CategoryID != nil {
		v.Set("categoryId", strconv.FormatInt(*f.CategoryID, 10))
	}
	if f.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64))
	}
	v.Set("sortBy", string(f.SortBy))
	v.Set("sortOrder", string(f.SortOrder))
	return v
}

func (c *Client) List(ctx context.Context, f filter.State) (*entity.AdsList, error) {
	var out entity.AdsList
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(buildListQuery(f)).
		SetResult(&out).
		Get("/ads")
	if err != nil {
		return nil, fmt.Errorf("adsapi.List: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	for i := range out.Ads {
		out.Ads[i].Status = out.Ads[i].Status.Normalize()
	}
	return &out, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*entity.Advertisement, error) {
	var out entity.Advertisement
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get(fmt.Sprintf("/ads/%d", id))
	if err != nil {
		return nil, fmt.Errorf("adsapi.Get id=%d: %w", id, err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	out.Status = out.Status.Normalize()
	return &out, nil
}

func (c *Client) Approve(ctx context.Context, id int64) (*entity.Advertisement, error) {
	return c.moderate(ctx, id, "approve", nil)
}

func (c *Client) Reject(ctx context.Context, id int64, reason, comment string) (*entity.Advertisement, error) {
	return c.moderate(ctx, id, "reject", &moderationPayload{Reason: reason, Comment: comment})
}

func (c *Client) RequestChanges(ctx context.Context, id int64, reason, comment string) (*entity.Advertisement, error) {
	return c.moderate(ctx, id, "request-changes", &moderationPayload{Reason: reason, Comment: comment})
}

func (c *Client) moderate(ctx context.Context, id int64, action string, payload *moderationPayload) (*entity.Advertisement, error) {
	var out moderationResponse
	req := c.http.R().
		SetContext(ctx).
		SetResult(&out)
	if payload != nil {
		req.SetBody(payload)
	}
	resp, err := req.Post(fmt.Sprintf("/ads/%d/%s", id, action))
	if err != nil {
		return nil, fmt.Errorf("adsapi %s id=%d: %w", action, id, err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	out.Ad.Status = out.Ad.Status.Normalize()
	return &out.Ad, nil
}

func statsQueryParams(q gateway.StatsQuery) url.Values {
	v := url.Values{}
	if q.Period != "" {
		v.Set("period", string(q.Period))
	}
	if q.StartDate != "" {
		v.Set("startDate", q.StartDate)
	}
	if q.EndDate != "" {
		v.Set("endDate", q.EndDate)
	}
	return v
}

func (c *Client) Summary(ctx context.Context, q gateway.StatsQuery) (*entity.StatsSummary, error) {
	var out entity.StatsSummary
	if err := c.getJSON(ctx, "/stats/summary", statsQueryParams(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Activity(ctx context.Context, q gateway.StatsQuery) ([]entity.ActivityPoint, error) {
	var out []entity.ActivityPoint
	if err := c.getJSON(ctx, "/stats/chart/activity", statsQueryParams(q), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Decisions(ctx context.Context, q gateway.StatsQuery) (*entity.DecisionsBreakdown, error) {
	var out entity.DecisionsBreakdown
	if err := c.getJSON(ctx, "/stats/chart/decisions", statsQueryParams(q), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Categories(ctx context.Context, q gateway.StatsQuery) (map[string]int, error) {
	out := map[string]int{}
	if err := c.getJSON(ctx, "/stats/chart/categories", statsQueryParams(q), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Me(ctx context.Context) (*entity.Moderator, error) {
	var out entity.Moderator
	if err := c.getJSON(ctx, "/moderators/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	req := c.http.R().SetContext(ctx).SetResult(out)
	if query != nil {
		req.SetQueryParamsFromValues(query)
	}
	resp, err := req.Get(path)
	if err != nil {
		return fmt.Errorf("adsapi GET %s: %w", path, err)
	}
	return checkStatus(resp)
}

func checkStatus(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	if resp.StatusCode() == http.StatusNotFound {
		return gateway.ErrNotFound
	}
	return fmt.Errorf("upstream API error %d: %s", resp.StatusCode(), resp.Status())
}
