package filter

import (
	"errors"

	"github.com/encoreinstant/avito-moderation/internal/entity"
)

type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByPrice     SortField = "price"
	SortByPriority  SortField = "priority"
)

func (s SortField) Valid() bool {
	switch s {
	case SortByCreatedAt, SortByPrice, SortByPriority:
		return true
	}
	return false
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func (s SortOrder) Valid() bool {
	return s == SortAsc || s == SortDesc
}

// ErrLastStatus is returned when a toggle would leave the status set empty.
// The caller surfaces it as a transient warning; state is left unchanged.
var ErrLastStatus = errors.New("cannot deselect the last remaining status")

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// State is the full filter state of the ads listing. Statuses is never empty.
type State struct {
	Search     string            `json:"search"`
	Statuses   []entity.AdStatus `json:"statuses"`
	CategoryID *int64            `json:"categoryId"`
	MinPrice   *float64          `json:"minPrice"`
	MaxPrice   *float64          `json:"maxPrice"`
	SortBy     SortField         `json:"sortBy"`
	SortOrder  SortOrder         `json:"sortOrder"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
}

func Defaults() State {
	return State{
		Search:    "",
		Statuses:  []entity.AdStatus{entity.StatusPending},
		SortBy:    SortByCreatedAt,
		SortOrder: SortDesc,
		Page:      DefaultPage,
		Limit:     DefaultLimit,
	}
}

// Patch is a partial update to State. Nil fields are left untouched; the Clear*
// flags explicitly unset the optional bounds (nil pointer alone means "no change").
type Patch struct {
	Search        *string
	Statuses      []entity.AdStatus
	CategoryID    *int64
	ClearCategory bool
	MinPrice      *float64
	ClearMinPrice bool
	MaxPrice      *float64
	ClearMaxPrice bool
	SortBy        *SortField
	SortOrder     *SortOrder
	Page          *int
	Limit         *int
}

// Apply merges p into s. Changing anything other than the page number resets the
// page to 1: the old page position is meaningless under a different predicate.
func (s State) Apply(p Patch) State {
	changed := false

	if p.Search != nil && *p.Search != s.Search {
		s.Search = *p.Search
		changed = true
	}
	if p.Statuses != nil && !sameStatuses(p.Statuses, s.Statuses) {
		s.Statuses = append([]entity.AdStatus(nil), p.Statuses...)
		changed = true
	}
	if p.ClearCategory {
		if s.CategoryID != nil {
			s.CategoryID = nil
			changed = true
		}
	} else if p.CategoryID != nil && (s.CategoryID == nil || *s.CategoryID != *p.CategoryID) {
		v := *p.CategoryID
		s.CategoryID = &v
		changed = true
	}
	if p.ClearMinPrice {
		if s.MinPrice != nil {
			s.MinPrice = nil
			changed = true
		}
	} else if p.MinPrice != nil && (s.MinPrice == nil || *s.MinPrice != *p.MinPrice) {
		v := *p.MinPrice
		s.MinPrice = &v
		changed = true
	}
	if p.ClearMaxPrice {
		if s.MaxPrice != nil {
			s.MaxPrice = nil
			changed = true
		}
	} else if p.MaxPrice != nil && (s.MaxPrice == nil || *s.MaxPrice != *p.MaxPrice) {
		v := *p.MaxPrice
		s.MaxPrice = &v
		changed = true
	}
	if p.SortBy != nil && *p.SortBy != s.SortBy {
		s.SortBy = *p.SortBy
		changed = true
	}
	if p.SortOrder != nil && *p.SortOrder != s.SortOrder {
		s.SortOrder = *p.SortOrder
		changed = true
	}
	if p.Limit != nil && *p.Limit != s.Limit {
		s.Limit = *p.Limit
		changed = true
	}

	if changed {
		s.Page = DefaultPage
	} else if p.Page != nil && *p.Page >= 1 {
		s.Page = *p.Page
	}
	return s
}

// ToggleStatus adds or removes a status. Removing the only selected status is
// rejected with ErrLastStatus and the state is returned unchanged.
func (s State) ToggleStatus(status entity.AdStatus) (State, error) {
	idx := -1
	for i, v := range s.Statuses {
		if v == status {
			idx = i
			break
		}
	}
	if idx >= 0 {
		if len(s.Statuses) == 1 {
			return s, ErrLastStatus
		}
		next := make([]entity.AdStatus, 0, len(s.Statuses)-1)
		next = append(next, s.Statuses[:idx]...)
		next = append(next, s.Statuses[idx+1:]...)
		s.Statuses = next
	} else {
		s.Statuses = append(append([]entity.AdStatus(nil), s.Statuses...), status)
	}
	s.Page = DefaultPage
	return s, nil
}

// Reset restores the documented defaults.
func (s State) Reset() State {
	return Defaults()
}

// Validate reports whether the state satisfies the store invariants.
func (s State) Validate() error {
	if len(s.Statuses) == 0 {
		return ErrLastStatus
	}
	return nil
}

func sameStatuses(a, b []entity.AdStatus) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
