package filter

import (
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/encoreinstant/avito-moderation/internal/entity"
)

// SavedFiltersKey is the fixed preferences key the saved filter record lives under.
const SavedFiltersKey = "listFilters"

// Encode serializes the state into query values, emitting only non-default
// fields to keep URLs minimal. Statuses are comma-joined.
func Encode(s State) url.Values {
	v := url.Values{}
	if s.Search != "" {
		v.Set("search", s.Search)
	}
	if len(s.Statuses) > 0 {
		parts := make([]string, len(s.Statuses))
		for i, st := range s.Statuses {
			parts[i] = string(st)
		}
		v.Set("status", strings.Join(parts, ","))
	}
	if s.CategoryID != nil {
		v.Set("categoryId", strconv.FormatInt(*s.CategoryID, 10))
	}
	if s.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*s.MinPrice, 'f', -1, 64))
	}
	if s.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*s.MaxPrice, 'f', -1, 64))
	}
	if s.SortBy != SortByCreatedAt {
		v.Set("sortBy", string(s.SortBy))
	}
	if s.SortOrder != SortDesc {
		v.Set("sortOrder", string(s.SortOrder))
	}
	if s.Page != DefaultPage {
		v.Set("page", strconv.Itoa(s.Page))
	}
	if s.Limit != DefaultLimit {
		v.Set("limit", strconv.Itoa(s.Limit))
	}
	return v
}

// Decode parses query values into a patch over the defaults. It reports whether
// any recognized parameter was present: the caller uses that to decide between
// query-driven state and the saved record. Statuses are accepted both as a
// comma list and as repeated keys. An empty numeric string means "unset", not
// zero; malformed numbers are dropped.
func Decode(v url.Values) (State, bool) {
	s := Defaults()
	recognized := false

	if raw, ok := v["status"]; ok && len(raw) > 0 {
		var statuses []entity.AdStatus
		for _, chunk := range raw {
			for _, part := range strings.Split(chunk, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				if st := entity.AdStatus(part); st.Valid() {
					statuses = append(statuses, st)
				}
			}
		}
		if len(statuses) > 0 {
			s.Statuses = statuses
			recognized = true
		}
	}
	if search := v.Get("search"); search != "" {
		s.Search = search
		recognized = true
	}
	if _, ok := v["categoryId"]; ok {
		recognized = true
		if raw := v.Get("categoryId"); raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
				s.CategoryID = &id
			}
		}
	}
	if _, ok := v["minPrice"]; ok {
		recognized = true
		if raw := v.Get("minPrice"); raw != "" {
			if p, err := strconv.ParseFloat(raw, 64); err == nil {
				s.MinPrice = &p
			}
		}
	}
	if _, ok := v["maxPrice"]; ok {
		recognized = true
		if raw := v.Get("maxPrice"); raw != "" {
			if p, err := strconv.ParseFloat(raw, 64); err == nil {
				s.MaxPrice = &p
			}
		}
	}
	if raw := v.Get("sortBy"); raw != "" {
		if sb := SortField(raw); sb.Valid() {
			s.SortBy = sb
			recognized = true
		}
	}
	if raw := v.Get("sortOrder"); raw != "" {
		if so := SortOrder(raw); so.Valid() {
			s.SortOrder = so
			recognized = true
		}
	}
	if raw := v.Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page >= 1 {
			s.Page = page
			recognized = true
		}
	}
	if raw := v.Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit >= 1 {
			s.Limit = limit
			recognized = true
		}
	}

	return s, recognized
}

// Resolve picks the effective state for a request. Query parameters win
// outright when any recognized one is present; otherwise the saved record is
// used; a missing or corrupt record falls back to defaults.
func Resolve(query url.Values, saved []byte) State {
	if s, recognized := Decode(query); recognized {
		return s
	}
	if len(saved) > 0 {
		if s, err := DecodeSaved(saved); err == nil {
			return s
		}
	}
	return Defaults()
}

// EncodeSaved serializes the state for the persisted preferences record.
func EncodeSaved(s State) ([]byte, error) {
	return json.Marshal(s)
}

// DecodeSaved parses a persisted record, layering it over the defaults so that
// older records with missing fields stay usable.
func DecodeSaved(data []byte) (State, error) {
	s := Defaults()
	if err := json.Unmarshal(data, &s); err != nil {
		return Defaults(), err
	}
	if len(s.Statuses) == 0 {
		s.Statuses = Defaults().Statuses
	}
	if s.Page < 1 {
		s.Page = DefaultPage
	}
	if s.Limit < 1 {
		s.Limit = DefaultLimit
	}
	if !s.SortBy.Valid() {
		s.SortBy = SortByCreatedAt
	}
	if !s.SortOrder.Valid() {
		s.SortOrder = SortDesc
	}
	return s, nil
}

// Fingerprint is the canonical cache/request key for the full filter set,
// pagination included. Statuses are sorted so that selection order does not
// split the cache.
func Fingerprint(s State) string {
	v := url.Values{}
	v.Set("search", s.Search)
	v.Set("status", canonicalStatuses(s.Statuses))
	if s.CategoryID != nil {
		v.Set("categoryId", strconv.FormatInt(*s.CategoryID, 10))
	}
	if s.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*s.MinPrice, 'f', -1, 64))
	}
	if s.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*s.MaxPrice, 'f', -1, 64))
	}
	v.Set("sortBy", string(s.SortBy))
	v.Set("sortOrder", string(s.SortOrder))
	v.Set("page", strconv.Itoa(s.Page))
	v.Set("limit", strconv.Itoa(s.Limit))
	return v.Encode()
}

// NavigationFingerprint is the same key without pagination; it identifies the
// previous/next id sequence for a filter context.
func NavigationFingerprint(s State) string {
	nav := s
	nav.Page = DefaultPage
	nav.Limit = DefaultLimit
	v := url.Values{}
	v.Set("search", nav.Search)
	v.Set("status", canonicalStatuses(nav.Statuses))
	if nav.CategoryID != nil {
		v.Set("categoryId", strconv.FormatInt(*nav.CategoryID, 10))
	}
	if nav.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*nav.MinPrice, 'f', -1, 64))
	}
	if nav.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*nav.MaxPrice, 'f', -1, 64))
	}
	v.Set("sortBy", string(nav.SortBy))
	v.Set("sortOrder", string(nav.SortOrder))
	return v.Encode()
}

func canonicalStatuses(statuses []entity.AdStatus) string {
	parts := make([]string, len(statuses))
	for i, st := range statuses {
		parts[i] = string(st)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
