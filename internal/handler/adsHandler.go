package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/encoreinstant/avito-moderation/internal/entity"
	"github.com/encoreinstant/avito-moderation/internal/filter"
	"github.com/encoreinstant/avito-moderation/internal/middleware"
	"github.com/encoreinstant/avito-moderation/internal/usecase"
)

// AdsHandler serves the listing, detail and moderation endpoints.
type AdsHandler struct {
	listing    *usecase.ListingUsecase
	navigation *usecase.NavigationUsecase
	moderation *usecase.ModerationUsecase
	prefs      *usecase.PreferencesUsecase
	logger     *zap.Logger
}

func NewAdsHandler(
	listing *usecase.ListingUsecase,
	navigation *usecase.NavigationUsecase,
	moderation *usecase.ModerationUsecase,
	prefs *usecase.PreferencesUsecase,
	logger *zap.Logger,
) *AdsHandler {
	return &AdsHandler{
		listing:    listing,
		navigation: navigation,
		moderation: moderation,
		prefs:      prefs,
		logger:     logger,
	}
}

type listResponse struct {
	Ads        []entity.Advertisement `json:"ads"`
	Pagination entity.Pagination      `json:"pagination"`
	Filters    filter.State           `json:"filters"`
	// Query is the canonical query string for the effective filters; the SPA
	// mirrors it into the address bar with history replacement.
	Query string `json:"query"`
}

// HandleListAds resolves the effective filter state (query parameters win over
// the saved record, which wins over defaults), fetches the page, and mirrors
// the state back into the persisted record.
func (h *AdsHandler) HandleListAds(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	moderatorID := middleware.ModeratorID(ctx)

	saved := h.prefs.SavedFilters(ctx, moderatorID)
	st := filter.Resolve(r.URL.Query(), saved)

	list, err := h.listing.List(ctx, st)
	if err != nil {
		if requestCancelled(ctx, err) {
			return
		}
		h.logger.Error("Failed to list ads", zap.Error(err))
		writeError(w, h.logger, http.StatusBadGateway, "Не удалось загрузить объявления: "+err.Error())
		return
	}

	if err := h.prefs.SaveFilters(ctx, moderatorID, st); err != nil {
		h.logger.Warn("Failed to persist filter record", zap.String("moderator_id", moderatorID), zap.Error(err))
	}

	writeJSON(w, h.logger, http.StatusOK, listResponse{
		Ads:        list.Ads,
		Pagination: list.Pagination,
		Filters:    st,
		Query:      filter.Encode(st).Encode(),
	})
}

type detailResponse struct {
	Ad     entity.Advertisement `json:"ad"`
	PrevID *int64               `json:"prevId"`
	NextID *int64               `json:"nextId"`
}

// HandleGetAd returns the ad plus previous/next ids computed from the "from"
// filter context the detail view was opened with.
func (h *AdsHandler) HandleGetAd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid ad id")
		return
	}

	ad, err := h.listing.Get(ctx, id)
	if err != nil {
		if requestCancelled(ctx, err) {
			return
		}
		if errors.Is(err, usecase.ErrAdNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "Объявление не найдено")
			return
		}
		writeError(w, h.logger, http.StatusBadGateway, "Не удалось загрузить объявление: "+err.Error())
		return
	}

	backFilters := h.backFilters(r)
	neighbors, err := h.navigation.Neighbors(ctx, backFilters, id)
	if err != nil {
		if requestCancelled(ctx, err) {
			return
		}
		// Navigation is read-only convenience; the detail view is still useful
		// without it.
		h.logger.Warn("Failed to compute neighbors", zap.Int64("ad_id", id), zap.Error(err))
		neighbors = usecase.Neighbors{}
	}

	writeJSON(w, h.logger, http.StatusOK, detailResponse{
		Ad:     *ad,
		PrevID: neighbors.Prev,
		NextID: neighbors.Next,
	})
}

// backFilters reconstructs the originating list's filter predicate from the
// "from" parameter (the list page's query string). Absent or unparsable
// context falls back to the default predicate; the saved record is not
// consulted here.
func (h *AdsHandler) backFilters(r *http.Request) filter.State {
	raw := r.URL.Query().Get("from")
	if raw == "" {
		return filter.Defaults()
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return filter.Defaults()
	}
	st, _ := filter.Decode(values)
	return st
}

func (h *AdsHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	opts, err := h.listing.CategoryOptions(ctx)
	if err != nil {
		if requestCancelled(ctx, err) {
			return
		}
		writeError(w, h.logger, http.StatusBadGateway, "Не удалось загрузить категории: "+err.Error())
		return
	}
	writeJSON(w, h.logger, http.StatusOK, opts)
}

type moderationRequest struct {
	Reason  string `json:"reason"`
	Comment string `json:"comment,omitempty"`
}

type moderationResponse struct {
	Message string               `json:"message"`
	Ad      entity.Advertisement `json:"ad"`
}

func (h *AdsHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, entity.ActionApproved)
}

func (h *AdsHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, entity.ActionRejected)
}

func (h *AdsHandler) HandleRequestChanges(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, entity.ActionRequestChanges)
}

func (h *AdsHandler) moderate(w http.ResponseWriter, r *http.Request, action entity.ModerationAction) {
	ctx := r.Context()
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid ad id")
		return
	}

	var req moderationRequest
	if action != entity.ActionApproved {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Error("Invalid moderation request body", zap.Int64("ad_id", id), zap.Error(err))
			writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	var (
		ad      *entity.Advertisement
		message string
	)
	switch action {
	case entity.ActionApproved:
		ad, err = h.moderation.Approve(ctx, id)
		message = "Объявление одобрено"
	case entity.ActionRejected:
		ad, err = h.moderation.Reject(ctx, id, req.Reason, req.Comment)
		message = "Объявление отклонено"
	case entity.ActionRequestChanges:
		ad, err = h.moderation.RequestChanges(ctx, id, req.Reason, req.Comment)
		message = "Отправлено на доработку"
	}
	if err != nil {
		if requestCancelled(ctx, err) {
			return
		}
		switch {
		case errors.Is(err, usecase.ErrInvalidReason):
			writeError(w, h.logger, http.StatusBadRequest, err.Error())
		case errors.Is(err, usecase.ErrAdNotFound):
			writeError(w, h.logger, http.StatusNotFound, "Объявление не найдено")
		default:
			writeError(w, h.logger, http.StatusBadGateway, "Действие не выполнено: "+err.Error())
		}
		return
	}

	writeJSON(w, h.logger, http.StatusOK, moderationResponse{Message: message, Ad: *ad})
}

type bulkRequest struct {
	Action  string  `json:"action"`
	IDs     []int64 `json:"ids"`
	Reason  string  `json:"reason,omitempty"`
	Comment string  `json:"comment,omitempty"`
}

type bulkResponse struct {
	Status    string           `json:"status"`
	Succeeded []int64          `json:"succeeded"`
	Failed    map[int64]string `json:"failed,omitempty"`
}

// HandleBulk runs one moderation action over a set of ids. Successes stick even
// when other ids fail; the response spells out both sides.
func (h *AdsHandler) HandleBulk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, h.logger, http.StatusBadRequest, "ids must not be empty")
		return
	}
	action, ok := parseBulkAction(req.Action)
	if !ok {
		writeError(w, h.logger, http.StatusBadRequest, "Unknown bulk action")
		return
	}

	result, err := h.moderation.Bulk(ctx, action, req.IDs, req.Reason, req.Comment)
	if err != nil && !errors.Is(err, usecase.ErrBulkPartialFailure) {
		if requestCancelled(ctx, err) {
			return
		}
		if errors.Is(err, usecase.ErrInvalidReason) {
			writeError(w, h.logger, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, h.logger, http.StatusBadGateway, "Массовое действие не выполнено: "+err.Error())
		return
	}

	status := "ok"
	if errors.Is(err, usecase.ErrBulkPartialFailure) {
		status = "partial_failure"
	}
	writeJSON(w, h.logger, http.StatusOK, bulkResponse{
		Status:    status,
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
	})
}

func parseBulkAction(raw string) (entity.ModerationAction, bool) {
	switch raw {
	case "approve", string(entity.ActionApproved):
		return entity.ActionApproved, true
	case "reject", string(entity.ActionRejected):
		return entity.ActionRejected, true
	case "request-changes", string(entity.ActionRequestChanges):
		return entity.ActionRequestChanges, true
	}
	return "", false
}
