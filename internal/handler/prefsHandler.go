package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/encoreinstant/avito-moderation/internal/entity"
	"github.com/encoreinstant/avito-moderation/internal/filter"
	"github.com/encoreinstant/avito-moderation/internal/middleware"
	"github.com/encoreinstant/avito-moderation/internal/usecase"
)

type PrefsHandler struct {
	prefs  *usecase.PreferencesUsecase
	logger *zap.Logger
}

func NewPrefsHandler(prefs *usecase.PreferencesUsecase, logger *zap.Logger) *PrefsHandler {
	return &PrefsHandler{prefs: prefs, logger: logger}
}

func (h *PrefsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	moderatorID := middleware.ModeratorID(r.Context())
	writeJSON(w, h.logger, http.StatusOK, h.prefs.Get(r.Context(), moderatorID))
}

func (h *PrefsHandler) HandlePutFilters(w http.ResponseWriter, r *http.Request) {
	moderatorID := middleware.ModeratorID(r.Context())

	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	// An explicitly empty status set is a client error, not a corrupt record
	// for DecodeSaved to repair over.
	var record struct {
		Statuses *[]entity.AdStatus `json:"statuses"`
	}
	if err := json.Unmarshal(body, &record); err == nil && record.Statuses != nil && len(*record.Statuses) == 0 {
		writeError(w, h.logger, http.StatusUnprocessableEntity, filter.ErrLastStatus.Error())
		return
	}
	st, err := filter.DecodeSaved(body)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid filter record")
		return
	}
	if err := h.prefs.SaveFilters(r.Context(), moderatorID, st); err != nil {
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save filters")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, st)
}

type themeRequest struct {
	Theme usecase.Theme `json:"theme"`
}

func (h *PrefsHandler) HandlePutTheme(w http.ResponseWriter, r *http.Request) {
	moderatorID := middleware.ModeratorID(r.Context())

	var req themeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.prefs.SetTheme(r.Context(), moderatorID, req.Theme); err != nil {
		if errors.Is(err, usecase.ErrInvalidTheme) {
			writeError(w, h.logger, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save theme")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type onboardingRequest struct {
	Seen bool `json:"seen"`
}

func (h *PrefsHandler) HandlePutOnboarding(w http.ResponseWriter, r *http.Request) {
	moderatorID := middleware.ModeratorID(r.Context())

	var req onboardingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.prefs.SetOnboardingSeen(r.Context(), moderatorID, req.Seen); err != nil {
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save onboarding flag")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
