package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/encoreinstant/avito-moderation/internal/entity"
	"github.com/encoreinstant/avito-moderation/internal/port/gateway"
	"github.com/encoreinstant/avito-moderation/internal/usecase"
)

type StatsHandler struct {
	stats  *usecase.StatsUsecase
	logger *zap.Logger
}

func NewStatsHandler(stats *usecase.StatsUsecase, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, logger: logger}
}

func statsQueryFromRequest(r *http.Request) gateway.StatsQuery {
	q := gateway.StatsQuery{
		Period:    entity.Period(r.URL.Query().Get("period")),
		StartDate: r.URL.Query().Get("startDate"),
		EndDate:   r.URL.Query().Get("endDate"),
	}
	if q.Period == "" {
		q.Period = entity.PeriodWeek
	}
	return q
}

func (h *StatsHandler) serve(w http.ResponseWriter, r *http.Request, fetch func(gateway.StatsQuery) (any, error)) {
	ctx := r.Context()
	q := statsQueryFromRequest(r)
	data, err := fetch(q)
	if err != nil {
		if requestCancelled(ctx, err) {
			return
		}
		if errors.Is(err, usecase.ErrInvalidPeriod) {
			writeError(w, h.logger, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, h.logger, http.StatusBadGateway, "Не удалось загрузить статистику: "+err.Error())
		return
	}
	writeJSON(w, h.logger, http.StatusOK, data)
}

func (h *StatsHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(q gateway.StatsQuery) (any, error) {
		return h.stats.Summary(r.Context(), q)
	})
}

func (h *StatsHandler) HandleActivity(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(q gateway.StatsQuery) (any, error) {
		return h.stats.Activity(r.Context(), q)
	})
}

func (h *StatsHandler) HandleDecisions(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(q gateway.StatsQuery) (any, error) {
		return h.stats.Decisions(r.Context(), q)
	})
}

func (h *StatsHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(q gateway.StatsQuery) (any, error) {
		return h.stats.Categories(r.Context(), q)
	})
}

func (h *StatsHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	mod, err := h.stats.Me(ctx)
	if err != nil {
		if requestCancelled(ctx, err) {
			return
		}
		writeError(w, h.logger, http.StatusBadGateway, "Не удалось загрузить профиль: "+err.Error())
		return
	}
	writeJSON(w, h.logger, http.StatusOK, mod)
}
