package httpx

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lucasvieira/go-stock-orders/internal/fault"
	"github.com/lucasvieira/go-stock-orders/internal/reports"
)

type ReportsHandler struct {
	Reports *reports.Repo
	Log     *zap.SugaredLogger
}

func (h *ReportsHandler) Register(r *chi.Mux) {
	r.Get("/products/low-stock/{threshold}", h.lowStock)
	r.Get("/statistics", h.statistics)
}

func (h *ReportsHandler) lowStock(w http.ResponseWriter, r *http.Request) {
	threshold, err := strconv.Atoi(chi.URLParam(r, "threshold"))
	if err != nil {
		writeError(w, h.Log, fault.Validationf("threshold must be an integer"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Reports.LowStock(ctx, threshold)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ReportsHandler) statistics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	s, err := h.Reports.Statistics(ctx)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
