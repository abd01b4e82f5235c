package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/lucasvieira/go-stock-orders/internal/fault"
	kafkax "github.com/lucasvieira/go-stock-orders/internal/kafka"
	"github.com/lucasvieira/go-stock-orders/internal/metrics"
	"github.com/lucasvieira/go-stock-orders/internal/orders"
	"github.com/lucasvieira/go-stock-orders/internal/reports"
)

type OrdersHandler struct {
	Repo     *orders.Repo
	Reports  *reports.Repo
	Producer *kafkax.Producer
	Service  string
	Log      *zap.SugaredLogger
}

type CreateOrderReq struct {
	Customer string             `json:"customer"`
	Items    []orders.ItemInput `json:"items"`
}

type UpdateOrderReq struct {
	Customer *string            `json:"customer"`
	Items    []orders.ItemInput `json:"items"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.create)
	r.Get("/orders", h.list)
	r.Get("/orders/{id}", h.get)
	r.Put("/orders/{id}", h.update)
	r.Delete("/orders/{id}", h.delete)
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Repo.CreateOrder(ctx, req.Customer, req.Items)
	if err != nil {
		h.countRejection(err)
		writeError(w, h.Log, err)
		return
	}
	metrics.OrdersCreated.Inc()
	h.Reports.InvalidateStats(ctx)
	h.publishOrderEvent(r, orders.EventOrderCreated, o)
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Repo.GetOrder(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := pagination(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Repo.ListOrders(ctx, offset, limit)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Repo.UpdateOrder(ctx, chi.URLParam(r, "id"), req.Customer, req.Items)
	if err != nil {
		h.countRejection(err)
		writeError(w, h.Log, err)
		return
	}
	metrics.OrdersUpdated.Inc()
	h.Reports.InvalidateStats(ctx)
	h.publishOrderEvent(r, orders.EventOrderUpdated, o)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Repo.DeleteOrder(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	metrics.OrdersDeleted.Inc()
	h.Reports.InvalidateStats(ctx)
	h.publishOrderEvent(r, orders.EventOrderDeleted, o)
	writeJSON(w, http.StatusOK, map[string]string{"message": "order deleted, stock reversed"})
}

func (h *OrdersHandler) countRejection(err error) {
	var is *fault.InsufficientStock
	if errors.As(err, &is) {
		metrics.StockRejections.Inc()
	}
}

func (h *OrdersHandler) publishOrderEvent(r *http.Request, eventType string, o *orders.Order) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(orders.OrderEventPayload{
			OrderID:  o.ID,
			Customer: o.Customer,
			Items:    orders.ToSnapshots(o.Items),
			Total:    o.Total,
		}),
	}
	h.Producer.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
