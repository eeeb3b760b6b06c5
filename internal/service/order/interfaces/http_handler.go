package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"vesta/internal/service/order/application"
	"vesta/internal/service/order/domain"
	"vesta/internal/statemachine"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

const serviceName = "order-service"

// OrderHandler 封装了 order 服务的 HTTP 处理器
type OrderHandler struct {
	service *application.OrderApplicationService
}

// NewOrderHandler 创建一个新的 HTTP 处理器实例
func NewOrderHandler(service *application.OrderApplicationService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/orders/place", h.placeOrderHandler)
	mux.HandleFunc("/orders/detail", h.orderDetailHandler)
	mux.HandleFunc("/orders/cancel", h.cancelOrderHandler)
	mux.HandleFunc("/orders/list", h.consumerListHandler)
}

func (h *OrderHandler) placeOrderHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := extractTraceContext(r)

	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(ctx, "api.PlaceOrder")
	defer span.End()

	var req application.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("user.id", req.UserID))

	resp, err := h.service.PlaceOrder(ctx, &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, resp)
}

func (h *OrderHandler) orderDetailHandler(w http.ResponseWriter, r *http.Request) {
	ctx := extractTraceContext(r)

	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(ctx, "api.OrderDetail")
	defer span.End()

	orderID := r.URL.Query().Get("orderId")
	if orderID == "" {
		http.Error(w, "orderId is required", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("order.id", orderID))

	snapshot, err := h.service.Detail(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, snapshot)
}

func (h *OrderHandler) cancelOrderHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := extractTraceContext(r)

	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(ctx, "api.CancelOrder")
	defer span.End()

	var req application.OrderCancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.CancellerType == "" {
		req.CancellerType = domain.ActorConsumer
	}
	span.SetAttributes(
		attribute.String("order.id", req.OrderID),
		attribute.String("order.canceller_type", string(req.CancellerType)),
	)

	if err := h.service.Cancel(ctx, &req); err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			cancellationsTotal.WithLabelValues(string(req.CancellerType), "not_found").Inc()
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, domain.ErrUnsupportedCancellation):
			cancellationsTotal.WithLabelValues(string(req.CancellerType), "unsupported").Inc()
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, statemachine.ErrConcurrentModification):
			cancellationsTotal.WithLabelValues(string(req.CancellerType), "conflict").Inc()
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			cancellationsTotal.WithLabelValues(string(req.CancellerType), "error").Inc()
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	cancellationsTotal.WithLabelValues(string(req.CancellerType), "success").Inc()
	w.WriteHeader(http.StatusOK)
}

func (h *OrderHandler) consumerListHandler(w http.ResponseWriter, r *http.Request) {
	ctx := extractTraceContext(r)

	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(ctx, "api.ConsumerQueryList")
	defer span.End()

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}
	var status *domain.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		st := domain.OrderStatus(raw)
		status = &st
	}
	var sortBy *int64
	if raw := r.URL.Query().Get("sortBy"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid sortBy", http.StatusBadRequest)
			return
		}
		sortBy = &v
	}
	span.SetAttributes(attribute.String("user.id", userID))

	list, err := h.service.ConsumerQueryList(ctx, userID, status, sortBy)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, list)
}

func extractTraceContext(r *http.Request) context.Context {
	propagator := otel.GetTextMapPropagator()
	return propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
