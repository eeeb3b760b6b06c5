// internal/service/coupon/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"vesta/internal/service/coupon/application"
	"vesta/internal/service/coupon/domain"
)

// CouponHandler 封装了 coupon 服务的 HTTP 处理器
type CouponHandler struct {
	service *application.CouponApplicationService
}

// NewCouponHandler 创建一个新的 HTTP 处理器实例
func NewCouponHandler(service *application.CouponApplicationService) *CouponHandler {
	return &CouponHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *CouponHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/coupon/get_coupon_id", h.handleGetCouponID)
	mux.HandleFunc("/coupon/use_back", h.handleUseBack)
	mux.HandleFunc("/coupon/use", h.handleUse)
}

func (h *CouponHandler) handleGetCouponID(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	orderID := r.URL.Query().Get("orders_id")
	if orderID == "" {
		http.Error(w, "orders_id is required", http.StatusBadRequest)
		return
	}

	couponID, err := h.service.GetCouponIDByOrder(ctx, orderID)
	if err != nil {
		http.Error(w, err.Error(), couponErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int64{"couponId": couponID})
}

func (h *CouponHandler) handleUseBack(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	couponID, orderID, ok := couponParams(w, r)
	if !ok {
		return
	}
	released, err := h.service.UseBack(ctx, couponID, orderID)
	if err != nil {
		http.Error(w, err.Error(), couponErrorStatus(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"released": released})
}

func (h *CouponHandler) handleUse(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	couponID, orderID, ok := couponParams(w, r)
	if !ok {
		return
	}
	if err := h.service.Use(ctx, couponID, orderID); err != nil {
		http.Error(w, err.Error(), couponErrorStatus(err))
		return
	}
	w.WriteHeader(http.StatusOK)
}

func couponParams(w http.ResponseWriter, r *http.Request) (couponID int64, orderID string, ok bool) {
	couponID, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid coupon id", http.StatusBadRequest)
		return 0, "", false
	}
	orderID = r.URL.Query().Get("orders_id")
	if orderID == "" {
		http.Error(w, "orders_id is required", http.StatusBadRequest)
		return 0, "", false
	}
	return couponID, orderID, true
}

// couponErrorStatus 根据错误类型返回不同的 HTTP 状态码
func couponErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrCouponNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCouponExpired),
		errors.Is(err, domain.ErrCouponAlreadyUsed),
		errors.Is(err, domain.ErrCouponStatusInvalid):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
