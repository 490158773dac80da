package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Es-saiydy/webService/internal/repository"
	"github.com/Es-saiydy/webService/internal/service"
	"github.com/Es-saiydy/webService/pkg/httputil"
	"github.com/Es-saiydy/webService/pkg/pagination"
	"github.com/Es-saiydy/webService/pkg/validator"
)

// OrderHandler handles HTTP requests for order operations.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(s *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{service: s, logger: logger}
}

// CreateOrderRequest is the request body for creating an order. The total is
// computed server-side from current product prices; a client-supplied total
// is never accepted.
type CreateOrderRequest struct {
	UserID     int64   `json:"user_id" validate:"required,gt=0"`
	ProductIDs []int64 `json:"product_ids" validate:"required,min=1,dive,gt=0"`
}

// UpdateOrderRequest is the request body for a partial order update. All
// fields are optional; omitted fields are left unchanged. Changing the
// product list recomputes the total from current prices.
type UpdateOrderRequest struct {
	UserID     *int64  `json:"user_id,omitempty" validate:"omitempty,gt=0"`
	ProductIDs []int64 `json:"product_ids,omitempty" validate:"omitempty,min=1,dive,gt=0"`
	Payment    *bool   `json:"payment,omitempty"`
}

// ListOrders handles GET /orders
// @Summary List orders
// @Description Returns paginated orders joined with their buyer and the
// @Description products that still exist.
// @Tags orders
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Items per page (default 10, max 100)"
// @Success 200 {object} map[string]interface{}
// @Router /orders [get]
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	orders, total, err := h.service.ListOrders(r.Context(), repository.ListParams{
		Page:    params.Page,
		PerPage: params.PerPage,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(orders, total, params.Page, params.PerPage))
}

// GetOrder handles GET /orders/{id}
// @Summary Get order by ID
// @Description Returns the order joined with its buyer and the products that
// @Description still exist. The stored total is returned unchanged even when
// @Description products were deleted after purchase.
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	detail, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: detail})
}

// CreateOrder handles POST /orders
// @Summary Create an order
// @Description Validates the buyer and every product, snapshots current
// @Description prices, applies the flat markup, and persists the order with
// @Description payment unset. Missing references fail with 404 and list every
// @Description missing entity.
// @Tags orders
// @Accept json
// @Produce json
// @Param request body CreateOrderRequest true "Order to create"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /orders [post]
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.service.CreateOrder(r.Context(), service.CreateOrderInput{
		UserID:     req.UserID,
		ProductIDs: req.ProductIDs,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: order})
}

// UpdateOrder handles PATCH /orders/{id}
// @Summary Update an order
// @Description Partially updates an order. A payment-only update keeps the
// @Description stored total; changing the product list recomputes it from
// @Description current prices.
// @Tags orders
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body UpdateOrderRequest true "Fields to update"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /orders/{id} [patch]
func (h *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.service.UpdateOrder(r.Context(), id, service.UpdateOrderInput{
		UserID:     req.UserID,
		ProductIDs: req.ProductIDs,
		Payment:    req.Payment,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// DeleteOrder handles DELETE /orders/{id}
// @Summary Delete an order
// @Tags orders
// @Param id path int true "Order ID"
// @Success 204
// @Failure 404 {object} map[string]interface{}
// @Router /orders/{id} [delete]
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteOrder(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
