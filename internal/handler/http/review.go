package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Es-saiydy/webService/internal/repository"
	"github.com/Es-saiydy/webService/internal/service"
	"github.com/Es-saiydy/webService/pkg/httputil"
	"github.com/Es-saiydy/webService/pkg/pagination"
	"github.com/Es-saiydy/webService/pkg/validator"
)

// ReviewHandler handles HTTP requests for review operations.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(s *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{service: s, logger: logger}
}

// CreateReviewRequest is the request body for creating a review.
type CreateReviewRequest struct {
	UserID    int64  `json:"user_id" validate:"required,gt=0"`
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Score     int    `json:"score" validate:"required,gte=1,lte=5"`
	Content   string `json:"content" validate:"required"`
}

// UpdateReviewRequest is the request body for a partial review update. All
// fields are optional; omitted fields are left unchanged.
type UpdateReviewRequest struct {
	UserID    *int64  `json:"user_id,omitempty" validate:"omitempty,gt=0"`
	ProductID *int64  `json:"product_id,omitempty" validate:"omitempty,gt=0"`
	Score     *int    `json:"score,omitempty" validate:"omitempty,gte=1,lte=5"`
	Content   *string `json:"content,omitempty"`
}

// ListReviews handles GET /reviews
// @Summary List reviews
// @Tags reviews
// @Produce json
// @Param product_id query int false "Filter by product"
// @Param user_id query int false "Filter by author"
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Items per page (default 10, max 100)"
// @Success 200 {object} map[string]interface{}
// @Router /reviews [get]
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	filter := repository.ReviewFilter{Page: params.Page, PerPage: params.PerPage}

	q := r.URL.Query()
	if v := q.Get("product_id"); v != "" {
		productID, err := strconv.ParseInt(v, 10, 64)
		if err != nil || productID <= 0 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "product_id must be a positive integer"},
			})
			return
		}
		filter.ProductID = &productID
	}
	if v := q.Get("user_id"); v != "" {
		userID, err := strconv.ParseInt(v, 10, 64)
		if err != nil || userID <= 0 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "user_id must be a positive integer"},
			})
			return
		}
		filter.UserID = &userID
	}

	reviews, total, err := h.service.ListReviews(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(reviews, total, filter.Page, filter.PerPage))
}

// GetReview handles GET /reviews/{id}
// @Summary Get review by ID
// @Tags reviews
// @Produce json
// @Param id path int true "Review ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /reviews/{id} [get]
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	review, err := h.service.GetReview(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// CreateReview handles POST /reviews
// @Summary Create a review
// @Description Creates a review for an existing user and product. The parent
// @Description product's review list and mean score are updated in the same
// @Description transaction. Missing references fail with 404 and list every
// @Description missing entity.
// @Tags reviews
// @Accept json
// @Produce json
// @Param request body CreateReviewRequest true "Review to create"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /reviews [post]
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateReviewRequest
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

	review, err := h.service.CreateReview(r.Context(), service.CreateReviewInput{
		UserID:    req.UserID,
		ProductID: req.ProductID,
		Score:     req.Score,
		Content:   req.Content,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: review})
}

// UpdateReview handles PATCH /reviews/{id}
// @Summary Update a review
// @Description Partially updates a review. Moving a review to another product
// @Description updates both products' aggregates in the same transaction.
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path int true "Review ID"
// @Param request body UpdateReviewRequest true "Fields to update"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /reviews/{id} [patch]
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateReviewRequest
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

	review, err := h.service.UpdateReview(r.Context(), id, service.UpdateReviewInput{
		UserID:    req.UserID,
		ProductID: req.ProductID,
		Score:     req.Score,
		Content:   req.Content,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// DeleteReview handles DELETE /reviews/{id}
// @Summary Delete a review
// @Description Deletes a review and removes it from its parent product's
// @Description aggregates in the same transaction.
// @Tags reviews
// @Param id path int true "Review ID"
// @Success 204
// @Failure 404 {object} map[string]interface{}
// @Router /reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteReview(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
