package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"coupon-service/internal/coupon"
	"coupon-service/internal/model"
	"coupon-service/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CouponHandler handles coupon-related HTTP requests.
type CouponHandler struct {
	service service.CouponService
	logger  zerolog.Logger
}

// NewCouponHandler creates a new coupon handler.
func NewCouponHandler(service service.CouponService, logger zerolog.Logger) *CouponHandler {
	return &CouponHandler{
		service: service,
		logger:  logger.With().Str("handler", "coupon").Logger(),
	}
}

// Create handles POST /api/coupons requests.
func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CouponRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	c, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Location", "/api/coupons/"+c.ID().String())
	writeJSON(w, http.StatusCreated, toResponse(c))
}

// GetByID handles GET /api/coupons/{id} requests.
func (h *CouponHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.couponID(w, r)
	if !ok {
		return
	}

	c, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(c))
}

// List handles GET /api/coupons?page=&size= requests.
func (h *CouponHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := parsePageRequest(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	result, err := h.service.List(r.Context(), page)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.MapPage(result, toResponse))
}

// Delete handles DELETE /api/coupons/{id} requests.
func (h *CouponHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.couponID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// couponID parses the {id} path parameter, writing a 400 when it is not a UUID.
func (h *CouponHandler) couponID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidID, "invalid coupon ID format", h.logger)
		return uuid.Nil, false
	}
	return id, true
}

var errNotInteger = errors.New("not an integer")

// parsePageRequest reads page and size, defaulting to the first page of
// DefaultPageSize.
func parsePageRequest(q url.Values) (model.PageRequest, error) {
	page, err := intParam(q, "page", 0)
	if err != nil {
		return model.PageRequest{}, model.ErrInvalidPage
	}

	size, err := intParam(q, "size", model.DefaultPageSize)
	if err != nil {
		return model.PageRequest{}, model.ErrInvalidPage
	}

	req := model.PageRequest{Page: page, Size: size}
	if err := req.Validate(); err != nil {
		return model.PageRequest{}, err
	}
	return req, nil
}

func intParam(q url.Values, key string, defaultValue int) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return defaultValue, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errNotInteger
	}
	return v, nil
}

// toResponse converts a coupon to its API representation.
func toResponse(c *coupon.Coupon) model.CouponResponse {
	return model.CouponResponse{
		ID:             c.ID(),
		Code:           c.Code().String(),
		Description:    c.Description(),
		DiscountValue:  c.DiscountValue(),
		ExpirationDate: c.ExpirationDate(),
		Status:         c.Status().String(),
		Published:      c.Published(),
		Redeemed:       c.Redeemed(),
	}
}
