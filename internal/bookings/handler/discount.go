package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"staybook/internal/bookings/service"
	apperrors "staybook/pkg/errors"
	httputil "staybook/pkg/http"
	"staybook/pkg/logger"
	"staybook/pkg/middleware"
	"staybook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type DiscountHandler struct {
	service service.DiscountService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewDiscountHandler(service service.DiscountService, auth *middleware.Authenticator, log *logger.Logger) *DiscountHandler {
	return &DiscountHandler{
		service: service,
		auth:    auth,
		log:     log,
	}
}

func (h *DiscountHandler) Verify(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.handle(w, r, h.service.Verify)
}

func (h *DiscountHandler) Apply(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.handle(w, r, h.service.Apply)
}

type discountOp func(ctx context.Context, req *model.DiscountRequest) (*model.Discount, error)

// handle decodes the request, binds it to the caller and runs op. Without
// authentication the user id comes from the body.
func (h *DiscountHandler) handle(w http.ResponseWriter, r *http.Request, op discountOp) {
	var req model.DiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}
	if p, ok := middleware.PrincipalFrom(r.Context()); ok {
		req.UserID = p.UserID
	}

	discount, err := op(r.Context(), &req)
	if err != nil {
		h.log.Debug("Discount request refused", "code", req.Code, "user_id", req.UserID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, discount)
}

func (h *DiscountHandler) RegisterRoutes(router *httprouter.Router) {
	anyone := h.auth.Require()

	router.POST("/api/v1/discounts/verify", anyone(h.Verify))
	router.POST("/api/v1/discounts/apply", anyone(h.Apply))
}
