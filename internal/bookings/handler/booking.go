package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"staybook/internal/bookings/service"
	apperrors "staybook/pkg/errors"
	httputil "staybook/pkg/http"
	"staybook/pkg/logger"
	"staybook/pkg/middleware"
	"staybook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const confirmationSuccessPath = "/confirmation-success"

type BookingHandler struct {
	bookings    service.BookingService
	lifecycle   service.LifecycleService
	auth        *middleware.Authenticator
	frontendURL string
	log         *logger.Logger
}

func NewBookingHandler(
	bookings service.BookingService,
	lifecycle service.LifecycleService,
	auth *middleware.Authenticator,
	frontendURL string,
	log *logger.Logger,
) *BookingHandler {
	return &BookingHandler{
		bookings:    bookings,
		lifecycle:   lifecycle,
		auth:        auth,
		frontendURL: frontendURL,
		log:         log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn("Invalid booking request body", "handler", "Create", "error", err)
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	// Guests book for themselves; staff may book on someone's behalf.
	if p, ok := middleware.PrincipalFrom(r.Context()); ok {
		if p.Role == middleware.RoleUser || req.UserID == "" {
			req.UserID = p.UserID
		}
	}

	booking, err := h.bookings.Create(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, booking)
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.ownedBooking(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
}

func (h *BookingHandler) ListByUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := ps.ByName("userId")
	if p, ok := middleware.PrincipalFrom(r.Context()); ok && p.Role == middleware.RoleUser && p.UserID != userID {
		httputil.WriteError(w, apperrors.Forbidden("Cannot list another user's bookings"))
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	bookings, total, err := h.bookings.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, bookings, total, limit, int(offset))
}

func (h *BookingHandler) ListByProperty(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	bookings, total, err := h.bookings.ListByProperty(r.Context(), ps.ByName("propertyId"), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, bookings, total, limit, int(offset))
}

// Confirm is the target of the emailed confirmation link. On success the
// guest is sent on to the frontend.
func (h *BookingHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	booking, err := h.lifecycle.Confirm(r.Context(), id, r.URL.Query().Get("token"))
	if err != nil {
		h.log.Info("Booking confirmation refused", "booking_id", id, "error", err)
		httputil.WriteError(w, err)
		return
	}

	target := h.frontendURL + confirmationSuccessPath + "?booking_id=" + url.QueryEscape(booking.ID)
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.StatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.lifecycle.UpdateStatus(r.Context(), ps.ByName("id"), &update)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
}

func (h *BookingHandler) Release(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if _, err := h.ownedBooking(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}

	booking, err := h.lifecycle.Release(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
}

// ownedBooking loads booking id, refusing guests who do not own it.
func (h *BookingHandler) ownedBooking(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := h.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if p, ok := middleware.PrincipalFrom(ctx); ok && p.Role == middleware.RoleUser && booking.UserID != p.UserID {
		return nil, apperrors.Forbidden("Booking belongs to another user")
	}
	return booking, nil
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	anyone := h.auth.Require()
	staff := h.auth.Require(middleware.RoleOwner, middleware.RoleAdmin)

	router.POST("/api/v1/bookings", anyone(h.Create))
	router.GET("/api/v1/bookings/id/:id", anyone(h.GetByID))
	router.GET("/api/v1/bookings/user/:userId", anyone(h.ListByUser))
	router.GET("/api/v1/bookings/property/:propertyId", staff(h.ListByProperty))
	router.GET("/api/v1/bookings/confirm/:id", h.Confirm)
	router.PATCH("/api/v1/bookings/status/:id", staff(h.UpdateStatus))
	router.PATCH("/api/v1/bookings/release/:id", anyone(h.Release))
	router.GET("/api/v1/properties/:id/availability", h.Availability)
}
