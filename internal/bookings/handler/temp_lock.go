package handler

import (
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

type LockStatusResponse struct {
	RoomID string `json:"room_id"`
	Locked bool   `json:"locked"`
}

type TempLockHandler struct {
	service service.TempLockService
	auth    *middleware.Authenticator
	log     *logger.Logger
}

func NewTempLockHandler(service service.TempLockService, auth *middleware.Authenticator, log *logger.Logger) *TempLockHandler {
	return &TempLockHandler{
		service: service,
		auth:    auth,
		log:     log,
	}
}

func (h *TempLockHandler) Lock(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.TempLockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}
	if p, ok := middleware.PrincipalFrom(r.Context()); ok {
		req.UserID = p.UserID
	}

	lock, err := h.service.Lock(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.log.Debug("Temp lock placed", "room_id", lock.RoomID, "user_id", lock.UserID, "expires_at", lock.ExpiresAt)
	httputil.WriteCreated(w, lock)
}

func (h *TempLockHandler) IsLocked(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID := ps.ByName("roomId")

	locked, err := h.service.IsLocked(r.Context(), roomID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, LockStatusResponse{RoomID: roomID, Locked: locked})
}

func (h *TempLockHandler) Release(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Release(r.Context(), ps.ByName("roomId")); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *TempLockHandler) RegisterRoutes(router *httprouter.Router) {
	anyone := h.auth.Require()

	router.POST("/api/v1/templocks", anyone(h.Lock))
	router.GET("/api/v1/templocks/:roomId", anyone(h.IsLocked))
	router.DELETE("/api/v1/templocks/:roomId", anyone(h.Release))
}
