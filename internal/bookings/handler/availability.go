package handler

import (
	"net/http"

	httputil "staybook/pkg/http"

	"github.com/julienschmidt/httprouter"
)

// Availability lists the rooms of a property with the units still free
// between check_in and check_out.
func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	checkIn, checkOut, err := httputil.ExtractDateRange(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rooms, err := h.bookings.Availability(r.Context(), ps.ByName("id"), checkIn, checkOut)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, rooms)
}
