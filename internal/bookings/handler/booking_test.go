package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	apperrors "staybook/pkg/errors"
	"staybook/pkg/logger"
	"staybook/pkg/middleware"
	"staybook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBookingHandler(bookings *mockBookingService, lifecycle *mockLifecycleService, authEnabled bool) *BookingHandler {
	if bookings == nil {
		bookings = &mockBookingService{}
	}
	if lifecycle == nil {
		lifecycle = &mockLifecycleService{}
	}
	return NewBookingHandler(bookings, lifecycle, authenticator(authEnabled), "https://app.test", logger.Discard())
}

func TestCreate_InvalidBody(t *testing.T) {
	h := newBookingHandler(nil, nil, false)

	rec := serve(h, http.MethodPost, "/api/v1/bookings", "{not json", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreate_BindsGuestToToken(t *testing.T) {
	var got *model.BookingRequest
	bookings := &mockBookingService{
		createFunc: func(_ context.Context, req *model.BookingRequest) (*model.Booking, error) {
			got = req
			return &model.Booking{ID: "b1", UserID: req.UserID, Status: model.BookingStatusPending}, nil
		},
	}
	h := newBookingHandler(bookings, nil, true)

	rec := serve(h, http.MethodPost, "/api/v1/bookings", `{"user_id":"someone-else","rooms":[]}`, token(t, "guest-1", middleware.RoleUser))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "guest-1", got.UserID)

	var body struct {
		Data model.Booking `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "b1", body.Data.ID)
}

func TestCreate_StaffMayBookOnBehalf(t *testing.T) {
	var got string
	bookings := &mockBookingService{
		createFunc: func(_ context.Context, req *model.BookingRequest) (*model.Booking, error) {
			got = req.UserID
			return &model.Booking{ID: "b1"}, nil
		},
	}
	h := newBookingHandler(bookings, nil, true)

	rec := serve(h, http.MethodPost, "/api/v1/bookings", `{"user_id":"guest-9"}`, token(t, "admin-1", middleware.RoleAdmin))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "guest-9", got)
}

func TestCreate_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		code string
	}{
		{"capacity", apperrors.Capacity("r1", 1, 0), http.StatusConflict, apperrors.CodeCapacity},
		{"validation", apperrors.Validation("bad dates", nil), http.StatusUnprocessableEntity, apperrors.CodeValidation},
		{"transient", apperrors.Transient("db", nil), http.StatusServiceUnavailable, apperrors.CodeTransient},
		{"integrity", apperrors.Integrity("overbooked", nil), http.StatusInternalServerError, apperrors.CodeIntegrity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookings := &mockBookingService{
				createFunc: func(context.Context, *model.BookingRequest) (*model.Booking, error) { return nil, tt.err },
			}
			h := newBookingHandler(bookings, nil, false)

			rec := serve(h, http.MethodPost, "/api/v1/bookings", `{}`, "")

			assert.Equal(t, tt.want, rec.Code)
			var body struct {
				Code string `json:"code"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestRoutes_RequireAuthentication(t *testing.T) {
	h := newBookingHandler(nil, nil, true)

	rec := serve(h, http.MethodPost, "/api/v1/bookings", `{}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(h, http.MethodGet, "/api/v1/bookings/property/p1", "", token(t, "guest-1", middleware.RoleUser))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(h, http.MethodPatch, "/api/v1/bookings/status/b1", `{"status":"cancelled"}`, token(t, "guest-1", middleware.RoleUser))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetByID_GuestSeesOnlyOwnBookings(t *testing.T) {
	bookings := &mockBookingService{
		getByIDFunc: func(_ context.Context, id string) (*model.Booking, error) {
			return &model.Booking{ID: id, UserID: "guest-1"}, nil
		},
	}
	h := newBookingHandler(bookings, nil, true)

	rec := serve(h, http.MethodGet, "/api/v1/bookings/id/b1", "", token(t, "guest-1", middleware.RoleUser))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h, http.MethodGet, "/api/v1/bookings/id/b1", "", token(t, "guest-2", middleware.RoleUser))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(h, http.MethodGet, "/api/v1/bookings/id/b1", "", token(t, "owner-1", middleware.RoleOwner))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetByID_NotFound(t *testing.T) {
	bookings := &mockBookingService{
		getByIDFunc: func(_ context.Context, id string) (*model.Booking, error) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		},
	}
	h := newBookingHandler(bookings, nil, false)

	rec := serve(h, http.MethodGet, "/api/v1/bookings/id/missing", "", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetByID_HidesConfirmationToken(t *testing.T) {
	bookings := &mockBookingService{
		getByIDFunc: func(_ context.Context, id string) (*model.Booking, error) {
			return &model.Booking{ID: id, ConfirmationToken: "secret-token"}, nil
		},
	}
	h := newBookingHandler(bookings, nil, false)

	rec := serve(h, http.MethodGet, "/api/v1/bookings/id/b1", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-token")
}

func TestListByUser(t *testing.T) {
	var gotLimit int
	var gotOffset int64
	bookings := &mockBookingService{
		listByUserFunc: func(_ context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error) {
			gotLimit, gotOffset = limit, offset
			return []*model.Booking{{ID: "b1", UserID: userID}}, 7, nil
		},
	}
	h := newBookingHandler(bookings, nil, true)

	rec := serve(h, http.MethodGet, "/api/v1/bookings/user/guest-1?limit=5&offset=5", "", token(t, "guest-1", middleware.RoleUser))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, gotLimit)
	assert.Equal(t, int64(5), gotOffset)
	var body struct {
		TotalCount int64 `json:"total_count"`
		Limit      int   `json:"limit"`
		Offset     int   `json:"offset"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, int64(7), body.TotalCount)
	assert.Equal(t, 5, body.Offset)

	rec = serve(h, http.MethodGet, "/api/v1/bookings/user/guest-2", "", token(t, "guest-1", middleware.RoleUser))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(h, http.MethodGet, "/api/v1/bookings/user/guest-1?limit=abc", "", token(t, "guest-1", middleware.RoleUser))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListByProperty_Staff(t *testing.T) {
	var gotProperty string
	bookings := &mockBookingService{
		listByPropertyFunc: func(_ context.Context, propertyID string, limit int, offset int64) ([]*model.Booking, int64, error) {
			gotProperty = propertyID
			return nil, 0, nil
		},
	}
	h := newBookingHandler(bookings, nil, true)

	rec := serve(h, http.MethodGet, "/api/v1/bookings/property/p1", "", token(t, "owner-1", middleware.RoleOwner))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p1", gotProperty)
}

func TestConfirm_RedirectsToFrontend(t *testing.T) {
	var gotID, gotToken string
	lifecycle := &mockLifecycleService{
		confirmFunc: func(_ context.Context, id, token string) (*model.Booking, error) {
			gotID, gotToken = id, token
			return &model.Booking{ID: id, Status: model.BookingStatusConfirmed}, nil
		},
	}
	h := newBookingHandler(nil, lifecycle, true)

	rec := serve(h, http.MethodGet, "/api/v1/bookings/confirm/b1?token=abc-123", "", "")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://app.test/confirmation-success?booking_id=b1", rec.Header().Get("Location"))
	assert.Equal(t, "b1", gotID)
	assert.Equal(t, "abc-123", gotToken)
}

func TestConfirm_UsedToken(t *testing.T) {
	lifecycle := &mockLifecycleService{
		confirmFunc: func(context.Context, string, string) (*model.Booking, error) {
			return nil, apperrors.Validation("Invalid or already used confirmation token", nil)
		},
	}
	h := newBookingHandler(nil, lifecycle, false)

	rec := serve(h, http.MethodGet, "/api/v1/bookings/confirm/b1?token=abc", "", "")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpdateStatus(t *testing.T) {
	var got *model.StatusUpdate
	lifecycle := &mockLifecycleService{
		updateStatusFunc: func(_ context.Context, id string, update *model.StatusUpdate) (*model.Booking, error) {
			got = update
			return &model.Booking{ID: id, Status: update.Status}, nil
		},
	}
	h := newBookingHandler(nil, lifecycle, true)

	rec := serve(h, http.MethodPatch, "/api/v1/bookings/status/b1", `{"status":"cancelled"}`, token(t, "admin-1", middleware.RoleAdmin))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.BookingStatusCancelled, got.Status)

	rec = serve(h, http.MethodPatch, "/api/v1/bookings/status/b1", `[`, token(t, "admin-1", middleware.RoleAdmin))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRelease(t *testing.T) {
	released := 0
	bookings := &mockBookingService{
		getByIDFunc: func(_ context.Context, id string) (*model.Booking, error) {
			return &model.Booking{ID: id, UserID: "guest-1", Status: model.BookingStatusPending}, nil
		},
	}
	lifecycle := &mockLifecycleService{
		releaseFunc: func(_ context.Context, id string) (*model.Booking, error) {
			released++
			return &model.Booking{ID: id, Status: model.BookingStatusCancelled}, nil
		},
	}
	h := newBookingHandler(bookings, lifecycle, true)

	rec := serve(h, http.MethodPatch, "/api/v1/bookings/release/b1", "", token(t, "guest-2", middleware.RoleUser))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, released)

	rec = serve(h, http.MethodPatch, "/api/v1/bookings/release/b1", "", token(t, "guest-1", middleware.RoleUser))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, released)
}

func TestRelease_ConfirmedConflict(t *testing.T) {
	bookings := &mockBookingService{
		getByIDFunc: func(_ context.Context, id string) (*model.Booking, error) {
			return &model.Booking{ID: id, Status: model.BookingStatusConfirmed}, nil
		},
	}
	lifecycle := &mockLifecycleService{
		releaseFunc: func(context.Context, string) (*model.Booking, error) {
			return nil, apperrors.Conflict("Confirmed bookings cannot be released")
		},
	}
	h := newBookingHandler(bookings, lifecycle, false)

	rec := serve(h, http.MethodPatch, "/api/v1/bookings/release/b1", "", "")

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAvailability(t *testing.T) {
	var gotIn, gotOut time.Time
	bookings := &mockBookingService{
		availabilityFunc: func(_ context.Context, propertyID string, checkIn, checkOut time.Time) ([]model.RoomAvailability, error) {
			gotIn, gotOut = checkIn, checkOut
			return []model.RoomAvailability{{RoomID: "r1", TotalRoom: 2, Remaining: 1}}, nil
		},
	}
	h := newBookingHandler(bookings, nil, true)

	rec := serve(h, http.MethodGet, "/api/v1/properties/p1/availability?check_in=2030-07-10&check_out=2030-07-12T00:00:00Z", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotIn.Equal(time.Date(2030, 7, 10, 0, 0, 0, 0, time.UTC)))
	assert.True(t, gotOut.Equal(time.Date(2030, 7, 12, 0, 0, 0, 0, time.UTC)))

	var body struct {
		Data []model.RoomAvailability `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, 1, body.Data[0].Remaining)
}

func TestAvailability_BadDates(t *testing.T) {
	h := newBookingHandler(&mockBookingService{}, nil, false)

	rec := serve(h, http.MethodGet, "/api/v1/properties/p1/availability?check_in=2030-07-10", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h, http.MethodGet, "/api/v1/properties/p1/availability?check_in=tomorrow&check_out=2030-07-12", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
