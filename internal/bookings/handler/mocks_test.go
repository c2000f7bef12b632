package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"staybook/pkg/logger"
	"staybook/pkg/middleware"
	"staybook/pkg/model"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	testSecret = "handler-test-secret"
	testIssuer = "staybook"
)

type mockBookingService struct {
	createFunc         func(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	getByIDFunc        func(ctx context.Context, id string) (*model.Booking, error)
	listByUserFunc     func(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error)
	listByPropertyFunc func(ctx context.Context, propertyID string, limit int, offset int64) ([]*model.Booking, int64, error)
	availabilityFunc   func(ctx context.Context, propertyID string, checkIn, checkOut time.Time) ([]model.RoomAvailability, error)
}

func (m *mockBookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	return m.createFunc(ctx, req)
}

func (m *mockBookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockBookingService) ListByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	return m.listByUserFunc(ctx, userID, limit, offset)
}

func (m *mockBookingService) ListByProperty(ctx context.Context, propertyID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	return m.listByPropertyFunc(ctx, propertyID, limit, offset)
}

func (m *mockBookingService) Availability(ctx context.Context, propertyID string, checkIn, checkOut time.Time) ([]model.RoomAvailability, error) {
	return m.availabilityFunc(ctx, propertyID, checkIn, checkOut)
}

type mockLifecycleService struct {
	confirmFunc      func(ctx context.Context, id, token string) (*model.Booking, error)
	updateStatusFunc func(ctx context.Context, id string, update *model.StatusUpdate) (*model.Booking, error)
	releaseFunc      func(ctx context.Context, id string) (*model.Booking, error)
	markPaidFunc     func(ctx context.Context, id string) (*model.Booking, error)
}

func (m *mockLifecycleService) Confirm(ctx context.Context, id, token string) (*model.Booking, error) {
	return m.confirmFunc(ctx, id, token)
}

func (m *mockLifecycleService) UpdateStatus(ctx context.Context, id string, update *model.StatusUpdate) (*model.Booking, error) {
	return m.updateStatusFunc(ctx, id, update)
}

func (m *mockLifecycleService) Release(ctx context.Context, id string) (*model.Booking, error) {
	return m.releaseFunc(ctx, id)
}

func (m *mockLifecycleService) MarkPaid(ctx context.Context, id string) (*model.Booking, error) {
	return m.markPaidFunc(ctx, id)
}

type mockTempLockService struct {
	lockFunc     func(ctx context.Context, req *model.TempLockRequest) (*model.TempLock, error)
	isLockedFunc func(ctx context.Context, roomID string) (bool, error)
	releaseFunc  func(ctx context.Context, roomID string) error
}

func (m *mockTempLockService) Lock(ctx context.Context, req *model.TempLockRequest) (*model.TempLock, error) {
	return m.lockFunc(ctx, req)
}

func (m *mockTempLockService) IsLocked(ctx context.Context, roomID string) (bool, error) {
	return m.isLockedFunc(ctx, roomID)
}

func (m *mockTempLockService) Release(ctx context.Context, roomID string) error {
	return m.releaseFunc(ctx, roomID)
}

type mockDiscountService struct {
	verifyFunc func(ctx context.Context, req *model.DiscountRequest) (*model.Discount, error)
	applyFunc  func(ctx context.Context, req *model.DiscountRequest) (*model.Discount, error)
}

func (m *mockDiscountService) FindActive(context.Context, string, string) (*model.Discount, error) {
	return nil, nil
}

func (m *mockDiscountService) Verify(ctx context.Context, req *model.DiscountRequest) (*model.Discount, error) {
	return m.verifyFunc(ctx, req)
}

func (m *mockDiscountService) Apply(ctx context.Context, req *model.DiscountRequest) (*model.Discount, error) {
	return m.applyFunc(ctx, req)
}

func (m *mockDiscountService) PurgeExpired(context.Context) (int64, error) {
	return 0, nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context, *readpref.ReadPref) error { return p.err }

func authenticator(enabled bool) *middleware.Authenticator {
	secret := ""
	if enabled {
		secret = testSecret
	}
	return middleware.NewAuthenticator(secret, testIssuer, logger.Discard())
}

func token(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := middleware.IssueToken(testSecret, testIssuer, userID, role, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	return tok
}

type routes interface {
	RegisterRoutes(*httprouter.Router)
}

// serve routes one request through a fresh router.
func serve(h routes, method, target, body, bearer string) *httptest.ResponseRecorder {
	router := httprouter.New()
	h.RegisterRoutes(router)

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
