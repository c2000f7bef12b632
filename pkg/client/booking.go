package client

import (
	"context"
	"fmt"
	"net/url"
	"staybook/pkg/model"
	"time"
)

// BookingClient calls the reservation endpoints of a running bookings
// service.
type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseUrl string) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

// As returns a client that authenticates with token.
func (c *BookingClient) As(token string) *BookingClient {
	return &BookingClient{httpClient: c.httpClient.WithToken(token)}
}

func (c *BookingClient) HTTP() *HttpClient {
	return c.httpClient
}

func (c *BookingClient) Create(ctx context.Context, req *model.BookingRequest) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/bookings", req)
}

func (c *BookingClient) GetByID(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/v1/bookings/id/"+url.PathEscape(id))
}

func (c *BookingClient) ListByUser(ctx context.Context, userID string, limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/bookings/user/%s?limit=%d&offset=%d", url.PathEscape(userID), limit, offset)
	return c.httpClient.GET(ctx, path)
}

func (c *BookingClient) ListByProperty(ctx context.Context, propertyID string, limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/bookings/property/%s?limit=%d&offset=%d", url.PathEscape(propertyID), limit, offset)
	return c.httpClient.GET(ctx, path)
}

func (c *BookingClient) Confirm(ctx context.Context, id, token string) (*Response, error) {
	path := "/api/v1/bookings/confirm/" + url.PathEscape(id) + "?token=" + url.QueryEscape(token)
	return c.httpClient.GET(ctx, path)
}

func (c *BookingClient) UpdateStatus(ctx context.Context, id, status string) (*Response, error) {
	return c.httpClient.PATCH(ctx, "/api/v1/bookings/status/"+url.PathEscape(id), model.StatusUpdate{Status: status})
}

func (c *BookingClient) Release(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.PATCH(ctx, "/api/v1/bookings/release/"+url.PathEscape(id), nil)
}

func (c *BookingClient) Availability(ctx context.Context, propertyID string, checkIn, checkOut time.Time) (*Response, error) {
	q := url.Values{}
	q.Set("check_in", checkIn.UTC().Format(time.RFC3339))
	q.Set("check_out", checkOut.UTC().Format(time.RFC3339))
	return c.httpClient.GET(ctx, "/api/v1/properties/"+url.PathEscape(propertyID)+"/availability?"+q.Encode())
}

func (c *BookingClient) Lock(ctx context.Context, req *model.TempLockRequest) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/templocks", req)
}

func (c *BookingClient) IsLocked(ctx context.Context, roomID string) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/v1/templocks/"+url.PathEscape(roomID))
}

func (c *BookingClient) ReleaseLock(ctx context.Context, roomID string) (*Response, error) {
	return c.httpClient.DELETE(ctx, "/api/v1/templocks/"+url.PathEscape(roomID))
}

func (c *BookingClient) VerifyDiscount(ctx context.Context, req *model.DiscountRequest) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/discounts/verify", req)
}

func (c *BookingClient) ApplyDiscount(ctx context.Context, req *model.DiscountRequest) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/discounts/apply", req)
}
