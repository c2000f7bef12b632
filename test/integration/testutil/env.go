//go:build integration

package testutil

import (
	"context"
	"fmt"
	"os"
	"staybook/pkg/client"
	"staybook/pkg/middleware"
	"testing"
	"time"
)

// TestEnv points the suite at a running bookings service and the database it
// uses.
type TestEnv struct {
	MongoURI     string
	DatabaseName string
	ServerURL    string
	JWTSecret    string
	JWTIssuer    string
}

func NewTestEnv() *TestEnv {
	serverPort := getEnv("TEST_SERVER_PORT", "8080")

	return &TestEnv{
		MongoURI:     getEnv("TEST_MONGO_URI", DefaultMongoURI),
		DatabaseName: getEnv("TEST_DB_NAME", DefaultDatabaseName),
		ServerURL:    getEnv("TEST_SERVER_URL", fmt.Sprintf("http://localhost:%s", serverPort)),
		JWTSecret:    os.Getenv("TEST_JWT_SECRET"),
		JWTIssuer:    getEnv("TEST_JWT_ISSUER", "staybook"),
	}
}

func (e *TestEnv) Setup(t *testing.T) (*MongoHelper, *client.BookingClient) {
	t.Helper()

	mongo := NewMongoHelper(t, e.MongoURI, e.DatabaseName)
	mongo.CleanDatabase(t)

	api := client.NewBookingClient(e.ServerURL)
	if err := api.HTTP().WaitForHealthy(context.Background(), DefaultHealthCheckTimeout); err != nil {
		t.Fatalf("bookings service not reachable: %v", err)
	}

	return mongo, api
}

func (e *TestEnv) Cleanup(t *testing.T, mongo *MongoHelper) {
	t.Helper()

	if mongo != nil {
		mongo.CleanDatabase(t)
		mongo.Close(t)
	}
}

// Token signs a bearer token for userID when the service runs with auth
// enabled. It returns "" otherwise, which the client sends as no header.
func (e *TestEnv) Token(t *testing.T, userID, role string) string {
	t.Helper()
	if e.JWTSecret == "" {
		return ""
	}
	token, err := middleware.IssueToken(e.JWTSecret, e.JWTIssuer, userID, role, time.Hour)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

const (
	DefaultHealthCheckTimeout = 30 * time.Second
)
