package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017/?replicaSet=rs0"
	DefaultMongoDatabaseName = "staybook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultJWTIssuer = "staybook"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	LockBackendMongo = "mongo"
	LockBackendRedis = "redis"

	DefaultLockBackend = LockBackendMongo
	DefaultLockTTL     = 15 * time.Minute
	DefaultRedisAddr   = "localhost:6379"
	DefaultRedisDB     = 0

	DefaultSweepInterval         = 1 * time.Hour
	DefaultPendingGracePeriod    = 24 * time.Hour
	DefaultSweepBatchSize        = 500
	DefaultDiscountPurgeInterval = 24 * time.Hour
	DefaultJobTimeout            = 5 * time.Minute

	DefaultKafkaEnabled        = false
	DefaultNotificationsTopic  = "notifications.email"
	DefaultPaymentsTopic       = "payments.outcomes"
	DefaultPaymentsGroupID     = "staybook-bookings"
	DefaultPaymentsDLQTopic    = "payments.outcomes.dlq"
	DefaultNotificationsSource = "staybook-bookings"

	DefaultFrontendURL   = "http://localhost:3000"
	DefaultPublicBaseURL = "http://localhost:8080"

	DefaultPaginationLimit = 100
)
