package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvJWTSecret = "JWT_SECRET"
	EnvJWTIssuer = "JWT_ISSUER"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvLockBackend   = "LOCK_BACKEND"
	EnvLockTTL       = "LOCK_TTL"
	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvSweepInterval         = "SWEEP_INTERVAL"
	EnvPendingGracePeriod    = "PENDING_GRACE_PERIOD"
	EnvSweepBatchSize        = "SWEEP_BATCH_SIZE"
	EnvDiscountPurgeInterval = "DISCOUNT_PURGE_INTERVAL"
	EnvJobTimeout            = "JOB_TIMEOUT"

	EnvKafkaEnabled        = "KAFKA_ENABLED"
	EnvNotificationsTopic  = "KAFKA_NOTIFICATIONS_TOPIC"
	EnvPaymentsTopic       = "KAFKA_PAYMENTS_TOPIC"
	EnvPaymentsGroupID     = "KAFKA_PAYMENTS_GROUP_ID"
	EnvPaymentsDLQTopic    = "KAFKA_PAYMENTS_DLQ_TOPIC"
	EnvNotificationsSource = "KAFKA_EVENT_SOURCE"

	EnvFrontendURL   = "FRONTEND_URL"
	EnvPublicBaseURL = "PUBLIC_BASE_URL"
)
