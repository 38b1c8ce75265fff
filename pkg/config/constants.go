package config

// EnvPrefix is the envconfig prefix for every variable the service reads.
const EnvPrefix = "AGRIMANDI"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "AGRIMANDI_APP_ENV"
	EnvPort     = "AGRIMANDI_APP_PORT"
	EnvLogLevel = "AGRIMANDI_LOG_LEVEL"

	EnvDBDSN      = "AGRIMANDI_DB_DSN"
	EnvDBHost     = "AGRIMANDI_DB_HOST"
	EnvDBPort     = "AGRIMANDI_DB_PORT"
	EnvDBUser     = "AGRIMANDI_DB_USER"
	EnvDBPassword = "AGRIMANDI_DB_PASSWORD"
	EnvDBName     = "AGRIMANDI_DB_NAME"

	EnvRedisURL = "AGRIMANDI_REDIS_URL"

	EnvGCPProjectID = "AGRIMANDI_GCP_PROJECT_ID"

	EnvPubSubAuctionTopic      = "AGRIMANDI_PUBSUB_AUCTION_TOPIC"
	EnvPubSubAuctionSub        = "AGRIMANDI_PUBSUB_AUCTION_SUBSCRIPTION"
	EnvPubSubNotificationTopic = "AGRIMANDI_PUBSUB_NOTIFICATION_TOPIC"
	EnvPubSubNotificationSub   = "AGRIMANDI_PUBSUB_NOTIFICATION_SUBSCRIPTION"

	EnvDevFixtures = "AGRIMANDI_DEV_FIXTURES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
