package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Bidding      BiddingConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"AGRIMANDI_APP_ENV" required:"true"`
	Port         string `envconfig:"AGRIMANDI_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"AGRIMANDI_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AGRIMANDI_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"AGRIMANDI_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"AGRIMANDI_DB_DSN"`
	Driver string `envconfig:"AGRIMANDI_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AGRIMANDI_DB_HOST"`
	LegacyPort     int    `envconfig:"AGRIMANDI_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AGRIMANDI_DB_USER"`
	LegacyPassword string `envconfig:"AGRIMANDI_DB_PASSWORD"`
	LegacyName     string `envconfig:"AGRIMANDI_DB_NAME"`
	LegacySSLMode  string `envconfig:"AGRIMANDI_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AGRIMANDI_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AGRIMANDI_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AGRIMANDI_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AGRIMANDI_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AGRIMANDI_REDIS_URL" required:"true"`
	Address      string        `envconfig:"AGRIMANDI_REDIS_ADDR"`
	Password     string        `envconfig:"AGRIMANDI_REDIS_PASSWORD"`
	DB           int           `envconfig:"AGRIMANDI_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AGRIMANDI_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AGRIMANDI_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AGRIMANDI_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AGRIMANDI_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AGRIMANDI_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type BiddingConfig struct {
	MaxSubmitRetries int           `envconfig:"AGRIMANDI_BIDDING_MAX_SUBMIT_RETRIES" default:"3"`
	CurrentBidTTL    time.Duration `envconfig:"AGRIMANDI_BIDDING_CURRENT_BID_TTL" default:"30s"`
	RateLimit        int64         `envconfig:"AGRIMANDI_BIDDING_RATE_LIMIT" default:"30"`
	RateWindow       time.Duration `envconfig:"AGRIMANDI_BIDDING_RATE_WINDOW" default:"1m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"AGRIMANDI_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"AGRIMANDI_AUTO_MIGRATE" default:"false"`
	DevFixtures bool `envconfig:"AGRIMANDI_DEV_FIXTURES" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"AGRIMANDI_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"AGRIMANDI_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"AGRIMANDI_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"AGRIMANDI_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	AuctionTopic             string `envconfig:"AGRIMANDI_PUBSUB_AUCTION_TOPIC" required:"true"`
	AuctionSubscription      string `envconfig:"AGRIMANDI_PUBSUB_AUCTION_SUBSCRIPTION" required:"true"`
	NotificationTopic        string `envconfig:"AGRIMANDI_PUBSUB_NOTIFICATION_TOPIC" default:"am-notification-events"`
	NotificationSubscription string `envconfig:"AGRIMANDI_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"AGRIMANDI_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"AGRIMANDI_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"AGRIMANDI_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
