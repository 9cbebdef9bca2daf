package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Cart         CartConfig
	Checkout     CheckoutConfig
	Shipping     ShippingConfig
	CORS         CORSConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Housekeeping HousekeepingConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Shipping.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GRAINGROVE_APP_ENV" required:"true"`
	Port         string `envconfig:"GRAINGROVE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GRAINGROVE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GRAINGROVE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"GRAINGROVE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"GRAINGROVE_DB_DSN"`
	Driver string `envconfig:"GRAINGROVE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GRAINGROVE_DB_HOST"`
	LegacyPort     int    `envconfig:"GRAINGROVE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GRAINGROVE_DB_USER"`
	LegacyPassword string `envconfig:"GRAINGROVE_DB_PASSWORD"`
	LegacyName     string `envconfig:"GRAINGROVE_DB_NAME"`
	LegacySSLMode  string `envconfig:"GRAINGROVE_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"GRAINGROVE_SQLITE_PATH" default:"graingrove.db"`

	MaxOpenConns    int           `envconfig:"GRAINGROVE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GRAINGROVE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GRAINGROVE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GRAINGROVE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GRAINGROVE_REDIS_URL"`
	Address      string        `envconfig:"GRAINGROVE_REDIS_ADDR"`
	Password     string        `envconfig:"GRAINGROVE_REDIS_PASSWORD"`
	DB           int           `envconfig:"GRAINGROVE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GRAINGROVE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GRAINGROVE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GRAINGROVE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GRAINGROVE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GRAINGROVE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GRAINGROVE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GRAINGROVE_AUTO_MIGRATE" default:"false"`
}

// CartConfig controls the durable cart snapshot kept per cart session.
type CartConfig struct {
	// SnapshotTTL expires idle carts. Zero keeps snapshots forever, like browser local storage.
	SnapshotTTL   time.Duration `envconfig:"GRAINGROVE_CART_SNAPSHOT_TTL" default:"720h"`
	SessionCookie string        `envconfig:"GRAINGROVE_CART_SESSION_COOKIE" default:"gg_session"`
	CookieSecure  bool          `envconfig:"GRAINGROVE_CART_COOKIE_SECURE" default:"false"`
}

type CheckoutConfig struct {
	LockTTL       time.Duration `envconfig:"GRAINGROVE_CHECKOUT_LOCK_TTL" default:"30s"`
	SubmitTimeout time.Duration `envconfig:"GRAINGROVE_CHECKOUT_SUBMIT_TIMEOUT" default:"20s"`
	StateTTL      time.Duration `envconfig:"GRAINGROVE_CHECKOUT_STATE_TTL" default:"24h"`
}

// ShippingConfig holds the flat-rate shipping policy. Amounts are decimal strings.
type ShippingConfig struct {
	FreeThreshold  string `envconfig:"GRAINGROVE_SHIPPING_FREE_THRESHOLD" default:"50.00"`
	Surcharge      string `envconfig:"GRAINGROVE_SHIPPING_SURCHARGE" default:"10.00"`
	CurrencyCode   string `envconfig:"GRAINGROVE_CURRENCY_CODE" default:"USD"`
	CurrencySymbol string `envconfig:"GRAINGROVE_CURRENCY_SYMBOL" default:"$"`
}

// Threshold returns the subtotal at or above which shipping is free.
func (s ShippingConfig) Threshold() decimal.Decimal {
	return decimal.RequireFromString(s.FreeThreshold)
}

// SurchargeAmount returns the flat shipping charge applied below the threshold.
func (s ShippingConfig) SurchargeAmount() decimal.Decimal {
	return decimal.RequireFromString(s.Surcharge)
}

func (s ShippingConfig) validate() error {
	threshold, err := decimal.NewFromString(s.FreeThreshold)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", EnvShippingFreeThreshold, err)
	}
	surcharge, err := decimal.NewFromString(s.Surcharge)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", EnvShippingSurcharge, err)
	}
	if threshold.IsNegative() || surcharge.IsNegative() {
		return fmt.Errorf("shipping amounts must be non-negative")
	}
	return nil
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"GRAINGROVE_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"GRAINGROVE_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic string `envconfig:"GRAINGROVE_PUBSUB_ORDERS_TOPIC" default:"gg-order-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"GRAINGROVE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"GRAINGROVE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"GRAINGROVE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// HousekeepingConfig drives the cron worker that purges delivered outbox rows.
type HousekeepingConfig struct {
	Interval        time.Duration `envconfig:"GRAINGROVE_HOUSEKEEPING_INTERVAL" default:"1h"`
	LockTTL         time.Duration `envconfig:"GRAINGROVE_HOUSEKEEPING_LOCK_TTL" default:"30m"`
	OutboxRetention time.Duration `envconfig:"GRAINGROVE_OUTBOX_RETENTION" default:"720h"`
	DLQRetention    time.Duration `envconfig:"GRAINGROVE_OUTBOX_DLQ_RETENTION" default:"2160h"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DriverSQLite
		return nil
	}
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
