package config

const (
	EnvPrefix = "GRAINGROVE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvAppEnv   = "GRAINGROVE_APP_ENV"
	EnvPort     = "GRAINGROVE_APP_PORT"
	EnvLogLevel = "GRAINGROVE_LOG_LEVEL"

	EnvDBDSN  = "GRAINGROVE_DB_DSN"
	EnvDBHost = "GRAINGROVE_DB_HOST"
	EnvDBUser = "GRAINGROVE_DB_USER"
	EnvDBName = "GRAINGROVE_DB_NAME"

	EnvUseSQLite = "GRAINGROVE_USE_SQLITE"

	EnvRedisURL = "GRAINGROVE_REDIS_URL"

	EnvShippingFreeThreshold = "GRAINGROVE_SHIPPING_FREE_THRESHOLD"
	EnvShippingSurcharge     = "GRAINGROVE_SHIPPING_SURCHARGE"
	EnvCurrencyCode          = "GRAINGROVE_CURRENCY_CODE"
	EnvCurrencySymbol        = "GRAINGROVE_CURRENCY_SYMBOL"

	EnvGCPProjectID      = "GRAINGROVE_GCP_PROJECT_ID"
	EnvPubSubOrdersTopic = "GRAINGROVE_PUBSUB_ORDERS_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
