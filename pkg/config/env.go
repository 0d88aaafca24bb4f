package config

// EnvPrefix is the envconfig prefix; every field carries an explicit name so the
// prefix only matters for fields added without one.
const EnvPrefix = "BENGKEL"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "BENGKEL_APP_ENV"
	EnvPort     = "BENGKEL_APP_PORT"
	EnvLogLevel = "BENGKEL_LOG_LEVEL"
	EnvTimezone = "BENGKEL_TIMEZONE"
	EnvCORS     = "BENGKEL_CORS_ORIGINS"

	EnvDBDSN    = "BENGKEL_DB_DSN"
	EnvDBDriver = "BENGKEL_DB_DRIVER"
	EnvDBHost   = "BENGKEL_DB_HOST"
	EnvDBUser   = "BENGKEL_DB_USER"
	EnvDBName   = "BENGKEL_DB_NAME"

	EnvRedisURL = "BENGKEL_REDIS_URL"

	EnvAutoMigrate    = "BENGKEL_AUTO_MIGRATE"
	EnvIdempotencyTTL = "BENGKEL_IDEMPOTENCY_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
