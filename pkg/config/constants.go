package config

// EnvPrefix is passed to envconfig; individual fields pin explicit names so
// the prefix mostly documents intent.
const EnvPrefix = "ZELORA"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced from code and tests.
const (
	EnvAppEnv     = "ZELORA_APP_ENV"
	EnvPort       = "ZELORA_APP_PORT"
	EnvDBDSN      = "ZELORA_DB_DSN"
	EnvDBHost     = "ZELORA_DB_HOST"
	EnvDBUser     = "ZELORA_DB_USER"
	EnvDBName     = "ZELORA_DB_NAME"
	EnvRedisURL   = "ZELORA_REDIS_URL"
	EnvJWTSecret  = "ZELORA_JWT_SECRET"
	EnvJWTIssuer  = "ZELORA_JWT_ISSUER"
	EnvJWTExpMins = "ZELORA_JWT_EXPIRATION_MINUTES"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
