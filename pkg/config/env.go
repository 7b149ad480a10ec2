package config

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv    = "STOREFRONT_APP_ENV"
	EnvPort      = "STOREFRONT_APP_PORT"
	EnvDBDSN     = "STOREFRONT_DB_DSN"
	EnvDBHost    = "STOREFRONT_DB_HOST"
	EnvDBUser    = "STOREFRONT_DB_USER"
	EnvDBName    = "STOREFRONT_DB_NAME"
	EnvRedisURL  = "STOREFRONT_REDIS_URL"
	EnvJWTSecret = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer = "STOREFRONT_JWT_ISSUER"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
