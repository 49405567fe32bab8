package config

const EnvPrefix = "SPRINGZ"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "SPRINGZ_DB_DSN"
	EnvDBHost = "SPRINGZ_DB_HOST"
	EnvDBUser = "SPRINGZ_DB_USER"
	EnvDBName = "SPRINGZ_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
