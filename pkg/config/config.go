package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Shipping      ShippingConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
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
	Env          string `envconfig:"SPRINGZ_APP_ENV" required:"true"`
	Port         string `envconfig:"SPRINGZ_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SPRINGZ_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SPRINGZ_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SPRINGZ_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SPRINGZ_DB_DSN"`
	Driver string `envconfig:"SPRINGZ_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SPRINGZ_DB_HOST"`
	LegacyPort     int    `envconfig:"SPRINGZ_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SPRINGZ_DB_USER"`
	LegacyPassword string `envconfig:"SPRINGZ_DB_PASSWORD"`
	LegacyName     string `envconfig:"SPRINGZ_DB_NAME"`
	LegacySSLMode  string `envconfig:"SPRINGZ_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SPRINGZ_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SPRINGZ_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SPRINGZ_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SPRINGZ_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SPRINGZ_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SPRINGZ_REDIS_ADDR"`
	Password     string        `envconfig:"SPRINGZ_REDIS_PASSWORD"`
	DB           int           `envconfig:"SPRINGZ_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SPRINGZ_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SPRINGZ_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SPRINGZ_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SPRINGZ_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SPRINGZ_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SPRINGZ_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SPRINGZ_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SPRINGZ_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SPRINGZ_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SPRINGZ_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SPRINGZ_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SPRINGZ_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SPRINGZ_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SPRINGZ_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SPRINGZ_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SPRINGZ_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SPRINGZ_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SPRINGZ_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SPRINGZ_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SPRINGZ_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SPRINGZ_AUTO_MIGRATE" default:"false"`
}

// ShippingConfig controls the flat shipping fee applied at checkout.
// Amounts are whole rupees.
type ShippingConfig struct {
	FlatFeeInINR          int `envconfig:"SPRINGZ_SHIPPING_FLAT_FEE_INR" default:"49"`
	FreeShippingThreshold int `envconfig:"SPRINGZ_SHIPPING_FREE_THRESHOLD_INR" default:"999"`
	ExpressSurchargeInINR int `envconfig:"SPRINGZ_SHIPPING_EXPRESS_SURCHARGE_INR" default:"99"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SPRINGZ_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"SPRINGZ_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SPRINGZ_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"SPRINGZ_PUBSUB_ORDERS_TOPIC" required:"true"`
	OrdersSubscription string `envconfig:"SPRINGZ_PUBSUB_ORDERS_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SPRINGZ_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SPRINGZ_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SPRINGZ_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
