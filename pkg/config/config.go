package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = "BAXEINWEAR"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv       = "BAXEINWEAR_APP_ENV"
	EnvPort         = "BAXEINWEAR_APP_PORT"
	EnvDBDSN        = "BAXEINWEAR_DB_DSN"
	EnvDBHost       = "BAXEINWEAR_DB_HOST"
	EnvDBUser       = "BAXEINWEAR_DB_USER"
	EnvDBName       = "BAXEINWEAR_DB_NAME"
	EnvRedisURL     = "BAXEINWEAR_REDIS_URL"
	EnvJWTSecret    = "BAXEINWEAR_JWT_SECRET"
	EnvJWTIssuer    = "BAXEINWEAR_JWT_ISSUER"
	EnvJWTExpMins   = "BAXEINWEAR_JWT_EXPIRATION_MINUTES"
	EnvShippingFee  = "BAXEINWEAR_CHECKOUT_SHIPPING_FEE"
	EnvUseSQLite    = "BAXEINWEAR_USE_SQLITE"
	EnvRequireToken = "BAXEINWEAR_REQUIRE_AUTH_TOKEN"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Checkout      CheckoutConfig
	Idempotency   IdempotencyConfig
	CORS          CORSConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if cfg.Checkout.ShippingFee < 0 {
		return nil, fmt.Errorf("%s must not be negative", EnvShippingFee)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BAXEINWEAR_APP_ENV" required:"true"`
	Port         string `envconfig:"BAXEINWEAR_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"BAXEINWEAR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BAXEINWEAR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DBConfig struct {
	DSN    string `envconfig:"BAXEINWEAR_DB_DSN"`
	Driver string `envconfig:"BAXEINWEAR_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BAXEINWEAR_DB_HOST"`
	LegacyPort     int    `envconfig:"BAXEINWEAR_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BAXEINWEAR_DB_USER"`
	LegacyPassword string `envconfig:"BAXEINWEAR_DB_PASSWORD"`
	LegacyName     string `envconfig:"BAXEINWEAR_DB_NAME"`
	LegacySSLMode  string `envconfig:"BAXEINWEAR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BAXEINWEAR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BAXEINWEAR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BAXEINWEAR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BAXEINWEAR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BAXEINWEAR_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BAXEINWEAR_REDIS_ADDR"`
	Password     string        `envconfig:"BAXEINWEAR_REDIS_PASSWORD"`
	DB           int           `envconfig:"BAXEINWEAR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BAXEINWEAR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BAXEINWEAR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BAXEINWEAR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BAXEINWEAR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BAXEINWEAR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"BAXEINWEAR_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"BAXEINWEAR_JWT_ISSUER" default:"baxeinwear"`
	ExpirationMinutes      int    `envconfig:"BAXEINWEAR_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"BAXEINWEAR_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"BAXEINWEAR_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BAXEINWEAR_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BAXEINWEAR_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BAXEINWEAR_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BAXEINWEAR_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"BAXEINWEAR_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"BAXEINWEAR_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"BAXEINWEAR_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"BAXEINWEAR_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"BAXEINWEAR_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"BAXEINWEAR_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// CheckoutConfig holds the order and payment knobs.
type CheckoutConfig struct {
	ShippingFee      float64       `envconfig:"BAXEINWEAR_CHECKOUT_SHIPPING_FEE" default:"15.00"`
	PaymentTolerance float64       `envconfig:"BAXEINWEAR_CHECKOUT_PAYMENT_TOLERANCE" default:"0.01"`
	CartLockTTL      time.Duration `envconfig:"BAXEINWEAR_CHECKOUT_CART_LOCK_TTL" default:"10s"`
}

// DefaultShippingFee returns the configured shipping fee as a decimal.
func (c CheckoutConfig) DefaultShippingFee() decimal.Decimal {
	return decimal.NewFromFloat(c.ShippingFee).Round(2)
}

// Tolerance returns the accepted payment deviation as a decimal.
func (c CheckoutConfig) Tolerance() decimal.Decimal {
	return decimal.NewFromFloat(c.PaymentTolerance)
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"BAXEINWEAR_IDEMPOTENCY_TTL" default:"24h"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"BAXEINWEAR_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	UseSQLite        bool `envconfig:"BAXEINWEAR_USE_SQLITE" default:"false"`
	AutoMigrate      bool `envconfig:"BAXEINWEAR_AUTO_MIGRATE" default:"false"`
	RequireAuthToken bool `envconfig:"BAXEINWEAR_REQUIRE_AUTH_TOKEN" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if strings.EqualFold(db.Driver, DriverSQLite) {
		db.DSN = "file:baxeinwear.db?cache=shared"
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
