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
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Razorpay      RazorpayConfig
	Checkout      CheckoutConfig
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
	Env          string `envconfig:"ZELORA_APP_ENV" required:"true"`
	Port         string `envconfig:"ZELORA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ZELORA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ZELORA_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"ZELORA_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"ZELORA_DB_DSN"`

	Host     string `envconfig:"ZELORA_DB_HOST"`
	Port     int    `envconfig:"ZELORA_DB_PORT" default:"5432"`
	User     string `envconfig:"ZELORA_DB_USER"`
	Password string `envconfig:"ZELORA_DB_PASSWORD"`
	Name     string `envconfig:"ZELORA_DB_NAME"`
	SSLMode  string `envconfig:"ZELORA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ZELORA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ZELORA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ZELORA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ZELORA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ZELORA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ZELORA_REDIS_ADDR"`
	Password     string        `envconfig:"ZELORA_REDIS_PASSWORD"`
	DB           int           `envconfig:"ZELORA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ZELORA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ZELORA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ZELORA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ZELORA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ZELORA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ZELORA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ZELORA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ZELORA_JWT_EXPIRATION_MINUTES" default:"10080"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ZELORA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ZELORA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ZELORA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ZELORA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ZELORA_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"ZELORA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"ZELORA_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"ZELORA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"ZELORA_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"ZELORA_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"ZELORA_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ZELORA_AUTO_MIGRATE" default:"false"`
}

type RazorpayConfig struct {
	KeyID         string        `envconfig:"ZELORA_RAZORPAY_KEY_ID"`
	KeySecret     string        `envconfig:"ZELORA_RAZORPAY_KEY_SECRET"`
	WebhookSecret string        `envconfig:"ZELORA_RAZORPAY_WEBHOOK_SECRET"`
	BaseURL       string        `envconfig:"ZELORA_RAZORPAY_BASE_URL" default:"https://api.razorpay.com"`
	Currency      string        `envconfig:"ZELORA_RAZORPAY_CURRENCY" default:"INR"`
	Timeout       time.Duration `envconfig:"ZELORA_RAZORPAY_TIMEOUT" default:"10s"`
}

// Configured reports whether gateway credentials are present. When they are
// not, online payment endpoints refuse to start rather than running half-wired.
func (r RazorpayConfig) Configured() bool {
	return strings.TrimSpace(r.KeyID) != "" && strings.TrimSpace(r.KeySecret) != ""
}

type CheckoutConfig struct {
	ShippingFeeCents      int    `envconfig:"ZELORA_CHECKOUT_SHIPPING_FEE_CENTS" default:"4900"`
	FreeShippingMinCents  int    `envconfig:"ZELORA_CHECKOUT_FREE_SHIPPING_MIN_CENTS" default:"49900"`
	WelcomeCouponCode     string `envconfig:"ZELORA_CHECKOUT_WELCOME_COUPON" default:"WELCOME50"`
	WalletCouponTTLDays   int    `envconfig:"ZELORA_WALLET_COUPON_TTL_DAYS" default:"30"`
	WalletCouponMinCents  int    `envconfig:"ZELORA_WALLET_COUPON_MIN_CENTS" default:"1000"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
