package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App         AppConfig
	UserStore   UserStoreConfig
	Patients    PatientsConfig
	Fulfillment FulfillmentConfig
	Redis       RedisConfig
	Search      SearchConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Fulfillment.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env           string        `envconfig:"MEDICART_APP_ENV" required:"true"`
	Port          string        `envconfig:"MEDICART_APP_PORT" required:"true"`
	LogLevel      string        `envconfig:"MEDICART_LOG_LEVEL" default:"info"`
	LogWarnStack  bool          `envconfig:"MEDICART_LOG_WARN_STACK" default:"false"`
	ShutdownGrace time.Duration `envconfig:"MEDICART_SHUTDOWN_GRACE" default:"15s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// UserStoreConfig points at the user-record service that mirrors each
// operator's cart.
type UserStoreConfig struct {
	BaseURL string        `envconfig:"MEDICART_USERSTORE_BASE_URL" default:"http://localhost:3000"`
	Timeout time.Duration `envconfig:"MEDICART_USERSTORE_TIMEOUT" default:"10s"`
}

// PatientsConfig points at the patient directory used for customer lookups.
type PatientsConfig struct {
	BaseURL string        `envconfig:"MEDICART_PATIENTS_BASE_URL" default:"http://localhost:3001"`
	Timeout time.Duration `envconfig:"MEDICART_PATIENTS_TIMEOUT" default:"10s"`
}

// FulfillmentConfig configures the order placement API.
type FulfillmentConfig struct {
	BaseURL        string        `envconfig:"MEDICART_FULFILLMENT_BASE_URL" default:"https://dev-api.evitalrx.in/v1"`
	APIKey         string        `envconfig:"MEDICART_FULFILLMENT_API_KEY"`
	DeliveryType   string        `envconfig:"MEDICART_FULFILLMENT_DELIVERY_TYPE" default:"delivery"`
	DefaultZipcode string        `envconfig:"MEDICART_FULFILLMENT_DEFAULT_ZIPCODE" default:"380013"`
	Timeout        time.Duration `envconfig:"MEDICART_FULFILLMENT_TIMEOUT" default:"20s"`
}

func (f FulfillmentConfig) validate() error {
	if strings.TrimSpace(f.APIKey) == "" {
		return fmt.Errorf("fulfillment api key is required")
	}
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"MEDICART_REDIS_URL"`
	Address      string        `envconfig:"MEDICART_REDIS_ADDR"`
	Password     string        `envconfig:"MEDICART_REDIS_PASSWORD"`
	DB           int           `envconfig:"MEDICART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MEDICART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MEDICART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MEDICART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MEDICART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MEDICART_REDIS_WRITE_TIMEOUT" default:"5s"`
	DetailsTTL   time.Duration `envconfig:"MEDICART_REDIS_DETAILS_TTL" default:"10m"`
}

// Enabled reports whether a redis endpoint was configured at all; the cache
// is a lookaside optimization, not a requirement.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

// SearchConfig tunes the customer suggestion pipeline.
type SearchConfig struct {
	DebounceInterval time.Duration `envconfig:"MEDICART_SEARCH_DEBOUNCE" default:"300ms"`
	SessionIdleTTL   time.Duration `envconfig:"MEDICART_SEARCH_SESSION_IDLE_TTL" default:"30m"`
	SweepInterval    time.Duration `envconfig:"MEDICART_SEARCH_SWEEP_INTERVAL" default:"5m"`
}
