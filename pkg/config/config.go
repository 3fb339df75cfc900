package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	Dashboard DashboardConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Dashboard.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"A33_APP_ENV" required:"true"`
	Port         string `envconfig:"A33_APP_PORT" default:"8090"`
	LogLevel     string `envconfig:"A33_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"A33_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// DBConfig points at the POS record store. The dashboard only reads from it,
// apart from the focus pointer in the meta table.
type DBConfig struct {
	Driver      string        `envconfig:"A33_DB_DRIVER" default:"postgres"`
	DSN         string        `envconfig:"A33_DB_DSN" required:"true"`
	OpenTimeout time.Duration `envconfig:"A33_DB_OPEN_TIMEOUT" default:"3500ms"`

	MaxOpenConns    int           `envconfig:"A33_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"A33_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"A33_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"A33_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

func (db DBConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(db.Driver)) {
	case DBDriverPostgres, DBDriverSQLite:
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", EnvDBDriver, DBDriverPostgres, DBDriverSQLite, db.Driver)
	}
	if db.OpenTimeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvDBOpenTimeout)
	}
	return nil
}

// RedisConfig locates the blobs persisted by sibling modules (inventory,
// purchase planning, analytics). Leaving both URL and address empty runs the
// dashboard without blobs; those sections then report unavailable.
type RedisConfig struct {
	URL          string        `envconfig:"A33_REDIS_URL"`
	Address      string        `envconfig:"A33_REDIS_ADDR"`
	Password     string        `envconfig:"A33_REDIS_PASSWORD"`
	DB           int           `envconfig:"A33_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"A33_REDIS_POOL_SIZE" default:"5"`
	MinIdleConns int           `envconfig:"A33_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"A33_REDIS_DIAL_TIMEOUT" default:"2s"`
	ReadTimeout  time.Duration `envconfig:"A33_REDIS_READ_TIMEOUT" default:"2s"`
	WriteTimeout time.Duration `envconfig:"A33_REDIS_WRITE_TIMEOUT" default:"2s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type DashboardConfig struct {
	ScanLimit          int           `envconfig:"A33_DASHBOARD_SCAN_LIMIT" default:"4000"`
	ActiveWindow       time.Duration `envconfig:"A33_DASHBOARD_ACTIVE_WINDOW" default:"336h"`
	ActiveCap          int           `envconfig:"A33_DASHBOARD_ACTIVE_CAP" default:"12"`
	Workers            int           `envconfig:"A33_DASHBOARD_WORKERS" default:"3"`
	QueueCap           int           `envconfig:"A33_DASHBOARD_QUEUE_CAP" default:"15"`
	DynamicTTL         time.Duration `envconfig:"A33_DASHBOARD_DYNAMIC_TTL" default:"5s"`
	SnapshotCacheSize  int           `envconfig:"A33_DASHBOARD_SNAPSHOT_CACHE_SIZE" default:"90"`
	ChecklistCacheSize int           `envconfig:"A33_DASHBOARD_CHECKLIST_CACHE_SIZE" default:"120"`
	DynamicCacheSize   int           `envconfig:"A33_DASHBOARD_DYNAMIC_CACHE_SIZE" default:"180"`
	PendingTextLimit   int           `envconfig:"A33_DASHBOARD_PENDING_TEXT_LIMIT" default:"3"`
	TopProducts        int           `envconfig:"A33_DASHBOARD_TOP_PRODUCTS" default:"5"`
	RecommendLimit     int           `envconfig:"A33_DASHBOARD_RECOMMEND_LIMIT" default:"3"`
	RevalidateInterval time.Duration `envconfig:"A33_DASHBOARD_REVALIDATE_INTERVAL" default:"30s"`
	BaseCurrency       string        `envconfig:"A33_DASHBOARD_BASE_CURRENCY" default:"NIO"`
	ForeignCurrency    string        `envconfig:"A33_DASHBOARD_FOREIGN_CURRENCY" default:"USD"`
	Timezone           string        `envconfig:"A33_DASHBOARD_TIMEZONE" default:"America/Managua"`
}

// Location resolves the configured timezone, falling back to UTC when the
// zone database does not know it.
func (d DashboardConfig) Location() *time.Location {
	loc, err := time.LoadLocation(strings.TrimSpace(d.Timezone))
	if err != nil || loc == nil {
		return time.UTC
	}
	return loc
}

func (d DashboardConfig) validate() error {
	if d.ScanLimit <= 0 {
		return fmt.Errorf("%s must be positive", EnvDashboardScanLimit)
	}
	if d.Workers <= 0 {
		return fmt.Errorf("%s must be positive", EnvDashboardWorkers)
	}
	if d.QueueCap < d.Workers {
		return fmt.Errorf("%s must be >= %s", EnvDashboardQueueCap, EnvDashboardWorkers)
	}
	if d.ActiveCap <= 0 {
		return fmt.Errorf("%s must be positive", EnvDashboardActiveCap)
	}
	if strings.EqualFold(d.BaseCurrency, d.ForeignCurrency) {
		return fmt.Errorf("base and foreign currency must differ")
	}
	return nil
}

// Defaults returns the dashboard settings used when no environment is loaded.
func Defaults() DashboardConfig {
	return DashboardConfig{
		ScanLimit:          4000,
		ActiveWindow:       14 * 24 * time.Hour,
		ActiveCap:          12,
		Workers:            3,
		QueueCap:           15,
		DynamicTTL:         5 * time.Second,
		SnapshotCacheSize:  90,
		ChecklistCacheSize: 120,
		DynamicCacheSize:   180,
		PendingTextLimit:   3,
		TopProducts:        5,
		RecommendLimit:     3,
		RevalidateInterval: 30 * time.Second,
		BaseCurrency:       "NIO",
		ForeignCurrency:    "USD",
		Timezone:           "America/Managua",
	}
}
