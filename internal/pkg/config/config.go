package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
	_ "time/tzdata" // SCHEDULER_TIMEZONE must resolve in minimal images

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Store     StoreConfig
	Redis     RedisConfig
	AMQP      AMQPConfig
	CORS      CORSConfig
	Log       LogConfig
	JWT       JWTConfig
	Cookie    CookieConfig
	Parking   ParkingConfig
	Cache     CacheConfig
	Scheduler SchedulerConfig
	Notifier  NotifierConfig
	Admin     AdminConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER"`
	Password string `envconfig:"DB_PASSWORD"`
	DBName   string `envconfig:"DB_NAME"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
}

// StoreConfig selects the persistence backend. "memory" keeps everything in-process (single node, lost on restart).
type StoreConfig struct {
	Driver string `envconfig:"STORE_DRIVER" default:"postgres"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type AMQPConfig struct {
	URL         string `envconfig:"AMQP_URL"`
	QueuePrefix string `envconfig:"AMQP_QUEUE_PREFIX" default:"parking.notifications"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Asia/Kolkata"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"19800"` // 5.5*60*60
}

type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_DURATION" default:"24h"`
}

type CookieConfig struct {
	Domain   string `envconfig:"COOKIE_DOMAIN" default:""`
	Secure   bool   `envconfig:"COOKIE_SECURE" default:"true"`
	SameSite string `envconfig:"COOKIE_SAME_SITE" default:"Lax"`
}

type ParkingConfig struct {
	StaleReservationThreshold time.Duration `envconfig:"STALE_RESERVATION_THRESHOLD" default:"24h"`
	MinimumBillingUnit        time.Duration `envconfig:"MINIMUM_BILLING_UNIT" default:"1h"`
	// Whether an admin force-free bills the parked interval; waived by default.
	ForceFreeBilling bool `envconfig:"FORCE_FREE_BILLING" default:"false"`
}

type CacheConfig struct {
	DefaultTTL   time.Duration `envconfig:"CACHE_TTL_DEFAULT" default:"300s"`
	AnalyticsTTL time.Duration `envconfig:"CACHE_TTL_ANALYTICS" default:"900s"`
}

type SchedulerConfig struct {
	Enabled               bool          `envconfig:"SCHEDULER_ENABLED" default:"true"`
	TimeZone              string        `envconfig:"SCHEDULER_TIMEZONE" default:"Asia/Kolkata"`
	OptimizeHighThreshold float64       `envconfig:"OPTIMIZE_HIGH_THRESHOLD" default:"0.8"`
	OptimizeLowThreshold  float64       `envconfig:"OPTIMIZE_LOW_THRESHOLD" default:"0.3"`
	JobTimeout            time.Duration `envconfig:"JOB_TIMEOUT" default:"5m"`
	JobQueueSize          int           `envconfig:"JOB_QUEUE_SIZE" default:"32"`
}

type NotifierConfig struct {
	QueueSize int `envconfig:"NOTIFIER_QUEUE_SIZE" default:"256"`
}

type AdminConfig struct {
	Name     string `envconfig:"ADMIN_NAME" default:"admin"`
	Email    string `envconfig:"ADMIN_EMAIL" default:"admin@parking.local"`
	Password string `envconfig:"ADMIN_PASSWORD"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func (c SchedulerConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_TIMEZONE %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

func LoadConfig() (Config, error) {
	// .env is optional; real environment variables always win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if cfg.Store.Driver != "postgres" && cfg.Store.Driver != "memory" {
		return Config{}, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.Store.Driver)
	}
	if _, err := cfg.Scheduler.Location(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
			MaxConns: 10,
		},
		Store: StoreConfig{Driver: "memory"},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Asia/Kolkata",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 19800,
		},
		JWT: JWTConfig{
			Secret:   "test-secret",
			Duration: "1h",
		},
		Cookie: CookieConfig{
			Secure:   false,
			SameSite: "Lax",
		},
		Parking: ParkingConfig{
			StaleReservationThreshold: 24 * time.Hour,
			MinimumBillingUnit:        time.Hour,
		},
		Cache: CacheConfig{
			DefaultTTL:   5 * time.Minute,
			AnalyticsTTL: 15 * time.Minute,
		},
		Scheduler: SchedulerConfig{
			Enabled:               false,
			TimeZone:              "Asia/Kolkata",
			OptimizeHighThreshold: 0.8,
			OptimizeLowThreshold:  0.3,
			JobTimeout:            time.Minute,
			JobQueueSize:          8,
		},
		Notifier: NotifierConfig{QueueSize: 64},
	}
}
