package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const EnvironmentProduction = "production"

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	BucketImports string
	UseSSL        bool
	Region        string
}

type SessionConfig struct {
	CookieName string
	// SecureCookie forces the Secure attribute. When unset it follows the
	// environment (on in production).
	SecureCookie *bool
	LoginPath    string
	HomePath     string
}

type SecurityConfig struct {
	UpgradeLegacyHashes bool
}

type DirectoryConfig struct {
	CacheTTL    time.Duration
	ShuffleCron string
}

type TeamsConfig struct {
	MaxSize       int
	ReservedName  string
	MaxNameLength int
}

type LogConfig struct {
	Level string
}

type MetricsConfig struct {
	Enabled bool
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Session          SessionConfig
	Security         SecurityConfig
	Directory        DirectoryConfig
	Teams            TeamsConfig
	Log              LogConfig
	Metrics          MetricsConfig
	AllowCORSOrigins []string
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}

// SecureCookies reports whether the session cookie carries the Secure flag.
func (c *AppConfig) SecureCookies() bool {
	if c.Session.SecureCookie != nil {
		return *c.Session.SecureCookie
	}
	return c.IsProduction()
}

func (c *AppConfig) Validate() error {
	var errs []error
	if c.Postgres.DSN == "" {
		errs = append(errs, errors.New("postgres.dsn is required"))
	}
	if c.Session.CookieName == "" {
		errs = append(errs, errors.New("session.cookiename is required"))
	}
	if c.Teams.MaxSize <= 0 {
		errs = append(errs, errors.New("teams.maxsize must be positive"))
	}
	return errors.Join(errs...)
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("HACKDIR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	// bound so AutomaticEnv picks up HACKDIR_POSTGRES_DSN without a file
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.maxopen", 20)
	v.SetDefault("postgres.maxidle", 5)
	v.SetDefault("postgres.connmaxlifetime", "30m")
	v.SetDefault("postgres.automigrate", false)

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.endpoint", "127.0.0.1:9000")
	v.SetDefault("storage.accesskey", "")
	v.SetDefault("storage.secretkey", "")
	v.SetDefault("storage.bucketimports", "hackdir-imports")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("session.cookiename", "session")
	v.SetDefault("session.loginpath", "/login")
	v.SetDefault("session.homepath", "/")
	_ = v.BindEnv("session.securecookie")

	v.SetDefault("security.upgradelegacyhashes", true)

	v.SetDefault("directory.cachettl", "60s")
	v.SetDefault("directory.shufflecron", "*/20 * * * * *")

	v.SetDefault("teams.maxsize", 5)
	v.SetDefault("teams.reservedname", "admin")
	v.SetDefault("teams.maxnamelength", 50)

	v.SetDefault("log.level", "")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("allowcorsorigins", "")
}
