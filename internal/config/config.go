package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	sslModeDisable = "disable"
	sslModeRequire = "require"

	DBTypePostgres  = "postgres"
	DBTypeMySQL     = "mysql"
	DBTypeSQLite    = "sqlite"
	DBTypeSQLServer = "sqlserver"
)

type (
	Config struct {
		Host     string `mapstructure:"HOST"`
		Port     string `mapstructure:"PORT"`
		GRPCPort string `mapstructure:"GRPC_PORT"`

		DBType         string `mapstructure:"DB_TYPE"`
		DBHost         string `mapstructure:"DB_HOST"`
		DBPort         string `mapstructure:"DB_PORT"`
		DBUser         string `mapstructure:"DB_USER"`
		DBPassword     string `mapstructure:"DB_PASSWORD"`
		DBName         string `mapstructure:"DB_NAME"`
		DBSSLMode      string `mapstructure:"DB_SSL_MODE"`
		DBMaxOpenConns int    `mapstructure:"DB_MAX_OPEN_CONNS"`

		RedisAddr     string `mapstructure:"REDIS_ADDR"`
		RedisPassword string `mapstructure:"REDIS_PASSWORD"`
		RedisDB       int    `mapstructure:"REDIS_DB"`

		JWTSecret     string        `mapstructure:"JWT_SECRET"`
		JWTAccessTTL  time.Duration `mapstructure:"JWT_ACCESS_TTL"`
		JWTRefreshTTL time.Duration `mapstructure:"JWT_REFRESH_TTL"`

		FetchTimeout      time.Duration `mapstructure:"FETCH_TIMEOUT"`
		FetchUserAgent    string        `mapstructure:"FETCH_USER_AGENT"`
		FetchMaxBodyBytes int64         `mapstructure:"FETCH_MAX_BODY_BYTES"`

		LockTTL       time.Duration `mapstructure:"LOCK_TTL"`
		PublicBaseURL string        `mapstructure:"PUBLIC_BASE_URL"`
		LogLevel      string        `mapstructure:"LOG_LEVEL"`
	}
)

var defaults = map[string]interface{}{
	"HOST":                 "0.0.0.0",
	"PORT":                 "1323",
	"GRPC_PORT":            "9000",
	"DB_TYPE":              DBTypePostgres,
	"DB_HOST":              "0.0.0.0",
	"DB_PORT":              "5432",
	"DB_USER":              "user",
	"DB_PASSWORD":          "password",
	"DB_NAME":              "db",
	"DB_SSL_MODE":          sslModeDisable,
	"DB_MAX_OPEN_CONNS":    10,
	"REDIS_ADDR":           "",
	"REDIS_PASSWORD":       "",
	"REDIS_DB":             0,
	"JWT_SECRET":           "",
	"JWT_ACCESS_TTL":       "15m",
	"JWT_REFRESH_TTL":      "24h",
	"FETCH_TIMEOUT":        "15s",
	"FETCH_USER_AGENT":     "Mozilla/5.0 (compatible; OpenGraphBot/1.0)",
	"FETCH_MAX_BODY_BYTES": 5 << 20,
	"LOCK_TTL":             "30s",
	"PUBLIC_BASE_URL":      "http://0.0.0.0:1323",
	"LOG_LEVEL":            "info",
}

func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "load .env")
	}

	viper.SetEnvPrefix("BOOKMARKER")

	for key, value := range defaults {
		viper.SetDefault(key, value)
		if err := viper.BindEnv(key); err != nil {
			return nil, err
		}
	}

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if err := oneOf("DB SSL mode", cfg.DBSSLMode, sslModeDisable, sslModeRequire); err != nil {
		return err
	}
	if err := oneOf("DB type", cfg.DBType, DBTypePostgres, DBTypeMySQL, DBTypeSQLite, DBTypeSQLServer); err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT secret is empty, set BOOKMARKER_JWT_SECRET")
	}
	if cfg.FetchTimeout <= 0 {
		return errors.New(fmt.Sprintf("fetch timeout must be positive: %s", cfg.FetchTimeout))
	}
	return nil
}

func oneOf(name, value string, valid ...string) error {
	for _, validValue := range valid {
		if value == validValue {
			return nil
		}
	}
	return errors.New(fmt.Sprintf("%s is invalid: %s", name, value))
}
