//go:build functional

package test_functional

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Host       string `mapstructure:"HOST"`
		Port       string `mapstructure:"PORT"`
		DBHost     string `mapstructure:"DB_HOST"`
		DBPort     string `mapstructure:"DB_PORT"`
		DBUser     string `mapstructure:"DB_USER"`
		DBPassword string `mapstructure:"DB_PASSWORD"`
		DBName     string `mapstructure:"DB_NAME"`
		PagesHost  string `mapstructure:"PAGES_HOST"`
	}
)

var (
	AppBaseURL url.URL
	DBConn     *pgxpool.Pool
	TestConfig Config
)

func TestMain(m *testing.M) {
	viper.SetEnvPrefix("TEST_RUNNER")

	viper.SetDefault("HOST", "0.0.0.0")
	viper.SetDefault("PORT", "1323")
	viper.SetDefault("DB_HOST", "0.0.0.0")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "db")
	viper.SetDefault("PAGES_HOST", "127.0.0.1")

	envs := []string{"HOST", "PORT", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "PAGES_HOST"}
	for _, key := range envs {
		if err := viper.BindEnv(key); err != nil {
			panic(err)
		}
	}

	if err := viper.Unmarshal(&TestConfig); err != nil {
		panic(err)
	}
	cfg := TestConfig

	AppBaseURL = url.URL{
		Scheme: "http",
		Host:   cfg.Host + ":" + cfg.Port,
	}

	////////

	pingCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)

	cl := resty.New()
	pingUrl := AppBaseURL
	pingUrl.Path = "/ping"
	pingUrlStr := pingUrl.String()
	for {
		if pingCtx.Err() != nil {
			panic(pingCtx.Err())
		}
		resp, err := cl.R().SetContext(pingCtx).Get(pingUrlStr)
		if err == nil && resp.String() == "pong" {
			break
		}
		time.Sleep(200 * time.Millisecond)
	}
	cancel()

	fmt.Println("pinged successfully")

	///////

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		panic(err)
	}
	DBConn = pool

	code := m.Run()
	pool.Close()
	os.Exit(code)
}

// FlushDB empties every table the app writes to.
func FlushDB() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	_, err := DBConn.Exec(ctx, "TRUNCATE link_collections, links, collections, password_resets, users RESTART IDENTITY CASCADE")
	if err != nil {
		panic(err)
	}
}
