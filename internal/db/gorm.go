package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Victorious-hub/Open-Graph/internal/config"
	"github.com/Victorious-hub/Open-Graph/internal/models"
)

type (
	GormForkedModel struct {
		ID        uint64 `gorm:"primarykey"`
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	User struct {
		GormForkedModel
		Email       string       `gorm:"size:255;unique;not null"`
		Password    string       `gorm:"not null"`
		IsActive    bool         `gorm:"not null;default:true"`
		Links       []Link       `gorm:"constraint:OnDelete:CASCADE;"`
		Collections []Collection `gorm:"constraint:OnDelete:CASCADE;"`
	}

	Link struct {
		GormForkedModel
		LinkURL         *string          `gorm:"size:255;uniqueIndex:uidx_links_user_id_link_url,priority:2"`
		Title           *string          `gorm:"type:text"`
		Description     *string          `gorm:"type:text"`
		Image           *string          `gorm:"type:text"`
		LinkType        models.LinkType  `gorm:"size:50;not null;default:'website'"`
		UserID          uint64           `gorm:"not null;uniqueIndex:uidx_links_user_id_link_url,priority:1"`
		LinkCollections []LinkCollection `gorm:"constraint:OnDelete:CASCADE;"`
	}

	Collection struct {
		GormForkedModel
		Name            string           `gorm:"size:255;not null"`
		Description     string           `gorm:"type:text"`
		UserID          uint64           `gorm:"not null;index"`
		LinkCollections []LinkCollection `gorm:"constraint:OnDelete:CASCADE;"`
	}

	LinkCollection struct {
		ID           uint64 `gorm:"primarykey"`
		LinkID       uint64 `gorm:"not null;uniqueIndex:uidx_link_collections_link_id_collection_id,priority:1"`
		CollectionID uint64 `gorm:"not null;uniqueIndex:uidx_link_collections_link_id_collection_id,priority:2"`
		CreatedAt    time.Time
	}

	PasswordReset struct {
		GormForkedModel
		UserID    uint64    `gorm:"not null;index"`
		Token     string    `gorm:"size:64;not null;uniqueIndex"`
		ResetURL  string    `gorm:"size:255;not null"`
		ExpiresAt time.Time `gorm:"not null"`
	}
)

func NewGormClient(lc fx.Lifecycle, cfg *config.Config, l *zap.SugaredLogger) (*gorm.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			l.Info("Closing database connection.")
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

// Open connects to the configured database and migrates the schema.
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Warn
	if cfg.LogLevel == "debug" {
		logLevel = logger.Info
	}
	newLogger := logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logLevel,
		Colorful:                  false,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	if cfg.DBMaxOpenConns > 0 {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "get sql db")
		}
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.DBMaxOpenConns)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}); err != nil {
		return errors.Wrap(err, "migrate user")
	}
	if err := db.AutoMigrate(&Link{}, &Collection{}); err != nil {
		return errors.Wrap(err, "migrate link and collection")
	}
	if err := db.AutoMigrate(&LinkCollection{}); err != nil {
		return errors.Wrap(err, "migrate link collection")
	}
	if err := db.AutoMigrate(&PasswordReset{}); err != nil {
		return errors.Wrap(err, "migrate password reset")
	}
	return nil
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBType {
	case config.DBTypePostgres:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
		return postgres.Open(dsn), nil
	case config.DBTypeMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
		return mysql.Open(dsn), nil
	case config.DBTypeSQLite:
		return sqlite.Open(sqliteDSN(cfg.DBName)), nil
	case config.DBTypeSQLServer:
		dsn := fmt.Sprintf("sqlserver://%s:%s@%s:%s?database=%s",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
		return sqlserver.Open(dsn), nil
	default:
		return nil, errors.New(fmt.Sprintf("unsupported database type: %s", cfg.DBType))
	}
}

// sqliteDSN turns on foreign keys so membership rows cascade.
func sqliteDSN(name string) string {
	if strings.Contains(name, "_foreign_keys") {
		return name
	}
	if strings.Contains(name, "?") {
		return name + "&_foreign_keys=on"
	}
	return name + "?_foreign_keys=on"
}
