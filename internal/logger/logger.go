package logger

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Victorious-hub/Open-Graph/internal/config"
)

var (
	Module = fx.Provide(
		NewLogger,
	)
)

// NewLogger returns a development logger for LOG_LEVEL=debug and a
// production one otherwise.
func NewLogger(lc fx.Lifecycle, cfg *config.Config) (*zap.SugaredLogger, error) {
	l, err := New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = l.Sync()
			return nil
		},
	})

	return l, nil
}

func New(level string) (*zap.SugaredLogger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if level == "debug" {
		l, err = zap.NewDevelopment()
	} else {
		zcfg := zap.NewProductionConfig()
		if level != "" {
			if err := zcfg.Level.UnmarshalText([]byte(level)); err != nil {
				return nil, errors.Wrap(err, "parse log level")
			}
		}
		l, err = zcfg.Build()
	}
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return l.Sugar(), nil
}
