package enrich

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/Victorious-hub/Open-Graph/internal/config"
)

var (
	Module = fx.Options(
		fx.Provide(
			newFetcherOptions,
			NewFetcher,
			func(f *Fetcher) PageFetcher { return f },
			func() (*Metrics, error) { return NewMetrics(prometheus.DefaultRegisterer) },
			NewEnricher,
		),
	)
)

func newFetcherOptions(cfg *config.Config) FetcherOptions {
	return FetcherOptions{
		Timeout:      cfg.FetchTimeout,
		UserAgent:    cfg.FetchUserAgent,
		MaxBodyBytes: cfg.FetchMaxBodyBytes,
	}
}
