package enrich

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Victorious-hub/Open-Graph/internal/models"
)

const outcomeOK = "ok"

type (
	PageFetcher interface {
		Fetch(ctx context.Context, url string) (*RawPage, error)
	}

	Metrics struct {
		outcomes *prometheus.CounterVec
	}

	Enricher struct {
		fetcher PageFetcher
		metrics *Metrics
		logger  *zap.SugaredLogger
	}
)

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bookmarker",
		Name:      "enrichment_total",
		Help:      "Link enrichment attempts by outcome.",
	}, []string{"outcome"})
	if err := reg.Register(outcomes); err != nil {
		return nil, errors.Wrap(err, "register enrichment metrics")
	}
	return &Metrics{outcomes: outcomes}, nil
}

func (m *Metrics) observe(outcome string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(outcome).Inc()
}

func NewEnricher(fetcher PageFetcher, metrics *Metrics, l *zap.SugaredLogger) *Enricher {
	return &Enricher{
		fetcher: fetcher,
		metrics: metrics,
		logger:  l,
	}
}

// Enrich fetches url and turns the page into link metadata. Any fetch
// failure is returned as a *FetchError and no metadata is produced.
func (e *Enricher) Enrich(ctx context.Context, url string) (*models.LinkMetadata, error) {
	page, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) {
			fetchErr = &FetchError{URL: url, Kind: FailureOther, Cause: err}
		}
		e.metrics.observe(string(fetchErr.Kind))
		e.logger.Warnw("enrichment fetch failed", "url", url, "kind", fetchErr.Kind, "error", fetchErr.Cause)
		return nil, fetchErr
	}

	meta := Extract(page.Body)
	linkType := models.Classify(meta.TypeHint)

	e.metrics.observe(outcomeOK)
	e.logger.Debugw("link enriched", "url", url, "link_type", linkType, "has_title", meta.Title != nil)

	return &models.LinkMetadata{
		Title:       meta.Title,
		Description: meta.Description,
		Image:       meta.Image,
		LinkType:    linkType,
	}, nil
}
