package service

import (
	"go.uber.org/fx"

	"github.com/Victorious-hub/Open-Graph/internal/enrich"
)

var (
	Module = fx.Provide(
		func(e *enrich.Enricher) Enricher { return e },
		NewLinks,
		NewCollections,
		NewUsers,
	)
)
