package scenario

import (
	"github.com/louisbranch/campaignops/internal/core/dice"
	"github.com/louisbranch/campaignops/internal/services/ops/app"
	"github.com/louisbranch/campaignops/internal/services/ops/storage"
)

// runnerDeps bundles injectable dependencies for runner construction.
type runnerDeps struct {
	journal storage.Journal
	// roller overrides the campaign step's rolls and seed.
	roller    dice.Roller
	confirmer app.Confirmer
}
