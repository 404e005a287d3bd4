package scenario

import (
	"github.com/louisbranch/campaignops/internal/services/ops/app"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/contract"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/part"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/personnel"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/unit"
)

// scenarioState maps script names to roster handles.
type scenarioState struct {
	service     *app.Service
	units       map[string]unit.ID
	people      map[string]personnel.ID
	parts       map[string]part.ID
	contracts   map[string]contract.ID
	lastAdvance *app.AdvanceResult
}

func newScenarioState() *scenarioState {
	return &scenarioState{
		units:     map[string]unit.ID{},
		people:    map[string]personnel.ID{},
		parts:     map[string]part.ID{},
		contracts: map[string]contract.ID{},
	}
}
