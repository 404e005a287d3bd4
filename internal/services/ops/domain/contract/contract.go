// Package contract tracks missions, their deployment requirements, scheduled
// scenarios and bonus-part credits.
package contract

import (
	"strconv"
	"sync"
	"time"

	apperrors "github.com/louisbranch/campaignops/internal/platform/errors"
)

// ID is a registry handle for a contract.
type ID string

var (
	// ErrNoBonusCredit indicates a spend against an exhausted counter.
	ErrNoBonusCredit = apperrors.New(apperrors.CodeBonusNoCredit, "no bonus parts remain")
	// ErrNegativeBonus indicates an attempt to set a negative bonus counter.
	ErrNegativeBonus = apperrors.New(apperrors.CodeContractNegativeBonus, "bonus parts cannot be negative")
	// ErrContractNotFound indicates an unknown contract handle.
	ErrContractNotFound = apperrors.New(apperrors.CodeRosterNotFound, "contract not found")
	// ErrDuplicateContract indicates a contract ID already in the registry.
	ErrDuplicateContract = apperrors.New(apperrors.CodeRosterDuplicateID, "contract already exists")
)

// Scenario is a battle scheduled under a contract.
type Scenario struct {
	ID   string
	Name string
	Date time.Time
}

// Contract is a mission the campaign is engaged in.
type Contract struct {
	ID             ID
	Name           string
	Active         bool
	BonusParts     int
	RequiredLances int
	DeployedLances int
	Scenarios      []Scenario
}

// DeploymentDeficit returns how many lances short of the requirement the
// contract is.
func (c Contract) DeploymentDeficit() int {
	if !c.Active || c.DeployedLances >= c.RequiredLances {
		return 0
	}
	return c.RequiredLances - c.DeployedLances
}

// Registry holds contracts in mission-list order plus the campaign-wide
// bonus counter used by work not attached to any contract.
type Registry struct {
	mu            sync.Mutex
	contracts     map[ID]*Contract
	order         []ID
	campaignBonus int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{contracts: make(map[ID]*Contract)}
}

// Add appends c to the mission list.
func (r *Registry) Add(c Contract) error {
	if c.BonusParts < 0 {
		return ErrNegativeBonus
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contracts[c.ID]; ok {
		return ErrDuplicateContract
	}
	stored := c
	stored.Scenarios = append([]Scenario(nil), c.Scenarios...)
	r.contracts[c.ID] = &stored
	r.order = append(r.order, c.ID)
	return nil
}

// Contract returns a copy of the contract with id.
func (r *Registry) Contract(id ID) (Contract, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[id]
	if !ok {
		return Contract{}, false
	}
	return copyContract(c), true
}

// Contracts returns every contract in mission-list order.
func (r *Registry) Contracts() []Contract {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Contract, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, copyContract(r.contracts[id]))
	}
	return out
}

// Active returns active contracts in mission-list order.
func (r *Registry) Active() []Contract {
	var out []Contract
	for _, c := range r.Contracts() {
		if c.Active {
			out = append(out, c)
		}
	}
	return out
}

// SetDeployed records how many lances are deployed to a contract.
func (r *Registry) SetDeployed(id ID, lances int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[id]
	if !ok {
		return ErrContractNotFound
	}
	if lances < 0 {
		lances = 0
	}
	c.DeployedLances = lances
	return nil
}

// Schedule adds a scenario to a contract.
func (r *Registry) Schedule(id ID, s Scenario) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[id]
	if !ok {
		return ErrContractNotFound
	}
	c.Scenarios = append(c.Scenarios, s)
	return nil
}

// ScenariosOn returns scenarios of active contracts dated on day.
func (r *Registry) ScenariosOn(day time.Time) []Scenario {
	var out []Scenario
	for _, c := range r.Active() {
		for _, s := range c.Scenarios {
			if sameDay(s.Date, day) {
				out = append(out, s)
			}
		}
	}
	return out
}

// BonusParts returns the remaining bonus credits of a contract.
func (r *Registry) BonusParts(id ID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.contracts[id]; ok {
		return c.BonusParts
	}
	return 0
}

// AddBonusParts grants n more credits to a contract.
func (r *Registry) AddBonusParts(id ID, n int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[id]
	if !ok {
		return ErrContractNotFound
	}
	if c.BonusParts+n < 0 {
		return ErrNegativeBonus
	}
	c.BonusParts += n
	return nil
}

// SpendBonusPart decrements a contract's counter by one.
func (r *Registry) SpendBonusPart(id ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[id]
	if !ok {
		return ErrContractNotFound
	}
	if c.BonusParts <= 0 {
		return apperrors.WithMetadata(apperrors.CodeBonusNoCredit, "no bonus parts remain", map[string]string{
			"Contract":  string(id),
			"Remaining": strconv.Itoa(c.BonusParts),
		})
	}
	c.BonusParts--
	return nil
}

// CampaignBonusParts returns the campaign-wide credit counter.
func (r *Registry) CampaignBonusParts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.campaignBonus
}

// SetCampaignBonusParts replaces the campaign-wide counter.
func (r *Registry) SetCampaignBonusParts(n int) error {
	if n < 0 {
		return ErrNegativeBonus
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.campaignBonus = n
	return nil
}

// SpendCampaignBonusPart decrements the campaign-wide counter by one.
func (r *Registry) SpendCampaignBonusPart() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.campaignBonus <= 0 {
		return ErrNoBonusCredit
	}
	r.campaignBonus--
	return nil
}

func copyContract(c *Contract) Contract {
	out := *c
	out.Scenarios = append([]Scenario(nil), c.Scenarios...)
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
