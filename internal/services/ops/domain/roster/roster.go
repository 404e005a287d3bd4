// Package roster is the single owner of units, parts and personnel.
//
// Entities refer to each other only through handles. Reads return copies;
// writes go through Update*. Removing an entity clears every handle that
// pointed at it.
package roster

import (
	"sync"

	apperrors "github.com/louisbranch/campaignops/internal/platform/errors"
	"github.com/louisbranch/campaignops/internal/platform/id"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/part"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/personnel"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/unit"
)

var (
	// ErrNotFound indicates an unknown handle.
	ErrNotFound = apperrors.New(apperrors.CodeRosterNotFound, "roster entry not found")
	// ErrDuplicateID indicates a handle already in use.
	ErrDuplicateID = apperrors.New(apperrors.CodeRosterDuplicateID, "roster id already exists")
	// ErrInvalidEntity indicates an entity that fails basic validation.
	ErrInvalidEntity = apperrors.New(apperrors.CodeRosterInvalidEntity, "roster entity is invalid")
)

// Option configures a Roster.
type Option func(*Roster)

// WithIDGenerator replaces the handle generator.
func WithIDGenerator(fn func() (string, error)) Option {
	return func(r *Roster) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// Roster owns every campaign entity in insertion order.
type Roster struct {
	mu sync.RWMutex

	newID func() (string, error)

	units     map[unit.ID]*unit.Unit
	unitOrder []unit.ID

	parts     map[part.ID]*part.Part
	partOrder []part.ID

	people      map[personnel.ID]*personnel.Person
	personOrder []personnel.ID
}

// New returns an empty roster.
func New(opts ...Option) *Roster {
	r := &Roster{
		newID:  id.NewID,
		units:  make(map[unit.ID]*unit.Unit),
		parts:  make(map[part.ID]*part.Part),
		people: make(map[personnel.ID]*personnel.Person),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddUnit stores u, minting an ID when u.ID is empty.
func (r *Roster) AddUnit(u unit.Unit) (unit.ID, error) {
	if !u.Type.Valid() {
		return "", ErrInvalidEntity
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		next, err := r.newID()
		if err != nil {
			return "", err
		}
		u.ID = unit.ID(next)
	}
	if _, ok := r.units[u.ID]; ok {
		return "", ErrDuplicateID
	}
	stored := u
	r.units[u.ID] = &stored
	r.unitOrder = append(r.unitOrder, u.ID)
	return u.ID, nil
}

// Unit returns a copy of the unit with id.
func (r *Roster) Unit(unitID unit.ID) (unit.Unit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.units[unitID]
	if !ok {
		return unit.Unit{}, false
	}
	return *u, true
}

// Units returns every unit in insertion order.
func (r *Roster) Units() []unit.Unit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]unit.Unit, 0, len(r.unitOrder))
	for _, unitID := range r.unitOrder {
		out = append(out, *r.units[unitID])
	}
	return out
}

// UpdateUnit replaces a stored unit.
func (r *Roster) UpdateUnit(u unit.Unit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.units[u.ID]
	if !ok {
		return ErrNotFound
	}
	*stored = u
	return nil
}

// RemoveUnit deletes a unit and every part attached to it.
func (r *Roster) RemoveUnit(unitID unit.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.units[unitID]; !ok {
		return ErrNotFound
	}
	delete(r.units, unitID)
	r.unitOrder = removeID(r.unitOrder, unitID)
	for _, partID := range append([]part.ID(nil), r.partOrder...) {
		if r.parts[partID].UnitID == unitID {
			delete(r.parts, partID)
			r.partOrder = removeID(r.partOrder, partID)
		}
	}
	return nil
}

// AddPart stores p, minting an ID when p.ID is empty. Parts on a unit
// inherit the unit type's skill category when none is set.
func (r *Roster) AddPart(p part.Part) (part.ID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.UnitID != "" {
		owner, ok := r.units[p.UnitID]
		if !ok {
			return "", ErrNotFound
		}
		if p.Category == "" {
			p.Category = owner.Type.Category()
		}
	}
	if p.ID == "" {
		next, err := r.newID()
		if err != nil {
			return "", err
		}
		p.ID = part.ID(next)
	}
	if _, ok := r.parts[p.ID]; ok {
		return "", ErrDuplicateID
	}
	if p.State == "" {
		p.State = part.StateUnassigned
	}
	stored := p
	r.parts[p.ID] = &stored
	r.partOrder = append(r.partOrder, p.ID)
	return p.ID, nil
}

// Part returns a copy of the part with id.
func (r *Roster) Part(partID part.ID) (part.Part, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.parts[partID]
	if !ok {
		return part.Part{}, false
	}
	return *p, true
}

// UpdatePart replaces a stored part.
func (r *Roster) UpdatePart(p part.Part) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.parts[p.ID]
	if !ok {
		return ErrNotFound
	}
	if p.UnitID != "" {
		if _, ok := r.units[p.UnitID]; !ok {
			return ErrNotFound
		}
	}
	*stored = p
	return nil
}

// RemovePart deletes a part.
func (r *Roster) RemovePart(partID part.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.parts[partID]; !ok {
		return ErrNotFound
	}
	delete(r.parts, partID)
	r.partOrder = removeID(r.partOrder, partID)
	return nil
}

// Parts returns every part in insertion order.
func (r *Roster) Parts() []part.Part {
	return r.selectParts(func(part.Part) bool { return true })
}

// PartsForUnit returns the parts attached to a unit.
func (r *Roster) PartsForUnit(unitID unit.ID) []part.Part {
	return r.selectParts(func(p part.Part) bool { return p.UnitID == unitID })
}

// WarehouseParts returns loose stock.
func (r *Roster) WarehouseParts() []part.Part {
	return r.selectParts(func(p part.Part) bool { return p.InWarehouse() })
}

// Tasks returns parts a technician can work on, optionally limited to one
// unit.
func (r *Roster) Tasks(unitID unit.ID) []part.Part {
	return r.selectParts(func(p part.Part) bool {
		if unitID != "" && p.UnitID != unitID {
			return false
		}
		return !p.InWarehouse() && p.NeedsWork()
	})
}

// Acquisitions returns open purchase requests.
func (r *Roster) Acquisitions() []part.Part {
	return r.selectParts(func(p part.Part) bool { return p.IsAcquisition() })
}

// FindSpare returns the first spare in stock with the given name.
func (r *Roster) FindSpare(name string) (part.Part, bool) {
	spares := r.selectParts(func(p part.Part) bool { return p.IsSpare() && p.Name == name })
	if len(spares) == 0 {
		return part.Part{}, false
	}
	return spares[0], true
}

func (r *Roster) selectParts(keep func(part.Part) bool) []part.Part {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []part.Part
	for _, partID := range r.partOrder {
		p := *r.parts[partID]
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// AddPerson stores p, minting an ID when p.ID is empty.
func (r *Roster) AddPerson(p personnel.Person) (personnel.ID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		next, err := r.newID()
		if err != nil {
			return "", err
		}
		p.ID = personnel.ID(next)
	}
	if _, ok := r.people[p.ID]; ok {
		return "", ErrDuplicateID
	}
	stored := copyPerson(p)
	r.people[p.ID] = &stored
	r.personOrder = append(r.personOrder, p.ID)
	return p.ID, nil
}

// Person returns a copy of the person with id.
func (r *Roster) Person(personID personnel.ID) (personnel.Person, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.people[personID]
	if !ok {
		return personnel.Person{}, false
	}
	return copyPerson(*p), true
}

// UpdatePerson replaces a stored person.
func (r *Roster) UpdatePerson(p personnel.Person) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.people[p.ID]
	if !ok {
		return ErrNotFound
	}
	*stored = copyPerson(p)
	return nil
}

// RemovePerson deletes a person and clears every handle to them.
func (r *Roster) RemovePerson(personID personnel.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.people[personID]; !ok {
		return ErrNotFound
	}
	delete(r.people, personID)
	r.personOrder = removeID(r.personOrder, personID)
	for _, u := range r.units {
		if u.TechID == personID {
			u.TechID = ""
		}
		if u.EngineerID == personID {
			u.EngineerID = ""
		}
	}
	for _, p := range r.parts {
		if p.AssignedTech == personID {
			p.AssignedTech = ""
			p.MinutesSpent = 0
			if p.State == part.StateInProgress {
				p.State = part.StateUnassigned
			}
		}
	}
	for _, p := range r.people {
		if p.DoctorID == personID {
			p.DoctorID = ""
		}
	}
	return nil
}

// People returns every person in insertion order.
func (r *Roster) People() []personnel.Person {
	return r.selectPeople(func(personnel.Person) bool { return true })
}

// Techs returns active technicians.
func (r *Roster) Techs() []personnel.Person {
	return r.selectPeople(personnel.Person.IsTech)
}

// Doctors returns active doctors.
func (r *Roster) Doctors() []personnel.Person {
	return r.selectPeople(personnel.Person.IsDoctor)
}

// Patients returns people who need care.
func (r *Roster) Patients() []personnel.Person {
	return r.selectPeople(personnel.Person.NeedsCare)
}

func (r *Roster) selectPeople(keep func(personnel.Person) bool) []personnel.Person {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []personnel.Person
	for _, personID := range r.personOrder {
		p := *r.people[personID]
		if keep(p) {
			out = append(out, copyPerson(p))
		}
	}
	return out
}

func copyPerson(p personnel.Person) personnel.Person {
	out := p
	out.Roles = append([]personnel.Role(nil), p.Roles...)
	if p.Skills != nil {
		out.Skills = make(map[personnel.Category]personnel.Tier, len(p.Skills))
		for k, v := range p.Skills {
			out.Skills[k] = v
		}
	}
	return out
}

func removeID[T comparable](ids []T, target T) []T {
	for i, v := range ids {
		if v == target {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}
