package assignment

import (
	"github.com/louisbranch/campaignops/internal/services/ops/domain/part"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/personnel"
)

// txn records the inverse of every roster write made by one DoTask call.
type txn struct {
	tasks  TaskSource
	agents AgentSource
	undo   []func()
}

func (t *txn) onRollback(fn func()) {
	t.undo = append(t.undo, fn)
}

// rollback runs the inverses newest first.
func (t *txn) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (t *txn) addPart(p part.Part) (part.ID, error) {
	id, err := t.tasks.AddPart(p)
	if err != nil {
		return "", err
	}
	t.onRollback(func() { _ = t.tasks.RemovePart(id) })
	return id, nil
}

func (t *txn) updatePart(p part.Part) error {
	prev, ok := t.tasks.Part(p.ID)
	if err := t.tasks.UpdatePart(p); err != nil {
		return err
	}
	if ok {
		t.onRollback(func() { _ = t.tasks.UpdatePart(prev) })
	}
	return nil
}

func (t *txn) removePart(id part.ID) error {
	prev, ok := t.tasks.Part(id)
	if err := t.tasks.RemovePart(id); err != nil {
		return err
	}
	if ok {
		t.onRollback(func() { _, _ = t.tasks.AddPart(prev) })
	}
	return nil
}

func (t *txn) updatePerson(p personnel.Person) error {
	prev, ok := t.agents.Person(p.ID)
	if err := t.agents.UpdatePerson(p); err != nil {
		return err
	}
	if ok {
		t.onRollback(func() { _ = t.agents.UpdatePerson(prev) })
	}
	return nil
}
