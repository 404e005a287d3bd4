package assignment

import "sync"

// Refresh hook names, run in this order after every action.
const (
	HookTasks        = "tasks"
	HookAcquisitions = "acquisitions"
	HookTechs        = "techs"
	HookParts        = "parts"
)

var hookOrder = []string{HookTasks, HookAcquisitions, HookTechs, HookParts}

type hook struct {
	name string
	run  func()
}

type hooks struct {
	mu    sync.Mutex
	items []hook
}

// OnRefresh registers fn to run after each action. Known hook names run in
// their fixed order; others follow in registration order.
func (c *Coordinator) OnRefresh(name string, fn func()) {
	if fn == nil {
		return
	}
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.items = append(c.hooks.items, hook{name: name, run: fn})
}

// Refresh runs every registered hook.
func (c *Coordinator) Refresh() {
	c.hooks.run()
}

func (h *hooks) run() {
	h.mu.Lock()
	items := append([]hook(nil), h.items...)
	h.mu.Unlock()

	ran := make([]bool, len(items))
	for _, name := range hookOrder {
		for i, item := range items {
			if item.name == name {
				item.run()
				ran[i] = true
			}
		}
	}
	for i, item := range items {
		if !ran[i] {
			item.run()
		}
	}
}

// Selection is a remembered list cursor.
type Selection[T comparable] struct {
	ID    T
	Index int
	Valid bool
}

// RestoreSelection re-finds prev in rows: by identity first, then the row at
// the previous index clamped into range.
func RestoreSelection[T comparable](prev Selection[T], rows []T) Selection[T] {
	if !prev.Valid || len(rows) == 0 {
		return Selection[T]{}
	}
	for i, row := range rows {
		if row == prev.ID {
			return Selection[T]{ID: row, Index: i, Valid: true}
		}
	}
	idx := min(max(prev.Index, 0), len(rows)-1)
	return Selection[T]{ID: rows[idx], Index: idx, Valid: true}
}
