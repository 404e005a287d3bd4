package part

import "strings"

// Mode trades time for difficulty. Extra time makes work easier and slower;
// rushing makes it harder and faster.
type Mode int

const (
	ModeNormal Mode = iota
	ModeExtra2
	ModeExtra3
	ModeExtra4
	ModeRush2
	ModeRush3
	ModeRush4
)

var modeNames = map[Mode]string{
	ModeNormal: "normal",
	ModeExtra2: "extra-2",
	ModeExtra3: "extra-3",
	ModeExtra4: "extra-4",
	ModeRush2:  "rush-2",
	ModeRush3:  "rush-3",
	ModeRush4:  "rush-4",
}

// String returns the mode label.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return modeNames[ModeNormal]
}

// ParseMode parses a mode label; empty means normal.
func ParseMode(value string) (Mode, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ModeNormal, true
	}
	for mode, name := range modeNames {
		if name == value {
			return mode, true
		}
	}
	return ModeNormal, false
}

func (m Mode) factor() int {
	switch m {
	case ModeExtra2, ModeRush2:
		return 2
	case ModeExtra3, ModeRush3:
		return 3
	case ModeExtra4, ModeRush4:
		return 4
	default:
		return 1
	}
}

// IsRush reports whether the mode shortens work.
func (m Mode) IsRush() bool {
	return m == ModeRush2 || m == ModeRush3 || m == ModeRush4
}

// SkillPenalty is the target and skill-requirement offset: negative for
// extra time, positive for rushing.
func (m Mode) SkillPenalty() int {
	steps := m.factor() - 1
	if m.IsRush() {
		return steps
	}
	return -steps
}

// Minutes scales base work time: extra-N multiplies by N, rush-N divides by N
// rounding up.
func (m Mode) Minutes(base int) int {
	if base <= 0 {
		return 0
	}
	n := m.factor()
	if m.IsRush() {
		return (base + n - 1) / n
	}
	return base * n
}
