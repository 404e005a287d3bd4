package scenario

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/campaignops/internal/services/ops/app"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/contract"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/dayadvance"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/part"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/personnel"
	"github.com/louisbranch/campaignops/internal/services/ops/domain/unit"
)

func (r *Runner) failf(format string, args ...any) error {
	return r.assertions.Failf(format, args...)
}

func (r *Runner) assertf(format string, args ...any) error {
	return r.assertions.Assertf(format, args...)
}

func (r *Runner) ensureCampaign(state *scenarioState) error {
	if state.service == nil {
		return r.failf("campaign is required before this step")
	}
	return nil
}

func (r *Runner) unitID(state *scenarioState, name string) (unit.ID, error) {
	if name == "" {
		return "", nil
	}
	id, ok := state.units[name]
	if !ok {
		return "", r.failf("unknown unit %q", name)
	}
	return id, nil
}

func (r *Runner) personID(state *scenarioState, name string) (personnel.ID, error) {
	id, ok := state.people[name]
	if !ok {
		return "", r.failf("unknown person %q", name)
	}
	return id, nil
}

func (r *Runner) partID(state *scenarioState, name string) (part.ID, error) {
	id, ok := state.parts[name]
	if !ok {
		return "", r.failf("unknown part %q", name)
	}
	return id, nil
}

func (r *Runner) contractID(state *scenarioState, name string) (contract.ID, error) {
	if name == "" {
		return "", nil
	}
	id, ok := state.contracts[name]
	if !ok {
		return "", r.failf("unknown contract %q", name)
	}
	return id, nil
}

func parseWeekday(value string) (time.Weekday, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for day := time.Sunday; day <= time.Saturday; day++ {
		if strings.ToLower(day.String()) == value {
			return day, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", value)
}

func parseSkill(args map[string]any, key string, fallback personnel.Tier) (personnel.Tier, error) {
	value := optionalString(args, key, "")
	if value == "" {
		return fallback, nil
	}
	tier, ok := personnel.ParseTier(value)
	if !ok {
		return 0, fmt.Errorf("unknown skill %q", value)
	}
	return tier, nil
}

// scriptConfirmer answers day-advance prompts from the script. Keys match
// exactly first, then by prefix ("under-deployed" answers every contract).
// Unanswered prompts take the fallback, or the first offered choice when the
// fallback is not offered.
type scriptConfirmer struct {
	answers  map[string]string
	fallback dayadvance.Choice
	logf     func(format string, args ...any)
}

func (c scriptConfirmer) Confirm(_ context.Context, prompt app.Prompt) (dayadvance.Choice, error) {
	key := string(prompt.Key)
	choice, ok := c.lookup(key)
	if !ok {
		choice = c.fallback
		if !offered(prompt.Choices, choice) && len(prompt.Choices) > 0 {
			choice = prompt.Choices[0]
		}
	}
	if c.logf != nil {
		c.logf("confirm %s: %s", key, choice)
	}
	return choice, nil
}

func (c scriptConfirmer) Notify(_ context.Context, text string) {
	if c.logf != nil {
		c.logf("notice: %s", text)
	}
}

func (c scriptConfirmer) lookup(key string) (dayadvance.Choice, bool) {
	if v, ok := c.answers[key]; ok {
		return dayadvance.Choice(v), true
	}
	if prefix, _, found := strings.Cut(key, "/"); found {
		if v, ok := c.answers[prefix]; ok {
			return dayadvance.Choice(v), true
		}
	}
	return "", false
}

func offered(choices []dayadvance.Choice, choice dayadvance.Choice) bool {
	for _, c := range choices {
		if c == choice {
			return true
		}
	}
	return false
}

func requiredString(args map[string]any, key string) string {
	value, ok := args[key]
	if !ok {
		return ""
	}
	text, ok := value.(string)
	if ok && text != "" {
		return text
	}
	return ""
}

func readInt(args map[string]any, key string) (int, bool) {
	value, ok := args[key]
	if !ok {
		return 0, false
	}
	switch typed := value.(type) {
	case int:
		return typed, true
	case float64:
		return int(typed), true
	default:
		return 0, false
	}
}

func readIntSlice(args map[string]any, key string) []int {
	values, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(values))
	for _, v := range values {
		switch typed := v.(type) {
		case int:
			out = append(out, typed)
		case float64:
			out = append(out, int(typed))
		}
	}
	return out
}

func readStringMap(args map[string]any, key string) map[string]string {
	values, ok := args[key].(map[string]any)
	if !ok {
		return map[string]string{}
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		if text, ok := v.(string); ok {
			out[k] = text
		}
	}
	return out
}

func optionalString(args map[string]any, key, fallback string) string {
	value, ok := args[key]
	if !ok {
		return fallback
	}
	text, ok := value.(string)
	if ok && text != "" {
		return text
	}
	return fallback
}

func optionalInt(args map[string]any, key string, fallback int) int {
	value, ok := readInt(args, key)
	if !ok {
		return fallback
	}
	return value
}

func optionalBool(args map[string]any, key string, fallback bool) bool {
	value, ok := readBool(args, key)
	if !ok {
		return fallback
	}
	return value
}

func readBool(args map[string]any, key string) (bool, bool) {
	value, ok := args[key]
	if !ok {
		return false, false
	}
	switch typed := value.(type) {
	case bool:
		return typed, true
	case string:
		lower := strings.ToLower(strings.TrimSpace(typed))
		switch lower {
		case "true", "yes", "1":
			return true, true
		case "false", "no", "0":
			return false, true
		}
	}
	return false, false
}
