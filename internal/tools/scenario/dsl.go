package scenario

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

const scenarioTypeName = "scenario"

// Scenario is a loaded script: an ordered list of steps.
type Scenario struct {
	Name  string
	Steps []Step
}

// Step is one DSL call with its arguments.
type Step struct {
	Kind string
	Args map[string]any
}

// LoadScenarioFromFile runs a Lua script and returns the Scenario it builds.
func LoadScenarioFromFile(path string) (*Scenario, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerLuaTypes(state)

	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	scenario, err := runChunk(state)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scenario, nil
}

// LoadScenario runs Lua source and returns the Scenario it builds.
func LoadScenario(name, source string) (*Scenario, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerLuaTypes(state)

	if err := lua.LoadString(state, source); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	scenario, err := runChunk(state)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = name
	}
	return scenario, nil
}

func runChunk(state *lua.State) (*Scenario, error) {
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}
	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return Scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		return nil, fmt.Errorf("scenario script returned invalid Scenario")
	}
	return scenario, nil
}

func registerLuaTypes(state *lua.State) {
	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)

	state.NewTable()
	lua.SetFunctions(state, []lua.RegistryFunction{{Name: "new", Function: scenarioNew}}, 0)
	state.SetGlobal("Scenario")
}

func scenarioNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	state.PushUserData(&Scenario{Name: name})
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

// Steps taking a table of options. Name marks steps whose table needs a
// "name" entry.
var tableSteps = []struct {
	kind string
	name bool
}{
	{kind: "campaign"},
	{kind: "unit", name: true},
	{kind: "tech", name: true},
	{kind: "doctor", name: true},
	{kind: "person", name: true},
	{kind: "part", name: true},
	{kind: "contract", name: true},
	{kind: "loan"},
	{kind: "do_task"},
	{kind: "bonus_part"},
	{kind: "assign_doctor"},
	{kind: "advance"},
	{kind: "expect_pool"},
	{kind: "expect_state"},
	{kind: "expect_blocked"},
	{kind: "expect_balance"},
}

var scenarioMethods = buildScenarioMethods()

func buildScenarioMethods() []lua.RegistryFunction {
	methods := []lua.RegistryFunction{
		{Name: "astechs", Function: countStep("astechs")},
		{Name: "medics", Function: countStep("medics")},
		{Name: "expect_date", Function: scenarioExpectDate},
		{Name: "resolve_retirements", Function: scenarioResolveRetirements},
	}
	for _, s := range tableSteps {
		methods = append(methods, lua.RegistryFunction{Name: s.kind, Function: tableStep(s.kind, s.name)})
	}
	return methods
}

func tableStep(kind string, requireName bool) lua.Function {
	return func(state *lua.State) int {
		scenario := checkScenario(state)
		data := optionalTable(state, 2)
		if requireName && requiredString(data, "name") == "" {
			lua.Errorf(state, "%s name is required", kind)
			return 0
		}
		appendStep(scenario, kind, data)
		return 0
	}
}

func countStep(kind string) lua.Function {
	return func(state *lua.State) int {
		scenario := checkScenario(state)
		count := lua.CheckInteger(state, 2)
		if count <= 0 {
			lua.ArgumentError(state, 2, "count must be positive")
			return 0
		}
		appendStep(scenario, kind, map[string]any{"count": count})
		return 0
	}
}

func scenarioExpectDate(state *lua.State) int {
	scenario := checkScenario(state)
	date := lua.CheckString(state, 2)
	appendStep(scenario, "expect_date", map[string]any{"date": date})
	return 0
}

func scenarioResolveRetirements(state *lua.State) int {
	scenario := checkScenario(state)
	appendStep(scenario, "resolve_retirements", nil)
	return 0
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if scenario, ok := ud.(*Scenario); ok && scenario != nil {
		return scenario
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

func appendStep(scenario *Scenario, kind string, data map[string]any) int {
	if scenario == nil {
		return -1
	}
	if data == nil {
		data = map[string]any{}
	}
	scenario.Steps = append(scenario.Steps, Step{Kind: kind, Args: data})
	return len(scenario.Steps) - 1
}

func optionalTable(state *lua.State, index int) map[string]any {
	if state.IsNoneOrNil(index) || state.TypeOf(index) != lua.TypeTable {
		return map[string]any{}
	}
	return tableToMap(state, index)
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	default:
		return nil
	}
}

func tableToGo(state *lua.State, index int) any {
	if state.TypeOf(index) != lua.TypeTable {
		return nil
	}

	index = state.AbsIndex(index)
	isArray := true
	maxIndex := 0
	count := 0
	state.PushNil()
	for state.Next(index) {
		if isArray {
			if state.TypeOf(-2) != lua.TypeNumber {
				isArray = false
			} else if idx, ok := state.ToInteger(-2); ok && idx > 0 {
				count++
				if idx > maxIndex {
					maxIndex = idx
				}
			} else {
				isArray = false
			}
		}
		state.Pop(1)
	}

	if isArray && count > 0 && maxIndex == count {
		result := make([]any, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			state.RawGetInt(index, i)
			result = append(result, luaToGo(state, -1))
			state.Pop(1)
		}
		return result
	}

	return tableToMap(state, index)
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 {
		return int(value)
	}
	return value
}
