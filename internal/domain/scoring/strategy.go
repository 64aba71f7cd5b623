package scoring

import (
	"sort"

	"github.com/okian/taskrank/internal/domain/types"
)

// Weights is a strategy's weight profile. Weights need not sum to 1.
type Weights = types.Weights

// Built-in strategy names.
const (
	StrategyFastestWins    = "fastest_wins"
	StrategyHighImpact     = "high_impact"
	StrategyDeadlineDriven = "deadline_driven"
	StrategySmartBalance   = "smart_balance"
	StrategySmart          = "smart"

	// DefaultStrategy is used for empty or unknown names.
	DefaultStrategy = StrategySmart
)

var defaultWeights = Weights{Urgency: 0.4, Importance: 0.3, Effort: 0.2, Dependency: 0.1}

// strategies is built once and never written afterwards.
var strategies = map[string]Weights{ //nolint:gochecknoglobals // read-only registry
	StrategyFastestWins:    {Urgency: 0.25, Importance: 0.2, Effort: 0.45, Dependency: 0.1},
	StrategyHighImpact:     {Urgency: 0.2, Importance: 0.55, Effort: 0.15, Dependency: 0.1},
	StrategyDeadlineDriven: {Urgency: 0.6, Importance: 0.2, Effort: 0.1, Dependency: 0.1},
	StrategySmartBalance:   defaultWeights,
	StrategySmart:          defaultWeights,
}

// Lookup returns the weights for name, or the default profile when name is
// not registered.
func Lookup(name string) Weights {
	w, _ := Resolve(name)
	return w
}

// Resolve is Lookup that also reports whether name was registered.
func Resolve(name string) (Weights, bool) {
	if w, ok := strategies[name]; ok {
		return w, true
	}
	return strategies[DefaultStrategy], false
}

// Strategies lists the registry sorted by name.
func Strategies() types.StrategyList {
	list := types.StrategyList{
		Default:    DefaultStrategy,
		Strategies: make([]types.StrategyInfo, 0, len(strategies)),
	}
	for name, w := range strategies {
		list.Strategies = append(list.Strategies, types.StrategyInfo{Name: name, Weights: w})
	}
	sort.Slice(list.Strategies, func(i, j int) bool {
		return list.Strategies[i].Name < list.Strategies[j].Name
	})
	return list
}
