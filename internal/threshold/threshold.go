// Package threshold maintains the per-user adaptive decision boundaries
// the rule catalog compares against. Each named threshold drifts toward
// the user's own recent behavior via a bounded exponential moving
// average, so "too many work hours" means too many for this user, not
// for a global default.
//
// A Store is loaded from a snapshot at the start of a generation cycle,
// mutated exactly once per metric during the cycle, and exported back to
// the caller afterward. The engine never persists it; callers own that.
package threshold

import "github.com/stillharbor/driftline/internal/stats"

// Metric names registered in the default store.
const (
	MaxWeeklyHours  = "maxWeeklyHours"
	HighStress      = "highStress"
	LowFocus        = "lowFocus"
	SessionDuration = "sessionDuration"
)

// DefaultLearningRate is the EMA weight given to each new sample.
const DefaultLearningRate = 0.1

// maxHistory bounds the per-threshold sample FIFO.
const maxHistory = 50

// Definition configures one named threshold at store construction.
type Definition struct {
	Name         string  `json:"name" yaml:"name"`
	Baseline     float64 `json:"baseline" yaml:"baseline"`
	Min          float64 `json:"min" yaml:"min"`
	Max          float64 `json:"max" yaml:"max"`
	LearningRate float64 `json:"learning_rate" yaml:"learning_rate"`
}

// State is the serializable snapshot of one threshold, handed back to
// the caller after each cycle for persistence.
type State struct {
	Name          string    `json:"name"`
	CurrentValue  float64   `json:"current_value"`
	BaselineValue float64   `json:"baseline_value"`
	MinValue      float64   `json:"min_value"`
	MaxValue      float64   `json:"max_value"`
	LearningRate  float64   `json:"learning_rate"`
	History       []float64 `json:"history,omitempty"`
}

// valid reports whether a persisted state is usable against its
// definition. Corrupt snapshots fall back to a cold start.
func (s State) valid(def Definition) bool {
	if s.MinValue > s.MaxValue {
		return false
	}
	if s.CurrentValue < def.Min || s.CurrentValue > def.Max {
		return false
	}
	if len(s.History) > maxHistory {
		return false
	}
	return true
}

// Store holds the full set of named thresholds for one user. Not safe
// for concurrent use; callers serialize generation cycles per user.
type Store struct {
	defs   map[string]Definition
	states map[string]*State
	order  []string
}

// DefaultDefinitions returns the threshold set the engine registers when
// the caller supplies none.
func DefaultDefinitions() []Definition {
	return []Definition{
		{Name: MaxWeeklyHours, Baseline: 50, Min: 35, Max: 60, LearningRate: DefaultLearningRate},
		{Name: HighStress, Baseline: 0.7, Min: 0.5, Max: 0.9, LearningRate: DefaultLearningRate},
		{Name: LowFocus, Baseline: 0.4, Min: 0.2, Max: 0.6, LearningRate: DefaultLearningRate},
		{Name: SessionDuration, Baseline: 5400, Min: 1800, Max: 10800, LearningRate: DefaultLearningRate},
	}
}

// NewStore builds a store from definitions, every threshold starting at
// its baseline.
func NewStore(defs []Definition) *Store {
	s := &Store{
		defs:   make(map[string]Definition, len(defs)),
		states: make(map[string]*State, len(defs)),
	}
	for _, d := range defs {
		if d.LearningRate <= 0 || d.LearningRate >= 1 {
			d.LearningRate = DefaultLearningRate
		}
		s.defs[d.Name] = d
		s.states[d.Name] = &State{
			Name:          d.Name,
			CurrentValue:  d.Baseline,
			BaselineValue: d.Baseline,
			MinValue:      d.Min,
			MaxValue:      d.Max,
			LearningRate:  d.LearningRate,
		}
		s.order = append(s.order, d.Name)
	}
	return s
}

// NewStoreFromSnapshot builds a store from definitions and restores
// per-threshold state from a prior cycle's snapshot. A nil snapshot, a
// missing entry, or a corrupt entry means that threshold cold-starts at
// its baseline; the cycle proceeds either way.
func NewStoreFromSnapshot(defs []Definition, snapshot map[string]State) *Store {
	s := NewStore(defs)
	for name, prev := range snapshot {
		def, ok := s.defs[name]
		if !ok || !prev.valid(def) {
			continue
		}
		restored := prev
		restored.Name = name
		restored.BaselineValue = def.Baseline
		restored.MinValue = def.Min
		restored.MaxValue = def.Max
		restored.LearningRate = def.LearningRate
		restored.History = append([]float64(nil), prev.History...)
		s.states[name] = &restored
	}
	return s
}

// Get returns the current value for name, or the registered baseline
// when the name is unknown.
func (s *Store) Get(name string) float64 {
	if st, ok := s.states[name]; ok {
		return st.CurrentValue
	}
	if def, ok := s.defs[name]; ok {
		return def.Baseline
	}
	return 0
}

// Update feeds one sample (the current period's aggregate, never an
// individual record) into the threshold's EMA and appends it to the
// bounded history. The result is clamped into the [min,max] band, so a
// run of extreme samples converges toward the bound but never crosses it.
func (s *Store) Update(name string, sample float64) {
	st, ok := s.states[name]
	if !ok {
		return
	}
	alpha := st.LearningRate
	next := (1-alpha)*st.CurrentValue + alpha*sample
	if next < st.MinValue {
		next = st.MinValue
	}
	if next > st.MaxValue {
		next = st.MaxValue
	}
	st.CurrentValue = next

	st.History = append(st.History, sample)
	if len(st.History) > maxHistory {
		st.History = st.History[len(st.History)-maxHistory:]
	}
}

// StdDev returns the sample standard deviation (n-1 denominator) over
// the threshold's history, or 0 with one or fewer samples.
func (s *Store) StdDev(name string) float64 {
	st, ok := s.states[name]
	if !ok {
		return 0
	}
	return stats.SampleStdDev(st.History)
}

// Names returns the registered threshold names in registration order.
func (s *Store) Names() []string {
	return append([]string(nil), s.order...)
}

// Snapshot exports the full per-threshold state for the caller to
// persist. Histories are copied; mutating the snapshot does not touch
// the store.
func (s *Store) Snapshot() map[string]State {
	out := make(map[string]State, len(s.states))
	for name, st := range s.states {
		cp := *st
		cp.History = append([]float64(nil), st.History...)
		out[name] = cp
	}
	return out
}
