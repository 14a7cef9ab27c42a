/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config is the tagged Configuration record of spec §6: pod
// selection mode, simulated-annealing parameters, path-planning
// parameters, fully-supplied parameters, and per-role scorer specs.
// Defaulted merges a caller-supplied Config over DefaultConfig with
// mergo, the same way the teacher resolves Settings against
// defaultSettings; Validate reports the fatal "invalid configuration"
// cases of spec §7.
package config

import (
	"fmt"
	"time"

	"github.com/imdario/mergo"
	"go.uber.org/multierr"

	"github.com/fleetsim/warehouse-engine/pkg/scoring"
)

// PodSelectionMode selects which pkg/selection.Strategy the engine wires
// up (spec §6).
type PodSelectionMode int

const (
	Default PodSelectionMode = iota
	FullyDemand
	HADOD
	SimulatedAnnealing
)

func (m PodSelectionMode) String() string {
	switch m {
	case Default:
		return "default"
	case FullyDemand:
		return "fully_demand"
	case HADOD:
		return "hadod"
	case SimulatedAnnealing:
		return "simulated_annealing"
	default:
		return "unknown"
	}
}

// TieBreaker orders equally-scored candidates when fully_supplied's
// primary ordering (submission time) ties.
type TieBreaker int

const (
	Random TieBreaker = iota
	EarliestDueTime
	FCFS
)

func (t TieBreaker) String() string {
	switch t {
	case Random:
		return "random"
	case EarliestDueTime:
		return "earliest_due_time"
	case FCFS:
		return "fcfs"
	default:
		return "unknown"
	}
}

// SAConfig holds the simulated-annealing parameters spec §6 names.
// UpdatePeriod is a time.Duration; the other fields are plain numbers
// and flags. sa.Config, pkg/sa's own working copy, is built from this
// one at construction and does not share its field set field for field.
type SAConfig struct {
	InitTemp          float64
	MinTemp           float64
	CoolingRate       float64
	MinDifference     float64
	MaxIteration      int
	SearchPodNum      int
	UpdatePeriod      time.Duration
	GreedyMethod      bool
	BruteForceMethod  bool
	InitSolutionMethod bool
}

// PlanningConfig holds the windowed-planner parameters spec §6 names,
// field-for-field compatible with planner.Config so ToPlannerConfig is a
// plain copy.
type PlanningConfig struct {
	LengthOfAWaitStep    float64
	RuntimeLimitPerAgent time.Duration
	RunTimeLimitOverall  time.Duration
	LengthOfAWindow      float64
	AbortAtFirstConflict bool
	UseDeadlockHandler   bool
	MaximumWaitTime      float64
	AutoSetParameter     bool
	Clocking             bool
	UseBias              bool
}

// FullySuppliedConfig holds the fully-supplied allocator's parameters.
type FullySuppliedConfig struct {
	TieBreaker         TieBreaker
	FastLane           bool
	FastLaneTieBreaker TieBreaker
	LateBeforeMatch    bool
}

// ScorerRole names the four scoring contexts spec §6 lists. Each maps to
// a []scoring.ScorerConfig of up to three entries: the primary scorer
// first, then up to two tie-breakers, the same order
// selection.DefaultStrategy feeds into bestof.New's lexicographic chain.
type ScorerRole []scoring.ScorerConfig

// ScorerRoles bundles the four per-role scorer chains.
type ScorerRoles struct {
	InputStationForBotWithPod  ScorerRole
	OutputStationForBotWithPod ScorerRole
	PodForInputStationBot      ScorerRole
	PodForOutputStationBot     ScorerRole
}

// Config is the top-level tagged Configuration record of spec §6.
type Config struct {
	PodSelection  PodSelectionMode
	SA            SAConfig
	Planning      PlanningConfig
	FullySupplied FullySuppliedConfig
	Scorers       ScorerRoles

	// HADODOrderManager reports whether the caller has wired a HADOD
	// order manager (the thing that owns and refreshes
	// selection.ZiopsTable). Meaningless unless PodSelection == HADOD.
	HADODOrderManager bool
}

// DefaultConfig returns conservative defaults matching sa.DefaultConfig
// and a reasonable windowed-planner setup.
func DefaultConfig() Config {
	return Config{
		PodSelection: Default,
		SA: SAConfig{
			InitTemp:      1.0,
			MinTemp:       0.01,
			CoolingRate:   0.95,
			MinDifference: 1e-4,
			MaxIteration:  1000,
			SearchPodNum:  5,
			UpdatePeriod:  30 * time.Second,
		},
		Planning: PlanningConfig{
			LengthOfAWaitStep:    1.0,
			RuntimeLimitPerAgent: 50 * time.Millisecond,
			RunTimeLimitOverall:  500 * time.Millisecond,
			LengthOfAWindow:      20.0,
			UseDeadlockHandler:   true,
			MaximumWaitTime:      5.0,
		},
		FullySupplied: FullySuppliedConfig{
			TieBreaker:         FCFS,
			FastLaneTieBreaker: FCFS,
		},
	}
}

// Defaulted merges cfg over DefaultConfig: any zero-valued field in cfg
// is filled from the default, any non-zero field overrides it (spec §6's
// configuration is a record of recognized options, not every option
// mandatory on every construction).
func Defaulted(cfg Config) (Config, error) {
	merged := DefaultConfig()
	if err := mergo.Merge(&merged, cfg, mergo.WithOverride); err != nil {
		return Config{}, fmt.Errorf("config: merging defaults: %w", err)
	}
	return merged, nil
}

// Validate reports the fatal "invalid configuration" cases of spec §7:
// an unknown enum variant, or an incompatible manager combination (HADOD
// pod selection without a HADOD order manager).
func (c Config) Validate() error {
	var errs error
	if c.PodSelection < Default || c.PodSelection > SimulatedAnnealing {
		errs = multierr.Append(errs, fmt.Errorf("config: unrecognized pod selection mode %d", c.PodSelection))
	}
	if c.PodSelection == HADOD && !c.HADODOrderManager {
		errs = multierr.Append(errs, fmt.Errorf("config: HADOD pod selection requires a HADOD order manager"))
	}
	if !validTieBreaker(c.FullySupplied.TieBreaker) {
		errs = multierr.Append(errs, fmt.Errorf("config: unrecognized fully-supplied tie breaker %d", c.FullySupplied.TieBreaker))
	}
	if !validTieBreaker(c.FullySupplied.FastLaneTieBreaker) {
		errs = multierr.Append(errs, fmt.Errorf("config: unrecognized fast-lane tie breaker %d", c.FullySupplied.FastLaneTieBreaker))
	}
	if c.SA.CoolingRate <= 0 || c.SA.CoolingRate >= 1 {
		errs = multierr.Append(errs, fmt.Errorf("config: SA cooling rate must be in (0,1), got %v", c.SA.CoolingRate))
	}
	if c.SA.InitTemp < c.SA.MinTemp {
		errs = multierr.Append(errs, fmt.Errorf("config: SA init_temp (%v) must be >= min_temp (%v)", c.SA.InitTemp, c.SA.MinTemp))
	}
	if c.Planning.LengthOfAWindow < 0 {
		errs = multierr.Append(errs, fmt.Errorf("config: length_of_a_window must be >= 0, got %d", c.Planning.LengthOfAWindow))
	}
	return errs
}

func validTieBreaker(t TieBreaker) bool {
	return t >= Random && t <= FCFS
}
