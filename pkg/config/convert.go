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

package config

import (
	"github.com/fleetsim/warehouse-engine/pkg/planner"
	"github.com/fleetsim/warehouse-engine/pkg/sa"
)

// ToPlannerConfig converts the planning section into planner.Config.
func (p PlanningConfig) ToPlannerConfig() planner.Config {
	return planner.Config{
		LengthOfAWaitStep:    p.LengthOfAWaitStep,
		RuntimeLimitPerAgent: p.RuntimeLimitPerAgent,
		RunTimeLimitOverall:  p.RunTimeLimitOverall,
		LengthOfAWindow:      p.LengthOfAWindow,
		AbortAtFirstConflict: p.AbortAtFirstConflict,
		UseDeadlockHandler:   p.UseDeadlockHandler,
		MaximumWaitTime:      p.MaximumWaitTime,
		AutoSetParameter:     p.AutoSetParameter,
		Clocking:             p.Clocking,
		UseBias:              p.UseBias,
	}
}

// ToSAConfig converts the simulated-annealing section into sa.Config.
// BruteForce and WallClockCap have no spec §6 field name of their own;
// BruteForce is this config's BruteForceMethod, WallClockCap is left at
// sa.DefaultConfig's value since spec §6 never names a distinct
// wall-clock-budget option for SA (only max_iteration, which bounds
// iteration count rather than wall time).
func (s SAConfig) ToSAConfig() sa.Config {
	base := sa.DefaultConfig()
	return sa.Config{
		UpdatePeriod:  s.UpdatePeriod.Seconds(),
		SearchPodNum:  s.SearchPodNum,
		InitTemp:      s.InitTemp,
		MinTemp:       s.MinTemp,
		CoolingRate:   s.CoolingRate,
		MinDifference: s.MinDifference,
		PickTime:      base.PickTime,
		PodTransfer:   base.PodTransfer,
		BruteForce:    s.BruteForceMethod,
		WallClockCap:  base.WallClockCap,
	}
}
