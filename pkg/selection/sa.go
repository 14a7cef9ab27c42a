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

package selection

import "github.com/fleetsim/warehouse-engine/pkg/model"

// SAProvider is the seam pkg/sa implements: PendingPod reports the pod the
// SA optimizer's last update already prepared for station, if any (spec
// §4.4: "Simulated Annealing — delegates to the SA optimizer; if SA has
// prepared pending_pods[station], that pod is dispensed"). Kept as an
// interface here rather than importing pkg/sa directly, so this package
// does not depend on pkg/sa; *sa.Optimizer satisfies it.
type SAProvider interface {
	PendingPod(stationID string) (*model.Pod, bool)
}

// SAStrategy dispenses whatever the SA optimizer already staged for a
// station; when SA has nothing queued (not this station's turn in the
// current update, or the update hasn't run yet), it falls back to the
// greedy single-pod variant of Fully-Demand so bots are never starved
// waiting on the next SA cycle (spec §4.4).
type SAStrategy struct {
	Env      *Env
	SA       SAProvider
	Fallback *FullyDemandStrategy
}

func (s *SAStrategy) DoExtractForStation(bot *model.Bot, station *model.Station, extend bool, radius float64) TaskOutcome {
	if pre := extractPreamble(s.Env, bot, station, extend, radius); pre.handled {
		return pre.outcome
	}

	if pod, ok := s.SA.PendingPod(station.ID); ok {
		reqs := possibleRequests(pod, station, AssignedAndQueuedEqually)
		if err := s.Env.Dispatch.EnqueueExtract(bot, station, pod, reqs); err != nil {
			return NoTask
		}
		return TaskEnqueued
	}

	return s.Fallback.DoExtractForStation(bot, station, extend, radius)
}

func (s *SAStrategy) DoInsertForStation(bot *model.Bot, station *model.Station, extend bool, radius float64) TaskOutcome {
	if pre := insertPreamble(s.Env, bot, station, extend, radius, s.Fallback.Demand); pre.handled {
		return pre.outcome
	}
	return s.Fallback.DoInsertForStation(bot, station, extend, radius)
}
