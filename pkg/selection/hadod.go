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

import (
	"github.com/samber/lo"

	"github.com/fleetsim/warehouse-engine/pkg/model"
)

// ZiopsTable is the pre-computed station->pod->requests table an external
// HADOD order manager maintains (spec §4.4: "_Ziops[station][pod] =
// list<ExtractRequest>"). HADODStrategy deletes a station's entry for a
// pod once it has enqueued that pod; it makes no other change.
type ZiopsTable map[string]map[*model.Pod][]*model.ExtractRequest

// HADODStrategy picks the unused pod HADOD has already paired with station
// in Ziops, minimizing composed shortest-path distance (bot->pod, then
// pod->station), rather than running its own scorer pipeline (spec §4.4).
type HADODStrategy struct {
	Env    *Env
	Ziops  ZiopsTable
	Demand InsertDemand
}

func (h *HADODStrategy) DoExtractForStation(bot *model.Bot, station *model.Station, extend bool, radius float64) TaskOutcome {
	if pre := extractPreamble(h.Env, bot, station, extend, radius); pre.handled {
		return pre.outcome
	}

	paired := h.Ziops[station.ID]
	if len(paired) == 0 {
		return NoTask
	}

	var bestPod *model.Pod
	bestDist := -1.0
	unusedSet := lo.SliceToMap(h.Env.Resources.UnusedPods(), func(p *model.Pod) (*model.Pod, bool) { return p, true })
	for pod := range paired {
		if !unusedSet[pod] {
			continue
		}
		botToPod := h.Env.Graph.Distance(h.Env.BotWaypoint(bot), h.Env.PodWaypoint(pod))
		podToStation := h.Env.Graph.Distance(h.Env.PodWaypoint(pod), station.Waypoint)
		d := botToPod + podToStation
		if bestPod == nil || d < bestDist {
			bestPod = pod
			bestDist = d
		}
	}
	if bestPod == nil {
		return NoTask
	}

	reqs := paired[bestPod]
	if len(reqs) == 0 {
		reqs = possibleRequests(bestPod, station, AssignedAndQueuedEqually)
	}
	if err := h.Env.Dispatch.EnqueueExtract(bot, station, bestPod, reqs); err != nil {
		return NoTask
	}
	delete(paired, bestPod)
	return TaskEnqueued
}

func (h *HADODStrategy) DoInsertForStation(bot *model.Bot, station *model.Station, extend bool, radius float64) TaskOutcome {
	if pre := insertPreamble(h.Env, bot, station, extend, radius, h.Demand); pre.handled {
		return pre.outcome
	}

	scored := lo.Map(h.Env.Resources.UnusedPods(), func(p *model.Pod, _ int) podScore {
		return podScore{pod: p, n: len(possibleInsertRequests(p, station, h.Demand))}
	})
	var bestPod *model.Pod
	best := -1
	if len(scored) > 0 {
		top := lo.MaxBy(scored, func(a, b podScore) bool { return a.n > b.n })
		bestPod, best = top.pod, top.n
	}
	if bestPod == nil || best <= 0 {
		return NoTask
	}
	reqs := possibleInsertRequests(bestPod, station, h.Demand)
	if err := h.Env.Dispatch.EnqueueInsert(bot, station, bestPod, reqs); err != nil {
		return NoTask
	}
	return TaskEnqueued
}
