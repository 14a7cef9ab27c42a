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
	"sort"

	"github.com/samber/lo"

	"github.com/fleetsim/warehouse-engine/pkg/model"
	"github.com/fleetsim/warehouse-engine/pkg/orderbook"
)

// FullyDemandStrategy implements spec §4.4's "Fully-Demand": prefer orders
// the station can already fulfill without moving a pod, then the single
// unused pod that fully satisfies the most backlog orders together with
// the station's current inventory, and only falls back to claiming a set
// of pods (pod-set mode) when no single pod suffices.
type FullyDemandStrategy struct {
	Env        *Env
	Book       *orderbook.OrderBook
	Demand     InsertDemand
	LateEnough func(station *model.Station) bool

	// pendingPods holds pods claimed in pod-set mode but not yet dispensed
	// to a bot, released one at a time as subsequent DoExtractForStation
	// calls for the same station come in (spec §4.4 step 3).
	pendingPods map[string][]*model.Pod
}

func newPendingPods() map[string][]*model.Pod { return map[string][]*model.Pod{} }

func (f *FullyDemandStrategy) ensurePending() {
	if f.pendingPods == nil {
		f.pendingPods = newPendingPods()
	}
}

func (f *FullyDemandStrategy) DoExtractForStation(bot *model.Bot, station *model.Station, extend bool, radius float64) TaskOutcome {
	if pre := extractPreamble(f.Env, bot, station, extend, radius); pre.handled {
		return pre.outcome
	}
	f.ensurePending()

	// Step 3 continuation: a prior call already committed to a pod-set for
	// this station; dispense the next pending pod before doing anything
	// else.
	if pods := f.pendingPods[station.ID]; len(pods) > 0 {
		pod := pods[0]
		f.pendingPods[station.ID] = pods[1:]
		if err := f.Env.Resources.ReleasePod(pod); err != nil {
			return NoTask
		}
		return f.claimAndEnqueue(bot, station, pod)
	}

	// Step 1: allocate whatever the station can already cover from
	// inbound pods alone, no bot movement required.
	f.Book.FullySupplied(station)

	if !station.HasCapacity(1) {
		return NoTask
	}

	// Step 2: score every unused pod by how many backlog orders become
	// fully fulfillable using station.available + pod.available; argmax.
	unused := f.Env.Resources.UnusedPods()
	scored := lo.Map(unused, func(p *model.Pod, _ int) podScore {
		return podScore{pod: p, n: countFullyCoverable(f.Book, station, p)}
	})
	best := -1
	var bestPod *model.Pod
	if len(scored) > 0 {
		top := lo.MaxBy(scored, func(a, b podScore) bool { return a.n > b.n })
		bestPod, best = top.pod, top.n
	}
	if bestPod != nil && best > 0 {
		return f.claimAndEnqueue(bot, station, bestPod)
	}

	// Step 3: pod-set mode. Pick the oldest backlog order fulfillable by
	// some subset of unused pods, greedily add pods by descending
	// contribution until satisfied, claim all, dispense the first.
	order, set := f.buildPodSet(station, unused)
	if order == nil || len(set) == 0 {
		return NoTask
	}
	for _, p := range set {
		if err := f.Env.Resources.ClaimPod(p, "", "pod_set"); err != nil {
			return NoTask
		}
	}
	f.Book.ExtraDecidePendingOrder(station, set, order)

	first := set[0]
	rest := set[1:]
	f.pendingPods[station.ID] = append(f.pendingPods[station.ID], rest...)
	if err := f.Env.Resources.ReleasePod(first); err != nil {
		return NoTask
	}
	return f.claimAndEnqueue(bot, station, first)
}

func (f *FullyDemandStrategy) claimAndEnqueue(bot *model.Bot, station *model.Station, pod *model.Pod) TaskOutcome {
	reqs := possibleRequests(pod, station, AssignedAndQueuedEqually)
	if err := f.Env.Dispatch.EnqueueExtract(bot, station, pod, reqs); err != nil {
		return NoTask
	}
	return TaskEnqueued
}

// countFullyCoverable counts how many backlog orders become fully
// fulfillable by station.available(item)+pod.available(item) for every
// item the order needs.
func countFullyCoverable(book *orderbook.OrderBook, station *model.Station, pod *model.Pod) int {
	supply := func(item model.Item) int {
		return station.AvailableItemCount(item) + pod.AvailableCount(item)
	}
	n := 0
	for _, o := range book.Pending() {
		ok := true
		for _, pos := range o.Positions {
			if supply(pos.Item) < pos.Required {
				ok = false
				break
			}
		}
		if ok {
			n++
		}
	}
	return n
}

// buildPodSet finds the oldest backlog order fulfillable by some subset of
// unused, then greedily grows a covering pod set in descending order of
// items-contributed until the order is satisfied.
func (f *FullyDemandStrategy) buildPodSet(station *model.Station, unused []*model.Pod) (*model.Order, []*model.Pod) {
	totalSupply := func(item model.Item) int {
		n := station.AvailableItemCount(item)
		for _, p := range unused {
			n += p.AvailableCount(item)
		}
		return n
	}

	var target *model.Order
	for _, o := range f.Book.Pending() {
		ok := true
		for _, pos := range o.Positions {
			if totalSupply(pos.Item) < pos.Required {
				ok = false
				break
			}
		}
		if ok {
			target = o
			break
		}
	}
	if target == nil {
		return nil, nil
	}

	type contribution struct {
		pod   *model.Pod
		count int
	}
	contributions := make([]contribution, 0, len(unused))
	for _, p := range unused {
		c := 0
		for _, pos := range target.Positions {
			if n := p.AvailableCount(pos.Item); n > 0 {
				if n > pos.Required {
					n = pos.Required
				}
				c += n
			}
		}
		if c > 0 {
			contributions = append(contributions, contribution{pod: p, count: c})
		}
	}
	sort.SliceStable(contributions, func(i, j int) bool { return contributions[i].count > contributions[j].count })

	remaining := map[string]int{}
	for _, pos := range target.Positions {
		remaining[pos.Item.ID] = pos.Required
		if station.AvailableItemCount(pos.Item) > 0 {
			n := station.AvailableItemCount(pos.Item)
			if n > remaining[pos.Item.ID] {
				n = remaining[pos.Item.ID]
			}
			remaining[pos.Item.ID] -= n
		}
	}

	var set []*model.Pod
	allSatisfied := func() bool {
		for _, n := range remaining {
			if n > 0 {
				return false
			}
		}
		return true
	}
	for _, c := range contributions {
		if allSatisfied() {
			break
		}
		used := false
		for _, pos := range target.Positions {
			need := remaining[pos.Item.ID]
			if need <= 0 {
				continue
			}
			take := c.pod.AvailableCount(pos.Item)
			if take > need {
				take = need
			}
			if take > 0 {
				remaining[pos.Item.ID] -= take
				used = true
			}
		}
		if used {
			set = append(set, c.pod)
		}
	}
	if !allSatisfied() {
		return nil, nil
	}
	return target, set
}

// podScore pairs a pod with an integer fitness used by the argmax passes
// above and below.
type podScore struct {
	pod *model.Pod
	n   int
}

func (f *FullyDemandStrategy) DoInsertForStation(bot *model.Bot, station *model.Station, extend bool, radius float64) TaskOutcome {
	if pre := insertPreamble(f.Env, bot, station, extend, radius, f.Demand); pre.handled {
		return pre.outcome
	}

	scored := lo.Map(f.Env.Resources.UnusedPods(), func(p *model.Pod, _ int) podScore {
		return podScore{pod: p, n: len(possibleInsertRequests(p, station, f.Demand))}
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
	reqs := possibleInsertRequests(bestPod, station, f.Demand)
	if err := f.Env.Dispatch.EnqueueInsert(bot, station, bestPod, reqs); err != nil {
		return NoTask
	}
	return TaskEnqueued
}
