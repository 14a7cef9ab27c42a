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

package sa

import (
	"math"
	"time"

	"github.com/fleetsim/warehouse-engine/pkg/model"
)

// move describes the delta and bookkeeping of a proposed swap, replan, or
// replace (spec §4.6 step 7). swap carries both sides so commitMove can
// re-derive both stations' solutions atomically.
type move struct {
	kind       string // "swap", "replan", "replace"
	delta      float64
	space      *searchSpace
	point      point
	otherSpace *searchSpace
	otherPoint point
}

// metropolis runs spec §4.6 step 7: repeatedly sample a station/point pair
// by CDF weight, propose a swap/replan/replace move, and accept it per the
// Metropolis criterion, cooling T until it drops below MinTemp or the
// per-update wall-clock budget (10ms per spec, here Config.WallClockCap)
// is exhausted.
func (o *Optimizer) metropolis(spaces []*searchSpace, solutions map[string]*solution, claimed map[*model.Order]bool, now float64, wallStart time.Time) {
	if len(spaces) == 0 {
		return
	}
	byStation := make(map[string]*searchSpace, len(spaces))
	for _, sp := range spaces {
		byStation[sp.station.ID] = sp
	}

	T := o.Config.InitTemp
	lastDelta := make(map[string]float64, len(spaces))

	for T >= o.Config.MinTemp {
		if time.Since(wallStart) > o.Config.WallClockCap {
			break
		}
		sp := spaces[o.RNG.Intn(len(spaces))]
		if len(sp.cdf) == 0 {
			T *= o.Config.CoolingRate
			continue
		}
		idx := sampleByCDF(sp.cdf, o.RNG.Float64())
		pt := sp.points[idx]

		mv, ok := o.proposeMove(sp, pt, solutions, byStation)
		if !ok {
			T *= o.Config.CoolingRate
			continue
		}
		lastDelta[sp.station.ID] = mv.delta

		if mv.delta < 0 || math.Exp(-10000*mv.delta/T) > o.RNG.Float64() {
			o.commitMove(mv, solutions, claimed, now)
		}

		allSmall := true
		for _, sp2 := range spaces {
			d, seen := lastDelta[sp2.station.ID]
			if !seen || math.Abs(d) >= o.Config.MinDifference {
				allSmall = false
				break
			}
		}
		if allSmall {
			break
		}
		T *= o.Config.CoolingRate
	}
}

// proposeMove classifies pt per spec §4.6 step 7 and computes its delta,
// without mutating any solution.
func (o *Optimizer) proposeMove(sp *searchSpace, pt point, solutions map[string]*solution, byStation map[string]*searchSpace) (move, bool) {
	current := solutions[sp.station.ID]

	if owner := findOwningStation(solutions, pt.pod); owner != "" && owner != sp.station.ID {
		otherSpace := byStation[owner]
		if otherSpace == nil {
			return move{}, false
		}
		mirrored, ok := findMirroredPoint(otherSpace, currentPod(current))
		if !ok || current == nil {
			return move{}, false
		}
		other := solutions[owner]
		delta := (current.rate - pt.rate) + (other.rate - mirrored.rate)
		return move{kind: "swap", delta: delta, space: sp, point: pt, otherSpace: otherSpace, otherPoint: mirrored}, true
	}

	if current != nil && current.pod == pt.pod {
		return move{kind: "replan", delta: current.rate - pt.rate, space: sp, point: pt}, true
	}

	return move{kind: "replace", delta: current.rateOrZero() - pt.rate, space: sp, point: pt}, true
}

func currentPod(s *solution) *model.Pod {
	if s == nil {
		return nil
	}
	return s.pod
}

func (s *solution) rateOrZero() float64 {
	if s == nil {
		return 0
	}
	return s.rate
}

func findOwningStation(solutions map[string]*solution, pod *model.Pod) string {
	for id, s := range solutions {
		if s != nil && s.pod == pod {
			return id
		}
	}
	return ""
}

func findMirroredPoint(space *searchSpace, pod *model.Pod) (point, bool) {
	if space == nil || pod == nil {
		return point{}, false
	}
	for _, p := range space.points {
		if p.pod == pod {
			return p, true
		}
	}
	return point{}, false
}

// commitMove re-derives the affected station(s)' solutions from an
// accepted move (spec §4.6 step 7 "on acceptance, commit the new scheduled
// paths").
func (o *Optimizer) commitMove(mv move, solutions map[string]*solution, claimed map[*model.Order]bool, now float64) {
	switch mv.kind {
	case "swap":
		releaseSolution(solutions[mv.space.station.ID], claimed)
		releaseSolution(solutions[mv.otherSpace.station.ID], claimed)
		if fresh := o.createSolution(mv.space, mv.point, now, claimed); fresh != nil {
			solutions[mv.space.station.ID] = fresh
			claimOrders(fresh, claimed)
		}
		if fresh := o.createSolution(mv.otherSpace, mv.otherPoint, now, claimed); fresh != nil {
			solutions[mv.otherSpace.station.ID] = fresh
			claimOrders(fresh, claimed)
		}
	default: // "replan", "replace"
		releaseSolution(solutions[mv.space.station.ID], claimed)
		if fresh := o.createSolution(mv.space, mv.point, now, claimed); fresh != nil {
			solutions[mv.space.station.ID] = fresh
			claimOrders(fresh, claimed)
		}
	}
}

func releaseSolution(s *solution, claimed map[*model.Order]bool) {
	if s == nil {
		return
	}
	for _, ord := range s.orders {
		delete(claimed, ord)
	}
}

func claimOrders(s *solution, claimed map[*model.Order]bool) {
	for _, ord := range s.orders {
		claimed[ord] = true
	}
}

// bruteForce is the configured alternate to the Metropolis loop: up to 5
// passes trying every point in every search space, accepting only strict
// improvements, stopping early once a pass makes no change (spec §4.6).
func (o *Optimizer) bruteForce(spaces []*searchSpace, solutions map[string]*solution, claimed map[*model.Order]bool, now float64) {
	for pass := 0; pass < 5; pass++ {
		changed := false
		for _, sp := range spaces {
			current := solutions[sp.station.ID]
			for _, pt := range sp.points {
				if current != nil && pt.rate <= current.rate {
					continue
				}
				releaseSolution(current, claimed)
				fresh := o.createSolution(sp, pt, now, claimed)
				if fresh == nil {
					if current != nil {
						claimOrders(current, claimed)
					}
					continue
				}
				solutions[sp.station.ID] = fresh
				claimOrders(fresh, claimed)
				current = fresh
				changed = true
			}
		}
		if !changed {
			break
		}
	}
}

// emit implements spec §4.6 step 8: enqueue each station's chosen Extract
// task, fold in station-local extract requests for already-inbound pods,
// allocate the winning orders, and stage the chosen pod for dispatch so
// selection.SAStrategy can hand it to the bot on its next request.
func (o *Optimizer) emit(solutions map[string]*solution) {
	taskMap := map[string]string{}
	for _, sol := range solutions {
		if sol == nil {
			continue
		}
		for _, ord := range sol.orders {
			if err := o.Book.AllocateOrder(ord, sol.station, nil); err != nil {
				continue
			}
		}
		for pod, reqs := range sol.requests {
			if pod == sol.pod {
				continue
			}
			for _, r := range reqs {
				pod.RegisterItem(r.Item, 1)
			}
		}
		o.pendingPods[sol.station.ID] = sol.pod
		taskMap[sol.bot.ID] = sol.station.ID + ":" + sol.pod.ID
	}

	current := map[string]string{}
	for _, sol := range solutions {
		if sol == nil {
			continue
		}
		if sol.bot.CurrentTask != nil {
			current[sol.bot.ID] = taskMap[sol.bot.ID]
		}
	}
	o.Env.Planner.OutputScheduledPriority(taskMap, current)
}
