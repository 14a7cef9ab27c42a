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
	"github.com/fleetsim/warehouse-engine/pkg/bestof"
	"github.com/fleetsim/warehouse-engine/pkg/graph"
	"github.com/fleetsim/warehouse-engine/pkg/model"
	"github.com/fleetsim/warehouse-engine/pkg/planner"
	"github.com/fleetsim/warehouse-engine/pkg/scoring"
	"github.com/fleetsim/warehouse-engine/pkg/sim"
)

// DefaultStrategy picks a new pod via a lexicographic BestOf over the
// configured scorers, restricted to unused pods carrying at least one
// relevant request against the station (spec §4.4 "Default").
type DefaultStrategy struct {
	Env     *Env
	Planner *planner.Planner
	RNG     sim.Randomizer
	Physics graph.Physics
	Demand  InsertDemand

	// ExtractScorers/InsertScorers are evaluated in order by BestOf; the
	// caller compiles these once via scoring.ScorerConfig.Build().
	ExtractScorers []scoring.Scorer
	InsertScorers  []scoring.Scorer

	GlobalDemand func(model.Item) int
}

func (d *DefaultStrategy) DoExtractForStation(bot *model.Bot, station *model.Station, extend bool, radius float64) TaskOutcome {
	if pre := extractPreamble(d.Env, bot, station, extend, radius); pre.handled {
		return pre.outcome
	}

	var candidates []*model.Pod
	for _, p := range d.Env.Resources.UnusedPods() {
		if anyRelevantRequest(p, station) {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return NoTask
	}

	best := bestof.New(bestof.Minimize, d.wrapExtractScorers(bot, station)...)
	var winner *model.Pod
	for _, p := range candidates {
		if best.Consider(p) {
			winner = p
		}
	}
	if winner == nil {
		return NoTask
	}

	reqs := possibleRequests(winner, station, AssignedAndQueuedEqually)
	if err := d.Env.Dispatch.EnqueueExtract(bot, station, winner, reqs); err != nil {
		return NoTask
	}
	return TaskEnqueued
}

func (d *DefaultStrategy) DoInsertForStation(bot *model.Bot, station *model.Station, extend bool, radius float64) TaskOutcome {
	if pre := insertPreamble(d.Env, bot, station, extend, radius, d.Demand); pre.handled {
		return pre.outcome
	}

	var candidates []*model.Pod
	for _, p := range d.Env.Resources.UnusedPods() {
		if anyRelevantInsertRequest(p, station, d.Demand) {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return NoTask
	}

	best := bestof.New(bestof.Minimize, d.wrapInsertScorers(bot, station)...)
	var winner *model.Pod
	for _, p := range candidates {
		if best.Consider(p) {
			winner = p
		}
	}
	if winner == nil {
		return NoTask
	}

	reqs := possibleInsertRequests(winner, station, d.Demand)
	if err := d.Env.Dispatch.EnqueueInsert(bot, station, winner, reqs); err != nil {
		return NoTask
	}
	return TaskEnqueued
}

// wrapExtractScorers adapts the configured scoring.Scorer functions (which
// take a scoring.Context) into bestof.Scorer[*model.Pod] closures fixing
// everything but Pod/PodWaypoint.
func (d *DefaultStrategy) wrapExtractScorers(bot *model.Bot, station *model.Station) []bestof.Scorer[*model.Pod] {
	out := make([]bestof.Scorer[*model.Pod], len(d.ExtractScorers))
	for i, sc := range d.ExtractScorers {
		sc := sc
		out[i] = func(p *model.Pod) float64 {
			return sc(scoring.Context{
				Now:             d.Env.Now(),
				Bot:             bot,
				Pod:             p,
				Station:         station,
				Graph:           d.Env.Graph,
				Planner:         d.Planner,
				RNG:             d.RNG,
				Physics:         d.Physics,
				PodWaypoint:     d.Env.PodWaypoint(p),
				StationWaypoint: station.Waypoint,
				GlobalDemand:    d.GlobalDemand,
				IncludeQueued:   true,
			})
		}
	}
	return out
}

func (d *DefaultStrategy) wrapInsertScorers(bot *model.Bot, station *model.Station) []bestof.Scorer[*model.Pod] {
	out := make([]bestof.Scorer[*model.Pod], len(d.InsertScorers))
	for i, sc := range d.InsertScorers {
		sc := sc
		out[i] = func(p *model.Pod) float64 {
			return sc(scoring.Context{
				Now:             d.Env.Now(),
				Bot:             bot,
				Pod:             p,
				Station:         station,
				Graph:           d.Env.Graph,
				Planner:         d.Planner,
				RNG:             d.RNG,
				Physics:         d.Physics,
				PodWaypoint:     d.Env.PodWaypoint(p),
				StationWaypoint: station.Waypoint,
				GlobalDemand:    d.GlobalDemand,
				IncludeQueued:   true,
			})
		}
	}
	return out
}
