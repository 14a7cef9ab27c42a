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

package scoring

import (
	"math"

	"github.com/fleetsim/warehouse-engine/pkg/graph"
	"github.com/fleetsim/warehouse-engine/pkg/planner"
)

// buildNearest composes the bot->pod and pod->station legs additively
// (spec §4.2: "for multi-hop... the metric composes additively"). A
// missing waypoint on either leg falls back to the configured wrong-tier
// penalty distance rather than aborting the whole score. Context.PodWaypoint
// and Context.StationWaypoint must be populated by the caller since Pod and
// Station carry no waypoint field of their own (spec §3's Pod/Station
// entities track inventory and capacity, not position).
func buildNearest(cfg ScorerConfig) Scorer {
	return func(c Context) float64 {
		total := 0.0
		if c.Bot != nil && c.Pod != nil {
			total += nodeDistance(c, cfg, c.Bot.CurrentWaypoint, c.PodWaypoint)
		}
		if c.Pod != nil && c.Station != nil {
			total += nodeDistance(c, cfg, c.PodWaypoint, c.StationWaypoint)
		}
		return applyTierPenalty(total, c, cfg.PreferSameTier)
	}
}

func nodeDistance(c Context, cfg ScorerConfig, a, b graph.NodeID) float64 {
	if a == "" || b == "" || c.Graph == nil || !c.Graph.HasNode(a) || !c.Graph.HasNode(b) {
		return cfg.WrongTierPenaltyDistance
	}
	switch cfg.Metric {
	case MetricEuclidean:
		if cg, ok := c.Graph.(graph.Coordinates); ok {
			ax, ay, aok := cg.Position(a)
			bx, by, bok := cg.Position(b)
			if aok && bok {
				return math.Hypot(ax-bx, ay-by)
			}
		}
		return c.Graph.Distance(a, b)
	case MetricManhattan:
		if cg, ok := c.Graph.(graph.Coordinates); ok {
			ax, ay, aok := cg.Position(a)
			bx, by, bok := cg.Position(b)
			if aok && bok {
				return math.Abs(ax-bx) + math.Abs(ay-by)
			}
		}
		return c.Graph.Distance(a, b)
	case MetricShortestPath:
		return c.Graph.Distance(a, b)
	case MetricShortestTime:
		if c.Planner != nil && c.Bot != nil && c.Physics != nil {
			agent := &planner.Agent{ID: c.Bot.ID, Start: a, Goal: b, CarryingPod: c.Pod != nil, Physics: c.Physics}
			endTime, found := c.Planner.FindPath(agent, c.Now, a, b, c.Pod != nil)
			if !found {
				return Inf
			}
			return endTime - c.Now
		}
		return c.Graph.Distance(a, b)
	default:
		return c.Graph.Distance(a, b)
	}
}
