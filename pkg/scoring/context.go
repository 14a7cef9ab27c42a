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

// Package scoring implements the pure (context) -> float64 scorer family
// of spec §4.2. Every scorer follows the minimization convention: lower is
// better.
package scoring

import (
	"math"

	"github.com/fleetsim/warehouse-engine/pkg/graph"
	"github.com/fleetsim/warehouse-engine/pkg/model"
	"github.com/fleetsim/warehouse-engine/pkg/planner"
	"github.com/fleetsim/warehouse-engine/pkg/sim"
)

// Inf stands in for an unreachable candidate's score.
const Inf = math.MaxFloat64

// Context is the explicit bundle a scorer invocation closes over, replacing
// the mutable _currentBot/_currentPod/_currentStation fields of the
// original design (spec §9: "re-architect as explicit context structs").
type Context struct {
	Now     float64
	Bot     *model.Bot
	Pod     *model.Pod
	Station *model.Station
	Graph   graph.Graph
	Planner *planner.Planner
	RNG     sim.Randomizer
	Physics graph.Physics

	// PodWaypoint and StationWaypoint resolve the current graph position of
	// Pod and Station: neither model type carries a waypoint field of its
	// own (spec §3 tracks inventory and capacity, not position), so the
	// caller supplies them from whatever side-tracking it keeps (typically
	// the carrying bot's waypoint, or the station's fixed waypoint).
	PodWaypoint     graph.NodeID
	StationWaypoint graph.NodeID

	// GlobalDemand(item) sums outstanding backlog demand for item across
	// every order not yet allocated. Supplied by the caller (OrderBook).
	GlobalDemand func(model.Item) int
	// IncludeQueued controls whether Completeable/WorkAmount scorers
	// consider a station's queued_orders in addition to assigned_orders.
	IncludeQueued bool
}

// Scorer is a pure scoring function over a Context.
type Scorer func(Context) float64

// tierPenaltyAmount is added once per mismatched tier pair when a scorer's
// config requests prefer_same_tier.
const tierPenaltyAmount = 1000.0

// tierMismatches counts mismatched-tier adjacent pairs among
// {bot-tier, pod-tier, station-tier}, each pair counted at most once.
func tierMismatches(botTier, podTier, stationTier int, havePod, haveStation bool) int {
	n := 0
	if havePod && botTier != podTier {
		n++
	}
	if haveStation && podTier != stationTier && havePod {
		n++
	} else if haveStation && !havePod && botTier != stationTier {
		n++
	}
	return n
}

// applyTierPenalty adds tierPenaltyAmount once per mismatch when
// preferSameTier is set.
func applyTierPenalty(score float64, c Context, preferSameTier bool) float64 {
	if !preferSameTier {
		return score
	}
	havePod := c.Pod != nil
	haveStation := c.Station != nil
	botTier := 0
	if c.Bot != nil {
		botTier = c.Bot.Tier
	}
	podTier, stationTier := 0, 0
	if havePod {
		podTier = c.Pod.Tier
	}
	if haveStation {
		stationTier = c.Station.Tier
	}
	n := tierMismatches(botTier, podTier, stationTier, havePod, haveStation)
	return score + float64(n)*tierPenaltyAmount
}
