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

// Package selection implements the pod-selection strategies of spec §4.4:
// Default (BestOf over configured scorers), Fully-Demand, HADOD, and the
// Simulated-Annealing delegate, plus the shared preamble and
// fitting-request materialization every strategy builds on.
package selection

import (
	"math"

	"github.com/samber/lo"

	"github.com/fleetsim/warehouse-engine/pkg/dispatch"
	"github.com/fleetsim/warehouse-engine/pkg/graph"
	"github.com/fleetsim/warehouse-engine/pkg/model"
	"github.com/fleetsim/warehouse-engine/pkg/resources"
)

// TaskOutcome reports what do_extract_for_station (or its input-station
// counterpart) actually did.
type TaskOutcome int

const (
	NoTask TaskOutcome = iota
	TaskEnqueued
	ParkPodEnqueued
)

func (o TaskOutcome) String() string {
	switch o {
	case TaskEnqueued:
		return "task_enqueued"
	case ParkPodEnqueued:
		return "park_pod_enqueued"
	default:
		return "no_task"
	}
}

// FilterMode controls which of a station's queued orders possibleRequests
// is allowed to draw against, beyond its always-eligible assigned orders
// (spec §4.4).
type FilterMode int

const (
	AssignedOnly FilterMode = iota
	AssignedAndQueuedEqually
	AssignedAndCompleteQueued
)

// Strategy is the shape every pod-selection policy implements.
type Strategy interface {
	DoExtractForStation(bot *model.Bot, station *model.Station, extend bool, radius float64) TaskOutcome
	DoInsertForStation(bot *model.Bot, station *model.Station, extend bool, radius float64) TaskOutcome
}

// Env bundles the collaborators every strategy needs: the shared pod claim
// manager, the dispatch queues, the waypoint graph (for extend-radius
// neighbor search and waypoint lookups), and a now() accessor for
// diagnostics. Strategies embed *Env and add their own scoring state.
type Env struct {
	Resources *resources.Manager
	Dispatch  *dispatch.Dispatch
	Graph     graph.Graph
	Stations  []*model.Station
	Now       func() float64
	// BotWaypoint resolves a bot's current graph position; pods have no
	// waypoint of their own (spec §3), so a carried pod's position is
	// always its carrying bot's.
	BotWaypoint func(*model.Bot) graph.NodeID
	// PodWaypoint resolves an unused or claimed pod's resting position.
	// Like BotWaypoint, this is caller-supplied since Pod carries no
	// position field (spec §3 tracks inventory, not location).
	PodWaypoint func(*model.Pod) graph.NodeID
}

// possibleRequests fills extract requests up to pod's available(item),
// first from station's already-assigned orders (always eligible), then
// from queued orders gated by mode (spec §4.4).
func possibleRequests(pod *model.Pod, station *model.Station, mode FilterMode) []*model.ExtractRequest {
	avail := lo.SliceToMap(pod.ItemDescriptionsContained(), func(item model.Item) (string, int) {
		return item.ID, pod.AvailableCount(item)
	})

	var out []*model.ExtractRequest
	draw := func(item model.Item, order *model.Order, n int) {
		got := avail[item.ID]
		if got > n {
			got = n
		}
		if got <= 0 {
			return
		}
		avail[item.ID] -= got
		for i := 0; i < got; i++ {
			out = append(out, &model.ExtractRequest{Item: item, Order: order, Station: station})
		}
	}

	for _, order := range station.AssignedOrders {
		for _, pos := range order.Positions {
			draw(pos.Item, order, pos.Required)
		}
	}
	if mode == AssignedOnly {
		return out
	}

	for _, order := range station.QueuedOrders {
		if mode == AssignedAndCompleteQueued {
			fits := true
			for _, pos := range order.Positions {
				if avail[pos.Item.ID] < pos.Required {
					fits = false
					break
				}
			}
			if !fits {
				continue
			}
		}
		for _, pos := range order.Positions {
			draw(pos.Item, order, pos.Required)
		}
	}
	return out
}

// anyRelevantRequest reports whether pod has any item an assigned or
// queued order at station still needs (spec §4.4's any_relevant_request).
func anyRelevantRequest(pod *model.Pod, station *model.Station) bool {
	return len(possibleRequests(pod, station, AssignedAndQueuedEqually)) > 0
}

// InsertDemand reports, per item, how many units station's inbound bundle
// work still wants placed into a pod. The core data model (spec §3) has no
// fixed Bundle/InsertOrder entity — input-station demand is supplied by
// whatever tracks inbound shipments — so this is a caller-supplied
// collaborator rather than a method on Station.
type InsertDemand func(station *model.Station, item model.Item) int

// possibleInsertRequests is possibleRequests' input-station analogue:
// fills insert requests up to demand(station, item), unconstrained by pod
// capacity since Pod carries no maximum-contained field (spec §3).
func possibleInsertRequests(pod *model.Pod, station *model.Station, demand InsertDemand) []*model.InsertRequest {
	return lo.FlatMap(pod.ItemDescriptionsContained(), func(item model.Item, _ int) []*model.InsertRequest {
		reqs := make([]*model.InsertRequest, demand(station, item))
		for i := range reqs {
			reqs[i] = &model.InsertRequest{Item: item, Station: station}
		}
		return reqs
	})
}

// anyRelevantInsertRequest is possibleInsertRequests' existence check,
// spec §4.4's "AnyRelevantInsertRequests".
func anyRelevantInsertRequest(pod *model.Pod, station *model.Station, demand InsertDemand) bool {
	return len(possibleInsertRequests(pod, station, demand)) > 0
}

// PossibleExtractRequests exposes possibleRequests to callers outside this
// package — specifically dispatch.RunOnTheFly's augmentation walk (spec
// §4.7), which needs the same "what does this pod still owe this station"
// computation the initial DoExtractForStation call used, re-run against
// whatever newly allocated orders dirtied the station since.
func PossibleExtractRequests(pod *model.Pod, station *model.Station, mode FilterMode) []*model.ExtractRequest {
	return possibleRequests(pod, station, mode)
}

// PossibleInsertRequests is PossibleExtractRequests' input-station
// analogue, for the same on-the-fly augmentation use.
func PossibleInsertRequests(pod *model.Pod, station *model.Station, demand InsertDemand) []*model.InsertRequest {
	return possibleInsertRequests(pod, station, demand)
}

// preambleResult captures what the shared carrying-pod preamble decided,
// so a strategy can tell "handled by preamble" from "must pick a new pod".
type preambleResult struct {
	outcome TaskOutcome
	handled bool
}

// extractPreamble implements spec §4.4's shared preamble for a bot that
// already carries a pod: recycle it if still relevant, else search
// neighbor stations within radius when extend is set, else park it.
func extractPreamble(env *Env, bot *model.Bot, station *model.Station, extend bool, radius float64) preambleResult {
	if bot.Pod == nil {
		return preambleResult{handled: false}
	}
	pod := bot.Pod

	if reqs := possibleRequests(pod, station, AssignedAndQueuedEqually); len(reqs) > 0 {
		if err := env.Dispatch.EnqueueExtract(bot, station, pod, reqs); err != nil {
			return preambleResult{outcome: NoTask, handled: true}
		}
		return preambleResult{outcome: TaskEnqueued, handled: true}
	}

	if extend {
		if nb, nreqs := nearestRelevantStation(env, bot, station, radius, func(p *model.Pod, s *model.Station) []*model.ExtractRequest {
			return possibleRequests(p, s, AssignedAndQueuedEqually)
		}); nb != nil {
			if err := env.Dispatch.EnqueueExtract(bot, nb, pod, nreqs); err != nil {
				return preambleResult{outcome: NoTask, handled: true}
			}
			return preambleResult{outcome: TaskEnqueued, handled: true}
		}
	}

	env.Dispatch.EnqueueParkPod(bot, parkDestination(env, bot))
	return preambleResult{outcome: ParkPodEnqueued, handled: true}
}

// insertPreamble is extractPreamble's input-station analogue.
func insertPreamble(env *Env, bot *model.Bot, station *model.Station, extend bool, radius float64, demand InsertDemand) preambleResult {
	if bot.Pod == nil {
		return preambleResult{handled: false}
	}
	pod := bot.Pod

	if reqs := possibleInsertRequests(pod, station, demand); len(reqs) > 0 {
		if err := env.Dispatch.EnqueueInsert(bot, station, pod, reqs); err != nil {
			return preambleResult{outcome: NoTask, handled: true}
		}
		return preambleResult{outcome: TaskEnqueued, handled: true}
	}

	if extend {
		for _, s := range env.Stations {
			if s == station || s.Kind != station.Kind {
				continue
			}
			if env.Graph.Distance(env.BotWaypoint(bot), s.Waypoint) > radius {
				continue
			}
			if nreqs := possibleInsertRequests(pod, s, demand); len(nreqs) > 0 {
				if err := env.Dispatch.EnqueueInsert(bot, s, pod, nreqs); err != nil {
					return preambleResult{outcome: NoTask, handled: true}
				}
				return preambleResult{outcome: TaskEnqueued, handled: true}
			}
		}
	}

	env.Dispatch.EnqueueParkPod(bot, parkDestination(env, bot))
	return preambleResult{outcome: ParkPodEnqueued, handled: true}
}

// nearestRelevantStation searches every other station within radius
// (Euclidean over graph.Coordinates when available, else the graph's
// shortest-path Distance) for one with a relevant request against pod,
// preferring the nearest.
func nearestRelevantStation(env *Env, bot *model.Bot, from *model.Station, radius float64, relevant func(*model.Pod, *model.Station) []*model.ExtractRequest) (*model.Station, []*model.ExtractRequest) {
	type candidate struct {
		station *model.Station
		reqs    []*model.ExtractRequest
		dist    float64
	}
	var best *candidate
	for _, s := range env.Stations {
		if s == from || s.Kind != from.Kind {
			continue
		}
		d := stationDistance(env, bot, s)
		if d > radius {
			continue
		}
		reqs := relevant(bot.Pod, s)
		if len(reqs) == 0 {
			continue
		}
		if best == nil || d < best.dist {
			best = &candidate{station: s, reqs: reqs, dist: d}
		}
	}
	if best == nil {
		return nil, nil
	}
	return best.station, best.reqs
}

func stationDistance(env *Env, bot *model.Bot, s *model.Station) float64 {
	if coords, ok := env.Graph.(graph.Coordinates); ok {
		bx, by, bok := coords.Position(env.BotWaypoint(bot))
		sx, sy, sok := coords.Position(s.Waypoint)
		if bok && sok {
			return math.Hypot(bx-sx, by-sy)
		}
	}
	return env.Graph.Distance(env.BotWaypoint(bot), s.Waypoint)
}

// parkDestination picks where a bot should drop a pod it can no longer use.
// The spec leaves parking-spot selection to the simulator's storage-layout
// policy (out of scope per spec §1); this defaults to parking in place
// (the bot's current waypoint), which callers that do track open rack
// slots can override by wrapping Env's EnqueueParkPod path themselves.
func parkDestination(env *Env, bot *model.Bot) graph.NodeID {
	return env.BotWaypoint(bot)
}
