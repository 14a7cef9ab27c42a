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

package dispatch

import (
	"sort"

	"github.com/fleetsim/warehouse-engine/pkg/graph"
	"github.com/fleetsim/warehouse-engine/pkg/model"
)

// onTheFly tracks the two dirty flags of spec §4.7 plus a per-station
// dirty set approximating the per-(station,bot) bitmap: in practice every
// bot queued or en route to a dirtied station needs re-investigation, so
// station-level granularity is exact except it occasionally re-scans a few
// extra bots for a station, which is harmless (possibleRequests is a pure
// function, re-running it twice changes nothing). The per-round clear is
// an outright map replacement rather than a per-key delete loop — the
// "generation counter" trick in spirit: clearing is O(1) regardless of how
// many stations were dirtied.
type onTheFly struct {
	extractDirty  bool
	storeDirty    bool
	dirtyStations map[string]bool
}

func newOnTheFly() *onTheFly {
	return &onTheFly{dirtyStations: map[string]bool{}}
}

// MarkOrderAllocated dirties the extract situation for station: a newly
// allocated order may now fit into an in-flight Extract task's pod.
func (o *onTheFly) MarkOrderAllocated(stationID string) {
	o.extractDirty = true
	o.dirtyStations[stationID] = true
}

// MarkBundleAllocated dirties the store (insert) situation symmetrically.
func (o *onTheFly) MarkBundleAllocated(stationID string) {
	o.storeDirty = true
	o.dirtyStations[stationID] = true
}

// MarkPodPickup sets both the extract and store flags but marks no
// station, so a following RunOnTheFly only rescans bots whose target
// station MarkOrderAllocated or MarkBundleAllocated has marked.
func (o *onTheFly) MarkPodPickup() {
	o.extractDirty = true
	o.storeDirty = true
}

func (o *onTheFly) dirty() bool { return o.extractDirty || o.storeDirty }

func (o *onTheFly) clear() {
	o.extractDirty = false
	o.storeDirty = false
	o.dirtyStations = map[string]bool{}
}

// inFlightBot pairs a bot with its in-flight task's target station, used
// to sort the augmentation walk by ascending distance (spec §4.7: "sorted
// by ascending shortest path to their target station, queued bots first").
type inFlightBot struct {
	bot      *model.Bot
	station  *model.Station
	distance float64
	queued   bool
}

// AugmentFuncs bundles the two request-discovery callbacks the caller
// (pkg/selection, which owns possible_requests and order/bundle state)
// supplies to RunOnTheFly.
type AugmentFuncs struct {
	PossibleExtract func(pod *model.Pod, station *model.Station, task *model.Task) []*model.ExtractRequest
	PossibleInsert  func(pod *model.Pod, station *model.Station, task *model.Task) []*model.InsertRequest
}

// RunOnTheFly walks every bot with an in-flight Extract/Insert task and an
// already-carried pod whose target station is marked dirty, queued bots
// (those not yet moving, i.e. CurrentWaypoint == TargetWaypoint) before
// en-route ones and each group nearest-target-station first, and grows
// each task with newly possible requests (spec §4.7).
func (d *Dispatch) RunOnTheFly(bots []*model.Bot, g graph.Graph, fns AugmentFuncs) {
	if !d.flags.dirty() {
		return
	}

	var candidates []inFlightBot
	for _, bot := range bots {
		if bot.CurrentTask == nil || bot.Pod == nil {
			continue
		}
		if bot.CurrentTask.Kind != model.TaskExtract && bot.CurrentTask.Kind != model.TaskInsert {
			continue
		}
		station := bot.CurrentTask.Station
		if station == nil || !d.flags.dirtyStations[station.ID] {
			continue
		}
		candidates = append(candidates, inFlightBot{
			bot:      bot,
			station:  station,
			distance: g.Distance(bot.CurrentWaypoint, station.Waypoint),
			queued:   bot.CurrentWaypoint == bot.TargetWaypoint,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].queued != candidates[j].queued {
			return candidates[i].queued
		}
		return candidates[i].distance < candidates[j].distance
	})

	for _, cand := range candidates {
		task := cand.bot.CurrentTask
		switch task.Kind {
		case model.TaskExtract:
			if fns.PossibleExtract == nil {
				continue
			}
			for _, req := range fns.PossibleExtract(cand.bot.Pod, cand.station, task) {
				d.AddExtractRequest(task, req)
			}
		case model.TaskInsert:
			if fns.PossibleInsert == nil {
				continue
			}
			for _, req := range fns.PossibleInsert(cand.bot.Pod, cand.station, task) {
				d.AddInsertRequest(task, req)
			}
		}
	}

	d.flags.clear()
}
