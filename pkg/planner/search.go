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

package planner

import (
	"container/heap"
	"strconv"

	"github.com/fleetsim/warehouse-engine/pkg/graph"
	"github.com/fleetsim/warehouse-engine/pkg/reservation"
)

// searchState is one node in the space-time search frontier: standing at
// Node from Time, having taken Waited consecutive wait actions to get
// here (recorded only; the search does not read it).
type searchState struct {
	node   graph.NodeID
	time   float64
	waited int
}

// spaceTimeKey identifies a search state for visited-state bookkeeping and
// parent-pointer lookup; time is exact (not bucketed) here because it also
// doubles as the path-reconstruction key.
type spaceTimeKey struct {
	node graph.NodeID
	time float64
}

type frontierItem struct {
	state searchState
	g     float64
	f     float64
}

type frontier []*frontierItem

func (fr frontier) Len() int            { return len(fr) }
func (fr frontier) Less(i, j int) bool  { return fr[i].f < fr[j].f }
func (fr frontier) Swap(i, j int)       { fr[i], fr[j] = fr[j], fr[i] }
func (fr *frontier) Push(x interface{}) { *fr = append(*fr, x.(*frontierItem)) }
func (fr *frontier) Pop() interface{} {
	old := *fr
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*fr = old[:n-1]
	return item
}

// stateKey discretizes (node, time) into a dedup key for the bestG table:
// time is bucketed to the wait-step granularity, since wait and arrival
// actions land on that grid.
func stateKey(node graph.NodeID, t, waitStep float64) string {
	return string(node) + "@" + strconv.FormatInt(int64(t/waitStep), 10)
}

// searchParams bundles the inputs to one space-time A* invocation so the
// search body doesn't need the whole Planner.
type searchParams struct {
	graph       graph.Graph
	table       *reservation.Table
	heuristic   *rraHeuristic
	agent       *Agent
	now         float64
	start       graph.NodeID
	goal        graph.NodeID
	carryingPod bool
	waitStep    float64
	windowEnd   float64
	forcedWaits int
}

// spaceTimeAStar runs WHCA*-style prioritized space-time A*, treating
// waiting as a first-class action, against table (which may be the
// committed or the scheduled table depending on the caller). It returns the
// path taken within the window [now, windowEnd], whether the true goal was
// reached, and the end_time estimator from spec §4.1 (exit time plus
// remaining heuristic distance when the goal wasn't reached).
func spaceTimeAStar(p searchParams) (Path, bool, float64) {
	startTime := p.now + float64(p.forcedWaits)*p.waitStep

	open := &frontier{}
	heap.Init(open)
	startH := p.heuristic.estimate(p.start)
	heap.Push(open, &frontierItem{state: searchState{node: p.start, time: startTime}, g: 0, f: startH})

	cameFrom := map[spaceTimeKey]spaceTimeKey{}
	bestG := map[string]float64{}
	bestG[stateKey(p.start, startTime, p.waitStep)] = 0

	push := func(from spaceTimeKey, to searchState, g float64) {
		key := stateKey(to.node, to.time, p.waitStep)
		if existing, ok := bestG[key]; ok && g >= existing {
			return
		}
		bestG[key] = g
		cameFrom[spaceTimeKey{to.node, to.time}] = from
		heap.Push(open, &frontierItem{state: to, g: g, f: g + p.heuristic.estimate(to.node)})
	}

	var bestExit *frontierItem

	for open.Len() > 0 {
		cur := heap.Pop(open).(*frontierItem)
		key := stateKey(cur.state.node, cur.state.time, p.waitStep)
		if g, ok := bestG[key]; ok && cur.g > g {
			continue
		}
		if cur.state.node == p.goal {
			return reconstructPath(cameFrom, cur.state, p.start, startTime), true, cur.state.time
		}
		if bestExit == nil || cur.f < bestExit.f {
			bestExit = cur
		}
		if cur.state.time >= p.windowEnd {
			continue
		}

		from := spaceTimeKey{cur.state.node, cur.state.time}

		// Wait action.
		waitEnd := cur.state.time + p.waitStep
		if !p.table.IntervalQuery(cur.state.node, cur.state.time, waitEnd, p.agent.ID) {
			push(from, searchState{node: cur.state.node, time: waitEnd, waited: cur.state.waited + 1}, cur.g+p.waitStep)
		}

		// Move actions.
		for _, next := range p.graph.Neighbors(cur.state.node) {
			travel := p.agent.Physics.TraverseTime(cur.state.node, next, p.carryingPod)
			arriveAt := cur.state.time + travel
			if p.table.IntervalQuery(next, cur.state.time, arriveAt, p.agent.ID) {
				continue
			}
			push(from, searchState{node: next, time: arriveAt}, cur.g+travel)
		}
	}

	if bestExit == nil {
		return Path{{Node: p.start, Time: startTime}}, false, startTime + p.heuristic.estimate(p.start)
	}
	path := reconstructPath(cameFrom, bestExit.state, p.start, startTime)
	remaining := p.heuristic.estimate(bestExit.state.node)
	return path, false, bestExit.state.time + remaining
}

func reconstructPath(cameFrom map[spaceTimeKey]spaceTimeKey, end searchState, start graph.NodeID, startTime float64) Path {
	var rev []Step
	cur := spaceTimeKey{end.node, end.time}
	for {
		rev = append(rev, Step{Node: cur.node, Time: cur.time})
		if cur.node == start && cur.time == startTime {
			break
		}
		prev, ok := cameFrom[cur]
		if !ok {
			break
		}
		cur = prev
	}
	path := make(Path, len(rev))
	for i, s := range rev {
		path[len(rev)-1-i] = s
	}
	return path
}
