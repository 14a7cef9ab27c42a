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
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/fleetsim/warehouse-engine/pkg/graph"
)

const heuristicTTL = 5 * time.Minute

// rraHeuristic is a Reverse-Resumable A* state: a lazy Dijkstra expanding
// backward from a fixed goal over the reversed graph, resumed incrementally
// as the forward search asks for distance estimates to nodes it hasn't
// reached yet. Once a node's true distance is settled it is never
// recomputed (spec §4.1: "perfect heuristic... cached across calls").
type rraHeuristic struct {
	g      graph.Graph
	goal   graph.NodeID
	dist   map[graph.NodeID]float64
	settled map[graph.NodeID]bool
	pq     *rraQueue
}

func newRRAHeuristic(g graph.Graph, goal graph.NodeID) *rraHeuristic {
	h := &rraHeuristic{
		g:       g,
		goal:    goal,
		dist:    map[graph.NodeID]float64{goal: 0},
		settled: map[graph.NodeID]bool{},
		pq:      &rraQueue{{node: goal, dist: 0}},
	}
	heap.Init(h.pq)
	return h
}

// estimate returns the shortest forward-graph distance from node to the
// heuristic's goal, expanding the backward search as far as necessary.
func (h *rraHeuristic) estimate(node graph.NodeID) float64 {
	if d, ok := h.dist[node]; ok && h.settled[node] {
		return d
	}
	wg, weighted := h.g.(graph.WeightedGraph)
	for h.pq.Len() > 0 {
		cur := heap.Pop(h.pq).(rraItem)
		if h.settled[cur.node] {
			continue
		}
		h.settled[cur.node] = true
		if cur.node == node {
			return cur.dist
		}
		for _, pred := range h.g.BackwardNeighbors(cur.node) {
			if h.settled[pred] {
				continue
			}
			w := 1.0
			if weighted {
				if ew, ok := wg.EdgeWeight(pred, cur.node); ok {
					w = ew
				}
			}
			nd := cur.dist + w
			if existing, ok := h.dist[pred]; !ok || nd < existing {
				h.dist[pred] = nd
				heap.Push(h.pq, rraItem{node: pred, dist: nd})
			}
		}
	}
	if d, ok := h.dist[node]; ok {
		return d
	}
	return posInfHeuristic
}

const posInfHeuristic = 1e18

type rraItem struct {
	node graph.NodeID
	dist float64
}

type rraQueue []rraItem

func (q rraQueue) Len() int            { return len(q) }
func (q rraQueue) Less(i, j int) bool  { return q[i].dist < q[j].dist }
func (q rraQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *rraQueue) Push(x interface{}) { *q = append(*q, x.(rraItem)) }
func (q *rraQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// heuristicCache holds one rraHeuristic per (agent, goal), expiring each
// entry heuristicTTL after it was created (a Get does not extend it) and
// exposing explicit per-agent invalidation for the deadlock handler.
type heuristicCache struct {
	c *gocache.Cache
	g graph.Graph
}

func newHeuristicCache(g graph.Graph) *heuristicCache {
	return &heuristicCache{c: gocache.New(heuristicTTL, heuristicTTL/2), g: g}
}

func (hc *heuristicCache) get(agentID string, goal graph.NodeID) *rraHeuristic {
	key := agentID + "|" + string(goal)
	if v, ok := hc.c.Get(key); ok {
		return v.(*rraHeuristic)
	}
	h := newRRAHeuristic(hc.g, goal)
	hc.c.Set(key, h, gocache.DefaultExpiration)
	return h
}

// invalidate drops the cached heuristic for agentID regardless of which
// goal it was built for; called when the deadlock handler fires (spec
// §4.1). A changed destination needs no call, since the goal is part of
// the cache key.
func (hc *heuristicCache) invalidate(agentID string) {
	for key := range hc.c.Items() {
		if len(key) > len(agentID) && key[:len(agentID)] == agentID && key[len(agentID)] == '|' {
			hc.c.Delete(key)
		}
	}
}
