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
	"github.com/fleetsim/warehouse-engine/pkg/graph"
	"github.com/fleetsim/warehouse-engine/pkg/sim"
)

// standingRecord tracks how long an agent has been parked at one node
// without making forward progress, for the deadlock handler.
type standingRecord struct {
	node  graph.NodeID
	since float64
}

// deadlockHandler implements spec §4.1's "after MaximumWaitTime without
// progress, issue a random one-hop detour and reset RRA*".
type deadlockHandler struct {
	maxWaitTime float64
	standing    map[string]standingRecord
	rng         sim.Randomizer
}

func newDeadlockHandler(maxWaitTime float64, rng sim.Randomizer) *deadlockHandler {
	return &deadlockHandler{maxWaitTime: maxWaitTime, standing: map[string]standingRecord{}, rng: rng}
}

// observe updates the standing-time bookkeeping for an agent given the
// node it now occupies at simulated time `at`. It returns a detour
// destination and true if the agent has been standing long enough to
// trigger a random one-hop detour; the caller must then invalidate that
// agent's cached heuristic.
func (d *deadlockHandler) observe(g graph.Graph, agentID string, node graph.NodeID, at float64) (graph.NodeID, bool) {
	rec, tracked := d.standing[agentID]
	if !tracked || rec.node != node {
		d.standing[agentID] = standingRecord{node: node, since: at}
		return "", false
	}
	if at-rec.since < d.maxWaitTime {
		return "", false
	}
	delete(d.standing, agentID)
	neighbors := g.Neighbors(node)
	if len(neighbors) == 0 {
		return "", false
	}
	return neighbors[d.rng.Intn(len(neighbors))], true
}

// clear drops all standing-time bookkeeping for an agent, e.g. once it
// successfully reaches its goal.
func (d *deadlockHandler) clear(agentID string) {
	delete(d.standing, agentID)
}
