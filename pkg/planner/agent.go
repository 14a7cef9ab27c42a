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

// Package planner implements windowed, prioritized cooperative path
// planning (WHCA*) over a reservation table (spec §4.1).
package planner

import "github.com/fleetsim/warehouse-engine/pkg/graph"

// Agent is one path request: move from Start to Goal, optionally carrying
// a pod, using Physics to convert edges into durations.
type Agent struct {
	ID               string
	Start            graph.NodeID
	Goal             graph.NodeID
	CarryingPod      bool
	Physics          graph.Physics
	CanPassObstacles bool

	// Priority is the agent's base priority (higher searches first).
	Priority int
	// RetryPriority is raised each time this agent's search fails within a
	// find_paths call and resets to zero at the start of the next call.
	RetryPriority int
}

// Step is one waypoint-and-arrival-time pair in a planned path.
type Step struct {
	Node graph.NodeID
	Time float64
}

// Path is a sequence of space-time steps, the first being the agent's
// starting position at the search's start time.
type Path []Step

// EndNode returns the last waypoint of the path, or "" if empty.
func (p Path) EndNode() graph.NodeID {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1].Node
}

// EndTime returns the arrival time at the last step, or 0 if empty.
func (p Path) EndTime() float64 {
	if len(p) == 0 {
		return 0
	}
	return p[len(p)-1].Time
}

// Result is the outcome of planning one agent.
type Result struct {
	Agent *Agent
	Path  Path
	Found bool
	// EndTime is when the path leaves the window (or reaches the goal),
	// plus the estimated remaining shortest-path time to the true goal if
	// the window was exited before arrival. This is the estimator scorers
	// use (spec §4.1 find_path).
	EndTime float64
}
