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

package model

import "github.com/fleetsim/warehouse-engine/pkg/graph"

// TaskKind enumerates the task types a bot can be carrying out.
type TaskKind int

const (
	TaskNone TaskKind = iota
	TaskExtract
	TaskInsert
	TaskParkPod
	TaskRest
)

func (k TaskKind) String() string {
	switch k {
	case TaskNone:
		return "none"
	case TaskExtract:
		return "extract"
	case TaskInsert:
		return "insert"
	case TaskParkPod:
		return "park"
	case TaskRest:
		return "rest"
	default:
		return "unknown"
	}
}

// Task is one unit of work assigned to a bot.
type Task struct {
	Kind    TaskKind
	Pod     *Pod
	Station *Station
	// Extract/Insert request payloads, append-only while the task is
	// in-flight (on-the-fly augmentation, spec §4.7).
	ExtractRequests []*ExtractRequest
	InsertRequests  []*InsertRequest
	// ParkDestination is the waypoint a ParkPod task drops its pod at.
	ParkDestination graph.NodeID
}

// Bot is an autonomous agent that moves on the waypoint graph, optionally
// carrying at most one pod. Invariant: carried pod's Carrier() == this
// bot's ID.
type Bot struct {
	ID              string
	Tier            int
	CurrentWaypoint graph.NodeID
	TargetWaypoint  graph.NodeID
	Pod             *Pod
	CurrentTask     *Task
	// Priority is the planner's retry-priority for this bot; 0 means no
	// scheduled priority.
	Priority int
}

// NewBot constructs an idle bot at the given waypoint.
func NewBot(id string, tier int, at graph.NodeID) *Bot {
	return &Bot{ID: id, Tier: tier, CurrentWaypoint: at, TargetWaypoint: at, CurrentTask: &Task{Kind: TaskNone}}
}

// IsIdle reports whether the bot has no work: its current task is nil or
// TaskNone. A carried pod does not affect the result.
func (b *Bot) IsIdle() bool {
	return b.CurrentTask == nil || b.CurrentTask.Kind == TaskNone
}

// IsAvailableForSA reports whether the bot is eligible for SA consideration
// per spec §4.6 step 3: current task is None, Rest, or ParkPod.
func (b *Bot) IsAvailableForSA() bool {
	if b.CurrentTask == nil {
		return true
	}
	switch b.CurrentTask.Kind {
	case TaskNone, TaskRest, TaskParkPod:
		return true
	default:
		return false
	}
}
