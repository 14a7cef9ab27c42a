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

// Package reservation implements the per-node disjoint-interval
// reservation table the planner uses to keep bots from colliding in
// space-time (spec §3, §4.1).
package reservation

import (
	"math"
	"sort"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/fleetsim/warehouse-engine/pkg/graph"
)

// Inf represents an open-ended ("tail") reservation end time.
const Inf = math.MaxFloat64

// Interval is one (node, [start, end)) reservation, owned by an agent.
type Interval struct {
	ID    uint64
	Node  graph.NodeID
	Start float64
	End   float64
	Owner string
}

// IsOpenEnded reports whether this is a half-infinite tail reservation.
func (iv Interval) IsOpenEnded() bool { return iv.End >= Inf }

func overlaps(aStart, aEnd, bStart, bEnd float64) bool {
	return aStart < bEnd && bStart < aEnd
}

// Table is a per-node disjoint-interval reservation index. A Table is not
// safe for concurrent use; the engine is single-threaded (spec §5).
type Table struct {
	byNode map[graph.NodeID][]*Interval
	nextID uint64
}

// New constructs an empty reservation table.
func New() *Table {
	return &Table{byNode: map[graph.NodeID][]*Interval{}}
}

// Add reserves [start, end) at node for owner. It returns the created
// interval and true on success. If the interval would overlap an existing
// reservation at that node, the add is suppressed: it returns (nil, false)
// rather than partially applying or erroring — spec §4.1 notes tail
// reservations legitimately collide as bots emerge from a station, and this
// is the mechanism by which that collision is absorbed harmlessly.
func (t *Table) Add(node graph.NodeID, start, end float64, owner string) (*Interval, bool) {
	for _, existing := range t.byNode[node] {
		if overlaps(existing.Start, existing.End, start, end) {
			return nil, false
		}
	}
	t.nextID++
	iv := &Interval{ID: t.nextID, Node: node, Start: start, End: end, Owner: owner}
	t.byNode[node] = append(t.byNode[node], iv)
	sort.Slice(t.byNode[node], func(i, j int) bool { return t.byNode[node][i].Start < t.byNode[node][j].Start })
	return iv, true
}

// Remove performs a careful-remove: it only removes the interval with the
// exact id previously returned by Add, never any interval that merely
// overlaps the query.
func (t *Table) Remove(node graph.NodeID, id uint64) bool {
	ivs := t.byNode[node]
	for i, iv := range ivs {
		if iv.ID == id {
			t.byNode[node] = append(ivs[:i], ivs[i+1:]...)
			if len(t.byNode[node]) == 0 {
				delete(t.byNode, node)
			}
			return true
		}
	}
	return false
}

// RemoveAllOwnedBy removes every interval owned by owner at every node, returning
// how many were removed. Used when replacing an agent's whole reservation
// sequence (e.g. overwrite_scheduled_path).
func (t *Table) RemoveAllOwnedBy(owner string) int {
	n := 0
	for node, ivs := range t.byNode {
		var kept []*Interval
		for _, iv := range ivs {
			if iv.Owner == owner {
				n++
				continue
			}
			kept = append(kept, iv)
		}
		if len(kept) == 0 {
			delete(t.byNode, node)
		} else {
			t.byNode[node] = kept
		}
	}
	return n
}

// PointQuery reports whether node is reserved at instant t by anyone other
// than except.
func (t *Table) PointQuery(node graph.NodeID, at float64, except string) bool {
	for _, iv := range t.byNode[node] {
		if iv.Owner == except {
			continue
		}
		if iv.Start <= at && at < iv.End {
			return true
		}
	}
	return false
}

// IntervalQuery reports whether [start, end) at node overlaps any
// reservation owned by someone other than except.
func (t *Table) IntervalQuery(node graph.NodeID, start, end float64, except string) bool {
	for _, iv := range t.byNode[node] {
		if iv.Owner == except {
			continue
		}
		if overlaps(iv.Start, iv.End, start, end) {
			return true
		}
	}
	return false
}

// FindEndReservation returns the start time of a half-infinite tail
// reservation at node, if one exists.
func (t *Table) FindEndReservation(node graph.NodeID) (float64, bool) {
	for _, iv := range t.byNode[node] {
		if iv.IsOpenEnded() {
			return iv.Start, true
		}
	}
	return 0, false
}

// DeepCopy returns an independent copy of the table; mutating the copy
// never affects the original (spec §4.1 schedule_init).
func (t *Table) DeepCopy() *Table {
	cp := New()
	cp.nextID = t.nextID
	for node, ivs := range t.byNode {
		cpIvs := make([]*Interval, len(ivs))
		for i, iv := range ivs {
			v := *iv
			cpIvs[i] = &v
		}
		cp.byNode[node] = cpIvs
	}
	return cp
}

// snapshot is the hash-stable projection of a Table's contents, used by
// Hash so that two structurally-equal tables (independent of slice order
// or map iteration) hash identically.
type snapshot struct {
	Node  string
	Start float64
	End   float64
	Owner string
}

// Hash returns a content hash of the table suitable for the round-trip
// idempotence checks of spec §8 ("schedule_init then re-invocation of
// find_paths produces the same committed paths"): compare Hash() before
// and after a sequence of operations that should cancel out.
func (t *Table) Hash() uint64 {
	var snaps []snapshot
	for node, ivs := range t.byNode {
		for _, iv := range ivs {
			snaps = append(snaps, snapshot{Node: string(node), Start: iv.Start, End: iv.End, Owner: iv.Owner})
		}
	}
	sort.Slice(snaps, func(i, j int) bool {
		if snaps[i].Node != snaps[j].Node {
			return snaps[i].Node < snaps[j].Node
		}
		if snaps[i].Start != snaps[j].Start {
			return snaps[i].Start < snaps[j].Start
		}
		return snaps[i].Owner < snaps[j].Owner
	})
	h, _ := hashstructure.Hash(snaps, hashstructure.FormatV2, nil)
	return h
}

// Intervals returns every reservation at node, sorted by start time. The
// returned slice is a copy; callers must not mutate the table through it.
func (t *Table) Intervals(node graph.NodeID) []Interval {
	src := t.byNode[node]
	out := make([]Interval, len(src))
	for i, iv := range src {
		out[i] = *iv
	}
	return out
}
