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

import (
	"fmt"

	"github.com/fleetsim/warehouse-engine/pkg/graph"
)

// StationKind distinguishes input stations (bundles -> pods) from output
// stations (pods -> orders).
type StationKind int

const (
	StationOutput StationKind = iota
	StationInput
)

// Station is a fixed workstation. Invariant: Used()+Reserved() <= Capacity.
// Unlike Pod and Bot, a Station's position never changes, so it carries its
// own Waypoint directly rather than needing it sourced by a caller.
type Station struct {
	ID       string
	Kind     StationKind
	Tier     int
	Capacity int
	Waypoint graph.NodeID

	used     int
	reserved int

	AssignedOrders []*Order
	QueuedOrders   []*Order
	InboundPods    []*Pod
}

// NewStation constructs an empty station with the given capacity.
func NewStation(id string, kind StationKind, tier, capacity int, waypoint graph.NodeID) *Station {
	return &Station{ID: id, Kind: kind, Tier: tier, Capacity: capacity, Waypoint: waypoint}
}

func (s *Station) Used() int     { return s.used }
func (s *Station) Reserved() int { return s.reserved }

// HasCapacity reports whether n additional units would still satisfy
// used+reserved <= capacity.
func (s *Station) HasCapacity(n int) bool { return s.used+s.reserved+n <= s.Capacity }

// ReserveCapacity increments reserved by n, erroring if that would violate
// the capacity invariant.
func (s *Station) ReserveCapacity(n int) error {
	if s.used+s.reserved+n > s.Capacity {
		return fmt.Errorf("station %s: reserving %d would exceed capacity %d (used %d, reserved %d)", s.ID, n, s.Capacity, s.used, s.reserved)
	}
	s.reserved += n
	return nil
}

// CommitCapacity converts n units of reserved capacity into used capacity,
// e.g. when an order moves from queued to assigned.
func (s *Station) CommitCapacity(n int) error {
	if s.reserved < n {
		return fmt.Errorf("station %s: committing %d exceeds reserved %d", s.ID, n, s.reserved)
	}
	s.reserved -= n
	s.used += n
	return nil
}

// ReleaseUsed frees n units of used capacity, e.g. on order completion.
func (s *Station) ReleaseUsed(n int) error {
	if s.used < n {
		return fmt.Errorf("station %s: releasing %d exceeds used %d", s.ID, n, s.used)
	}
	s.used -= n
	return nil
}

// ReleaseReserved frees n units of reserved capacity without committing it,
// e.g. when a pending allocation is abandoned.
func (s *Station) ReleaseReserved(n int) error {
	if s.reserved < n {
		return fmt.Errorf("station %s: releasing %d exceeds reserved %d", s.ID, n, s.reserved)
	}
	s.reserved -= n
	return nil
}

// AvailableItemCount sums available(item) across all inbound pods.
func (s *Station) AvailableItemCount(item Item) int {
	total := 0
	for _, p := range s.InboundPods {
		total += p.AvailableCount(item)
	}
	return total
}

// AddInboundPod registers a pod as en route to, queued at, or standing at
// this station.
func (s *Station) AddInboundPod(p *Pod) { s.InboundPods = append(s.InboundPods, p) }

// RemoveInboundPod removes a pod from the inbound set once it departs.
func (s *Station) RemoveInboundPod(p *Pod) {
	for i, ip := range s.InboundPods {
		if ip == p {
			s.InboundPods = append(s.InboundPods[:i], s.InboundPods[i+1:]...)
			return
		}
	}
}
