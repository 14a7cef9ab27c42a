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

// Package orderbook implements the Fully-Supplied order manager of spec
// §4.5: two ordered backlogs (pending_late, pending_not_late), and
// allocation operations that only ever dress an order in extract requests
// when every position is fully coverable without leaving the rest of the
// order short.
package orderbook

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/fleetsim/warehouse-engine/pkg/model"
)

// TieBreaker selects among several orders that are otherwise equally good
// candidates (used by the fast lane and by callers resolving ties).
type TieBreaker int

const (
	TieRandom TieBreaker = iota
	TieEarliestDueTime
	TieFCFS
)

// OrderBook owns the pending_late and pending_not_late backlogs. Orders
// move here only from "not yet placed" to "allocated to a station"; once
// allocated, OrderBook no longer tracks them (spec §3: Order is in exactly
// one of pending_late, pending_not_late, assigned, completed).
type OrderBook struct {
	pendingLate    []*model.Order // sorted by TimeStampSubmit ascending
	pendingNotLate []*model.Order

	// LateBeforeMatch: when true, always try to match pending_late orders
	// to a station before pending_not_late ones (spec §6 Fully-supplied
	// config: late_before_match).
	LateBeforeMatch bool
}

// New constructs an empty order book.
func New(lateBeforeMatch bool) *OrderBook {
	return &OrderBook{LateBeforeMatch: lateBeforeMatch}
}

// Submit adds a new order to the appropriate backlog based on its current
// status (pending_late vs pending_not_late).
func (ob *OrderBook) Submit(o *model.Order) {
	if o.Status == model.OrderPendingLate {
		ob.pendingLate = append(ob.pendingLate, o)
		sortBySubmission(ob.pendingLate)
	} else {
		o.Status = model.OrderPendingNotLate
		ob.pendingNotLate = append(ob.pendingNotLate, o)
		sortBySubmission(ob.pendingNotLate)
	}
}

// PromoteLate moves any pending_not_late order whose due time has passed
// into pending_late; called by the engine each tick.
func (ob *OrderBook) PromoteLate(now float64) {
	turnedLate := lo.Filter(ob.pendingNotLate, func(o *model.Order, _ int) bool { return o.IsLate(now) })
	for _, o := range turnedLate {
		o.Status = model.OrderPendingLate
	}
	ob.pendingLate = append(ob.pendingLate, turnedLate...)
	ob.pendingNotLate = lo.Filter(ob.pendingNotLate, func(o *model.Order, _ int) bool { return !o.IsLate(now) })
	sortBySubmission(ob.pendingLate)
}

func sortBySubmission(orders []*model.Order) {
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].TimeStampSubmit < orders[j].TimeStampSubmit })
}

// backlogOrder returns the combined backlog in match priority: every
// pending_late order, then every pending_not_late order, each in
// submission order. LateBeforeMatch is not consulted; the order is the
// same whichever value it holds.
func (ob *OrderBook) backlogOrder() []*model.Order {
	orders := make([]*model.Order, 0, len(ob.pendingLate)+len(ob.pendingNotLate))
	orders = append(orders, ob.pendingLate...)
	orders = append(orders, ob.pendingNotLate...)
	return orders
}

// Pending returns every order currently in either backlog, for testing and
// diagnostics.
func (ob *OrderBook) Pending() []*model.Order { return ob.backlogOrder() }

func removeOrder(orders []*model.Order, target *model.Order) []*model.Order {
	return lo.Reject(orders, func(o *model.Order, _ int) bool { return o == target })
}

// remove drops order from whichever backlog currently holds it, without
// allocating it (used by AllocateOrder).
func (ob *OrderBook) remove(o *model.Order) {
	ob.pendingLate = removeOrder(ob.pendingLate, o)
	ob.pendingNotLate = removeOrder(ob.pendingNotLate, o)
}

// AllocateOrder transfers order from its backlog to station.QueuedOrders,
// reserving capacity and emitting an OrderAllocated-equivalent side effect
// through onAllocated (nil-safe), used by callers to invalidate on-the-fly
// dirty flags (spec §4.5).
func (ob *OrderBook) AllocateOrder(o *model.Order, station *model.Station, onAllocated func(*model.Order, *model.Station)) error {
	if err := station.ReserveCapacity(1); err != nil {
		return fmt.Errorf("orderbook: allocate order %s to station %s: %w", o.ID, station.ID, err)
	}
	ob.remove(o)
	o.Status = model.OrderAssigned
	o.StationID = station.ID
	station.QueuedOrders = append(station.QueuedOrders, o)
	if onAllocated != nil {
		onAllocated(o, station)
	}
	return nil
}

// DeallocateOrder reverses AllocateOrder exactly: restores backlog
// membership and frees the reserved capacity (spec §8 round-trip
// property).
func (ob *OrderBook) DeallocateOrder(o *model.Order, station *model.Station, now float64) error {
	station.QueuedOrders = removeOrder(station.QueuedOrders, o)
	if err := station.ReleaseReserved(1); err != nil {
		return fmt.Errorf("orderbook: deallocate order %s from station %s: %w", o.ID, station.ID, err)
	}
	o.StationID = ""
	if o.IsLate(now) {
		o.Status = model.OrderPendingLate
	} else {
		o.Status = model.OrderPendingNotLate
	}
	ob.Submit(o)
	return nil
}
