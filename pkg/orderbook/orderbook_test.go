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

package orderbook_test

import (
	"testing"

	"github.com/fleetsim/warehouse-engine/pkg/model"
	"github.com/fleetsim/warehouse-engine/pkg/orderbook"
	"github.com/fleetsim/warehouse-engine/pkg/test"
)

func TestSubmitSortsByTimeStampSubmit(t *testing.T) {
	ob := orderbook.New(false)
	late := test.Order(test.OrderOptions{TimePlaced: 5})
	early := test.Order(test.OrderOptions{TimePlaced: 1})
	ob.Submit(late)
	ob.Submit(early)

	pending := ob.Pending()
	if len(pending) != 2 || pending[0] != early || pending[1] != late {
		t.Fatalf("Pending() not sorted by submission time: %+v", pending)
	}
}

func TestPromoteLateMovesOrdersPastDue(t *testing.T) {
	ob := orderbook.New(false)
	o := test.Order(test.OrderOptions{TimePlaced: 0, DueTime: 10})
	ob.Submit(o)

	ob.PromoteLate(5)
	if o.Status != model.OrderPendingNotLate {
		t.Fatalf("o.Status = %v before due time; want PendingNotLate", o.Status)
	}

	ob.PromoteLate(11)
	if o.Status != model.OrderPendingLate {
		t.Fatalf("o.Status = %v past due time; want PendingLate", o.Status)
	}
}

func TestAllocateAndDeallocateRoundTrip(t *testing.T) {
	ob := orderbook.New(false)
	station := test.Station(test.StationOptions{Capacity: 2})
	o := test.Order()
	ob.Submit(o)

	if err := ob.AllocateOrder(o, station, nil); err != nil {
		t.Fatalf("AllocateOrder: %v", err)
	}
	if len(ob.Pending()) != 0 {
		t.Fatalf("Pending() = %d after allocate; want 0", len(ob.Pending()))
	}
	if o.Status != model.OrderAssigned || o.StationID != station.ID {
		t.Fatalf("order not marked assigned to station: status=%v stationID=%q", o.Status, o.StationID)
	}
	if station.Reserved() != 1 {
		t.Fatalf("station.Reserved() = %d; want 1", station.Reserved())
	}

	if err := ob.DeallocateOrder(o, station, 0); err != nil {
		t.Fatalf("DeallocateOrder: %v", err)
	}
	if len(ob.Pending()) != 1 {
		t.Fatalf("Pending() = %d after deallocate; want 1", len(ob.Pending()))
	}
	if station.Reserved() != 0 {
		t.Fatalf("station.Reserved() = %d after deallocate; want 0", station.Reserved())
	}
	if o.StationID != "" {
		t.Fatalf("o.StationID = %q after deallocate; want empty", o.StationID)
	}
}

func TestFullySuppliedOnlyAllocatesFullyCoverableOrders(t *testing.T) {
	ob := orderbook.New(false)
	station := test.Station(test.StationOptions{Capacity: 5})
	widget := model.Item{ID: "widget"}

	pod := test.Pod(test.PodOptions{Contained: map[model.Item]int{widget: 3}})
	station.AddInboundPod(pod)

	short := test.Order(test.OrderOptions{Positions: []model.Position{{Item: widget, Required: 10}}})
	fits := test.Order(test.OrderOptions{TimePlaced: 1, Positions: []model.Position{{Item: widget, Required: 3}}})
	ob.Submit(short)
	ob.Submit(fits)

	allocs := ob.FullySupplied(station)
	if len(allocs) != 1 || allocs[0].Order != fits {
		t.Fatalf("FullySupplied() = %+v; want exactly [fits]", allocs)
	}
	if len(allocs[0].Requests) != 3 {
		t.Fatalf("len(Requests) = %d; want 3", len(allocs[0].Requests))
	}
	if pod.AvailableCount(widget) != 0 {
		t.Fatalf("pod.AvailableCount(widget) = %d after full draw; want 0", pod.AvailableCount(widget))
	}

	remaining := ob.Pending()
	if len(remaining) != 1 || remaining[0] != short {
		t.Fatalf("Pending() after FullySupplied = %+v; want [short] still queued", remaining)
	}
}

func TestExtraDecidePendingOrdersDrawsOnlyFromNewPod(t *testing.T) {
	ob := orderbook.New(false)
	station := test.Station(test.StationOptions{Capacity: 5})
	widget := model.Item{ID: "widget"}

	o := test.Order(test.OrderOptions{Positions: []model.Position{{Item: widget, Required: 2}}})
	ob.Submit(o)

	newPod := test.Pod(test.PodOptions{Contained: map[model.Item]int{widget: 2}})
	reqs := ob.ExtraDecidePendingOrders(station, newPod)
	if len(reqs) != 2 {
		t.Fatalf("len(reqs) = %d; want 2", len(reqs))
	}
	for _, r := range reqs {
		if r.Order != o {
			t.Fatalf("request order = %v; want %v", r.Order, o)
		}
	}
	if len(ob.Pending()) != 0 {
		t.Fatalf("Pending() after allocation = %d; want 0", len(ob.Pending()))
	}
}
