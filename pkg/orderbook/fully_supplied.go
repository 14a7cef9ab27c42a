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

package orderbook

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/fleetsim/warehouse-engine/pkg/model"
)

// Allocation pairs an order the book just allocated with the extract
// requests materialized against whichever pods covered it.
type Allocation struct {
	Order    *model.Order
	Requests []*model.ExtractRequest
}

// attributed pairs a freshly materialized extract request with the pod it
// was drawn from, so callers that need to know which requests landed on a
// particular candidate pod (ExtraDecidePendingOrders, pod-set mode) can
// filter precisely instead of guessing from registration counts.
type attributed struct {
	request *model.ExtractRequest
	pod     *model.Pod
}

// findFullyCoverable returns the first backlog order (in priority order)
// every one of whose positions is covered by supply(item), or nil if none
// qualifies.
func findFullyCoverable(orders []*model.Order, supply func(model.Item) int) *model.Order {
	for _, o := range orders {
		ok := true
		for _, pos := range o.Positions {
			if supply(pos.Item) < pos.Required {
				ok = false
				break
			}
		}
		if ok {
			return o
		}
	}
	return nil
}

// drawFromPods greedily consumes n units of item from pods (in the given
// order), registering each draw as an extract request for order at
// station, and returns the requests created with their pod attribution. It
// assumes the caller already verified total availability covers n.
func drawFromPods(pods []*model.Pod, item model.Item, n int, order *model.Order, station *model.Station) []attributed {
	var drawn []attributed
	remaining := n
	for _, pod := range pods {
		if remaining == 0 {
			break
		}
		take := pod.AvailableCount(item)
		if take > remaining {
			take = remaining
		}
		if take == 0 {
			continue
		}
		pod.RegisterItem(item, take)
		for i := 0; i < take; i++ {
			drawn = append(drawn, attributed{request: &model.ExtractRequest{Item: item, Order: order, Station: station}, pod: pod})
		}
		remaining -= take
	}
	return drawn
}

// materialize draws every position of order from pods (in the given
// order) and returns the created extract requests with pod attribution.
// Panics if pods don't actually cover the order — a programmer error per
// spec §7 ("order infeasibility... caller must guarantee at least one
// fulfillable order exists").
func materialize(order *model.Order, station *model.Station, pods []*model.Pod) []attributed {
	var all []attributed
	for _, pos := range order.Positions {
		got := drawFromPods(pods, pos.Item, pos.Required, order, station)
		if len(got) < pos.Required {
			panic(fmt.Sprintf("orderbook: order %s position %s only drew %d of %d from supplied pods",
				order.ID, pos.Item.ID, len(got), pos.Required))
		}
		all = append(all, got...)
	}
	return all
}

func requestsOf(attrs []attributed) []*model.ExtractRequest {
	return lo.Map(attrs, func(a attributed, _ int) *model.ExtractRequest { return a.request })
}

func requestsOfPod(attrs []attributed, pod *model.Pod) []*model.ExtractRequest {
	return lo.FilterMap(attrs, func(a attributed, _ int) (*model.ExtractRequest, bool) {
		return a.request, a.pod == pod
	})
}

// FullySupplied repeatedly finds an order fully coverable by the union of
// station's inbound pods' available inventory, allocates it, and
// materializes its extract requests against those pods (spec §4.5). It is
// cheap enough to be called from inside pod selection, not just on a
// timed cadence.
func (ob *OrderBook) FullySupplied(station *model.Station) []Allocation {
	supply := func(item model.Item) int { return station.AvailableItemCount(item) }
	var out []Allocation
	for {
		order := findFullyCoverable(ob.backlogOrder(), supply)
		if order == nil {
			return out
		}
		attrs := materialize(order, station, station.InboundPods)
		if err := ob.AllocateOrder(order, station, nil); err != nil {
			return out
		}
		out = append(out, Allocation{Order: order, Requests: requestsOf(attrs)})
	}
}

// ExtraDecidePendingOrders is FullySupplied's single-new-pod variant: the
// candidate newPod's availability is folded into the coverage check.
// Returns only the requests claimed against newPod (the rest, against
// already-inbound pods, are materialized too but are the already-inbound
// pods' business, not the caller's). Panics if no order ends up assigned;
// callers must only invoke this once they've verified at least one order
// is coverable with newPod included (spec §4.5).
func (ob *OrderBook) ExtraDecidePendingOrders(station *model.Station, newPod *model.Pod) []*model.ExtractRequest {
	supply := func(item model.Item) int {
		return station.AvailableItemCount(item) + newPod.AvailableCount(item)
	}
	order := findFullyCoverable(ob.backlogOrder(), supply)
	if order == nil {
		panic(fmt.Sprintf("orderbook: extra_decide_pending_orders called for station %s with no order coverable including candidate pod %s", station.ID, newPod.ID))
	}
	pods := append(append([]*model.Pod{}, station.InboundPods...), newPod)
	attrs := materialize(order, station, pods)
	if err := ob.AllocateOrder(order, station, nil); err != nil {
		panic(fmt.Sprintf("orderbook: extra_decide_pending_orders: %v", err))
	}
	return requestsOfPod(attrs, newPod)
}

// ExtraDecidePendingOrder is the pod-set case (spec §4.5): assigns exactly
// necessaryOrder, distributing its requests across inbound pods first,
// then across newPods, and returns a per-pod request map that never
// contains an empty list.
func (ob *OrderBook) ExtraDecidePendingOrder(station *model.Station, newPods []*model.Pod, necessaryOrder *model.Order) map[*model.Pod][]*model.ExtractRequest {
	pods := append(append([]*model.Pod{}, station.InboundPods...), newPods...)
	attrs := materialize(necessaryOrder, station, pods)
	if err := ob.AllocateOrder(necessaryOrder, station, nil); err != nil {
		panic(fmt.Sprintf("orderbook: extra_decide_pending_order: %v", err))
	}

	byPod := map[*model.Pod][]*model.ExtractRequest{}
	for _, p := range pods {
		if reqs := requestsOfPod(attrs, p); len(reqs) > 0 {
			byPod[p] = reqs
		}
	}
	return byPod
}
