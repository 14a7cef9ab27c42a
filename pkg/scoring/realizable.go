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

package scoring

import "github.com/fleetsim/warehouse-engine/pkg/model"

// stationOrders returns a station's assigned orders, plus its queued
// orders too when includeQueued is set.
func stationOrders(s *model.Station, includeQueued bool) []*model.Order {
	if !includeQueued {
		return s.AssignedOrders
	}
	orders := make([]*model.Order, 0, len(s.AssignedOrders)+len(s.QueuedOrders))
	orders = append(orders, s.AssignedOrders...)
	orders = append(orders, s.QueuedOrders...)
	return orders
}

// realizablePicks counts, across orders, how many item units become
// realizable (coverable) by station inventory plus the candidate pod,
// capped per-item by what each order still requires and what the combined
// supply offers. It does not double count supply across orders: supply is
// drained as orders are considered in order.
func realizablePicks(orders []*model.Order, station *model.Station, pod *model.Pod) int {
	remaining := map[string]int{}
	supply := func(itemID string) int {
		if v, ok := remaining[itemID]; ok {
			return v
		}
		v := 0
		if station != nil {
			v += station.AvailableItemCount(model.Item{ID: itemID})
		}
		if pod != nil {
			v += pod.AvailableCount(model.Item{ID: itemID})
		}
		remaining[itemID] = v
		return v
	}

	total := 0
	for _, o := range orders {
		for _, pos := range o.Positions {
			have := supply(pos.Item.ID)
			take := pos.Required
			if take > have {
				take = have
			}
			total += take
			remaining[pos.Item.ID] = have - take
		}
	}
	return total
}

// realizableOrders returns the subset of orders fully coverable by station
// inventory plus pod (every position's requirement met).
func realizableOrders(orders []*model.Order, station *model.Station, pod *model.Pod) []*model.Order {
	var out []*model.Order
	for _, o := range orders {
		ok := true
		for _, pos := range o.Positions {
			have := 0
			if station != nil {
				have += station.AvailableItemCount(pos.Item)
			}
			if pod != nil {
				have += pod.AvailableCount(pos.Item)
			}
			if have < pos.Required {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, o)
		}
	}
	return out
}
