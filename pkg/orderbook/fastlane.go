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
	"sort"

	"github.com/fleetsim/warehouse-engine/pkg/model"
	"github.com/fleetsim/warehouse-engine/pkg/sim"
)

// FastLaneConfig enables, after every allocation round, a search for an
// order fully coverable by the single nearest inbound pod, pushed to the
// head of the station's queue (spec §4.5).
type FastLaneConfig struct {
	Enabled     bool
	TieBreaker  TieBreaker
}

// nearestPod picks, among station.InboundPods, the one nearestOf reports
// as closest; nearestOf is supplied by the caller since distance requires
// the graph/physics collaborators the order book doesn't own.
func nearestPod(pods []*model.Pod, nearestOf func(*model.Pod) float64) *model.Pod {
	if len(pods) == 0 {
		return nil
	}
	best := pods[0]
	bestDist := nearestOf(best)
	for _, p := range pods[1:] {
		if d := nearestOf(p); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

// RunFastLane implements the fast-lane pass: if cfg is enabled, find an
// order fully coverable by the single nearest inbound pod alone and move
// it to the head of station.QueuedOrders. Ties among equally-good
// candidate orders are broken per cfg.TieBreaker.
func RunFastLane(ob *OrderBook, station *model.Station, cfg FastLaneConfig, nearestOf func(*model.Pod) float64, rng sim.Randomizer) *Allocation {
	if !cfg.Enabled {
		return nil
	}
	pod := nearestPod(station.InboundPods, nearestOf)
	if pod == nil {
		return nil
	}
	candidates := candidatesCoverableAlone(ob.backlogOrder(), pod)
	if len(candidates) == 0 {
		return nil
	}
	order := pickByTieBreaker(candidates, cfg.TieBreaker, rng)
	attrs := materialize(order, station, []*model.Pod{pod})
	if err := ob.AllocateOrder(order, station, nil); err != nil {
		return nil
	}
	station.QueuedOrders = moveToFront(station.QueuedOrders, order)
	return &Allocation{Order: order, Requests: requestsOf(attrs)}
}

func candidatesCoverableAlone(orders []*model.Order, pod *model.Pod) []*model.Order {
	var out []*model.Order
	for _, o := range orders {
		ok := true
		for _, pos := range o.Positions {
			if pod.AvailableCount(pos.Item) < pos.Required {
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

func pickByTieBreaker(orders []*model.Order, tb TieBreaker, rng sim.Randomizer) *model.Order {
	switch tb {
	case TieEarliestDueTime:
		best := orders[0]
		for _, o := range orders[1:] {
			if o.DueTime < best.DueTime {
				best = o
			}
		}
		return best
	case TieFCFS:
		sorted := append([]*model.Order{}, orders...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TimeStampSubmit < sorted[j].TimeStampSubmit })
		return sorted[0]
	default: // TieRandom
		return orders[rng.Intn(len(orders))]
	}
}

func moveToFront(orders []*model.Order, target *model.Order) []*model.Order {
	rest := removeOrder(orders, target)
	return append([]*model.Order{target}, rest...)
}
