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

// buildCompleteable scores negative count of orders the candidate pod can
// single-handedly complete, i.e. every position of the order is covered by
// the pod's own available inventory alone (spec §4.2).
func buildCompleteable(cfg ScorerConfig) Scorer {
	return func(c Context) float64 {
		if c.Station == nil || c.Pod == nil {
			return Inf
		}
		n := 0
		for _, o := range stationOrders(c.Station, c.IncludeQueued) {
			if podAloneCompletes(o, c.Pod) {
				n++
			}
		}
		return applyTierPenalty(-float64(n), c, cfg.PreferSameTier)
	}
}

func podAloneCompletes(o *model.Order, pod *model.Pod) bool {
	for _, pos := range o.Positions {
		if pod.AvailableCount(pos.Item) < pos.Required {
			return false
		}
	}
	return true
}
