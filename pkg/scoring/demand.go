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

// buildDemand scores negative of Sum_i min(global_demand(i), pod_offer(i))
// (spec §4.2): pods offering items the backlog actually wants score lower.
func buildDemand(cfg ScorerConfig) Scorer {
	return func(c Context) float64 {
		if c.Pod == nil || c.GlobalDemand == nil {
			return Inf
		}
		total := 0
		for _, item := range c.Pod.ItemDescriptionsContained() {
			demand := c.GlobalDemand(item)
			offer := c.Pod.AvailableCount(item)
			if demand < offer {
				total += demand
			} else {
				total += offer
			}
		}
		return applyTierPenalty(-float64(total), c, cfg.PreferSameTier)
	}
}
