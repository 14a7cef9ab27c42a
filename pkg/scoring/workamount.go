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

// buildWorkAmount scores negative of the configured value metric over the
// station's realizable requests were the candidate pod added (spec §4.2).
// Negating turns "more work unlocked" into "lower score", honoring the
// minimization convention.
func buildWorkAmount(cfg ScorerConfig) Scorer {
	return func(c Context) float64 {
		if c.Station == nil {
			return Inf
		}
		orders := stationOrders(c.Station, c.IncludeQueued)
		var value float64
		switch cfg.Value {
		case ValuePicks:
			value = float64(realizablePicks(orders, c.Station, c.Pod))
		case ValueOrderAge:
			for _, o := range realizableOrders(orders, c.Station, c.Pod) {
				value += o.TimeStay(c.Now)
			}
		case ValueOrderDueTime:
			for _, o := range realizableOrders(orders, c.Station, c.Pod) {
				lateness := c.Now - o.DueTime
				if cfg.ClipLateness && lateness < 0 {
					lateness = 0
				}
				value += lateness
			}
		}
		return applyTierPenalty(-value, c, cfg.PreferSameTier)
	}
}
