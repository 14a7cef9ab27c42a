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

// buildFill scores by pod fullness (spec §4.2). Pod carries no fixed
// capacity in this engine's data model (§3), so "fullness" is the total
// contained-item count; Threshold, when positive, turns the score binary
// (at-or-above threshold vs below) instead of the raw analog count.
func buildFill(cfg ScorerConfig) Scorer {
	return func(c Context) float64 {
		if c.Pod == nil {
			return Inf
		}
		total := 0
		for _, item := range c.Pod.ItemDescriptionsContained() {
			total += c.Pod.ContainedCount(item)
		}
		value := float64(total)
		if cfg.Threshold > 0 {
			if value >= cfg.Threshold {
				value = 1
			} else {
				value = 0
			}
		}
		if cfg.Mode == FillPreferFullest {
			value = -value
		}
		return applyTierPenalty(value, c, cfg.PreferSameTier)
	}
}
