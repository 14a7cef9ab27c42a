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

// buildRandom returns ±U[0,1): negated when the tier preference is
// satisfied, so that a satisfied preference always scores lower than a
// violated one under the minimization convention (spec §4.2).
func buildRandom(cfg ScorerConfig) Scorer {
	return func(c Context) float64 {
		v := c.RNG.Float64()
		if cfg.PreferSameTier && tierSatisfied(c) {
			return -v
		}
		return v
	}
}

func tierSatisfied(c Context) bool {
	botTier := 0
	if c.Bot != nil {
		botTier = c.Bot.Tier
	}
	if c.Pod != nil && c.Pod.Tier != botTier {
		return false
	}
	if c.Station != nil && c.Station.Tier != botTier {
		return false
	}
	return true
}
