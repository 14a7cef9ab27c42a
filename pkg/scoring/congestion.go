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

import "github.com/fleetsim/warehouse-engine/pkg/planner"

// buildCongestion sums planner find_path time estimates for bot->pod and
// pod->station, returning +Inf if either search fails (spec §4.2) — a
// heavily congested route is as bad as no route at all under the
// minimization convention.
func buildCongestion(cfg ScorerConfig) Scorer {
	return func(c Context) float64 {
		if c.Planner == nil || c.Bot == nil || c.Physics == nil {
			return Inf
		}
		toPod := &planner.Agent{ID: c.Bot.ID, Start: c.Bot.CurrentWaypoint, Goal: c.PodWaypoint, Physics: c.Physics}
		t1, found1 := c.Planner.FindPath(toPod, c.Now, c.Bot.CurrentWaypoint, c.PodWaypoint, false)
		if !found1 {
			return Inf
		}
		toStation := &planner.Agent{ID: c.Bot.ID, Start: c.PodWaypoint, Goal: c.StationWaypoint, CarryingPod: true, Physics: c.Physics}
		t2, found2 := c.Planner.FindPath(toStation, t1, c.PodWaypoint, c.StationWaypoint, true)
		if !found2 {
			return Inf
		}
		return applyTierPenalty(t1-c.Now+t2-t1, c, cfg.PreferSameTier)
	}
}
