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

package planner_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fleetsim/warehouse-engine/pkg/graph"
	"github.com/fleetsim/warehouse-engine/pkg/planner"
	"github.com/fleetsim/warehouse-engine/pkg/sim"
)

func lineGraph() *graph.SimpleGraph {
	g := graph.NewSimpleGraph()
	g.AddEdge("a", "b", 1)
	g.AddEdge("b", "a", 1)
	g.AddEdge("b", "c", 1)
	g.AddEdge("c", "b", 1)
	return g
}

var _ = Describe("ForcedWaitSteps", func() {
	It("doubles the forced delay per escalation and halves it back to whole wait-steps", func() {
		Expect(planner.ForcedWaitSteps(0)).To(Equal(0))
		Expect(planner.ForcedWaitSteps(1)).To(Equal(1))
		Expect(planner.ForcedWaitSteps(2)).To(Equal(2))
		Expect(planner.ForcedWaitSteps(3)).To(Equal(4))
		Expect(planner.ForcedWaitSteps(4)).To(Equal(8))
	})
})

var _ = Describe("Planner", func() {
	var p *planner.Planner
	var g *graph.SimpleGraph
	var physics graph.ConstantSpeedPhysics

	BeforeEach(func() {
		g = lineGraph()
		physics = graph.ConstantSpeedPhysics{EdgeTime: 1}
		p = planner.New(g, planner.DefaultConfig(), sim.NewSeededRandomizer(1), nil)
	})

	Describe("FindPaths", func() {
		It("commits a found path into the reservation table", func() {
			before := p.CommittedHash()
			agent := &planner.Agent{ID: "bot-1", Start: "a", Goal: "c", Physics: physics}
			results := p.FindPaths(0, []*planner.Agent{agent})

			Expect(results).To(HaveLen(1))
			Expect(results[0].Found).To(BeTrue())
			Expect(p.CommittedHash()).NotTo(Equal(before))
		})

		It("plans a lower-priority agent around a higher-priority one's committed path", func() {
			high := &planner.Agent{ID: "high", Start: "a", Goal: "c", Physics: physics, Priority: 10}
			low := &planner.Agent{ID: "low", Start: "c", Goal: "a", Physics: physics, Priority: 1}

			results := p.FindPaths(0, []*planner.Agent{low, high})
			for _, r := range results {
				Expect(r.Found).To(BeTrue(), "agent %s should have found a path", r.Agent.ID)
			}
		})
	})

	Describe("ScheduleInit and SchedulePath", func() {
		It("leaves the committed table untouched by speculative scheduling", func() {
			agent := &planner.Agent{ID: "bot-1", Start: "a", Goal: "c", Physics: physics}
			p.FindPaths(0, []*planner.Agent{agent})
			committedBefore := p.CommittedHash()

			p.ScheduleInit()
			speculative := &planner.Agent{ID: "bot-2", Start: "c", Goal: "a", Physics: physics}
			p.SchedulePath(speculative, 0, "c", "a", false, nil)

			Expect(p.CommittedHash()).To(Equal(committedBefore), "SchedulePath must never mutate the committed table")
		})

		It("restores the scheduled table after each call, making repeated identical calls idempotent", func() {
			p.ScheduleInit()
			agent := &planner.Agent{ID: "bot-1", Start: "a", Goal: "c", Physics: physics}

			endTime1, reservations1, found1 := p.SchedulePath(agent, 0, "a", "c", false, nil)
			endTime2, reservations2, found2 := p.SchedulePath(agent, 0, "a", "c", false, nil)

			Expect(found1).To(BeTrue())
			Expect(found2).To(Equal(found1))
			Expect(endTime2).To(Equal(endTime1))
			Expect(len(reservations2)).To(Equal(len(reservations1)))
		})
	})

	Describe("FindEndReservation", func() {
		It("reports the tail reservation left by a committed path", func() {
			agent := &planner.Agent{ID: "bot-1", Start: "a", Goal: "c", Physics: physics}
			p.FindPaths(0, []*planner.Agent{agent})

			_, ok := p.FindEndReservation("c")
			Expect(ok).To(BeTrue())
		})
	})
})
