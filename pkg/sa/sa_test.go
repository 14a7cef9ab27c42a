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

package sa_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fleetsim/warehouse-engine/pkg/graph"
	"github.com/fleetsim/warehouse-engine/pkg/model"
	"github.com/fleetsim/warehouse-engine/pkg/orderbook"
	"github.com/fleetsim/warehouse-engine/pkg/planner"
	"github.com/fleetsim/warehouse-engine/pkg/resources"
	"github.com/fleetsim/warehouse-engine/pkg/sa"
	"github.com/fleetsim/warehouse-engine/pkg/sim"
	"github.com/fleetsim/warehouse-engine/pkg/test"
)

// fixture wires a single station fed by one already-inbound pod and one
// unused pod over a 3-node line graph ("0" bot start, "1" the unused pod's
// waypoint, "2" the station), so a single order needing more units than
// the inbound pod alone can supply forces SA to pick the unused pod.
type fixture struct {
	env       *sa.Env
	cfg       sa.Config
	book      *orderbook.OrderBook
	station   *model.Station
	bot       *model.Bot
	inbound   *model.Pod
	candidate *model.Pod
	order     *model.Order
	item      model.Item
}

func newFixture(bruteForce bool) *fixture {
	g := test.Line(3)
	physics := graph.ConstantSpeedPhysics{EdgeTime: 1}

	item := test.Item()
	inbound := test.Pod(test.PodOptions{Contained: map[model.Item]int{item: 1}})
	candidate := test.Pod(test.PodOptions{Contained: map[model.Item]int{item: 1}})

	station := test.Station(test.StationOptions{Waypoint: graph.NodeID("2"), Capacity: 1})
	station.AddInboundPod(inbound)

	bot := test.Bot(test.BotOptions{At: graph.NodeID("0")})

	order := test.Order(test.OrderOptions{Positions: []model.Position{{Item: item, Required: 2}}})

	book := orderbook.New(false)
	book.Submit(order)

	waypoints := map[string]graph.NodeID{candidate.ID: graph.NodeID("1")}

	cfg := sa.DefaultConfig()
	cfg.BruteForce = bruteForce
	cfg.SearchPodNum = 5

	env := &sa.Env{
		Resources:   resources.New([]*model.Pod{candidate}),
		Planner:     planner.New(g, planner.DefaultConfig(), sim.NewSeededRandomizer(1), nil),
		Graph:       g,
		Physics:     physics,
		Stations:    []*model.Station{station},
		Bots:        []*model.Bot{bot},
		Now:         func() float64 { return 0 },
		BotWaypoint: func(b *model.Bot) graph.NodeID { return b.CurrentWaypoint },
		PodWaypoint: func(p *model.Pod) graph.NodeID { return waypoints[p.ID] },
	}

	return &fixture{
		env:       env,
		cfg:       cfg,
		book:      book,
		station:   station,
		bot:       bot,
		inbound:   inbound,
		candidate: candidate,
		order:     order,
		item:      item,
	}
}

var _ = Describe("Optimizer.Update", func() {
	Describe("emitted-inventory invariant", func() {
		It("registers exactly the drained units on the inbound pod and none on the newly-chosen pod", func() {
			f := newFixture(true)
			opt := sa.New(f.env, f.book, f.cfg, sim.NewSeededRandomizer(1))

			Expect(f.inbound.RegisteredCount(f.item)).To(Equal(0))
			Expect(f.candidate.RegisteredCount(f.item)).To(Equal(0))

			ran := opt.Update(0)
			Expect(ran).To(BeTrue())

			Expect(f.order.Status).To(Equal(model.OrderAssigned))
			Expect(f.station.QueuedOrders).To(ContainElement(f.order))
			Expect(f.book.Pending()).NotTo(ContainElement(f.order))

			// The inbound pod supplied exactly 1 of the 2 required units;
			// that's the only registration emit should have made.
			Expect(f.inbound.RegisteredCount(f.item)).To(Equal(1))
			// The chosen pod's own contribution isn't registered at emit
			// time - it's staged via PendingPod for the dispatch leg that
			// actually picks the pod up.
			Expect(f.candidate.RegisteredCount(f.item)).To(Equal(0))

			pod, ok := opt.PendingPod(f.station.ID)
			Expect(ok).To(BeTrue())
			Expect(pod).To(Equal(f.candidate))

			// PendingPod consumes the staged pod; a second read finds nothing.
			_, ok = opt.PendingPod(f.station.ID)
			Expect(ok).To(BeFalse())
		})
	})

	Describe("convergence", func() {
		It("settles on a stable allocation: a second Update on unchanged state finds no more work", func() {
			f := newFixture(false)
			opt := sa.New(f.env, f.book, f.cfg, sim.NewSeededRandomizer(7))

			first := opt.Update(0)
			Expect(first).To(BeTrue())
			Expect(f.station.QueuedOrders).To(ContainElement(f.order))

			// The station's single slot of capacity is now reserved by the
			// order just allocated, so the Metropolis-driven update has
			// nothing left to improve and should decline to run again.
			second := opt.Update(1)
			Expect(second).To(BeFalse())
		})
	})
})
