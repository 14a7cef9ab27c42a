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

package reservation_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fleetsim/warehouse-engine/pkg/graph"
	"github.com/fleetsim/warehouse-engine/pkg/reservation"
)

var _ = Describe("Table", func() {
	var t *reservation.Table
	var node graph.NodeID

	BeforeEach(func() {
		t = reservation.New()
		node = graph.NodeID("n1")
	})

	Describe("Add", func() {
		It("accepts two disjoint intervals at the same node", func() {
			_, ok1 := t.Add(node, 0, 5, "bot-a")
			_, ok2 := t.Add(node, 5, 10, "bot-b")
			Expect(ok1).To(BeTrue())
			Expect(ok2).To(BeTrue())
			Expect(t.Intervals(node)).To(HaveLen(2))
		})

		It("rejects an interval overlapping an existing reservation", func() {
			_, ok := t.Add(node, 0, 10, "bot-a")
			Expect(ok).To(BeTrue())

			iv, ok := t.Add(node, 5, 15, "bot-b")
			Expect(ok).To(BeFalse())
			Expect(iv).To(BeNil())
			Expect(t.Intervals(node)).To(HaveLen(1))
		})

		It("never admits two overlapping owners at a node regardless of insertion order", func() {
			// Disjointness property (spec §8): whatever order intervals
			// arrive in, the committed set at any node stays pairwise
			// non-overlapping.
			starts := []float64{0, 20, 10, 40, 30}
			for i, s := range starts {
				t.Add(node, s, s+5, "bot")
				ivs := t.Intervals(node)
				for i := 0; i < len(ivs); i++ {
					for j := i + 1; j < len(ivs); j++ {
						overlap := ivs[i].Start < ivs[j].End && ivs[j].Start < ivs[i].End
						Expect(overlap).To(BeFalse(), "intervals %+v and %+v overlap after inserting start=%v (iteration %d)", ivs[i], ivs[j], s, i)
					}
				}
			}
		})
	})

	Describe("Remove", func() {
		It("removes only the interval with the matching id", func() {
			iv1, _ := t.Add(node, 0, 5, "bot-a")
			iv2, _ := t.Add(node, 5, 10, "bot-b")

			Expect(t.Remove(node, iv1.ID)).To(BeTrue())
			ivs := t.Intervals(node)
			Expect(ivs).To(HaveLen(1))
			Expect(ivs[0].ID).To(Equal(iv2.ID))
		})

		It("reports false for an id that was never reserved", func() {
			Expect(t.Remove(node, 9999)).To(BeFalse())
		})
	})

	Describe("RemoveAllOwnedBy", func() {
		It("clears every interval owned by an agent across all nodes", func() {
			t.Add(node, 0, 5, "bot-a")
			t.Add(graph.NodeID("n2"), 0, 5, "bot-a")
			t.Add(node, 5, 10, "bot-b")

			n := t.RemoveAllOwnedBy("bot-a")
			Expect(n).To(Equal(2))
			Expect(t.Intervals(node)).To(HaveLen(1))
			Expect(t.Intervals(graph.NodeID("n2"))).To(BeEmpty())
		})
	})

	Describe("IntervalQuery and PointQuery", func() {
		BeforeEach(func() {
			t.Add(node, 10, 20, "bot-a")
		})

		It("reports overlap against a different owner", func() {
			Expect(t.IntervalQuery(node, 15, 25, "bot-b")).To(BeTrue())
			Expect(t.PointQuery(node, 15, "bot-b")).To(BeTrue())
		})

		It("ignores the querying agent's own reservations", func() {
			Expect(t.IntervalQuery(node, 15, 25, "bot-a")).To(BeFalse())
			Expect(t.PointQuery(node, 15, "bot-a")).To(BeFalse())
		})
	})

	Describe("DeepCopy", func() {
		It("is independent of the original (schedule_init speculative isolation)", func() {
			t.Add(node, 0, 10, "bot-a")
			original := t.Hash()

			cp := t.DeepCopy()
			cp.Add(node, 10, 20, "bot-b")
			cp.RemoveAllOwnedBy("bot-a")

			Expect(t.Hash()).To(Equal(original), "mutating the copy must never change the original table")
			Expect(t.Intervals(node)).To(HaveLen(1))
		})
	})

	Describe("Hash", func() {
		It("is stable across structurally-equal tables built in different orders", func() {
			a := reservation.New()
			a.Add(node, 0, 5, "bot-a")
			a.Add(node, 5, 10, "bot-b")

			b := reservation.New()
			b.Add(node, 5, 10, "bot-b")
			b.Add(node, 0, 5, "bot-a")

			Expect(a.Hash()).To(Equal(b.Hash()))
		})

		It("changes when a reservation is added and reverts once it's removed", func() {
			base := t.Hash()
			iv, _ := t.Add(node, 0, 5, "bot-a")
			Expect(t.Hash()).NotTo(Equal(base))

			t.Remove(node, iv.ID)
			Expect(t.Hash()).To(Equal(base))
		})
	})

	Describe("FindEndReservation", func() {
		It("finds the open-ended tail reservation's start time", func() {
			t.Add(node, 0, 5, "bot-a")
			t.Add(node, 5, reservation.Inf, "bot-a")

			start, ok := t.FindEndReservation(node)
			Expect(ok).To(BeTrue())
			Expect(start).To(Equal(5.0))
		})

		It("reports false when there is no tail reservation", func() {
			t.Add(node, 0, 5, "bot-a")
			_, ok := t.FindEndReservation(node)
			Expect(ok).To(BeFalse())
		})
	})
})
