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

package resources_test

import (
	"testing"

	"github.com/fleetsim/warehouse-engine/pkg/model"
	"github.com/fleetsim/warehouse-engine/pkg/resources"
	"github.com/fleetsim/warehouse-engine/pkg/test"
)

func TestClaimRemovesFromUnused(t *testing.T) {
	p := test.Pod()
	m := resources.New([]*model.Pod{p})

	if len(m.UnusedPods()) != 1 {
		t.Fatalf("UnusedPods() = %d pods; want 1 before any claim", len(m.UnusedPods()))
	}
	if err := m.ClaimPod(p, "bot-1", "test claim"); err != nil {
		t.Fatalf("ClaimPod: %v", err)
	}
	if len(m.UnusedPods()) != 0 {
		t.Fatalf("UnusedPods() = %d pods; want 0 after claim", len(m.UnusedPods()))
	}
	if p.State() != model.PodClaimed {
		t.Fatalf("p.State() = %v; want PodClaimed", p.State())
	}
}

func TestClaimAlreadyClaimedFails(t *testing.T) {
	p := test.Pod()
	m := resources.New([]*model.Pod{p})

	if err := m.ClaimPod(p, "bot-1", "first"); err != nil {
		t.Fatalf("first ClaimPod: %v", err)
	}
	if err := m.ClaimPod(p, "bot-2", "second"); err == nil {
		t.Fatalf("second ClaimPod on an already-claimed pod: want error, got nil")
	}
}

func TestReleaseReturnsToUnused(t *testing.T) {
	p := test.Pod()
	m := resources.New([]*model.Pod{p})

	if err := m.ClaimPod(p, "bot-1", "test claim"); err != nil {
		t.Fatalf("ClaimPod: %v", err)
	}
	if err := m.ReleasePod(p); err != nil {
		t.Fatalf("ReleasePod: %v", err)
	}
	if len(m.UnusedPods()) != 1 {
		t.Fatalf("UnusedPods() = %d pods; want 1 after release", len(m.UnusedPods()))
	}
}

func TestDropToUnusedFromCarried(t *testing.T) {
	p := test.Pod()
	m := resources.New([]*model.Pod{p})

	if err := m.ClaimPod(p, "bot-1", "test claim"); err != nil {
		t.Fatalf("ClaimPod: %v", err)
	}
	if err := p.PickUp("bot-1"); err != nil {
		t.Fatalf("PickUp: %v", err)
	}
	if err := m.DropToUnused(p); err != nil {
		t.Fatalf("DropToUnused: %v", err)
	}
	if len(m.UnusedPods()) != 1 {
		t.Fatalf("UnusedPods() = %d pods; want 1 after drop", len(m.UnusedPods()))
	}
	if p.State() != model.PodUnused {
		t.Fatalf("p.State() = %v; want PodUnused", p.State())
	}
}

func TestAllReturnsEveryPodRegardlessOfState(t *testing.T) {
	p1, p2 := test.Pod(), test.Pod()
	m := resources.New([]*model.Pod{p1, p2})

	if err := m.ClaimPod(p1, "bot-1", "test claim"); err != nil {
		t.Fatalf("ClaimPod: %v", err)
	}
	if len(m.All()) != 2 {
		t.Fatalf("All() = %d pods; want 2", len(m.All()))
	}
}
