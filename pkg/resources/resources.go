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

// Package resources implements the shared pod claim/release resource
// manager of spec §5: "Pods are claimed through ClaimPod(pod, bot?,
// reason) / ReleasePod(pod); a claim is an exclusive lock against other
// claimants."
package resources

import (
	"fmt"

	"github.com/fleetsim/warehouse-engine/pkg/model"
)

// Manager owns the unused-pods set and every pod's claim lifecycle. It is
// the single writer for pod state transitions outside of pickup/drop,
// which the bot executor reports back through Dispatch.
type Manager struct {
	unused map[*model.Pod]bool
	all    []*model.Pod
}

// New constructs a Manager whose initial unused set is every pod in pods.
func New(pods []*model.Pod) *Manager {
	m := &Manager{unused: map[*model.Pod]bool{}, all: append([]*model.Pod{}, pods...)}
	for _, p := range pods {
		m.unused[p] = true
	}
	return m
}

// UnusedPods returns every currently-unused pod. The returned slice is a
// fresh copy; callers may not rely on iteration order being stable across
// calls.
func (m *Manager) UnusedPods() []*model.Pod {
	out := make([]*model.Pod, 0, len(m.unused))
	for p := range m.unused {
		out = append(out, p)
	}
	return out
}

// ClaimPod reserves pod for bot (bot == "" for a pending-pod-set claim not
// yet assigned to a specific bot). reason is carried only for diagnostics.
// A pod already carried by bot is left alone: this is the recycle path
// (spec §4.4's preamble re-dispatching a bot's already-in-hand pod against
// a new request set), not a fresh claim.
func (m *Manager) ClaimPod(pod *model.Pod, bot string, reason string) error {
	if pod.State() == model.PodCarried && pod.Carrier() == bot {
		return nil
	}
	if !m.unused[pod] {
		return fmt.Errorf("resources: cannot claim pod %s (%s): not in unused set", pod.ID, reason)
	}
	if err := pod.Claim(bot); err != nil {
		return fmt.Errorf("resources: claim pod %s (%s): %w", pod.ID, reason, err)
	}
	delete(m.unused, pod)
	return nil
}

// ReleasePod returns a claimed (not carried) pod to the unused set.
func (m *Manager) ReleasePod(pod *model.Pod) error {
	if err := pod.Release(); err != nil {
		return fmt.Errorf("resources: release pod %s: %w", pod.ID, err)
	}
	m.unused[pod] = true
	return nil
}

// DropToUnused returns a carried pod directly to unused (after ParkPod
// completes), bypassing the claimed state.
func (m *Manager) DropToUnused(pod *model.Pod) error {
	if err := pod.Drop(); err != nil {
		return fmt.Errorf("resources: drop pod %s: %w", pod.ID, err)
	}
	m.unused[pod] = true
	return nil
}

// All returns every pod the manager knows about, used by diagnostics and
// test fixtures.
func (m *Manager) All() []*model.Pod { return append([]*model.Pod{}, m.all...) }
