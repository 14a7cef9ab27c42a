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

package dispatch_test

import (
	"testing"

	"github.com/fleetsim/warehouse-engine/pkg/dispatch"
	"github.com/fleetsim/warehouse-engine/pkg/model"
	"github.com/fleetsim/warehouse-engine/pkg/resources"
	"github.com/fleetsim/warehouse-engine/pkg/test"
)

func TestEnqueueExtractClaimsPodAndReservesCapacity(t *testing.T) {
	widget := model.Item{ID: "widget"}
	pod := test.Pod(test.PodOptions{Contained: map[model.Item]int{widget: 2}})
	bot := test.Bot()
	station := test.Station(test.StationOptions{Capacity: 2})

	res := resources.New([]*model.Pod{pod})
	d := dispatch.New(res)

	reqs := []*model.ExtractRequest{{Item: widget, Station: station}, {Item: widget, Station: station}}
	if err := d.EnqueueExtract(bot, station, pod, reqs); err != nil {
		t.Fatalf("EnqueueExtract: %v", err)
	}
	if pod.State() != model.PodClaimed {
		t.Fatalf("pod.State() = %v; want PodClaimed", pod.State())
	}
	if station.Reserved() != 2 {
		t.Fatalf("station.Reserved() = %d; want 2", station.Reserved())
	}
	if bot.CurrentTask == nil || bot.CurrentTask.Kind != model.TaskExtract {
		t.Fatalf("bot.CurrentTask = %+v; want a TaskExtract", bot.CurrentTask)
	}
	if pod.RegisteredCount(widget) != 2 {
		t.Fatalf("pod.RegisteredCount(widget) = %d; want 2", pod.RegisteredCount(widget))
	}
}

func TestEnqueueExtractRecyclesAlreadyCarriedPod(t *testing.T) {
	widget := model.Item{ID: "widget"}
	pod := test.Pod(test.PodOptions{Contained: map[model.Item]int{widget: 3}})
	bot := test.Bot()
	station := test.Station(test.StationOptions{Capacity: 3})

	res := resources.New([]*model.Pod{pod})
	d := dispatch.New(res)

	if err := res.ClaimPod(pod, bot.ID, "first"); err != nil {
		t.Fatalf("ClaimPod: %v", err)
	}
	if err := pod.PickUp(bot.ID); err != nil {
		t.Fatalf("PickUp: %v", err)
	}

	reqs := []*model.ExtractRequest{{Item: widget, Station: station}}
	if err := d.EnqueueExtract(bot, station, pod, reqs); err != nil {
		t.Fatalf("EnqueueExtract on an already-carried pod: %v", err)
	}
	if pod.State() != model.PodCarried || pod.Carrier() != bot.ID {
		t.Fatalf("pod state/carrier changed by recycle: state=%v carrier=%q", pod.State(), pod.Carrier())
	}
}

func TestPushQueuesBehindCurrentTask(t *testing.T) {
	bot := test.Bot()
	res := resources.New(nil)
	d := dispatch.New(res)

	d.EnqueueRest(bot)
	if bot.CurrentTask == nil || bot.CurrentTask.Kind != model.TaskRest {
		t.Fatalf("first EnqueueRest should become CurrentTask directly, got %+v", bot.CurrentTask)
	}

	d.EnqueueRest(bot)
	if len(d.Queue(bot)) != 1 {
		t.Fatalf("len(Queue(bot)) = %d after second EnqueueRest; want 1 (queued, not current)", len(d.Queue(bot)))
	}
}

func TestAdvancePopsNextQueuedTask(t *testing.T) {
	bot := test.Bot()
	res := resources.New(nil)
	d := dispatch.New(res)

	d.EnqueueRest(bot)
	d.EnqueueRest(bot)
	first := bot.CurrentTask

	d.Advance(bot)
	if bot.CurrentTask == first {
		t.Fatalf("Advance() did not replace CurrentTask")
	}
	if bot.CurrentTask.Kind != model.TaskRest {
		t.Fatalf("bot.CurrentTask.Kind = %v; want TaskRest", bot.CurrentTask.Kind)
	}
	if len(d.Queue(bot)) != 0 {
		t.Fatalf("len(Queue(bot)) = %d after Advance drained the queue; want 0", len(d.Queue(bot)))
	}

	d.Advance(bot)
	if bot.CurrentTask.Kind != model.TaskNone {
		t.Fatalf("bot.CurrentTask.Kind = %v after Advance with an empty queue; want TaskNone", bot.CurrentTask.Kind)
	}
}
