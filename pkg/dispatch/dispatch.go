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

// Package dispatch holds per-bot task queues and the on-the-fly
// augmentation that grows in-flight Extract/Insert tasks as new orders or
// bundles are allocated (spec §4.7).
package dispatch

import (
	"fmt"

	"github.com/fleetsim/warehouse-engine/pkg/graph"
	"github.com/fleetsim/warehouse-engine/pkg/model"
	"github.com/fleetsim/warehouse-engine/pkg/resources"
)

// Dispatch owns every bot's task queue: CurrentTask plus zero or more
// queued-but-not-started tasks.
type Dispatch struct {
	resources *resources.Manager
	queues    map[string][]*model.Task
	flags     *onTheFly
}

// New constructs a Dispatch backed by the given pod resource manager.
func New(res *resources.Manager) *Dispatch {
	return &Dispatch{resources: res, queues: map[string][]*model.Task{}, flags: newOnTheFly()}
}

// MarkOrderAllocated signals that station's extract situation needs
// re-investigation on the next RunOnTheFly walk (spec §4.7).
func (d *Dispatch) MarkOrderAllocated(station *model.Station) { d.flags.MarkOrderAllocated(station.ID) }

// MarkBundleAllocated is MarkOrderAllocated's input-station analogue.
func (d *Dispatch) MarkBundleAllocated(station *model.Station) { d.flags.MarkBundleAllocated(station.ID) }

// MarkPodPickup signals that a bot just started carrying a pod. It sets
// the extract and store flags without marking any station dirty.
func (d *Dispatch) MarkPodPickup() { d.flags.MarkPodPickup() }

// Queue returns bot's queued-but-not-current tasks, in order.
func (d *Dispatch) Queue(bot *model.Bot) []*model.Task { return d.queues[bot.ID] }

func (d *Dispatch) push(bot *model.Bot, t *model.Task) {
	if bot.CurrentTask == nil || bot.CurrentTask.Kind == model.TaskNone {
		bot.CurrentTask = t
		return
	}
	d.queues[bot.ID] = append(d.queues[bot.ID], t)
}

// Advance pops the next queued task (if any) into bot.CurrentTask once the
// bot executor reports the current task complete; otherwise sets
// CurrentTask to None.
func (d *Dispatch) Advance(bot *model.Bot) {
	q := d.queues[bot.ID]
	if len(q) == 0 {
		bot.CurrentTask = &model.Task{Kind: model.TaskNone}
		return
	}
	bot.CurrentTask = q[0]
	d.queues[bot.ID] = q[1:]
}

// EnqueueExtract reserves station capacity for len(requests) units,
// claims pod on bot, and registers each request's item on pod (spec §4.7).
func (d *Dispatch) EnqueueExtract(bot *model.Bot, station *model.Station, pod *model.Pod, requests []*model.ExtractRequest) error {
	if err := station.ReserveCapacity(len(requests)); err != nil {
		return fmt.Errorf("dispatch: enqueue_extract: %w", err)
	}
	if err := d.resources.ClaimPod(pod, bot.ID, "extract"); err != nil {
		return fmt.Errorf("dispatch: enqueue_extract: %w", err)
	}
	for _, r := range requests {
		pod.RegisterItem(r.Item, 1)
	}
	d.push(bot, &model.Task{Kind: model.TaskExtract, Pod: pod, Station: station, ExtractRequests: requests})
	return nil
}

// EnqueueInsert is EnqueueExtract's input-station analogue.
func (d *Dispatch) EnqueueInsert(bot *model.Bot, station *model.Station, pod *model.Pod, requests []*model.InsertRequest) error {
	if err := station.ReserveCapacity(len(requests)); err != nil {
		return fmt.Errorf("dispatch: enqueue_insert: %w", err)
	}
	if err := d.resources.ClaimPod(pod, bot.ID, "insert"); err != nil {
		return fmt.Errorf("dispatch: enqueue_insert: %w", err)
	}
	d.push(bot, &model.Task{Kind: model.TaskInsert, Pod: pod, Station: station, InsertRequests: requests})
	return nil
}

// EnqueueParkPod assigns bot to carry its current pod to dest and drop it.
func (d *Dispatch) EnqueueParkPod(bot *model.Bot, dest graph.NodeID) {
	d.push(bot, &model.Task{Kind: model.TaskParkPod, Pod: bot.Pod, ParkDestination: dest})
}

// EnqueueRest assigns bot an idle Rest task.
func (d *Dispatch) EnqueueRest(bot *model.Bot) {
	d.push(bot, &model.Task{Kind: model.TaskRest})
}

// AddExtractRequest appends a request to an in-flight Extract task,
// registering the item on its pod (spec §4.7 add_request, used by
// on-the-fly augmentation).
func (d *Dispatch) AddExtractRequest(task *model.Task, req *model.ExtractRequest) {
	task.Pod.RegisterItem(req.Item, 1)
	task.Station.ReserveCapacity(1) //nolint:errcheck // augmentation only proceeds when possibleRequests already confirmed fit
	task.ExtractRequests = append(task.ExtractRequests, req)
}

// AddInsertRequest is AddExtractRequest's input-station analogue.
func (d *Dispatch) AddInsertRequest(task *model.Task, req *model.InsertRequest) {
	task.Station.ReserveCapacity(1) //nolint:errcheck // see AddExtractRequest
	task.InsertRequests = append(task.InsertRequests, req)
}
