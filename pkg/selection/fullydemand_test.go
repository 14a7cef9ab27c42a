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

package selection_test

import (
	"testing"

	"github.com/fleetsim/warehouse-engine/pkg/dispatch"
	"github.com/fleetsim/warehouse-engine/pkg/graph"
	"github.com/fleetsim/warehouse-engine/pkg/model"
	"github.com/fleetsim/warehouse-engine/pkg/orderbook"
	"github.com/fleetsim/warehouse-engine/pkg/resources"
	"github.com/fleetsim/warehouse-engine/pkg/selection"
	"github.com/fleetsim/warehouse-engine/pkg/test"
)

func newEnv(t *testing.T, pods []*model.Pod, stations []*model.Station) *selection.Env {
	t.Helper()
	res := resources.New(pods)
	d := dispatch.New(res)
	return &selection.Env{
		Resources:   res,
		Dispatch:    d,
		Graph:       test.Grid(3, 3),
		Stations:    stations,
		Now:         func() float64 { return 0 },
		BotWaypoint: func(b *model.Bot) graph.NodeID { return b.CurrentWaypoint },
		PodWaypoint: func(p *model.Pod) graph.NodeID { return graph.NodeID("0,0") },
	}
}

func TestFullyDemandPicksBestSingleUnusedPod(t *testing.T) {
	widget := model.Item{ID: "widget"}
	bot := test.Bot(test.BotOptions{At: graph.NodeID("0,0")})
	station := test.Station(test.StationOptions{Capacity: 5, Waypoint: graph.NodeID("0,0")})

	weak := test.Pod(test.PodOptions{Contained: map[model.Item]int{widget: 1}})
	strong := test.Pod(test.PodOptions{Contained: map[model.Item]int{widget: 3}})

	env := newEnv(t, []*model.Pod{weak, strong}, []*model.Station{station})
	book := orderbook.New(false)
	o := test.Order(test.OrderOptions{Positions: []model.Position{{Item: widget, Required: 3}}})
	book.Submit(o)
	station.AssignedOrders = append(station.AssignedOrders, o)

	strat := &selection.FullyDemandStrategy{Env: env, Book: book}
	outcome := strat.DoExtractForStation(bot, station, false, 0)
	if outcome != selection.TaskEnqueued {
		t.Fatalf("DoExtractForStation() = %v; want TaskEnqueued", outcome)
	}
	if bot.CurrentTask == nil || bot.CurrentTask.Pod != strong {
		t.Fatalf("bot claimed pod %v; want the stronger pod %v", bot.CurrentTask, strong)
	}
}

func TestFullyDemandReturnsNoTaskWhenNoPodHelps(t *testing.T) {
	widget := model.Item{ID: "widget"}
	bot := test.Bot(test.BotOptions{At: graph.NodeID("0,0")})
	station := test.Station(test.StationOptions{Capacity: 2, Waypoint: graph.NodeID("0,0")})

	empty := test.Pod()
	env := newEnv(t, []*model.Pod{empty}, []*model.Station{station})
	book := orderbook.New(false)
	o := test.Order(test.OrderOptions{Positions: []model.Position{{Item: widget, Required: 1}}})
	book.Submit(o)
	station.AssignedOrders = append(station.AssignedOrders, o)

	strat := &selection.FullyDemandStrategy{Env: env, Book: book}
	outcome := strat.DoExtractForStation(bot, station, false, 0)
	if outcome != selection.NoTask {
		t.Fatalf("DoExtractForStation() = %v; want NoTask when no unused pod can help", outcome)
	}
}

func TestFullyDemandCarryingPodRecyclesWhenStillRelevant(t *testing.T) {
	widget := model.Item{ID: "widget"}
	bot := test.Bot(test.BotOptions{At: graph.NodeID("0,0")})
	station := test.Station(test.StationOptions{Capacity: 2, Waypoint: graph.NodeID("0,0")})

	carried := test.Pod(test.PodOptions{Contained: map[model.Item]int{widget: 2}})
	env := newEnv(t, []*model.Pod{carried}, []*model.Station{station})
	if err := env.Resources.ClaimPod(carried, bot.ID, "test"); err != nil {
		t.Fatalf("ClaimPod: %v", err)
	}
	if err := carried.PickUp(bot.ID); err != nil {
		t.Fatalf("PickUp: %v", err)
	}
	bot.Pod = carried

	book := orderbook.New(false)
	o := test.Order(test.OrderOptions{Positions: []model.Position{{Item: widget, Required: 2}}})
	station.AssignedOrders = append(station.AssignedOrders, o)

	strat := &selection.FullyDemandStrategy{Env: env, Book: book}
	outcome := strat.DoExtractForStation(bot, station, false, 0)
	if outcome != selection.TaskEnqueued {
		t.Fatalf("DoExtractForStation() = %v; want TaskEnqueued (preamble recycle)", outcome)
	}
	if bot.CurrentTask.Pod != carried {
		t.Fatalf("bot.CurrentTask.Pod = %v; want the already-carried pod %v", bot.CurrentTask.Pod, carried)
	}
}
