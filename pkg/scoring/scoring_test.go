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

package scoring_test

import (
	"testing"

	"github.com/fleetsim/warehouse-engine/pkg/graph"
	"github.com/fleetsim/warehouse-engine/pkg/model"
	"github.com/fleetsim/warehouse-engine/pkg/scoring"
)

func TestNearestShortestPathComposesAdditively(t *testing.T) {
	g := graph.NewSimpleGraph()
	g.AddEdge("bot", "pod", 3)
	g.AddEdge("pod", "station", 4)

	sc := scoring.ScorerConfig{Kind: scoring.KindNearest, Metric: scoring.MetricShortestPath}.Build()
	bot := &model.Bot{CurrentWaypoint: "bot"}
	pod := &model.Pod{}
	station := &model.Station{}

	got := sc(scoring.Context{Graph: g, Bot: bot, Pod: pod, Station: station, PodWaypoint: "pod", StationWaypoint: "station"})
	if got != 7 {
		t.Fatalf("nearest shortest-path score = %v; want 7 (3+4, bot->pod->station)", got)
	}
}

func TestNearestUnreachableFallsBackToPenaltyDistance(t *testing.T) {
	g := graph.NewSimpleGraph()
	sc := scoring.ScorerConfig{Kind: scoring.KindNearest, Metric: scoring.MetricShortestPath, WrongTierPenaltyDistance: 99}.Build()
	bot := &model.Bot{CurrentWaypoint: "bot"}
	pod := &model.Pod{}

	got := sc(scoring.Context{Graph: g, Bot: bot, Pod: pod, PodWaypoint: "nowhere"})
	if got != 99 {
		t.Fatalf("score with an unknown waypoint = %v; want the configured penalty distance 99", got)
	}
}

func TestNearestAppliesTierPenaltyOncePerMismatch(t *testing.T) {
	g := graph.NewSimpleGraph()
	g.AddEdge("bot", "pod", 1)
	sc := scoring.ScorerConfig{Kind: scoring.KindNearest, Metric: scoring.MetricShortestPath, PreferSameTier: true}.Build()

	bot := &model.Bot{CurrentWaypoint: "bot", Tier: 1}
	pod := &model.Pod{Tier: 2}
	got := sc(scoring.Context{Graph: g, Bot: bot, Pod: pod, PodWaypoint: "pod"})
	if got != 1001 {
		t.Fatalf("score with mismatched bot/pod tier = %v; want 1+1000", got)
	}
}

func TestFillPreferFullestNegatesCount(t *testing.T) {
	widget := model.Item{ID: "widget"}
	pod := model.NewPod("p1", 0)
	pod.AddContained(widget, 4)

	sc := scoring.ScorerConfig{Kind: scoring.KindFill, Mode: scoring.FillPreferFullest}.Build()
	got := sc(scoring.Context{Pod: pod})
	if got != -4 {
		t.Fatalf("fill/prefer_fullest score = %v; want -4 (lower is better, so fuller pods score more negative)", got)
	}
}

func TestFillPreferEmptiestKeepsPositiveCount(t *testing.T) {
	widget := model.Item{ID: "widget"}
	pod := model.NewPod("p1", 0)
	pod.AddContained(widget, 4)

	sc := scoring.ScorerConfig{Kind: scoring.KindFill, Mode: scoring.FillPreferEmptiest}.Build()
	got := sc(scoring.Context{Pod: pod})
	if got != 4 {
		t.Fatalf("fill/prefer_emptiest score = %v; want 4", got)
	}
}

func TestFillThresholdBinarizes(t *testing.T) {
	widget := model.Item{ID: "widget"}
	pod := model.NewPod("p1", 0)
	pod.AddContained(widget, 2)

	sc := scoring.ScorerConfig{Kind: scoring.KindFill, Mode: scoring.FillPreferEmptiest, Threshold: 5}.Build()
	if got := sc(scoring.Context{Pod: pod}); got != 0 {
		t.Fatalf("below-threshold score = %v; want 0", got)
	}

	pod.AddContained(widget, 10)
	if got := sc(scoring.Context{Pod: pod}); got != 1 {
		t.Fatalf("at-or-above-threshold score = %v; want 1", got)
	}
}

func TestFillNilPodIsInfinite(t *testing.T) {
	sc := scoring.ScorerConfig{Kind: scoring.KindFill}.Build()
	if got := sc(scoring.Context{}); got != scoring.Inf {
		t.Fatalf("fill score with no pod = %v; want scoring.Inf", got)
	}
}

func TestBuildPanicsOnUnrecognizedKind(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("Build() with an unrecognized Kind: want a panic, got none")
		}
	}()
	scoring.ScorerConfig{Kind: scoring.Kind(99)}.Build()
}
