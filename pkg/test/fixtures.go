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

// Package test holds fixture builders for the test suites throughout this
// module: Options-struct constructors in the style of the wider example
// corpus's own pkg/test packages (test.Pod(test.PodOptions{...})), each
// filling in a randomized identifier when the caller leaves one blank.
package test

import (
	"strings"

	"github.com/Pallinder/go-randomdata"

	"github.com/fleetsim/warehouse-engine/pkg/graph"
	"github.com/fleetsim/warehouse-engine/pkg/model"
)

// RandomName returns a lowercased, human-readable test identifier.
func RandomName() string {
	return strings.ToLower(randomdata.SillyName())
}

// PodOptions overrides NewPod's defaults; a blank ID is replaced with
// RandomName(). Contained pre-populates the pod's physical inventory.
type PodOptions struct {
	ID        string
	Tier      int
	Contained map[model.Item]int
	State     model.PodState
	Carrier   string
}

// Pod builds a pod from the given options, applying at most one
// PodOptions (later ones are ignored, matching the single-options-struct
// builders the corpus uses rather than a merge chain).
func Pod(overrides ...PodOptions) *model.Pod {
	opts := PodOptions{}
	if len(overrides) > 0 {
		opts = overrides[0]
	}
	if opts.ID == "" {
		opts.ID = RandomName()
	}
	p := model.NewPod(opts.ID, opts.Tier)
	for item, n := range opts.Contained {
		p.AddContained(item, n)
	}
	return p
}

// BotOptions overrides NewBot's defaults.
type BotOptions struct {
	ID  string
	Tier int
	At  graph.NodeID
}

// Bot builds a bot from the given options.
func Bot(overrides ...BotOptions) *model.Bot {
	opts := BotOptions{At: graph.NodeID("n0")}
	if len(overrides) > 0 {
		opts = overrides[0]
		if opts.At == "" {
			opts.At = graph.NodeID("n0")
		}
	}
	if opts.ID == "" {
		opts.ID = RandomName()
	}
	return model.NewBot(opts.ID, opts.Tier, opts.At)
}

// StationOptions overrides NewStation's defaults.
type StationOptions struct {
	ID       string
	Kind     model.StationKind
	Tier     int
	Capacity int
	Waypoint graph.NodeID
}

// Station builds a station from the given options; Capacity defaults to
// 1 when left zero, since a zero-capacity station can never accept work.
func Station(overrides ...StationOptions) *model.Station {
	opts := StationOptions{Waypoint: graph.NodeID("n0"), Capacity: 1}
	if len(overrides) > 0 {
		opts = overrides[0]
		if opts.Waypoint == "" {
			opts.Waypoint = graph.NodeID("n0")
		}
		if opts.Capacity == 0 {
			opts.Capacity = 1
		}
	}
	if opts.ID == "" {
		opts.ID = RandomName()
	}
	return model.NewStation(opts.ID, opts.Kind, opts.Tier, opts.Capacity, opts.Waypoint)
}

// OrderOptions overrides NewOrder's defaults.
type OrderOptions struct {
	ID         string
	Positions  []model.Position
	TimePlaced float64
	DueTime    float64
}

// Order builds an order from the given options. DueTime defaults to
// TimePlaced+100, a due time comfortably past any test's simulated now().
func Order(overrides ...OrderOptions) *model.Order {
	opts := OrderOptions{}
	if len(overrides) > 0 {
		opts = overrides[0]
	}
	if opts.ID == "" {
		opts.ID = RandomName()
	}
	if opts.DueTime == 0 {
		opts.DueTime = opts.TimePlaced + 100
	}
	if opts.Positions == nil {
		opts.Positions = []model.Position{Position()}
	}
	return model.NewOrder(opts.ID, opts.Positions, opts.TimePlaced, opts.DueTime)
}

// Position builds a single (item, required) line, defaulting to one unit
// of a randomly-named item when left blank.
func Position(overrides ...model.Position) model.Position {
	if len(overrides) > 0 {
		pos := overrides[0]
		if pos.Item.ID == "" {
			pos.Item = Item()
		}
		if pos.Required == 0 {
			pos.Required = 1
		}
		return pos
	}
	return model.Position{Item: Item(), Required: 1}
}

// Item builds a randomly-identified item.
func Item() model.Item {
	return model.Item{ID: RandomName()}
}
