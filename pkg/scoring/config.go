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

package scoring

import "fmt"

// Kind tags a ScorerConfig variant. Spec §9 replaces the source's runtime
// dispatch via config downcasts with this tagged variant plus a closure
// built once at construction time; there is no dynamic dispatch across
// variants on the hot scoring path.
type Kind int

const (
	KindRandom Kind = iota
	KindNearest
	KindWorkAmount
	KindDemand
	KindCompleteable
	KindFill
	KindCongestion
)

func (k Kind) String() string {
	switch k {
	case KindRandom:
		return "random"
	case KindNearest:
		return "nearest"
	case KindWorkAmount:
		return "work_amount"
	case KindDemand:
		return "demand"
	case KindCompleteable:
		return "completeable"
	case KindFill:
		return "fill"
	case KindCongestion:
		return "congestion"
	default:
		return "unknown"
	}
}

type NearestMetric int

const (
	MetricEuclidean NearestMetric = iota
	MetricManhattan
	MetricShortestPath
	MetricShortestTime
)

type WorkValue int

const (
	ValuePicks WorkValue = iota
	ValueOrderAge
	ValueOrderDueTime
)

type FillMode int

const (
	FillPreferFullest FillMode = iota
	FillPreferEmptiest
)

// ScorerConfig is the tagged-variant payload for one scorer instance. Only
// the fields relevant to Kind are meaningful; Build validates and panics on
// an unrecognized Kind, matching spec §7's "unknown enum variant: fatal,
// fails construction".
type ScorerConfig struct {
	Kind Kind

	PreferSameTier bool

	// Nearest
	Metric NearestMetric

	// WorkAmount
	Value        WorkValue
	ClipLateness bool

	// Fill
	Mode      FillMode
	Threshold float64 // 0 means analog (continuous), >0 means binary threshold

	// Nearest: the distance used for a leg whose waypoint is empty or
	// missing from the graph.
	WrongTierPenaltyDistance float64
}

// Build compiles a ScorerConfig into a Scorer closure.
func (c ScorerConfig) Build() Scorer {
	switch c.Kind {
	case KindRandom:
		return buildRandom(c)
	case KindNearest:
		return buildNearest(c)
	case KindWorkAmount:
		return buildWorkAmount(c)
	case KindDemand:
		return buildDemand(c)
	case KindCompleteable:
		return buildCompleteable(c)
	case KindFill:
		return buildFill(c)
	case KindCongestion:
		return buildCongestion(c)
	default:
		panic(fmt.Sprintf("scoring: unrecognized ScorerConfig.Kind %d", c.Kind))
	}
}
