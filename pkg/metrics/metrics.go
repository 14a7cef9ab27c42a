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

// Package metrics declares the Prometheus vectors the engine's packages
// populate as they run, and a single MustRegister to wire them into a
// registry. There is no controller-runtime manager here to register
// against, so callers own the registry (prometheus.DefaultRegisterer, or
// their own for tests) and pass it to MustRegister explicitly.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name this package declares.
const Namespace = "warehouse_engine"

const (
	stationLabel  = "station"
	strategyLabel = "strategy"
	kindLabel     = "kind"
	reasonLabel   = "reason"
	outcomeLabel  = "outcome"
)

// DurationBuckets returns the histogram buckets used for every
// duration-flavored metric in this package: sub-millisecond through
// multi-second, matching the resolution a single tick of the simulator
// actually needs.
func DurationBuckets() []float64 {
	return []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10}
}

var (
	// PodSelectionDuration times one DoExtractForStation/DoInsertForStation
	// call, labeled by the concrete strategy and task kind.
	PodSelectionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "selection",
			Name:      "duration_seconds",
			Help:      "Duration of a single pod-selection call. Labeled by strategy and task kind.",
			Buckets:   DurationBuckets(),
		},
		[]string{strategyLabel, kindLabel},
	)
	// TasksEnqueuedTotal counts tasks a selection strategy actually
	// dispatched, labeled by strategy, task kind, and outcome
	// (task_enqueued / park_pod_enqueued / no_task).
	TasksEnqueuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "selection",
			Name:      "tasks_total",
			Help:      "Number of pod-selection calls by outcome. Labeled by strategy, task kind, and outcome.",
		},
		[]string{strategyLabel, kindLabel, outcomeLabel},
	)
	// PodSetAllocationsTotal counts how often Fully-Demand (or the SA
	// fallback) fell through to claiming a multi-pod set rather than a
	// single fully-covering pod.
	PodSetAllocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "selection",
			Name:      "pod_set_allocations_total",
			Help:      "Number of times pod-set mode was used instead of a single covering pod. Labeled by station.",
		},
		[]string{stationLabel},
	)

	// PlannerPathDuration times a single FindPath/SchedulePath search.
	PlannerPathDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "planner",
			Name:      "path_duration_seconds",
			Help:      "Duration of a single windowed A* path search.",
			Buckets:   DurationBuckets(),
		},
		[]string{kindLabel},
	)
	// PlannerReplansTotal counts RRA* heuristic recomputation triggered by
	// a graph edge-cost change (moving obstacle, blocked cell).
	PlannerReplansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "planner",
			Name:      "replans_total",
			Help:      "Number of RRA* heuristic recomputations.",
		},
		[]string{reasonLabel},
	)
	// PlannerDeadlineMissesTotal counts searches that ran out their window
	// without finding a path.
	PlannerDeadlineMissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "planner",
			Name:      "deadline_misses_total",
			Help:      "Number of path searches that exhausted their window without a result.",
		},
		[]string{kindLabel},
	)

	// OrdersAllocatedTotal counts orders the order book allocated to a
	// station, labeled by the mechanism that allocated them.
	OrdersAllocatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "orderbook",
			Name:      "orders_allocated_total",
			Help:      "Number of orders allocated. Labeled by allocation mechanism (fully_supplied, pending, pod_set).",
		},
		[]string{reasonLabel},
	)
	// OrdersLateGauge reports the current count of backlog orders past
	// their due time, sampled once per engine tick.
	OrdersLateGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "orderbook",
			Name:      "orders_late",
			Help:      "Number of pending orders currently past their due time.",
		},
	)

	// SAUpdateDuration times one Optimizer.Update cycle.
	SAUpdateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "sa",
			Name:      "update_duration_seconds",
			Help:      "Duration of one simulated-annealing update cycle.",
			Buckets:   DurationBuckets(),
		},
	)
	// SAMovesTotal counts accepted Metropolis moves, labeled by kind
	// (swap/replan/replace).
	SAMovesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "sa",
			Name:      "moves_total",
			Help:      "Number of accepted simulated-annealing moves. Labeled by move kind.",
		},
		[]string{kindLabel},
	)
	// SAFinalTemperature reports the annealing temperature at the end of
	// the most recent update, before the next cycle resets it.
	SAFinalTemperature = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "sa",
			Name:      "final_temperature",
			Help:      "Annealing temperature reached at the end of the most recent update cycle.",
		},
	)

	// DispatchQueueDepth reports each bot's pending task-queue length,
	// sampled once per tick.
	DispatchQueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "dispatch",
			Name:      "queue_depth",
			Help:      "Number of queued tasks behind a bot's current task. Labeled by bot.",
		},
		[]string{"bot"},
	)
	// OnTheFlyRunsTotal counts RunOnTheFly augmentation walks, labeled by
	// whether it found any in-flight task to grow.
	OnTheFlyRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "dispatch",
			Name:      "on_the_fly_runs_total",
			Help:      "Number of on-the-fly augmentation walks. Labeled by whether any task was grown.",
		},
		[]string{outcomeLabel},
	)
)

// allCollectors lists every vector this package declares, so MustRegister
// doesn't drift out of sync with the var block above.
var allCollectors = []prometheus.Collector{
	PodSelectionDuration,
	TasksEnqueuedTotal,
	PodSetAllocationsTotal,
	PlannerPathDuration,
	PlannerReplansTotal,
	PlannerDeadlineMissesTotal,
	OrdersAllocatedTotal,
	OrdersLateGauge,
	SAUpdateDuration,
	SAMovesTotal,
	SAFinalTemperature,
	DispatchQueueDepth,
	OnTheFlyRunsTotal,
}

// MustRegister registers every metric this package declares against reg.
// Panics on a duplicate-registration error, matching the teacher's
// MustRegister (there, against the controller-runtime registry; here,
// against whatever registry the caller owns).
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(allCollectors...)
}
