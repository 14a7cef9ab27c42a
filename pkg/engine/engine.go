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

// Package engine wires the pod-selection strategy, the windowed planner,
// the fully-supplied order book, the dispatch queues, and (when configured)
// the simulated-annealing optimizer into the single entry point the
// simulator shell drives: construct once, then call RequestTask per idle
// bot and Tick per simulated instant (spec §2's dataflow and §6's external
// interfaces).
package engine

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fleetsim/warehouse-engine/pkg/bestof"
	"github.com/fleetsim/warehouse-engine/pkg/config"
	"github.com/fleetsim/warehouse-engine/pkg/dispatch"
	"github.com/fleetsim/warehouse-engine/pkg/graph"
	"github.com/fleetsim/warehouse-engine/pkg/metrics"
	"github.com/fleetsim/warehouse-engine/pkg/model"
	"github.com/fleetsim/warehouse-engine/pkg/observer"
	"github.com/fleetsim/warehouse-engine/pkg/orderbook"
	"github.com/fleetsim/warehouse-engine/pkg/planner"
	"github.com/fleetsim/warehouse-engine/pkg/resources"
	"github.com/fleetsim/warehouse-engine/pkg/sa"
	"github.com/fleetsim/warehouse-engine/pkg/scoring"
	"github.com/fleetsim/warehouse-engine/pkg/selection"
	"github.com/fleetsim/warehouse-engine/pkg/sim"
)

// Collaborators bundles every external read-model and callback spec §6
// lists under "Inputs (collaborator -> core)". The simulator shell
// constructs one of these once at startup; the engine never reaches past
// it for warehouse state.
type Collaborators struct {
	Graph    graph.Graph
	Physics  graph.Physics
	Stations []*model.Station
	Bots     []*model.Bot
	Pods     []*model.Pod
	RNG      sim.Randomizer
	Logger   *zap.SugaredLogger

	Now         func() float64
	BotWaypoint func(*model.Bot) graph.NodeID
	PodWaypoint func(*model.Pod) graph.NodeID

	// Demand resolves input-station bundle demand; required whenever any
	// insert-capable strategy (every strategy implements DoInsertForStation)
	// is actually exercised.
	Demand selection.InsertDemand
	// GlobalDemand sums outstanding backlog demand for an item across every
	// unallocated order, consumed by the Demand scorer.
	GlobalDemand func(model.Item) int
	// HADODZiops is the externally maintained station/pod/request pairing
	// table; only meaningful when PodSelection == config.HADOD.
	HADODZiops selection.ZiopsTable

	// ExtendSearch and SearchRadius parameterize every strategy's shared
	// preamble (spec §4.4): whether a bot whose current station has no more
	// relevant work searches neighbor stations, and how far.
	ExtendSearch bool
	SearchRadius float64

	// Recorder receives statistics records and invariant diagnostics (spec
	// §6: "Emitted through an observer callback"). Defaults to a no-op.
	Recorder observer.Recorder
}

// Engine is the single construction the simulator shell drives per tick.
type Engine struct {
	cfg config.Config

	graph        graph.Graph
	physics      graph.Physics
	stations     []*model.Station
	bots         []*model.Bot
	now          func() float64
	botWaypoint  func(*model.Bot) graph.NodeID
	podWaypoint  func(*model.Pod) graph.NodeID
	demand       selection.InsertDemand
	globalDemand func(model.Item) int
	rng          sim.Randomizer
	recorder     observer.Recorder

	extendSearch bool
	searchRadius float64
	strategyName string
	// lastScores carries the winning station-scorer vector from the most
	// recent selectStation call with a scored outcome, through to
	// tryStation's AssignmentRecord publish.
	lastScores []float64

	Resources *resources.Manager
	Dispatch  *dispatch.Dispatch
	Planner   *planner.Planner
	Book      *orderbook.OrderBook
	Strategy  selection.Strategy
	SA        *sa.Optimizer

	outputStationScorers []scoring.Scorer
	inputStationScorers  []scoring.Scorer

	augment dispatch.AugmentFuncs
}

// New merges cfg over config.DefaultConfig, validates it, and wires every
// collaborator package together. Fails when the merge fails or when
// Validate rejects the merged config: an unrecognized enum variant, HADOD
// pod selection without a HADOD order manager, an SA cooling rate outside
// (0,1), an SA init temperature below the min temperature, or a negative
// planning window.
func New(cfg config.Config, deps Collaborators) (*Engine, error) {
	cfg, err := config.Defaulted(cfg)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	recorder := deps.Recorder
	if recorder == nil {
		recorder = observer.NopRecorder{}
	}

	res := resources.New(deps.Pods)
	dis := dispatch.New(res)
	book := orderbook.New(cfg.FullySupplied.LateBeforeMatch)
	pl := planner.New(deps.Graph, cfg.Planning.ToPlannerConfig(), deps.RNG, deps.Logger)

	e := &Engine{
		cfg:                  cfg,
		graph:                deps.Graph,
		physics:              deps.Physics,
		stations:             deps.Stations,
		bots:                 deps.Bots,
		now:                  deps.Now,
		botWaypoint:          deps.BotWaypoint,
		podWaypoint:          deps.PodWaypoint,
		demand:               deps.Demand,
		globalDemand:         deps.GlobalDemand,
		rng:                  deps.RNG,
		recorder:             recorder,
		extendSearch:         deps.ExtendSearch,
		searchRadius:         deps.SearchRadius,
		strategyName:         cfg.PodSelection.String(),
		Resources:            res,
		Dispatch:             dis,
		Planner:              pl,
		Book:                 book,
		outputStationScorers: buildScorers(cfg.Scorers.OutputStationForBotWithPod),
		inputStationScorers:  buildScorers(cfg.Scorers.InputStationForBotWithPod),
	}

	env := &selection.Env{
		Resources:   res,
		Dispatch:    dis,
		Graph:       deps.Graph,
		Stations:    deps.Stations,
		Now:         deps.Now,
		BotWaypoint: deps.BotWaypoint,
		PodWaypoint: deps.PodWaypoint,
	}

	strategy, err := e.buildStrategy(env, deps)
	if err != nil {
		return nil, err
	}
	e.Strategy = strategy

	e.augment = dispatch.AugmentFuncs{
		PossibleExtract: func(pod *model.Pod, station *model.Station, _ *model.Task) []*model.ExtractRequest {
			return selection.PossibleExtractRequests(pod, station, selection.AssignedAndQueuedEqually)
		},
		PossibleInsert: func(pod *model.Pod, station *model.Station, _ *model.Task) []*model.InsertRequest {
			if e.demand == nil {
				return nil
			}
			return selection.PossibleInsertRequests(pod, station, e.demand)
		},
	}

	return e, nil
}

func buildScorers(role config.ScorerRole) []scoring.Scorer {
	out := make([]scoring.Scorer, len(role))
	for i, c := range role {
		out[i] = c.Build()
	}
	return out
}

func (e *Engine) buildStrategy(env *selection.Env, deps Collaborators) (selection.Strategy, error) {
	switch e.cfg.PodSelection {
	case config.Default:
		return &selection.DefaultStrategy{
			Env:            env,
			Planner:        e.Planner,
			RNG:            e.rng,
			Physics:        e.physics,
			Demand:         deps.Demand,
			ExtractScorers: buildScorers(e.cfg.Scorers.PodForOutputStationBot),
			InsertScorers:  buildScorers(e.cfg.Scorers.PodForInputStationBot),
			GlobalDemand:   e.globalDemand,
		}, nil
	case config.FullyDemand:
		return &selection.FullyDemandStrategy{
			Env:        env,
			Book:       e.Book,
			Demand:     deps.Demand,
			LateEnough: func(*model.Station) bool { return true },
		}, nil
	case config.HADOD:
		return &selection.HADODStrategy{
			Env:    env,
			Ziops:  deps.HADODZiops,
			Demand: deps.Demand,
		}, nil
	case config.SimulatedAnnealing:
		saEnv := &sa.Env{
			Resources:   e.Resources,
			Planner:     e.Planner,
			Graph:       e.graph,
			Physics:     e.physics,
			Stations:    e.stations,
			Bots:        e.bots,
			Now:         e.now,
			BotWaypoint: e.botWaypoint,
			PodWaypoint: e.podWaypoint,
		}
		e.SA = sa.New(saEnv, e.Book, e.cfg.SA.ToSAConfig(), e.rng)
		return &selection.SAStrategy{
			Env: env,
			SA:  e.SA,
			Fallback: &selection.FullyDemandStrategy{
				Env:    env,
				Book:   e.Book,
				Demand: deps.Demand,
			},
		}, nil
	default:
		return nil, fmt.Errorf("engine: unrecognized pod selection mode %v", e.cfg.PodSelection)
	}
}

// RequestTask is spec §2's `Dispatch.request_task(bot)`: pick a target
// station for bot (output stations before input stations, since servicing
// a customer order takes priority over restocking), invoke the configured
// strategy against it, and fall back to Rest if nothing came of either.
func (e *Engine) RequestTask(bot *model.Bot) selection.TaskOutcome {
	for _, kind := range []model.StationKind{model.StationOutput, model.StationInput} {
		station := e.selectStation(bot, kind)
		if station == nil {
			continue
		}
		if outcome := e.tryStation(bot, station, kind); outcome != selection.NoTask {
			return outcome
		}
	}
	if bot.IsIdle() {
		e.Dispatch.EnqueueRest(bot)
	}
	return selection.NoTask
}

// selectStation picks the station a strategy call should target. For a
// bot already carrying a pod, this uses the configured
// input-station-for-bot-with-pod / output-station-for-bot-with-pod scorer
// chain (spec §6) over every station of the matching kind — the full
// scored search the shared preamble's own extend-radius neighbor search
// intentionally keeps cheap and local (see DESIGN.md). An empty-handed bot,
// or a configuration with no scorers for this role, falls back to nearest.
func (e *Engine) selectStation(bot *model.Bot, kind model.StationKind) *model.Station {
	var candidates []*model.Station
	for _, s := range e.stations {
		if s.Kind == kind {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	if bot.Pod != nil {
		scorers := e.outputStationScorers
		if kind == model.StationInput {
			scorers = e.inputStationScorers
		}
		if len(scorers) > 0 {
			best := bestof.New(bestof.Minimize, e.wrapStationScorers(bot, scorers)...)
			var winner *model.Station
			for _, s := range candidates {
				if best.Consider(s) {
					winner = s
				}
			}
			if winner != nil {
				e.lastScores = best.BestScores()
				return winner
			}
		}
	}

	e.lastScores = nil
	return e.nearestStation(bot, candidates)
}

func (e *Engine) nearestStation(bot *model.Bot, candidates []*model.Station) *model.Station {
	from := e.botWaypoint(bot)
	var best *model.Station
	bestDist := -1.0
	for _, s := range candidates {
		d := e.graph.Distance(from, s.Waypoint)
		if best == nil || d < bestDist {
			best, bestDist = s, d
		}
	}
	return best
}

func (e *Engine) wrapStationScorers(bot *model.Bot, scorers []scoring.Scorer) []bestof.Scorer[*model.Station] {
	out := make([]bestof.Scorer[*model.Station], len(scorers))
	for i, sc := range scorers {
		sc := sc
		out[i] = func(s *model.Station) float64 {
			var podWaypoint graph.NodeID
			if bot.Pod != nil {
				podWaypoint = e.podWaypoint(bot.Pod)
			}
			return sc(scoring.Context{
				Now:             e.now(),
				Bot:             bot,
				Pod:             bot.Pod,
				Station:         s,
				Graph:           e.graph,
				Planner:         e.Planner,
				RNG:             e.rng,
				Physics:         e.physics,
				PodWaypoint:     podWaypoint,
				StationWaypoint: s.Waypoint,
				GlobalDemand:    e.globalDemand,
				IncludeQueued:   true,
			})
		}
	}
	return out
}

func (e *Engine) tryStation(bot *model.Bot, station *model.Station, kind model.StationKind) selection.TaskOutcome {
	label := "extract"
	start := time.Now()
	var outcome selection.TaskOutcome
	if kind == model.StationOutput {
		outcome = e.Strategy.DoExtractForStation(bot, station, e.extendSearch, e.searchRadius)
	} else {
		label = "insert"
		outcome = e.Strategy.DoInsertForStation(bot, station, e.extendSearch, e.searchRadius)
	}
	metrics.PodSelectionDuration.WithLabelValues(e.strategyName, label).Observe(time.Since(start).Seconds())
	metrics.TasksEnqueuedTotal.WithLabelValues(e.strategyName, label, outcome.String()).Inc()

	if outcome == selection.TaskEnqueued {
		if task := e.lastTask(bot); task != nil && task.Pod != nil {
			e.recorder.Publish(observer.Assigned(observer.AssignmentRecord{
				Station:  station,
				Bot:      bot,
				Pod:      task.Pod,
				Strategy: e.strategyName,
				Scores:   e.lastScores,
			}))
		}
	}
	return outcome
}

// lastTask returns the task a just-completed Enqueue* call pushed: bot's
// new CurrentTask if it was previously idle, otherwise the tail of its
// queue.
func (e *Engine) lastTask(bot *model.Bot) *model.Task {
	if q := e.Dispatch.Queue(bot); len(q) > 0 {
		return q[len(q)-1]
	}
	return bot.CurrentTask
}

// Advance reports a bot's current task complete and pops its next queued
// task, if any.
func (e *Engine) Advance(bot *model.Bot) { e.Dispatch.Advance(bot) }

// RunOnTheFly walks every bot with an in-flight Extract/Insert task whose
// station was dirtied since the last walk and grows its request list with
// anything newly possible (spec §4.7).
func (e *Engine) RunOnTheFly() {
	e.Dispatch.RunOnTheFly(e.bots, e.graph, e.augment)
}

// SubmitOrder adds o to the order book's backlog.
func (e *Engine) SubmitOrder(o *model.Order) { e.Book.Submit(o) }

// Tick advances engine-owned per-instant bookkeeping: promotes newly-late
// orders, samples queue-depth and late-order gauges, runs the on-the-fly
// augmentation walk, and (when configured) runs one simulated-annealing
// update cycle. The simulator shell calls this once per simulated instant,
// then RequestTask per idle bot (spec §2).
func (e *Engine) Tick(now float64) {
	e.Book.PromoteLate(now)

	late := 0
	for _, o := range e.Book.Pending() {
		if o.Status == model.OrderPendingLate {
			late++
		}
	}
	metrics.OrdersLateGauge.Set(float64(late))

	for _, bot := range e.bots {
		metrics.DispatchQueueDepth.WithLabelValues(bot.ID).Set(float64(len(e.Dispatch.Queue(bot))))
	}

	e.RunOnTheFly()

	if e.SA != nil {
		start := time.Now()
		e.SA.Update(now)
		metrics.SAUpdateDuration.Observe(time.Since(start).Seconds())
	}
}
