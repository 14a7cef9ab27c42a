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

package planner

import (
	"math"
	"sort"
	"time"

	"github.com/avast/retry-go"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fleetsim/warehouse-engine/pkg/graph"
	"github.com/fleetsim/warehouse-engine/pkg/reservation"
	"github.com/fleetsim/warehouse-engine/pkg/sim"
)

// Config holds the path-planning parameters of spec §6.
type Config struct {
	LengthOfAWaitStep     float64
	RuntimeLimitPerAgent  time.Duration
	RunTimeLimitOverall   time.Duration
	LengthOfAWindow       float64
	AbortAtFirstConflict  bool
	UseDeadlockHandler    bool
	MaximumWaitTime       float64
	AutoSetParameter      bool
	Clocking              bool
	UseBias               bool
}

// DefaultConfig returns reasonable defaults for a small warehouse.
func DefaultConfig() Config {
	return Config{
		LengthOfAWaitStep:    1.0,
		RuntimeLimitPerAgent: 50 * time.Millisecond,
		RunTimeLimitOverall:  500 * time.Millisecond,
		LengthOfAWindow:      20.0,
		UseDeadlockHandler:   true,
		MaximumWaitTime:      5.0,
	}
}

// Planner implements windowed cooperative path planning with a committed
// (binding) reservation table and a scheduled (speculative) one (spec
// §4.1).
type Planner struct {
	Graph  graph.Graph
	Config Config
	Logger *zap.SugaredLogger

	committed *reservation.Table
	scheduled *reservation.Table

	heuristics *heuristicCache
	deadlock   *deadlockHandler
	rng        sim.Randomizer

	// scheduleSequence is the LRU of agent IDs with a scheduled path,
	// most-recently-touched first, maintained by OverwriteScheduledPath.
	scheduleSequence []string
	scheduledPaths   map[string]Path
	priorities       map[string]int

	// invokeLimiter debounces back-to-back FindPaths calls triggered by
	// bursts of task requests within the same simulated tick.
	invokeLimiter *rate.Limiter
}

// New constructs a Planner with empty committed/scheduled tables.
func New(g graph.Graph, cfg Config, rng sim.Randomizer, logger *zap.SugaredLogger) *Planner {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Planner{
		Graph:          g,
		Config:         cfg,
		Logger:         logger,
		committed:      reservation.New(),
		scheduled:      reservation.New(),
		heuristics:     newHeuristicCache(g),
		deadlock:       newDeadlockHandler(cfg.MaximumWaitTime, rng),
		rng:            rng,
		scheduledPaths: map[string]Path{},
		priorities:     map[string]int{},
		invokeLimiter:  rate.NewLimiter(rate.Every(10*time.Millisecond), 4),
	}
}

// CommittedHash exposes the committed table's content hash, used by the
// speculative-isolation property test (spec §8 scenario 6).
func (p *Planner) CommittedHash() uint64 { return p.committed.Hash() }

// ForcedWaitSteps computes how many wait-steps a retried search must burn
// before its first move, per spec §4.1's priority-escalation rule: each
// failed attempt doubles the forced delay, halved back down to whole
// wait-steps (0, 1, 2, 4, 8, ... for RetryPriority 0, 1, 2, 3, 4, ...).
func ForcedWaitSteps(retryPriority int) int {
	return int(math.Pow(2, float64(retryPriority)) / 2)
}

func agentPriorityOrder(agents []*Agent) {
	sort.SliceStable(agents, func(i, j int) bool {
		if agents[i].Priority != agents[j].Priority {
			return agents[i].Priority > agents[j].Priority
		}
		if agents[i].CanPassObstacles != agents[j].CanPassObstacles {
			return !agents[i].CanPassObstacles
		}
		return false // heuristic distance tie-break is applied by the caller, which has the heuristic cache
	})
}

// FindPaths plans every agent against the committed table, in priority
// order, escalating retry-priority and re-searching on failure, up to the
// per-agent and overall time budgets (spec §4.1).
func (p *Planner) FindPaths(now float64, agents []*Agent) []Result {
	start := time.Now()
	for _, a := range agents {
		a.RetryPriority = 0
	}
	agentPriorityOrder(agents)
	// Break remaining ties by heuristic distance to goal, ascending.
	sort.SliceStable(agents, func(i, j int) bool {
		if agents[i].Priority != agents[j].Priority || agents[i].CanPassObstacles != agents[j].CanPassObstacles {
			return false
		}
		hi := p.heuristics.get(agents[i].ID, agents[i].Goal).estimate(agents[i].Start)
		hj := p.heuristics.get(agents[j].ID, agents[j].Goal).estimate(agents[j].Start)
		return hi < hj
	})

	// Fixed-blockage prelude: reserve each agent's starting segment so
	// lower-priority agents searched later don't plan through where a
	// higher-priority agent currently stands.
	type prelude struct {
		node graph.NodeID
		id   uint64
	}
	var preludes []prelude
	for _, a := range agents {
		if iv, ok := p.committed.Add(a.Start, now, now+p.Config.LengthOfAWaitStep, a.ID); ok {
			preludes = append(preludes, prelude{node: a.Start, id: iv.ID})
		}
	}

	var results []Result
	var errs error
	for _, a := range agents {
		if time.Since(start) > p.Config.RunTimeLimitOverall {
			errs = multierr.Append(errs, errTimeout(a.ID))
			p.Logger.Warnw("planner overall time budget exceeded, keeping best-effort results", "agent", a.ID)
			break
		}
		res := p.findOneWithRetry(start, now, a)
		if res.Found {
			p.commitPath(a, res.Path)
			p.deadlock.clear(a.ID)
		} else {
			errs = multierr.Append(errs, errNoPath(a.ID))
		}
		results = append(results, res)
	}
	if errs != nil {
		p.Logger.Debugw("find_paths completed with partial failures", "errors", errs)
	}

	for _, pr := range preludes {
		p.committed.Remove(pr.node, pr.id)
	}
	return results
}

// findOneWithRetry runs the per-agent search, escalating retry-priority via
// retry-go on failure until the per-agent or remaining overall budget is
// exhausted.
func (p *Planner) findOneWithRetry(overallStart time.Time, now float64, a *Agent) Result {
	var last Result
	agentStart := time.Now()
	_ = retry.Do(
		func() error {
			if time.Since(agentStart) > p.Config.RuntimeLimitPerAgent || time.Since(overallStart) > p.Config.RunTimeLimitOverall {
				return retry.Unrecoverable(errNoPath(a.ID))
			}
			forcedWaits := ForcedWaitSteps(a.RetryPriority)
			h := p.heuristics.get(a.ID, a.Goal)
			path, found, endTime := spaceTimeAStar(searchParams{
				graph:       p.Graph,
				table:       p.committed,
				heuristic:   h,
				agent:       a,
				now:         now,
				start:       a.Start,
				goal:        a.Goal,
				carryingPod: a.CarryingPod,
				waitStep:    p.Config.LengthOfAWaitStep,
				windowEnd:   now + p.Config.LengthOfAWindow,
				forcedWaits: forcedWaits,
			})
			last = Result{Agent: a, Path: path, Found: found, EndTime: endTime}
			if p.Config.UseDeadlockHandler && len(path) > 0 {
				if detour, fire := p.deadlock.observe(p.Graph, a.ID, path.EndNode(), path.EndTime()); fire {
					p.heuristics.invalidate(a.ID)
					a.Start = detour
					return errNoPath(a.ID)
				}
			}
			if !found {
				a.RetryPriority++
				return errNoPath(a.ID)
			}
			return nil
		},
		retry.Attempts(8),
		retry.DelayType(retry.FixedDelay),
		retry.Delay(0),
		retry.LastErrorOnly(true),
	)
	return last
}

// commitPath reserves every edge/wait segment of path in the committed
// table under agent a's ownership.
func (p *Planner) commitPath(a *Agent, path Path) {
	for i := 0; i < len(path)-1; i++ {
		p.committed.Add(path[i].Node, path[i].Time, path[i+1].Time, a.ID)
	}
	if len(path) > 0 {
		last := path[len(path)-1]
		p.committed.Add(last.Node, last.Time, reservation.Inf, a.ID)
	}
}

// FindPath is the single-agent estimator search against the committed
// table, used by scorers (spec §4.1).
func (p *Planner) FindPath(agent *Agent, now float64, startWP, goalWP graph.NodeID, carryingPod bool) (float64, bool) {
	h := p.heuristics.get(agent.ID, goalWP)
	_, found, endTime := spaceTimeAStar(searchParams{
		graph:       p.Graph,
		table:       p.committed,
		heuristic:   h,
		agent:       agent,
		now:         now,
		start:       startWP,
		goal:        goalWP,
		carryingPod: carryingPod,
		waitStep:    p.Config.LengthOfAWaitStep,
		windowEnd:   now + p.Config.LengthOfAWindow,
	})
	return endTime, found
}

// SchedulePath searches against the scheduled table and honors an
// extraPath override (e.g. the path a pod-carrying bot has already
// committed to up to the pickup point). The agent's own prior scheduled
// reservations never collide with this search (the table's interval
// queries already exclude the searching agent's own owner id), so nothing
// needs to be removed on that account; extraPath's reservations are added
// for the duration of the search, then the whole call restores the table
// to its prior state and returns the new reservations without committing
// them (spec §4.1).
func (p *Planner) SchedulePath(agent *Agent, startTime float64, startWP, goalWP graph.NodeID, carryingPod bool, extraPath Path) (float64, []*reservation.Interval, bool) {
	var extraIVs []*reservation.Interval
	for i := 0; i < len(extraPath)-1; i++ {
		if iv, ok := p.scheduled.Add(extraPath[i].Node, extraPath[i].Time, extraPath[i+1].Time, agent.ID); ok {
			extraIVs = append(extraIVs, iv)
		}
	}

	h := p.heuristics.get(agent.ID, goalWP)
	path, found, endTime := spaceTimeAStar(searchParams{
		graph:       p.Graph,
		table:       p.scheduled,
		heuristic:   h,
		agent:       agent,
		now:         startTime,
		start:       startWP,
		goal:        goalWP,
		carryingPod: carryingPod,
		waitStep:    p.Config.LengthOfAWaitStep,
		windowEnd:   startTime + p.Config.LengthOfAWindow,
	})

	var reservations []*reservation.Interval
	if found {
		for i := 0; i < len(path)-1; i++ {
			if iv, ok := p.scheduled.Add(path[i].Node, path[i].Time, path[i+1].Time, agent.ID); ok {
				reservations = append(reservations, iv)
			}
		}
	}

	for _, iv := range extraIVs {
		p.scheduled.Remove(iv.Node, iv.ID)
	}
	for _, iv := range reservations {
		p.scheduled.Remove(iv.Node, iv.ID)
	}
	return endTime, reservations, found
}

// ScheduleInit deep-copies committed into scheduled and clears the
// scheduled-path registry (spec §4.1).
func (p *Planner) ScheduleInit() {
	p.scheduled = p.committed.DeepCopy()
	p.scheduleSequence = nil
	p.scheduledPaths = map[string]Path{}
}

// OverwriteScheduledPath replaces an agent's scheduled path and bumps it to
// the front of the LRU schedule_sequence.
func (p *Planner) OverwriteScheduledPath(agentID string, path Path) {
	p.scheduled.RemoveAllOwnedBy(agentID)
	for i := 0; i < len(path)-1; i++ {
		p.scheduled.Add(path[i].Node, path[i].Time, path[i+1].Time, agentID)
	}
	p.scheduledPaths[agentID] = path

	for i, id := range p.scheduleSequence {
		if id == agentID {
			p.scheduleSequence = append(p.scheduleSequence[:i], p.scheduleSequence[i+1:]...)
			break
		}
	}
	p.scheduleSequence = append([]string{agentID}, p.scheduleSequence...)
}

// FindEndReservation returns the start time of a half-infinite tail
// reservation at node, if any (spec §4.1), used to estimate when a parking
// bot finishes parking.
func (p *Planner) FindEndReservation(node graph.NodeID) (float64, bool) {
	return p.committed.FindEndReservation(node)
}

// UpdateAgentPriority sets agent id's persisted priority, used by the SA
// optimizer's re-derivation pass.
func (p *Planner) UpdateAgentPriority(id string, priority int) {
	p.priorities[id] = priority
}

// OutputScheduledPriority re-derives priorities from the current
// schedule_sequence LRU (most-recently-scheduled first gets the highest
// priority) so that the next planner tick honors the SA's ordering, but
// only for bots whose current task still equals the task recorded at
// scheduling time (taskMap maps agent id -> task identity token at
// scheduling time; currentTask maps agent id -> task identity token now).
func (p *Planner) OutputScheduledPriority(taskMap, currentTask map[string]string) {
	n := len(p.scheduleSequence)
	for i, id := range p.scheduleSequence {
		if taskMap[id] != currentTask[id] {
			continue
		}
		p.UpdateAgentPriority(id, n-i)
	}
}

// AllowInvocation reports whether FindPaths may run now, debouncing bursts
// of task-request-triggered replans within the same simulated tick.
func (p *Planner) AllowInvocation() bool { return p.invokeLimiter.Allow() }
