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

// Package sa implements the simulated-annealing joint pod/station
// optimizer of spec §4.6: once per update_period, it builds a per-station
// search space of candidate (pod, orders) points, seeds an initial solution
// per station, then runs a Metropolis loop (or a brute-force alternate)
// proposing swap/replan/replace moves across stations before committing.
package sa

import (
	"context"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fleetsim/warehouse-engine/pkg/graph"
	"github.com/fleetsim/warehouse-engine/pkg/model"
	"github.com/fleetsim/warehouse-engine/pkg/orderbook"
	"github.com/fleetsim/warehouse-engine/pkg/planner"
	"github.com/fleetsim/warehouse-engine/pkg/resources"
	"github.com/fleetsim/warehouse-engine/pkg/sim"
)

// Config holds the annealing schedule and search-space parameters of spec
// §4.6/§6.
type Config struct {
	UpdatePeriod  float64
	SearchPodNum  int
	InitTemp      float64
	MinTemp       float64
	CoolingRate   float64
	MinDifference float64
	PickTime      float64
	PodTransfer   float64
	BruteForce    bool
	WallClockCap  time.Duration
}

// DefaultConfig returns reasonable defaults for a small warehouse.
func DefaultConfig() Config {
	return Config{
		UpdatePeriod:  30.0,
		SearchPodNum:  5,
		InitTemp:      1.0,
		MinTemp:       0.01,
		CoolingRate:   0.95,
		MinDifference: 1e-4,
		PickTime:      2.0,
		PodTransfer:   3.0,
		WallClockCap:  200 * time.Millisecond,
	}
}

// point is one candidate (pod, coverable-orders) entry in a station's
// search space (spec §4.6 step 4).
type point struct {
	pod       *model.Pod
	orders    []*model.Order
	itemCount int
	rate      float64
	arrival   float64
}

// solution is a station's committed-for-this-update choice (spec §4.6
// step 6 onward): the orders it claims, the per-pod extract requests that
// satisfy them, and the estimated time the chosen pod arrives.
type solution struct {
	station  *model.Station
	bot      *model.Bot
	pod      *model.Pod
	orders   []*model.Order
	requests map[*model.Pod][]*model.ExtractRequest
	arrival  float64
	rate     float64
}

// searchSpace is one station's ranked, CDF-sampled candidate point set.
type searchSpace struct {
	station *model.Station
	bot     *model.Bot
	botFrom graph.NodeID
	points  []point
	cdf     []float64
}

// Env bundles the collaborators the optimizer needs, mirroring
// selection.Env's shape (spec §4.6 operates over the same warehouse state
// pod-selection does, but across every station at once).
type Env struct {
	Resources   *resources.Manager
	Planner     *planner.Planner
	Graph       graph.Graph
	Physics     graph.Physics
	Stations    []*model.Station
	Bots        []*model.Bot
	Now         func() float64
	BotWaypoint func(*model.Bot) graph.NodeID
	PodWaypoint func(*model.Pod) graph.NodeID
}

// Optimizer runs the simulated-annealing update and implements
// selection.SAProvider so pod-selection can dispense whatever it staged.
type Optimizer struct {
	Env    *Env
	Book   *orderbook.OrderBook
	Config Config
	RNG    sim.Randomizer

	pendingPods map[string]*model.Pod
}

// New constructs an Optimizer.
func New(env *Env, book *orderbook.OrderBook, cfg Config, rng sim.Randomizer) *Optimizer {
	return &Optimizer{Env: env, Book: book, Config: cfg, RNG: rng, pendingPods: map[string]*model.Pod{}}
}

// PendingPod implements selection.SAProvider: reports and consumes the pod
// the last Update staged for station, if any.
func (o *Optimizer) PendingPod(stationID string) (*model.Pod, bool) {
	pod, ok := o.pendingPods[stationID]
	if ok {
		delete(o.pendingPods, stationID)
	}
	return pod, ok
}

// eligibleBot resolves a candidate station's available bot per spec §4.6
// step 3: current task None/Rest uses now and the current waypoint;
// ParkPod uses the tail-reservation start time and the target waypoint.
func (o *Optimizer) eligibleBot(b *model.Bot, now float64) (graph.NodeID, float64, bool) {
	if !b.IsAvailableForSA() {
		return "", 0, false
	}
	if b.CurrentTask == nil || b.CurrentTask.Kind == model.TaskNone || b.CurrentTask.Kind == model.TaskRest {
		return o.Env.BotWaypoint(b), now, true
	}
	// ParkPod: available once the tail reservation at its target begins.
	if start, ok := o.Env.Planner.FindEndReservation(b.TargetWaypoint); ok {
		return b.TargetWaypoint, start, true
	}
	return b.TargetWaypoint, now, true
}

// Update runs one simulated-annealing cycle (spec §4.6). It returns false
// without doing anything if no None/Rest bot exists anywhere, matching the
// spec's early-exit condition.
func (o *Optimizer) Update(now float64) bool {
	wallStart := time.Now()
	for _, s := range o.Env.Stations {
		o.Book.FullySupplied(s)
	}

	hasFreeBot := false
	for _, b := range o.Env.Bots {
		if b.CurrentTask != nil && (b.CurrentTask.Kind == model.TaskNone || b.CurrentTask.Kind == model.TaskRest) {
			hasFreeBot = true
			break
		}
	}
	if !hasFreeBot {
		return false
	}

	var candidates []*model.Station
	for _, s := range o.Env.Stations {
		if s.HasCapacity(1) {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return false
	}

	bots := map[string]struct {
		bot  *model.Bot
		from graph.NodeID
		at   float64
	}{}
	usedBots := map[string]bool{}
	for _, b := range o.Env.Bots {
		from, at, ok := o.eligibleBot(b, now)
		if !ok {
			continue
		}
		bots[b.ID] = struct {
			bot  *model.Bot
			from graph.NodeID
			at   float64
		}{b, from, at}
	}

	o.Env.Planner.ScheduleInit()

	unused := o.Env.Resources.UnusedPods()
	type assignment struct {
		station *model.Station
		bot     *model.Bot
		from    graph.NodeID
		at      float64
	}
	var assigned []assignment
	for _, s := range candidates {
		b, ok := pickBotFor(bots, usedBots)
		if !ok {
			continue
		}
		usedBots[b.bot.ID] = true
		assigned = append(assigned, assignment{station: s, bot: b.bot, from: b.from, at: b.at})
	}

	// Each station's search space (spec §4.6 step 4) depends only on its
	// own assigned bot and the shared, read-only unused-pod snapshot and
	// reservation tables, so the per-station construction fans out across
	// goroutines instead of running one station at a time.
	built := make([]*searchSpace, len(assigned))
	g, _ := errgroup.WithContext(context.Background())
	for i, a := range assigned {
		i, a := i, a
		g.Go(func() error {
			built[i] = o.buildSearchSpace(a.station, a.bot, a.from, a.at, now, unused)
			return nil
		})
	}
	_ = g.Wait()

	spaces := map[string]*searchSpace{}
	for i, a := range assigned {
		spaces[a.station.ID] = built[i]
	}

	// Step 5: handle empty search spaces by allocating a pod-set for one
	// oldest-fulfillable order, consuming pods from other spaces.
	for _, s := range candidates {
		sp := spaces[s.ID]
		if sp == nil || len(sp.points) > 0 {
			continue
		}
		o.handleEmptySpace(s, spaces)
	}

	// Step 6: initial solutions, smallest search space first.
	order := make([]*searchSpace, 0, len(spaces))
	for _, sp := range spaces {
		if sp != nil && len(sp.points) > 0 {
			order = append(order, sp)
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return len(order[i].points) < len(order[j].points) })

	solutions := map[string]*solution{}
	claimedOrders := map[*model.Order]bool{}
	for _, sp := range order {
		for _, p := range sp.points {
			sol := o.createSolution(sp, p, now, claimedOrders)
			if sol == nil {
				continue
			}
			solutions[sp.station.ID] = sol
			for _, ord := range sol.orders {
				claimedOrders[ord] = true
			}
			break
		}
	}

	if o.Config.BruteForce {
		o.bruteForce(order, solutions, claimedOrders, now)
	} else {
		o.metropolis(order, solutions, claimedOrders, now, wallStart)
	}

	o.emit(solutions)
	return true
}

func pickBotFor(bots map[string]struct {
	bot  *model.Bot
	from graph.NodeID
	at   float64
}, used map[string]bool) (struct {
	bot  *model.Bot
	from graph.NodeID
	at   float64
}, bool) {
	for id, b := range bots {
		if !used[id] {
			return b, true
		}
	}
	var zero struct {
		bot  *model.Bot
		from graph.NodeID
		at   float64
	}
	return zero, false
}

// buildSearchSpace computes, for each unused pod, the backlog orders that
// become fully fulfillable with station.inbound ∪ {pod}, keeps the top
// SearchPodNum by item count, estimates a throughput rate for each, and
// builds a CDF over the surviving positive rates (spec §4.6 step 4).
func (o *Optimizer) buildSearchSpace(station *model.Station, bot *model.Bot, botFrom graph.NodeID, botAt, now float64, pods []*model.Pod) *searchSpace {
	type candidate struct {
		pod    *model.Pod
		orders []*model.Order
		items  int
	}
	var cands []candidate
	for _, p := range pods {
		supply := func(item model.Item) int {
			return station.AvailableItemCount(item) + p.AvailableCount(item)
		}
		var orders []*model.Order
		items := 0
		for _, ord := range o.Book.Pending() {
			ok := true
			for _, pos := range ord.Positions {
				if supply(pos.Item) < pos.Required {
					ok = false
					break
				}
			}
			if ok {
				orders = append(orders, ord)
				items += ord.TotalUnits()
			}
		}
		if len(orders) > 0 {
			cands = append(cands, candidate{pod: p, orders: orders, items: items})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].items > cands[j].items })
	if len(cands) > o.Config.SearchPodNum {
		cands = cands[:o.Config.SearchPodNum]
	}

	var points []point
	for _, c := range cands {
		arrival, found := o.Env.Planner.FindPath(&planner.Agent{ID: bot.ID, Start: botFrom, Goal: o.Env.PodWaypoint(c.pod), Physics: o.Env.Physics}, botAt, botFrom, o.Env.PodWaypoint(c.pod), false)
		if !found {
			continue
		}
		queueTime := float64(len(station.QueuedOrders)) * o.Config.PickTime
		denom := math.Max(arrival-now, queueTime) + float64(c.items)*o.Config.PickTime
		if denom <= 0 {
			continue
		}
		rate := float64(c.items) / denom
		if rate <= 0 {
			continue
		}
		points = append(points, point{pod: c.pod, orders: c.orders, itemCount: c.items, rate: rate, arrival: arrival})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].rate > points[j].rate })

	sp := &searchSpace{station: station, bot: bot, botFrom: botFrom, points: points}
	sp.cdf = buildCDF(points)
	return sp
}

func buildCDF(points []point) []float64 {
	total := 0.0
	for _, p := range points {
		total += p.rate
	}
	if total <= 0 {
		return nil
	}
	cdf := make([]float64, len(points))
	running := 0.0
	for i, p := range points {
		running += p.rate / total
		cdf[i] = running
	}
	return cdf
}

func sampleByCDF(cdf []float64, u float64) int {
	for i, c := range cdf {
		if u <= c {
			return i
		}
	}
	return len(cdf) - 1
}

// handleEmptySpace implements spec §4.6 step 5: a candidate station with
// no search-space points and an unused bot gets a pod-set allocation for
// one oldest-fulfillable order; consumed pods are removed from every other
// station's search space so they aren't double-counted.
func (o *Optimizer) handleEmptySpace(station *model.Station, spaces map[string]*searchSpace) {
	pods := o.Env.Resources.UnusedPods()
	order := pickOldestCoverableBySet(o.Book, station, pods)
	if order == nil {
		return
	}
	set := greedyCover(order, station, pods)
	if len(set) == 0 {
		return
	}
	consumed := map[*model.Pod]bool{}
	for _, p := range set {
		consumed[p] = true
	}
	for _, sp := range spaces {
		if sp == stationSpace(spaces, station.ID) {
			continue
		}
		var kept []point
		for _, pt := range sp.points {
			if !consumed[pt.pod] {
				kept = append(kept, pt)
			}
		}
		sp.points = kept
		sp.cdf = buildCDF(kept)
	}
}

func stationSpace(spaces map[string]*searchSpace, id string) *searchSpace { return spaces[id] }

func pickOldestCoverableBySet(book *orderbook.OrderBook, station *model.Station, pods []*model.Pod) *model.Order {
	supply := func(item model.Item) int {
		n := station.AvailableItemCount(item)
		for _, p := range pods {
			n += p.AvailableCount(item)
		}
		return n
	}
	for _, o := range book.Pending() {
		ok := true
		for _, pos := range o.Positions {
			if supply(pos.Item) < pos.Required {
				ok = false
				break
			}
		}
		if ok {
			return o
		}
	}
	return nil
}

func greedyCover(order *model.Order, station *model.Station, pods []*model.Pod) []*model.Pod {
	remaining := map[string]int{}
	for _, pos := range order.Positions {
		remaining[pos.Item.ID] = pos.Required
		if n := station.AvailableItemCount(pos.Item); n > 0 {
			if n > remaining[pos.Item.ID] {
				n = remaining[pos.Item.ID]
			}
			remaining[pos.Item.ID] -= n
		}
	}
	type contribution struct {
		pod   *model.Pod
		count int
	}
	var cs []contribution
	for _, p := range pods {
		c := 0
		for _, pos := range order.Positions {
			if n := p.AvailableCount(pos.Item); n > 0 {
				if n > pos.Required {
					n = pos.Required
				}
				c += n
			}
		}
		if c > 0 {
			cs = append(cs, contribution{p, c})
		}
	}
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].count > cs[j].count })

	satisfied := func() bool {
		for _, n := range remaining {
			if n > 0 {
				return false
			}
		}
		return true
	}
	var set []*model.Pod
	for _, c := range cs {
		if satisfied() {
			break
		}
		used := false
		for _, pos := range order.Positions {
			need := remaining[pos.Item.ID]
			if need <= 0 {
				continue
			}
			take := c.pod.AvailableCount(pos.Item)
			if take > need {
				take = need
			}
			if take > 0 {
				remaining[pos.Item.ID] -= take
				used = true
			}
		}
		if used {
			set = append(set, c.pod)
		}
	}
	if !satisfied() {
		return nil
	}
	return set
}

// createSolution builds a solution from a candidate point (spec §4.6's
// create_solution contract): surviving (not-yet-claimed-elsewhere) orders,
// per-pod extract requests draining inbound inventory before the new
// pod's, and a two-leg schedule_path arrival estimate with pod_transfer_time
// between legs. Returns nil if no orders survive or either leg fails to
// find a path within the window.
func (o *Optimizer) createSolution(sp *searchSpace, p point, now float64, claimed map[*model.Order]bool) *solution {
	var surviving []*model.Order
	for _, ord := range p.orders {
		if !claimed[ord] {
			surviving = append(surviving, ord)
		}
	}
	if len(surviving) == 0 {
		return nil
	}

	botToPod, _, foundA := o.Env.Planner.SchedulePath(
		&planner.Agent{ID: sp.bot.ID, Start: sp.botFrom, Goal: o.Env.PodWaypoint(p.pod), Physics: o.Env.Physics},
		now, sp.botFrom, o.Env.PodWaypoint(p.pod), false, nil)
	if !foundA {
		return nil
	}
	pickupTime := botToPod + o.Config.PodTransfer
	_, _, foundB := o.Env.Planner.SchedulePath(
		&planner.Agent{ID: sp.bot.ID, Start: o.Env.PodWaypoint(p.pod), Goal: sp.station.Waypoint, Physics: o.Env.Physics},
		pickupTime, o.Env.PodWaypoint(p.pod), sp.station.Waypoint, true, nil)
	if !foundB {
		return nil
	}

	requests := map[*model.Pod][]*model.ExtractRequest{}
	remaining := map[string]int{}
	for _, ord := range surviving {
		for _, pos := range ord.Positions {
			remaining[pos.Item.ID] += pos.Required
		}
	}
	drain := func(pod *model.Pod) {
		for itemID, need := range remaining {
			if need <= 0 {
				continue
			}
			item := model.Item{ID: itemID}
			take := pod.AvailableCount(item)
			if take > need {
				take = need
			}
			if take <= 0 {
				continue
			}
			for _, ord := range surviving {
				for take > 0 && ord.Required(item) > 0 {
					requests[pod] = append(requests[pod], &model.ExtractRequest{Item: item, Order: ord, Station: sp.station})
					take--
					remaining[itemID]--
				}
				if take <= 0 {
					break
				}
			}
		}
	}
	for _, ip := range sp.station.InboundPods {
		drain(ip)
	}
	drain(p.pod)

	return &solution{
		station:  sp.station,
		bot:      sp.bot,
		pod:      p.pod,
		orders:   surviving,
		requests: requests,
		arrival:  botToPod,
		rate:     p.rate,
	}
}
