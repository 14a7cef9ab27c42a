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

package bestof_test

import (
	"testing"

	"github.com/fleetsim/warehouse-engine/pkg/bestof"
)

func TestMinimizeSingleCriterion(t *testing.T) {
	b := bestof.New(bestof.Minimize, func(c int) float64 { return float64(c) })
	for _, c := range []int{5, 2, 8, 1, 9} {
		b.Consider(c)
	}
	got, ok := b.Best()
	if !ok || got != 1 {
		t.Fatalf("Best() = %v, %v; want 1, true", got, ok)
	}
}

func TestMaximizeSingleCriterion(t *testing.T) {
	b := bestof.New(bestof.Maximize, func(c int) float64 { return float64(c) })
	for _, c := range []int{5, 2, 8, 1, 9} {
		b.Consider(c)
	}
	got, ok := b.Best()
	if !ok || got != 9 {
		t.Fatalf("Best() = %v, %v; want 9, true", got, ok)
	}
}

func TestLexicographicTieBreak(t *testing.T) {
	type cand struct {
		primary, secondary int
	}
	b := bestof.New(bestof.Minimize,
		func(c cand) float64 { return float64(c.primary) },
		func(c cand) float64 { return float64(c.secondary) },
	)
	b.Consider(cand{primary: 1, secondary: 5})
	b.Consider(cand{primary: 1, secondary: 2})
	b.Consider(cand{primary: 2, secondary: 0})
	got, ok := b.Best()
	if !ok || got != (cand{primary: 1, secondary: 2}) {
		t.Fatalf("Best() = %+v, %v; want {1 2}, true", got, ok)
	}
}

func TestTieKeepsFirstSeen(t *testing.T) {
	b := bestof.New(bestof.Minimize, func(c int) float64 { return 0 })
	b.Consider(1)
	changed := b.Consider(2)
	if changed {
		t.Fatalf("Consider(2) reported a change on a full tie; first-seen must win")
	}
	got, _ := b.Best()
	if got != 1 {
		t.Fatalf("Best() = %v; want 1 (first-seen)", got)
	}
}

func TestRecycleClearsWinner(t *testing.T) {
	b := bestof.New(bestof.Minimize, func(c int) float64 { return float64(c) })
	b.Consider(3)
	b.Recycle()
	if _, ok := b.Best(); ok {
		t.Fatalf("Best() reported a winner after Recycle")
	}
	b.Consider(7)
	got, ok := b.Best()
	if !ok || got != 7 {
		t.Fatalf("Best() after Recycle+Consider(7) = %v, %v; want 7, true", got, ok)
	}
}

func TestBestScoresMatchesWinner(t *testing.T) {
	b := bestof.New(bestof.Minimize,
		func(c int) float64 { return float64(c) },
		func(c int) float64 { return float64(-c) },
	)
	b.Consider(4)
	b.Consider(2)
	b.Consider(9)
	scores := b.BestScores()
	if len(scores) != 2 || scores[0] != 2 || scores[1] != -2 {
		t.Fatalf("BestScores() = %v; want [2 -2]", scores)
	}
}

func TestNoCandidatesConsidered(t *testing.T) {
	b := bestof.New[int](bestof.Minimize, func(c int) float64 { return float64(c) })
	if _, ok := b.Best(); ok {
		t.Fatalf("Best() reported a winner before any Consider call")
	}
}
