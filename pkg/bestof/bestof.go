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

// Package bestof implements the lexicographic multi-criterion candidate
// selector of spec §4.3.
package bestof

// Sign selects whether BestOf maximizes or minimizes each scorer's output.
type Sign int

const (
	Minimize Sign = iota
	Maximize
)

// Scorer evaluates one candidate under a particular criterion.
type Scorer[T any] func(candidate T) float64

// BestOf holds N scorer callbacks and finds, over a stream of candidates
// fed via Consider, the one that lexicographically dominates all others:
// compare by scorer 0 first, breaking ties with scorer 1, and so on.
// Evaluation is lazy per candidate — Consider short-circuits the moment a
// strict dominance or strict loss is found, never evaluating the remaining
// scorers. A tie across every criterion keeps the first-seen candidate
// (spec §4.3: "Tie among all criteria => first-seen wins").
type BestOf[T any] struct {
	sign    Sign
	scorers []Scorer[T]

	hasBest    bool
	best       T
	bestScores []float64
}

// New constructs a BestOf over the given scorers, evaluated in order.
func New[T any](sign Sign, scorers ...Scorer[T]) *BestOf[T] {
	return &BestOf[T]{sign: sign, scorers: scorers}
}

// Recycle resets the selector between selection rounds, discarding the
// current winner so a fresh Consider stream starts clean.
func (b *BestOf[T]) Recycle() {
	b.hasBest = false
	var zero T
	b.best = zero
	b.bestScores = nil
}

// Consider evaluates candidate against the current winner, replacing it if
// candidate dominates. Returns true when candidate becomes the new best
// (including the first candidate considered), and false when the
// incumbent is kept, whether candidate lost or tied on every criterion.
func (b *BestOf[T]) Consider(candidate T) bool {
	if !b.hasBest {
		b.hasBest = true
		b.best = candidate
		b.bestScores = b.scoreAll(candidate)
		return true
	}

	scores := make([]float64, len(b.scorers))
	for i, scorer := range b.scorers {
		scores[i] = scorer(candidate)
		cmp := b.compare(scores[i], b.bestScores[i])
		if cmp < 0 {
			// candidate strictly better on this criterion: it wins,
			// regardless of the remaining (unevaluated) criteria.
			for j := i + 1; j < len(b.scorers); j++ {
				scores[j] = b.scorers[j](candidate)
			}
			b.best = candidate
			b.bestScores = scores
			return true
		}
		if cmp > 0 {
			// candidate strictly worse: incumbent wins, short-circuit.
			return false
		}
	}
	// every criterion tied: first-seen (the incumbent) wins.
	return false
}

func (b *BestOf[T]) scoreAll(candidate T) []float64 {
	scores := make([]float64, len(b.scorers))
	for i, scorer := range b.scorers {
		scores[i] = scorer(candidate)
	}
	return scores
}

// compare returns <0 if a is better than b, >0 if worse, 0 if tied, honoring
// the configured Sign.
func (b *BestOf[T]) compare(a, bb float64) int {
	switch {
	case a == bb:
		return 0
	case (a < bb) == (b.sign == Minimize):
		return -1
	default:
		return 1
	}
}

// Best returns the current winner and whether any candidate has been
// considered yet.
func (b *BestOf[T]) Best() (T, bool) {
	return b.best, b.hasBest
}

// BestScores exposes the winning score vector for telemetry (spec §4.3).
func (b *BestOf[T]) BestScores() []float64 {
	return append([]float64(nil), b.bestScores...)
}
