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

package sim

import "math/rand"

// SeededRandomizer is the reference Randomizer implementation, a thin
// wrapper over math/rand.Rand with its own private source so that two
// instances seeded identically never interfere with each other or with the
// global rand source.
type SeededRandomizer struct {
	r *rand.Rand
}

// NewSeededRandomizer constructs a Randomizer reproducible from seed.
func NewSeededRandomizer(seed int64) *SeededRandomizer {
	return &SeededRandomizer{r: rand.New(rand.NewSource(seed))}
}

func (s *SeededRandomizer) Float64() float64 { return s.r.Float64() }
func (s *SeededRandomizer) Intn(n int) int   { return s.r.Intn(n) }
func (s *SeededRandomizer) Shuffle(n int, swap func(i, j int)) {
	s.r.Shuffle(n, swap)
}
