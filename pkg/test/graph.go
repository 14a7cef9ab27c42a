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

package test

import (
	"fmt"

	"github.com/fleetsim/warehouse-engine/pkg/graph"
)

// Grid builds a w*h four-connected grid graph with unit edge weights and
// positions set to each node's (x, y) coordinate, node IDs formatted
// "x,y". Every edge is added in both directions since SimpleGraph.AddEdge
// is one-way.
func Grid(w, h int) graph.Graph {
	g := graph.NewSimpleGraph()
	positions := map[graph.NodeID][2]float64{}
	id := func(x, y int) graph.NodeID { return graph.NodeID(fmt.Sprintf("%d,%d", x, y)) }
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			positions[id(x, y)] = [2]float64{float64(x), float64(y)}
		}
	}
	link := func(a, b graph.NodeID) {
		g.AddEdge(a, b, 1)
		g.AddEdge(b, a, 1)
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			if x+1 < w {
				link(id(x, y), id(x+1, y))
			}
			if y+1 < h {
				link(id(x, y), id(x, y+1))
			}
		}
	}
	return graph.WithPositions(g, positions)
}

// Line builds a straight n-node graph, nodes "0".."n-1", adjacent nodes
// linked both ways with unit weight.
func Line(n int) graph.Graph {
	g := graph.NewSimpleGraph()
	for i := 0; i < n-1; i++ {
		a, b := graph.NodeID(fmt.Sprintf("%d", i)), graph.NodeID(fmt.Sprintf("%d", i+1))
		g.AddEdge(a, b, 1)
		g.AddEdge(b, a, 1)
	}
	return g
}
