package diagram

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genTopology produces random diagrams: up to 12 nodes on a coarse grid and
// up to 24 edges whose endpoints may or may not resolve, including self-loops
// and parallel edges.
func genTopology() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, 12),
		gen.IntRange(0, 24),
		gen.Int64Range(0, 1<<31),
	).Map(func(vals []interface{}) topology {
		nodeCount := vals[0].(int)
		edgeCount := vals[1].(int)
		seed := vals[2].(int64)

		var nodes []Node
		for i := 0; i < nodeCount; i++ {
			n := Node{
				ID:       fmt.Sprintf("n%d", i),
				Position: Point{X: float64((seed + int64(i)*7) % 13 * 100), Y: float64((seed + int64(i)*11) % 7 * 100)},
			}
			if i%3 != 0 {
				n.Size = &Size{Width: float64(50 + i*10), Height: float64(40 + i*5)}
			}
			nodes = append(nodes, n)
		}

		var edges []Edge
		for i := 0; i < edgeCount; i++ {
			src := fmt.Sprintf("n%d", (seed+int64(i)*3)%int64(nodeCount+2))
			dst := fmt.Sprintf("n%d", (seed+int64(i)*5)%int64(nodeCount+2))
			edges = append(edges, Edge{ID: fmt.Sprintf("e%d", i), Source: src, Target: dst})
		}
		return topology{nodes: nodes, edges: edges}
	})
}

type topology struct {
	nodes []Node
	edges []Edge
}

func TestLayoutProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("layout is idempotent", prop.ForAll(
		func(tp topology) bool {
			first, err := Layout(tp.nodes, tp.edges)
			if err != nil {
				return false
			}
			second, err := Layout(first.Nodes, first.Edges)
			if err != nil {
				return false
			}
			return reflect.DeepEqual(first, second)
		},
		genTopology(),
	))

	properties.Property("every resolvable edge gets exactly one point per end", prop.ForAll(
		func(tp topology) bool {
			result, err := Layout(tp.nodes, tp.edges)
			if err != nil {
				return false
			}

			points := make(map[string]ConnectionPoint)
			for _, n := range result.Nodes {
				for _, cp := range n.ConnectionPoints {
					points[cp.ID] = cp
				}
			}

			skipped := make(map[string]bool, len(result.Skipped))
			for _, id := range result.Skipped {
				skipped[id] = true
			}

			for _, e := range result.Edges {
				if skipped[e.ID] {
					if e.SourceConnectionPointID != "" || e.TargetConnectionPointID != "" {
						return false
					}
					continue
				}
				src, okS := points[e.SourceConnectionPointID]
				dst, okT := points[e.TargetConnectionPointID]
				if !okS || !okT || src.Role != RoleSource || dst.Role != RoleTarget {
					return false
				}
			}
			return true
		},
		genTopology(),
	))

	properties.Property("offsets are in (0,100), evenly spaced, pairwise distinct per side", prop.ForAll(
		func(tp topology) bool {
			result, err := Layout(tp.nodes, tp.edges)
			if err != nil {
				return false
			}
			for _, n := range result.Nodes {
				bySide := make(map[Side][]float64)
				for _, cp := range n.ConnectionPoints {
					if cp.OffsetPercent <= 0 || cp.OffsetPercent >= 100 {
						return false
					}
					bySide[cp.Side] = append(bySide[cp.Side], cp.OffsetPercent)
				}
				for _, offsets := range bySide {
					k := len(offsets)
					for i, got := range offsets {
						want := 100 * float64(i+1) / float64(k+1)
						if diff := got - want; diff > 1e-9 || diff < -1e-9 {
							return false
						}
					}
				}
			}
			return true
		},
		genTopology(),
	))

	properties.Property("input is never mutated", prop.ForAll(
		func(tp topology) bool {
			nodesBefore := make([]Node, len(tp.nodes))
			copy(nodesBefore, tp.nodes)
			edgesBefore := make([]Edge, len(tp.edges))
			copy(edgesBefore, tp.edges)

			if _, err := Layout(tp.nodes, tp.edges); err != nil {
				return false
			}
			return reflect.DeepEqual(tp.nodes, nodesBefore) && reflect.DeepEqual(tp.edges, edgesBefore)
		},
		genTopology(),
	))

	properties.TestingRun(t)
}
