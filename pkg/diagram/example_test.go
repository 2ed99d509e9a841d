package diagram_test

import (
	"fmt"

	"github.com/odex-dev/odex/pkg/diagram"
)

// Two entities side by side: the edge leaves the source's right side and
// enters the target's left side, both at the midpoint.
func ExampleLayout() {
	nodes := []diagram.Node{
		{ID: "Customers", Position: diagram.Point{X: 0, Y: 0}},
		{ID: "Orders", Position: diagram.Point{X: 400, Y: 0}},
	}
	edges := []diagram.Edge{
		{ID: "Customers-Orders", Source: "Customers", Target: "Orders"},
	}

	result, err := diagram.Layout(nodes, edges)
	if err != nil {
		panic(err)
	}

	for _, n := range result.Nodes {
		for _, cp := range n.ConnectionPoints {
			fmt.Printf("%s: %s side at %.0f%%\n", n.ID, cp.Side, cp.OffsetPercent)
		}
	}
	// Output:
	// Customers: right side at 50%
	// Orders: left side at 50%
}

// Three edges entering the same side are spread evenly, leaving a gap at
// both corners.
func ExampleEngine_Layout() {
	nodes := []diagram.Node{
		{ID: "Products", Position: diagram.Point{X: 0, Y: 0}},
		{ID: "A", Position: diagram.Point{X: 600, Y: 0}},
		{ID: "B", Position: diagram.Point{X: 600, Y: 50}},
		{ID: "C", Position: diagram.Point{X: 600, Y: 100}},
	}
	edges := []diagram.Edge{
		{ID: "e1", Source: "A", Target: "Products"},
		{ID: "e2", Source: "B", Target: "Products"},
		{ID: "e3", Source: "C", Target: "Products"},
	}

	engine := diagram.New(diagram.Config{})
	result, err := engine.Layout(nodes, edges)
	if err != nil {
		panic(err)
	}

	for _, n := range result.Nodes {
		if n.ID != "Products" {
			continue
		}
		for _, cp := range n.ConnectionPoints {
			fmt.Printf("%s at %.0f%%\n", cp.Side, cp.OffsetPercent)
		}
	}
	// Output:
	// right at 25%
	// right at 50%
	// right at 75%
}
