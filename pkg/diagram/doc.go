// Package diagram computes connection-point layouts for entity-relationship
// diagrams.
//
// # Overview
//
// A diagram is a set of positioned nodes (entity boxes) and directed edges
// (relationships). Node positions are owned by the caller - dragging and
// auto-placement happen elsewhere. What this package decides is where on each
// node's border an edge should visually attach: which of the four sides, and
// how far along that side, so that multiple edges sharing a side are spread
// out evenly instead of overlapping.
//
// The result is a [ConnectionPoint] list per node and, per edge, the IDs of
// the two points it must render through. Connection point IDs are derived
// deterministically from the edge identity, so recomputing a layout with
// unchanged input yields byte-identical output.
//
// # Usage
//
//	engine := diagram.New(diagram.Config{})
//	result, err := engine.Layout(nodes, edges)
//	if err != nil {
//	    return err
//	}
//	for _, n := range result.Nodes {
//	    for _, cp := range n.ConnectionPoints {
//	        drawMarker(n, cp.Side, cp.OffsetPercent)
//	    }
//	}
//
// # Algorithm
//
// Side selection is center-to-center: for each edge the delta vector between
// the two node centers picks the dominant axis, and the sign of the dominant
// component picks the side pair (right/left for horizontal, bottom/top for
// vertical). Ties between axes resolve according to [Config.TieBreak],
// horizontal by default. A self-loop has a zero delta, which falls into the
// vertical branch and attaches top-to-bottom.
//
// Offsets are then distributed per node and side: k points on a side receive
// offsets 100·i/(k+1) for i = 1..k, in the order the edges appeared in the
// input. The k+1 denominator keeps a gap before the first and after the last
// point, so no point ever sits flush with a corner - including the single
// point case, which lands at 50.
//
// # Error handling
//
// Layout is total over well-formed input: degenerate geometry (zero sizes,
// coincident centers, self-loops) is resolved by the deterministic rules
// above, never by an error. Edges referencing nodes absent from the input
// are passed through untouched and reported in [Result.Skipped]. The only
// failures are duplicate node or edge IDs, which fail fast with
// [ErrDuplicateNodeID] or [ErrDuplicateEdgeID] since downstream consumers
// assume unique identifiers.
package diagram
