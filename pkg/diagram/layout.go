package diagram

import (
	"fmt"
	"math"
)

// Default node dimensions, applied when a node carries no explicit size.
const (
	DefaultNodeWidth  = 250.0
	DefaultNodeHeight = 200.0
)

// TieBreak selects the dominant axis when an edge's center delta has equal
// horizontal and vertical magnitude.
type TieBreak int

const (
	// TieBreakHorizontal resolves equal-magnitude deltas to the horizontal
	// axis (right/left sides). This is the canonical rule.
	TieBreakHorizontal TieBreak = iota
	// TieBreakVertical resolves equal-magnitude deltas to the vertical axis
	// (bottom/top sides).
	TieBreakVertical
)

// Config controls layout computation. The zero value is usable: it selects
// the default node size and horizontal tie-breaking.
type Config struct {
	// DefaultSize is substituted for nodes with a nil Size. Zero-valued
	// dimensions fall back to DefaultNodeWidth × DefaultNodeHeight.
	DefaultSize Size

	// TieBreak picks the axis when |dx| == |dy|.
	TieBreak TieBreak
}

// Engine computes connection-point layouts. It holds configuration only - no
// state survives between calls, so a single Engine is safe for concurrent use
// by multiple goroutines with independent inputs.
type Engine struct {
	cfg Config
}

// New creates an Engine, filling unset config fields with defaults.
func New(cfg Config) *Engine {
	if cfg.DefaultSize.Width == 0 {
		cfg.DefaultSize.Width = DefaultNodeWidth
	}
	if cfg.DefaultSize.Height == 0 {
		cfg.DefaultSize.Height = DefaultNodeHeight
	}
	return &Engine{cfg: cfg}
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Result is the annotated topology produced by [Engine.Layout].
type Result struct {
	// Nodes carry freshly computed connection points. Order matches input.
	Nodes []Node `json:"nodes"`
	// Edges carry the connection point IDs assigned to their endpoints.
	// Order matches input. Skipped edges have empty point IDs.
	Edges []Edge `json:"edges"`
	// Skipped lists, in input order, the IDs of edges whose source or target
	// did not resolve to a node in the input.
	Skipped []string `json:"skipped,omitempty"`
}

// Layout computes, for every edge, which side of each connected node it
// attaches to and how points sharing a side are spaced. It is a pure
// function of its input: nodes and edges are copied, never mutated, and
// calling it twice with identical input yields identical output.
//
// Edges whose endpoints both resolve get exactly one source point on the
// source node and one target point on the target node. Edges referencing a
// missing node pass through unmodified and are listed in [Result.Skipped].
//
// Layout returns ErrDuplicateNodeID or ErrDuplicateEdgeID when IDs collide;
// no other input is rejected.
func (e *Engine) Layout(nodes []Node, edges []Edge) (Result, error) {
	out := Result{
		Nodes: make([]Node, len(nodes)),
		Edges: make([]Edge, len(edges)),
	}

	index := make(map[string]*Node, len(nodes))
	for i, n := range nodes {
		if _, exists := index[n.ID]; exists {
			return Result{}, fmt.Errorf("node %q: %w", n.ID, ErrDuplicateNodeID)
		}
		out.Nodes[i] = cloneNode(n)
		index[n.ID] = &out.Nodes[i]
	}

	seen := make(map[string]bool, len(edges))
	for i, edge := range edges {
		if seen[edge.ID] {
			return Result{}, fmt.Errorf("edge %q: %w", edge.ID, ErrDuplicateEdgeID)
		}
		seen[edge.ID] = true
		out.Edges[i] = cloneEdge(edge)
	}

	// Step 1: per-edge side assignment with a provisional midpoint offset.
	for i := range out.Edges {
		edge := &out.Edges[i]
		src, okS := index[edge.Source]
		dst, okT := index[edge.Target]
		if !okS || !okT {
			out.Skipped = append(out.Skipped, edge.ID)
			continue
		}

		srcCenter := e.center(src)
		dstCenter := e.center(dst)
		srcSide, dstSide := e.pickSides(dstCenter.X-srcCenter.X, dstCenter.Y-srcCenter.Y)

		srcPoint := ConnectionPoint{
			ID:            connectionPointID(RoleSource, edge.Source, edge.Target, edge.ID),
			Role:          RoleSource,
			Side:          srcSide,
			OffsetPercent: 50,
		}
		dstPoint := ConnectionPoint{
			ID:            connectionPointID(RoleTarget, edge.Source, edge.Target, edge.ID),
			Role:          RoleTarget,
			Side:          dstSide,
			OffsetPercent: 50,
		}

		src.ConnectionPoints = append(src.ConnectionPoints, srcPoint)
		dst.ConnectionPoints = append(dst.ConnectionPoints, dstPoint)
		edge.SourceConnectionPointID = srcPoint.ID
		edge.TargetConnectionPointID = dstPoint.ID
	}

	// Step 2: per-node, per-side offset distribution.
	for i := range out.Nodes {
		distributeOffsets(out.Nodes[i].ConnectionPoints)
	}

	return out, nil
}

// Layout runs a one-off computation with the zero-value [Config].
func Layout(nodes []Node, edges []Edge) (Result, error) {
	return New(Config{}).Layout(nodes, edges)
}

// center returns the midpoint of the node's bounding box, substituting the
// configured default size when the node has none. Zero or negative sizes are
// accepted as-is; layout stays non-fatal for degenerate geometry.
func (e *Engine) center(n *Node) Point {
	size := e.cfg.DefaultSize
	if n.Size != nil {
		size = *n.Size
	}
	return Point{
		X: n.Position.X + size.Width/2,
		Y: n.Position.Y + size.Height/2,
	}
}

// pickSides maps the source→target center delta to an attachment side pair.
// The dominant axis wins; equal nonzero magnitudes resolve per the configured
// tie-break. A zero delta (self-loop or coincident centers) always takes the
// vertical branch with dy <= 0, giving top/bottom.
func (e *Engine) pickSides(dx, dy float64) (src, dst Side) {
	horizontal := math.Abs(dx) > math.Abs(dy)
	if math.Abs(dx) == math.Abs(dy) && (dx != 0 || dy != 0) {
		horizontal = e.cfg.TieBreak == TieBreakHorizontal
	}

	if horizontal {
		if dx > 0 {
			return SideRight, SideLeft
		}
		return SideLeft, SideRight
	}
	if dy > 0 {
		return SideBottom, SideTop
	}
	return SideTop, SideBottom
}

// distributeOffsets spaces the points sharing a side so that k points sit at
// 100·i/(k+1) for i = 1..k, in slice order. Points are equidistant, pairwise
// distinct, and never flush with a corner. The k+1 denominator applies to
// single-point sides too: one point sits at 50, not at an end.
func distributeOffsets(points []ConnectionPoint) {
	perSide := make(map[Side]int, 4)
	for i := range points {
		perSide[points[i].Side]++
	}

	position := make(map[Side]int, len(perSide))
	for i := range points {
		side := points[i].Side
		position[side]++
		points[i].OffsetPercent = 100 * float64(position[side]) / float64(perSide[side]+1)
	}
}

func cloneNode(n Node) Node {
	out := n
	out.Meta = copyMeta(n.Meta)
	out.ConnectionPoints = nil // derived, regenerated below
	if n.Size != nil {
		size := *n.Size
		out.Size = &size
	}
	return out
}

func cloneEdge(e Edge) Edge {
	out := e
	out.Meta = copyMeta(e.Meta)
	out.SourceConnectionPointID = ""
	out.TargetConnectionPointID = ""
	return out
}
