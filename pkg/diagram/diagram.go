package diagram

import (
	"errors"
	"strings"
)

var (
	// ErrDuplicateNodeID is returned by [Engine.Layout] when two nodes share
	// an ID. Node IDs must be unique across the diagram.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrDuplicateEdgeID is returned by [Engine.Layout] when two edges share
	// an ID. Edge IDs must be unique across the diagram.
	ErrDuplicateEdgeID = errors.New("duplicate edge ID")
)

// Side identifies one of the four cardinal borders of a node's bounding box.
type Side string

// The four sides of a node.
const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
	SideRight  Side = "right"
)

// Role identifies which edge endpoint a connection point serves.
type Role string

// Connection point roles.
const (
	RoleSource Role = "source"
	RoleTarget Role = "target"
)

// Point is a position in diagram coordinates. Units are logical pixels;
// the origin is the top-left corner with Y increasing downward.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Size is the extent of a node's bounding box.
type Size struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// ConnectionPoint is a specific location on a node's border where an edge
// visually attaches. Points are derived output: [Engine.Layout] regenerates
// them on every call and never accumulates points across calls.
type ConnectionPoint struct {
	ID            string  `json:"id" bson:"id"`
	Role          Role    `json:"role" bson:"role"`
	Side          Side    `json:"side" bson:"side"`
	OffsetPercent float64 `json:"offset_percent" bson:"offset_percent"` // Position along the side, strictly between 0 and 100
}

// Node is a diagram entity box. Position is owned by the caller and read,
// never written, by the layout engine. A nil Size means the engine's
// configured default size applies.
type Node struct {
	ID       string         `json:"id" bson:"id"`
	Label    string         `json:"label,omitempty" bson:"label,omitempty"` // Display label (defaults to ID)
	Position Point          `json:"position" bson:"position"`
	Size     *Size          `json:"size,omitempty" bson:"size,omitempty"`
	Meta     map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`

	// ConnectionPoints is derived output, overwritten on every layout run.
	ConnectionPoints []ConnectionPoint `json:"connection_points,omitempty" bson:"connection_points,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a directed relationship between two nodes. Source and Target are
// node IDs; they may reference nodes absent from the node set, in which case
// the edge is skipped rather than rejected (see [Result.Skipped]).
type Edge struct {
	ID     string         `json:"id" bson:"id"`
	Source string         `json:"source" bson:"source"`
	Target string         `json:"target" bson:"target"`
	Label  string         `json:"label,omitempty" bson:"label,omitempty"`
	Meta   map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`

	// SourceConnectionPointID and TargetConnectionPointID are derived output,
	// overwritten on every layout run. Both are empty for skipped edges.
	SourceConnectionPointID string `json:"source_connection_point_id,omitempty" bson:"source_connection_point_id,omitempty"`
	TargetConnectionPointID string `json:"target_connection_point_id,omitempty" bson:"target_connection_point_id,omitempty"`
}

// IsSelfLoop reports whether the edge connects a node to itself.
func (e *Edge) IsSelfLoop() bool { return e.Source == e.Target }

// connectionPointID derives a stable point identifier from the edge identity.
// Re-running layout on unchanged input must yield identical IDs, so the ID is
// a pure function of (role, source, target, edge).
func connectionPointID(role Role, source, target, edgeID string) string {
	return strings.Join([]string{string(role), source, target, edgeID}, ":")
}

// copyMeta creates a shallow copy of metadata to avoid aliasing input maps.
func copyMeta(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	result := make(map[string]any, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}
