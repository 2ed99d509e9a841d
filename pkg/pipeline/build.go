package pipeline

import (
	"github.com/odex-dev/odex/pkg/diagram"
	"github.com/odex-dev/odex/pkg/edm"
)

// BuildDiagram turns an EDM model into diagram input: one node per entity
// type placed on a fixed grid, one edge per relationship. Grid placement
// keeps node positions deterministic, so the same model always produces the
// same layout.
func BuildDiagram(doc *edm.Document, opts Options) ([]diagram.Node, []diagram.Edge) {
	opts.SetLayoutDefaults()

	entityTypes := doc.EntityTypes()
	nodes := make([]diagram.Node, 0, len(entityTypes))

	for i, et := range entityTypes {
		col := i % opts.Columns
		row := i / opts.Columns

		meta := map[string]any{
			"properties": len(et.Properties),
		}
		if len(et.Keys) > 0 {
			meta["key"] = et.Keys[0]
		}
		if set, ok := doc.EntitySetFor(et.Name); ok {
			meta["entity_set"] = set.Name
		}

		nodes = append(nodes, diagram.Node{
			ID:       et.Name,
			Label:    et.Name,
			Position: diagram.Point{
				X: float64(col) * (opts.NodeWidth + opts.HGap),
				Y: float64(row) * (opts.NodeHeight + opts.VGap),
			},
			Meta: meta,
		})
	}

	relationships := doc.Relationships()
	edges := make([]diagram.Edge, 0, len(relationships))

	for _, rel := range relationships {
		edges = append(edges, diagram.Edge{
			ID:     rel.ID,
			Source: rel.FromEntity,
			Target: rel.ToEntity,
			Label:  edgeLabel(rel),
			Meta: map[string]any{
				"navigation": rel.Name,
			},
		})
	}

	return nodes, edges
}

// edgeLabel renders the relationship cardinality, e.g. "1..*".
func edgeLabel(rel edm.Relationship) string {
	from, to := rel.FromMultiplicity, rel.ToMultiplicity
	if from == "" && to == "" {
		return rel.Name
	}
	if from == "" {
		from = "1"
	}
	if to == "" {
		to = "1"
	}
	return from + ".." + to
}
