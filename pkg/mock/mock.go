// Package mock generates deterministic sample data from an EDM model.
//
// The generator is pure: the same seed and entity type always produce the
// same rows, which makes mock data cacheable and diffable. Key properties
// get unique values so generated rows can stand in for real entities in
// demos and tests.
package mock

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/odex-dev/odex/pkg/edm"
	"github.com/odex-dev/odex/pkg/odata"
)

// mockEpoch anchors generated dates so output never depends on wall time.
var mockEpoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// guidNamespace scopes generated GUIDs; any fixed UUID works since only
// determinism matters.
var guidNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// Generator produces sample rows for entity types.
type Generator struct {
	// Seed drives every random choice. Two generators with equal seeds are
	// interchangeable.
	Seed int64
}

// New creates a generator with the given seed.
func New(seed int64) *Generator {
	return &Generator{Seed: seed}
}

// Rows generates count sample rows for an entity type, shaped like a
// normalized query result. Key properties are unique across the rows;
// nullable properties are occasionally null.
func (g *Generator) Rows(et edm.EntityType, count int) *odata.ResultSet {
	rs := &odata.ResultSet{Count: int64(count)}

	keys := map[string]bool{}
	for _, k := range et.Keys {
		keys[k] = true
	}

	for _, p := range et.Properties {
		rs.Columns = append(rs.Columns, p.Name)
	}

	for i := range count {
		rng := g.rng(et.Name, i)
		row := make(map[string]any, len(et.Properties))
		for _, p := range et.Properties {
			if p.Nullable && !keys[p.Name] && rng.Intn(10) == 0 {
				row[p.Name] = nil
				continue
			}
			row[p.Name] = g.value(et.Name, p, i, keys[p.Name], rng)
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs
}

// rng derives a row-scoped random source from the seed, the entity name,
// and the row index, so rows are independent of generation order.
func (g *Generator) rng(entity string, row int) *rand.Rand {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d:%s:%d", g.Seed, entity, row)
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// value produces a sample value for one property. Key properties use the
// row index directly, guaranteeing uniqueness.
func (g *Generator) value(entity string, p edm.Property, row int, key bool, rng *rand.Rand) any {
	switch p.Type {
	case "Edm.String":
		if key {
			return fmt.Sprintf("%s-%d", strings.TrimSuffix(p.Name, "ID"), row+1)
		}
		return fmt.Sprintf("%s %d", strings.TrimSuffix(p.Name, "ID"), row+1)
	case "Edm.Int16", "Edm.Int32", "Edm.Int64", "Edm.Byte", "Edm.SByte":
		if key {
			return row + 1
		}
		return rng.Intn(1000)
	case "Edm.Decimal", "Edm.Double", "Edm.Single":
		return float64(rng.Intn(100000)) / 100
	case "Edm.Boolean":
		return rng.Intn(2) == 1
	case "Edm.Guid":
		// Name-derived so the GUID is stable per (seed, entity, property, row).
		name := fmt.Sprintf("%d:%s:%s:%d", g.Seed, entity, p.Name, row)
		return uuid.NewSHA1(guidNamespace, []byte(name)).String()
	case "Edm.DateTime", "Edm.DateTimeOffset", "Edm.Date":
		d := mockEpoch.AddDate(0, 0, rng.Intn(365*3))
		if p.Type == "Edm.Date" {
			return d.Format("2006-01-02")
		}
		return d.Format(time.RFC3339)
	case "Edm.TimeOfDay", "Edm.Time":
		return fmt.Sprintf("%02d:%02d:00", rng.Intn(24), rng.Intn(60))
	case "Edm.Binary":
		return ""
	default:
		return fmt.Sprintf("%s %d", p.Name, row+1)
	}
}
