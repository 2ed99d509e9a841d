package mock

import (
	"reflect"
	"testing"

	"github.com/odex-dev/odex/pkg/edm"
)

var productType = edm.EntityType{
	Name: "Product",
	Keys: []string{"ID"},
	Properties: []edm.Property{
		{Name: "ID", Type: "Edm.Int32", Nullable: false},
		{Name: "Name", Type: "Edm.String", Nullable: false},
		{Name: "Price", Type: "Edm.Decimal", Nullable: true},
		{Name: "Discontinued", Type: "Edm.Boolean", Nullable: false},
		{Name: "CategoryGuid", Type: "Edm.Guid", Nullable: false},
		{Name: "ReleaseDate", Type: "Edm.DateTimeOffset", Nullable: true},
	},
}

func TestGeneratorRows(t *testing.T) {
	g := New(42)
	rs := g.Rows(productType, 10)

	if len(rs.Rows) != 10 {
		t.Fatalf("len(Rows) = %d, want 10", len(rs.Rows))
	}
	if rs.Count != 10 {
		t.Errorf("Count = %d, want 10", rs.Count)
	}
	if len(rs.Columns) != len(productType.Properties) {
		t.Errorf("len(Columns) = %d, want %d", len(rs.Columns), len(productType.Properties))
	}

	for i, row := range rs.Rows {
		if _, ok := row["ID"]; !ok {
			t.Fatalf("row %d missing key property ID", i)
		}
		if row["ID"] == nil {
			t.Errorf("row %d: key property ID is null", i)
		}
	}
}

func TestGeneratorKeyUniqueness(t *testing.T) {
	g := New(7)
	rs := g.Rows(productType, 50)

	seen := map[any]bool{}
	for _, row := range rs.Rows {
		id := row["ID"]
		if seen[id] {
			t.Fatalf("duplicate key value %v", id)
		}
		seen[id] = true
	}
}

func TestGeneratorDeterminism(t *testing.T) {
	a := New(99).Rows(productType, 20)
	b := New(99).Rows(productType, 20)

	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different rows")
	}

	c := New(100).Rows(productType, 20)
	if reflect.DeepEqual(a.Rows, c.Rows) {
		t.Error("different seeds produced identical rows")
	}
}

func TestGeneratorRowIndependence(t *testing.T) {
	// The same row index must yield the same values regardless of how many
	// rows are requested.
	small := New(5).Rows(productType, 3)
	large := New(5).Rows(productType, 30)

	for i := range small.Rows {
		if !reflect.DeepEqual(small.Rows[i], large.Rows[i]) {
			t.Errorf("row %d differs between batch sizes", i)
		}
	}
}

func TestGeneratorValueShapes(t *testing.T) {
	g := New(1)
	rs := g.Rows(productType, 5)

	for i, row := range rs.Rows {
		if v, ok := row["Discontinued"]; ok {
			if _, isBool := v.(bool); !isBool {
				t.Errorf("row %d: Discontinued = %T, want bool", i, v)
			}
		}
		if v := row["CategoryGuid"]; v != nil {
			s, ok := v.(string)
			if !ok || len(s) != 36 {
				t.Errorf("row %d: CategoryGuid = %v, want UUID string", i, v)
			}
		}
	}
}
