package edm

import (
	"strings"
)

// Version identifies the OData protocol generation of a metadata document.
type Version string

// Supported OData versions.
const (
	V2 Version = "2.0"
	V3 Version = "3.0"
	V4 Version = "4.0"
)

// Document is a parsed $metadata document.
type Document struct {
	Version Version
	Schemas []Schema
}

// Schema is one EDM schema (namespace) within a metadata document.
type Schema struct {
	Namespace    string
	Alias        string
	EntityTypes  []EntityType
	Associations []Association // V2/V3 only
	EntitySets   []EntitySet
}

// EntityType describes a structured type with a key.
type EntityType struct {
	Name                 string
	Keys                 []string
	Properties           []Property
	NavigationProperties []NavigationProperty
}

// Property is a primitive property of an entity type.
type Property struct {
	Name      string
	Type      string // EDM primitive type, e.g. "Edm.String"
	Nullable  bool
	MaxLength string // Numeric or "Max"; empty when unspecified
}

// NavigationProperty describes a relationship from its declaring entity type.
//
// For V4 documents Type carries the target ("ns.Order" or
// "Collection(ns.Order)"). For V2/V3 documents Relationship names the
// Association that carries the ends, and FromRole/ToRole select them.
type NavigationProperty struct {
	Name         string
	Type         string // V4
	Partner      string // V4
	Relationship string // V2/V3
	FromRole     string // V2/V3
	ToRole       string // V2/V3
}

// IsCollection reports whether a V4 navigation property targets a collection.
func (np NavigationProperty) IsCollection() bool {
	return strings.HasPrefix(np.Type, "Collection(")
}

// TargetType returns the qualified target entity type of a V4 navigation
// property, unwrapping the Collection(...) wrapper if present.
func (np NavigationProperty) TargetType() string {
	t := strings.TrimPrefix(np.Type, "Collection(")
	return strings.TrimSuffix(t, ")")
}

// Association is a V2/V3 relationship declaration with two typed ends.
type Association struct {
	Name string
	Ends []AssociationEnd
}

// AssociationEnd is one side of an association.
type AssociationEnd struct {
	Role         string
	Type         string // Qualified entity type
	Multiplicity string // "1", "0..1", or "*"
}

// EntitySet exposes an entity type in the service's container.
type EntitySet struct {
	Name       string
	EntityType string // Qualified type name
}

// Relationship is a flattened, diagram-ready view of one navigation property:
// a directed link between two entity types with end multiplicities.
type Relationship struct {
	ID               string // Stable: "<EntityType>.<NavigationProperty>"
	Name             string // Navigation property name
	FromEntity       string // Declaring entity type (local name)
	ToEntity         string // Target entity type (local name)
	FromMultiplicity string
	ToMultiplicity   string
}

// EntityTypes returns all entity types across schemas, in document order.
func (d *Document) EntityTypes() []EntityType {
	var out []EntityType
	for _, s := range d.Schemas {
		out = append(out, s.EntityTypes...)
	}
	return out
}

// EntitySets returns all entity sets across schemas, in document order.
func (d *Document) EntitySets() []EntitySet {
	var out []EntitySet
	for _, s := range d.Schemas {
		out = append(out, s.EntitySets...)
	}
	return out
}

// EntityType looks up an entity type by name. Qualified names are matched on
// their local part, so both "NorthwindModel.Customer" and "Customer" resolve.
func (d *Document) EntityType(name string) (EntityType, bool) {
	local := LocalName(name)
	for _, s := range d.Schemas {
		for _, et := range s.EntityTypes {
			if et.Name == local {
				return et, true
			}
		}
	}
	return EntityType{}, false
}

// EntitySetFor returns the first entity set exposing the given entity type.
func (d *Document) EntitySetFor(entityType string) (EntitySet, bool) {
	local := LocalName(entityType)
	for _, s := range d.Schemas {
		for _, es := range s.EntitySets {
			if LocalName(es.EntityType) == local {
				return es, true
			}
		}
	}
	return EntitySet{}, false
}

// Relationships flattens every navigation property in the document into a
// directed relationship. Order is deterministic: schemas, then entity types,
// then navigation properties, all in document order.
func (d *Document) Relationships() []Relationship {
	var out []Relationship
	for _, s := range d.Schemas {
		assocs := make(map[string]Association, len(s.Associations))
		for _, a := range s.Associations {
			assocs[a.Name] = a
		}
		for _, et := range s.EntityTypes {
			for _, np := range et.NavigationProperties {
				rel := Relationship{
					ID:         et.Name + "." + np.Name,
					Name:       np.Name,
					FromEntity: et.Name,
				}
				if np.Relationship != "" {
					resolveAssociation(&rel, np, assocs)
				} else {
					rel.ToEntity = LocalName(np.TargetType())
					rel.FromMultiplicity = "1"
					rel.ToMultiplicity = "1"
					if np.IsCollection() {
						rel.ToMultiplicity = "*"
					}
				}
				if rel.ToEntity == "" {
					continue // unresolvable association reference
				}
				out = append(out, rel)
			}
		}
	}
	return out
}

// resolveAssociation fills the target and multiplicities of a V2/V3
// relationship from its association ends.
func resolveAssociation(rel *Relationship, np NavigationProperty, assocs map[string]Association) {
	assoc, ok := assocs[LocalName(np.Relationship)]
	if !ok {
		return
	}
	for _, end := range assoc.Ends {
		switch end.Role {
		case np.FromRole:
			rel.FromMultiplicity = end.Multiplicity
		case np.ToRole:
			rel.ToEntity = LocalName(end.Type)
			rel.ToMultiplicity = end.Multiplicity
		}
	}
}

// LocalName strips the namespace qualifier from a qualified EDM name.
// "NorthwindModel.Customer" becomes "Customer"; unqualified names pass
// through unchanged.
func LocalName(qualified string) string {
	if i := strings.LastIndex(qualified, "."); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}
