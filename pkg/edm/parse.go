package edm

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnknownVersion is returned by [Parse] when the EDMX envelope does not
// declare a recognizable OData version.
var ErrUnknownVersion = errors.New("unknown OData version")

// Raw XML shapes. Element names are matched on their local part so the
// V2 (microsoft) and V4 (oasis) namespaces both decode into the same structs.
type xmlEdmx struct {
	Version      string          `xml:"Version,attr"`
	DataServices xmlDataServices `xml:"DataServices"`
}

type xmlDataServices struct {
	DataServiceVersion string      `xml:"DataServiceVersion,attr"`
	Schemas            []xmlSchema `xml:"Schema"`
}

type xmlSchema struct {
	Namespace    string           `xml:"Namespace,attr"`
	Alias        string           `xml:"Alias,attr"`
	EntityTypes  []xmlEntityType  `xml:"EntityType"`
	Associations []xmlAssociation `xml:"Association"`
	Containers   []xmlContainer   `xml:"EntityContainer"`
}

type xmlEntityType struct {
	Name          string           `xml:"Name,attr"`
	KeyRefs       []xmlPropRef     `xml:"Key>PropertyRef"`
	Properties    []xmlProperty    `xml:"Property"`
	NavProperties []xmlNavProperty `xml:"NavigationProperty"`
}

type xmlPropRef struct {
	Name string `xml:"Name,attr"`
}

type xmlProperty struct {
	Name      string `xml:"Name,attr"`
	Type      string `xml:"Type,attr"`
	Nullable  string `xml:"Nullable,attr"`
	MaxLength string `xml:"MaxLength,attr"`
}

type xmlNavProperty struct {
	Name         string `xml:"Name,attr"`
	Type         string `xml:"Type,attr"`
	Partner      string `xml:"Partner,attr"`
	Relationship string `xml:"Relationship,attr"`
	FromRole     string `xml:"FromRole,attr"`
	ToRole       string `xml:"ToRole,attr"`
}

type xmlAssociation struct {
	Name string   `xml:"Name,attr"`
	Ends []xmlEnd `xml:"End"`
}

type xmlEnd struct {
	Role         string `xml:"Role,attr"`
	Type         string `xml:"Type,attr"`
	Multiplicity string `xml:"Multiplicity,attr"`
}

type xmlContainer struct {
	Name       string         `xml:"Name,attr"`
	EntitySets []xmlEntitySet `xml:"EntitySet"`
}

type xmlEntitySet struct {
	Name       string `xml:"Name,attr"`
	EntityType string `xml:"EntityType,attr"`
}

// Parse decodes an EDMX metadata document from r.
//
// It returns an error for malformed XML and [ErrUnknownVersion] when the
// envelope's version attributes cannot be mapped to V2, V3, or V4. Schema
// content problems (dangling association references, unknown types) are not
// errors: the explorer should still show whatever the document does declare.
func Parse(r io.Reader) (*Document, error) {
	var raw xmlEdmx
	if err := xml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode EDMX: %w", err)
	}

	version, err := detectVersion(raw)
	if err != nil {
		return nil, err
	}

	doc := &Document{Version: version}
	for _, xs := range raw.DataServices.Schemas {
		doc.Schemas = append(doc.Schemas, buildSchema(xs))
	}
	return doc, nil
}

// ParseBytes is a convenience wrapper around [Parse] for in-memory documents.
func ParseBytes(data []byte) (*Document, error) {
	return Parse(bytes.NewReader(data))
}

// detectVersion maps the envelope attributes to a protocol version. A 4.x
// Edmx version wins outright; the 1.0 envelope defers to DataServiceVersion
// to distinguish V2 from V3.
func detectVersion(raw xmlEdmx) (Version, error) {
	switch {
	case strings.HasPrefix(raw.Version, "4."):
		return V4, nil
	case raw.Version == "1.0":
		if strings.HasPrefix(raw.DataServices.DataServiceVersion, "3.") {
			return V3, nil
		}
		return V2, nil
	}
	return "", fmt.Errorf("%w: Edmx version %q", ErrUnknownVersion, raw.Version)
}

func buildSchema(xs xmlSchema) Schema {
	s := Schema{Namespace: xs.Namespace, Alias: xs.Alias}

	for _, xe := range xs.EntityTypes {
		et := EntityType{Name: xe.Name}
		for _, ref := range xe.KeyRefs {
			et.Keys = append(et.Keys, ref.Name)
		}
		for _, xp := range xe.Properties {
			et.Properties = append(et.Properties, Property{
				Name:      xp.Name,
				Type:      xp.Type,
				Nullable:  xp.Nullable != "false", // EDM default is nullable
				MaxLength: xp.MaxLength,
			})
		}
		for _, xn := range xe.NavProperties {
			et.NavigationProperties = append(et.NavigationProperties, NavigationProperty{
				Name:         xn.Name,
				Type:         xn.Type,
				Partner:      xn.Partner,
				Relationship: xn.Relationship,
				FromRole:     xn.FromRole,
				ToRole:       xn.ToRole,
			})
		}
		s.EntityTypes = append(s.EntityTypes, et)
	}

	for _, xa := range xs.Associations {
		a := Association{Name: xa.Name}
		for _, xe := range xa.Ends {
			a.Ends = append(a.Ends, AssociationEnd{
				Role:         xe.Role,
				Type:         xe.Type,
				Multiplicity: xe.Multiplicity,
			})
		}
		s.Associations = append(s.Associations, a)
	}

	for _, xc := range xs.Containers {
		for _, xes := range xc.EntitySets {
			s.EntitySets = append(s.EntitySets, EntitySet{
				Name:       xes.Name,
				EntityType: xes.EntityType,
			})
		}
	}

	return s
}
