// Package edm models OData entity data model (EDM) metadata and parses it
// from EDMX documents.
//
// # Overview
//
// Every OData service publishes its schema at <service root>/$metadata as an
// EDMX envelope: entity types with properties and keys, navigation properties
// describing relationships, and entity sets exposing the types. This package
// decodes that envelope into a clean in-memory model and flattens the
// relationship graph into the shape the diagram layer consumes.
//
// Both metadata generations are supported:
//
//   - V2/V3: navigation properties reference named Association elements whose
//     ends carry the multiplicities.
//   - V4: navigation properties are typed directly, with Collection(...)
//     marking to-many ends.
//
// The protocol version is read from the Edmx Version attribute and, for the
// 1.0 envelope, the DataServiceVersion attribute.
//
// # Usage
//
//	doc, err := edm.Parse(resp.Body)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(doc.Version)
//	for _, rel := range doc.Relationships() {
//	    fmt.Printf("%s -> %s (%s)\n", rel.FromEntity, rel.ToEntity, rel.Name)
//	}
package edm
