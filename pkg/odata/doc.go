// Package odata talks to OData services: it normalizes service URLs, fetches
// and caches $metadata, builds ad-hoc queries, and flattens responses.
//
// # Overview
//
// The package supports OData V2, V3, and V4 services behind one API. Version
// differences are confined to two places: metadata parsing (delegated to
// package edm) and the handful of query/response conventions that changed
// between generations ($inlinecount vs $count, the d-wrapper vs the value
// array, Atom feeds vs JSON).
//
// # Usage
//
//	svc, err := odata.ParseServiceURL("services.odata.org/V4/Northwind/Northwind.svc")
//	if err != nil {
//	    return err
//	}
//
//	client := odata.NewClient(fileCache, nil, logger)
//	doc, err := client.FetchMetadata(ctx, svc, false)
//	if err != nil {
//	    return err
//	}
//
//	q := odata.Query{EntitySet: "Customers", Top: 10, Select: []string{"CompanyName"}}
//	rs, err := client.Execute(ctx, svc.WithVersion(doc.Version), q, false)
//
// Responses are normalized into a flat [ResultSet] regardless of the wire
// format the service chose.
package odata
