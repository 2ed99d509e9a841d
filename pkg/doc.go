// Package pkg provides the core libraries for Odex OData exploration.
//
// # Overview
//
// Odex turns OData service metadata into entity relationship diagrams with
// deterministically computed edge connection points, and lets users query
// services interactively. The pkg directory is organized into four main
// areas:
//
//  1. Domain logic (metadata parsing, diagram layout, rendering)
//  2. Infrastructure (caching, catalog, HTTP utilities)
//  3. Protocol clients (OData V2/V3/V4)
//  4. Orchestration (the fetch → layout → render pipeline)
//
// # Architecture
//
// The typical data flow through Odex:
//
//	OData $metadata (EDMX)
//	         ↓
//	    [edm] package (parse entity types and relationships)
//	         ↓
//	    [diagram] package (grid placement + connection-point layout)
//	         ↓
//	    [render] package (DOT generation, Graphviz rasterization)
//	         ↓
//	    JSON/DOT/SVG/PNG output
//
// # Quick Start
//
// Run the full pipeline against a live service:
//
//	import (
//	    "context"
//	    "github.com/odex-dev/odex/pkg/cache"
//	    "github.com/odex-dev/odex/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(), nil, nil)
//	defer runner.Close()
//
//	result, err := runner.Execute(context.Background(), pipeline.Options{
//	    ServiceURL: "https://services.odata.org/V4/TripPinService",
//	    Formats:    []string{pipeline.FormatSVG},
//	})
//
// # Main Packages
//
// ## Domain Logic
//
// [edm] - EDMX metadata parsing for OData V2, V3, and V4. Produces a
// version-independent Document with entity types, entity sets, and the
// flattened relationships used for diagramming.
//
// [diagram] - The connection-point layout engine. Given node positions and
// edge topology, it deterministically assigns each edge endpoint a side and
// offset on its node. Pure computation with no I/O.
//
// [render] - Diagram output: Graphviz DOT with compass ports carrying the
// computed attachment sides, plus SVG/PNG rasterization via go-graphviz.
//
// [mock] - Deterministic sample-row generation from entity type definitions,
// for trying queries against services that are slow or unreachable.
//
// ## Protocol
//
// [odata] - OData client: metadata fetching, version detection, query
// building with version-appropriate system options, and response
// normalization for JSON and Atom payloads.
//
// ## Infrastructure
//
// [cache] - Content-addressed caching with file, memory, Redis, and null
// backends, plus the key schema shared by all pipeline stages.
//
// [catalog] - The explored-services catalog with memory and MongoDB
// backends, used by the HTTP server.
//
// [httputil] - Shared HTTP error classification and retry with exponential
// backoff.
//
// [observability] - Optional instrumentation hooks for pipeline, cache, and
// HTTP events, with no-op defaults.
//
// [errors] - Structured error codes and input validation shared by the CLI
// and server.
//
// ## Orchestration
//
// [pipeline] - The complete fetch → layout → render pipeline used by both
// CLI and server, with per-stage caching and cache-hit reporting.
//
// [server] - The chi-based HTTP API exposing metadata, layout, query, and
// catalog endpoints.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/diagram/...  # Specific package
//	go test -run Example       # Examples only
//
// [edm]: https://pkg.go.dev/github.com/odex-dev/odex/pkg/edm
// [diagram]: https://pkg.go.dev/github.com/odex-dev/odex/pkg/diagram
// [render]: https://pkg.go.dev/github.com/odex-dev/odex/pkg/render
// [mock]: https://pkg.go.dev/github.com/odex-dev/odex/pkg/mock
// [odata]: https://pkg.go.dev/github.com/odex-dev/odex/pkg/odata
// [cache]: https://pkg.go.dev/github.com/odex-dev/odex/pkg/cache
// [catalog]: https://pkg.go.dev/github.com/odex-dev/odex/pkg/catalog
// [httputil]: https://pkg.go.dev/github.com/odex-dev/odex/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/odex-dev/odex/pkg/observability
// [errors]: https://pkg.go.dev/github.com/odex-dev/odex/pkg/errors
// [pipeline]: https://pkg.go.dev/github.com/odex-dev/odex/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/odex-dev/odex/pkg/server
package pkg
