// Package pipeline provides the core exploration pipeline for odex.
//
// This package implements the complete fetch → layout → render pipeline that
// can be used by CLI and server components. Centralizing it keeps behavior
// consistent across entry points.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Fetch: Retrieve and parse the service's $metadata document
//  2. Layout: Build the entity diagram and compute connection points
//  3. Render: Generate output in various formats (JSON, DOT, SVG, PNG)
//
// Each stage can be run independently or as part of the complete pipeline,
// and each stage's result is cached independently.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    ServiceURL: "https://services.odata.org/V4/TripPinService",
//	    Formats:    []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/odex-dev/odex/pkg/cache"
	"github.com/odex-dev/odex/pkg/diagram"
	"github.com/odex-dev/odex/pkg/edm"
)

const (
	// DefaultColumns is the number of diagram grid columns.
	DefaultColumns = 4

	// DefaultHGap is the horizontal spacing between node boxes in pixels.
	DefaultHGap = 120.0

	// DefaultVGap is the vertical spacing between node boxes in pixels.
	DefaultVGap = 100.0
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
}

// Tie-break names accepted in Options.TieBreak.
const (
	TieBreakHorizontal = "horizontal"
	TieBreakVertical   = "vertical"
)

// Options contains all configuration for the exploration pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Fetch options
	ServiceURL   string `json:"service_url,omitempty"`
	MetadataFile string `json:"metadata_file,omitempty"` // Local EDMX file instead of a live service
	Refresh      bool   `json:"refresh,omitempty"`

	// Layout options
	Columns    int     `json:"columns,omitempty"`
	NodeWidth  float64 `json:"node_width,omitempty"`
	NodeHeight float64 `json:"node_height,omitempty"`
	HGap       float64 `json:"hgap,omitempty"`
	VGap       float64 `json:"vgap,omitempty"`
	TieBreak   string  `json:"tie_break,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	RankDir  string   `json:"rankdir,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the parsed EDM model.
	Document *edm.Document

	// Diagram is the laid-out entity diagram.
	Diagram diagram.Result

	// DiagramHash is the content hash of the laid-out diagram.
	DiagramHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	EntityCount       int
	RelationshipCount int
	SkippedEdges      int
	FetchTime         time.Duration
	LayoutTime        time.Duration
	RenderTime        time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	MetadataHit bool // Whether the metadata document came from cache
	LayoutHit   bool // Whether the laid-out diagram came from cache
	RenderHit   bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: json, dot, svg, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTieBreak checks that a tie-break name is valid.
func ValidateTieBreak(tb string) error {
	if tb != "" && tb != TieBreakHorizontal && tb != TieBreakVertical {
		return fmt.Errorf("invalid tie_break: %q (must be horizontal or vertical)", tb)
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. Idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForFetch(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForFetch checks required fields for metadata retrieval.
func (o *Options) ValidateForFetch() error {
	if o.ServiceURL == "" && o.MetadataFile == "" {
		return fmt.Errorf("service_url or metadata_file is required")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for diagram layout.
func (o *Options) SetLayoutDefaults() {
	if o.Columns == 0 {
		o.Columns = DefaultColumns
	}
	if o.NodeWidth == 0 {
		o.NodeWidth = diagram.DefaultNodeWidth
	}
	if o.NodeHeight == 0 {
		o.NodeHeight = diagram.DefaultNodeHeight
	}
	if o.HGap == 0 {
		o.HGap = DefaultHGap
	}
	if o.VGap == 0 {
		o.VGap = DefaultVGap
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for diagram layout.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return ValidateTieBreak(o.TieBreak)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// EngineConfig translates the layout options into an engine configuration.
func (o *Options) EngineConfig() diagram.Config {
	cfg := diagram.Config{
		DefaultSize: diagram.Size{Width: o.NodeWidth, Height: o.NodeHeight},
	}
	if o.TieBreak == TieBreakVertical {
		cfg.TieBreak = diagram.TieBreakVertical
	}
	return cfg
}

// LayoutKeyOpts returns cache key options for the layout stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		DefaultWidth:  o.NodeWidth,
		DefaultHeight: o.NodeHeight,
		TieBreak:      o.TieBreak,
		Columns:       o.Columns,
		HGap:          o.HGap,
		VGap:          o.VGap,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Detailed: o.Detailed,
		RankDir:  o.RankDir,
	}
}
