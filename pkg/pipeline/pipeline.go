// Package pipeline provides the core diagram pipeline for laneflow.
//
// This package implements the complete parse → layout → render pipeline
// shared by the CLI and the HTTP API. Centralizing this logic keeps
// behavior consistent across entry points.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Reconstruct the process graph from triple text
//  2. Layout: Assign levels and compute swimlane geometry
//  3. Render: Generate output in various formats (draw.io XML, JSON, DOT, SVG, PNG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:   tripleText,
//	    Formats: []string{"drawio"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	xml := result.Artifacts["drawio"]
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/laneflow/laneflow/pkg/cache"
	"github.com/laneflow/laneflow/pkg/errors"
	"github.com/laneflow/laneflow/pkg/layout"
	"github.com/laneflow/laneflow/pkg/process"
)

// Format constants for output formats.
const (
	FormatDrawio = "drawio"
	FormatJSON   = "json"
	FormatDOT    = "dot"
	FormatSVG    = "svg"
	FormatPNG    = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDrawio: true,
	FormatJSON:   true,
	FormatDOT:    true,
	FormatSVG:    true,
	FormatPNG:    true,
}

// DefaultFormat is the output produced when no format is requested.
const DefaultFormat = FormatDrawio

// Options contains all configuration for the diagram pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options
	Input string `json:"input"`

	// Layout options
	Layout     layout.Config `json:"layout,omitempty"`
	Procedures []string      `json:"procedures,omitempty"` // emit only these pools; empty means all

	// Render options
	Formats []string `json:"formats,omitempty"`

	// Refresh bypasses the graph cache.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the reconstructed process graph.
	Graph *process.Graph

	// GraphHash is the content hash of the graph.
	GraphHash string

	// Layout contains the computed swimlane geometry.
	Layout layout.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ProcedureCount int
	ItemCount      int
	EdgeCount      int
	ParseTime      time.Duration
	LayoutTime     time.Duration
	RenderTime     time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ParseHit  bool // Whether the parsed graph came from cache
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: drawio, json, dot, svg, png)", format)
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

// ValidateAndSetDefaults checks required fields and applies defaults for
// the full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks required fields for parsing.
func (o *Options) ValidateForParse() error {
	if o.Input == "" {
		return errors.New(errors.ErrCodeInvalidInput, "input triple text is required")
	}
	return nil
}

// SetLayoutDefaults fills zero geometry values with the standard constants.
func (o *Options) SetLayoutDefaults() {
	if o.Layout == (layout.Config{}) {
		o.Layout = layout.DefaultConfig()
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Config:     o.Layout,
		Procedures: o.Procedures,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format}
}
