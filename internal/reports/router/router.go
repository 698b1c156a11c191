// internal/reports/router/router.go
package router

import (
	"time"

	"report-workers/internal/reports/catalog"
	"report-workers/internal/reports/dates"
	"report-workers/internal/reports/intent"
	"report-workers/internal/reports/params"
)

// ContextConfidence is reported for results rebuilt from session context.
const ContextConfidence = 0.7

// ParsedCommand is the structured report request produced for one command.
type ParsedCommand struct {
	Command           string               `json:"command"`
	ReportType        catalog.ReportID     `json:"report_type"`
	ReportName        string               `json:"report_name"`
	ReportDescription string               `json:"report_description"`
	Category          catalog.Category     `json:"category"`
	Format            catalog.Format       `json:"format"`
	Params            params.Params        `json:"params"`
	SupportsML        bool                 `json:"supports_ml"`
	Confidence        float64              `json:"confidence"`
	Alternatives      []intent.Alternative `json:"alternatives"`
	Source            intent.Source        `json:"source"`
	FormatChanged     bool                 `json:"format_changed,omitempty"`
	OriginalFormat    catalog.Format       `json:"original_format,omitempty"`
	ContextUsed       bool                 `json:"context_used"`
	OriginalCommand   string               `json:"original_command,omitempty"`
	Modification      string               `json:"modification,omitempty"`
}

// Options configures a Router. Zero values select the built-in catalog, the
// local time zone, the wall clock and json output.
type Options struct {
	Catalog       *catalog.Catalog
	Location      *time.Location
	Now           func() time.Time
	DefaultFormat catalog.Format
}

// Router turns free text into a ParsedCommand. It keeps no per-call state and
// is safe for concurrent use.
type Router struct {
	catalog       *catalog.Catalog
	classifier    *intent.Classifier
	dates         *dates.Extractor
	defaultFormat catalog.Format
}

func New(opts Options) *Router {
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.Builtin()
	}
	format := opts.DefaultFormat
	if !format.Valid() {
		format = catalog.FormatJSON
	}
	return &Router{
		catalog:       cat,
		classifier:    intent.NewClassifier(cat),
		dates:         dates.NewExtractor(opts.Location, opts.Now),
		defaultFormat: format,
	}
}

// Catalog returns the catalog the router classifies against.
func (r *Router) Catalog() *catalog.Catalog {
	return r.catalog
}

// Dates returns the router's period extractor.
func (r *Router) Dates() *dates.Extractor {
	return r.dates
}

// Route classifies command, then extracts format, period and parameters and
// validates the format against the chosen report. vote may be nil.
func (r *Router) Route(command string, vote *intent.Vote) ParsedCommand {
	text := Normalize(command)

	result := r.classifier.Classify(text, vote)
	def := result.Definition

	pc := r.base(command, def)
	pc.Confidence = result.Confidence
	pc.Alternatives = result.Alternatives
	pc.Source = result.Source

	pc.Format = params.DetectFormat(text, r.defaultFormat)
	pc.Params = params.Extract(def, text, r.dates.Extract(text))
	r.validateFormat(&pc, def)

	return pc
}

// Continuation describes a command merged with an earlier session result.
type Continuation struct {
	ReportType      catalog.ReportID
	Format          catalog.Format
	Params          params.Params
	ReparseDates    bool
	OriginalCommand string
	Modification    string
}

// Continue rebuilds a result from merged session state. Dates are
// re-extracted from command when the merge asked for it, grouping is derived
// again for the (possibly new) report, and format validation still applies.
// ok is false when the merged report id is not in the catalog.
func (r *Router) Continue(command string, c Continuation) (ParsedCommand, bool) {
	def, ok := r.catalog.Lookup(c.ReportType)
	if !ok {
		return ParsedCommand{}, false
	}
	text := Normalize(command)

	pc := r.base(command, def)
	pc.Confidence = ContextConfidence
	pc.Alternatives = []intent.Alternative{}
	pc.Source = intent.SourceContext
	pc.ContextUsed = true
	pc.OriginalCommand = c.OriginalCommand
	pc.Modification = c.Modification

	pc.Format = c.Format
	if !pc.Format.Valid() {
		pc.Format = r.defaultFormat
	}

	p := c.Params
	if c.ReparseDates || p.StartDate.IsZero() {
		p.ApplyDates(r.dates.Extract(text))
		p.ApplyExtras(def, text)
	}
	p.ApplyGrouping(def)
	if def.SupportsML && p.ForecastDays == 0 {
		p.ForecastDays = params.DefaultForecastDays
	}
	pc.Params = p

	r.validateFormat(&pc, def)
	return pc, true
}

func (r *Router) base(command string, def catalog.Definition) ParsedCommand {
	return ParsedCommand{
		Command:           command,
		ReportType:        def.ID,
		ReportName:        def.Name,
		ReportDescription: def.Description,
		Category:          def.Category,
		SupportsML:        def.SupportsML,
	}
}

func (r *Router) validateFormat(pc *ParsedCommand, def catalog.Definition) {
	requested := pc.Format
	resolved, changed := params.ValidateFormat(def, requested)
	pc.Format = resolved
	if changed {
		pc.FormatChanged = true
		pc.OriginalFormat = requested
	}
}
