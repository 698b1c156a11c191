// internal/reports/conversation/context.go
package conversation

import (
	"strings"
	"time"

	"report-workers/internal/reports/catalog"
	"report-workers/internal/reports/dates"
	"report-workers/internal/reports/params"
)

// MaxHistory bounds the per-session history; the oldest entry is evicted first.
const MaxHistory = 10

// Entry is one recorded command.
type Entry struct {
	Command    string           `json:"command"`
	Params     params.Params    `json:"params"`
	ReportType catalog.ReportID `json:"report_type"`
	Format     catalog.Format   `json:"format"`
	Timestamp  time.Time        `json:"timestamp"`
}

// Context is the conversational memory of one session. It is Empty until the
// first Record and Primed afterwards.
type Context struct {
	SessionID      string           `json:"session_id"`
	History        []Entry          `json:"history"`
	LastCommand    string           `json:"last_command,omitempty"`
	LastParams     params.Params    `json:"last_params"`
	LastReportType catalog.ReportID `json:"last_report_type,omitempty"`
	LastFormat     catalog.Format   `json:"last_format,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	LastUpdated    time.Time        `json:"last_updated"`
}

// NewContext returns an Empty context.
func NewContext(sessionID string, now time.Time) *Context {
	return &Context{
		SessionID:   sessionID,
		History:     []Entry{},
		CreatedAt:   now,
		LastUpdated: now,
	}
}

// Primed reports whether a command has been recorded since the last Clear.
func (c *Context) Primed() bool {
	return c.LastReportType != ""
}

// Record appends a resolved command and makes it the merge snapshot.
func (c *Context) Record(command string, p params.Params, reportType catalog.ReportID, format catalog.Format, at time.Time) {
	c.History = append(c.History, Entry{
		Command:    command,
		Params:     p,
		ReportType: reportType,
		Format:     format,
		Timestamp:  at,
	})
	if over := len(c.History) - MaxHistory; over > 0 {
		c.History = append([]Entry(nil), c.History[over:]...)
	}

	c.LastCommand = command
	c.LastParams = p
	c.LastReportType = reportType
	c.LastFormat = format
	c.LastUpdated = at
}

// Clear returns the context to Empty.
func (c *Context) Clear() {
	c.History = []Entry{}
	c.LastCommand = ""
	c.LastParams = params.Params{}
	c.LastReportType = ""
	c.LastFormat = ""
}

// Clone returns a deep copy.
func (c *Context) Clone() *Context {
	out := *c
	out.History = append([]Entry(nil), c.History...)
	return &out
}

var (
	continuationMarkers = []string{"ahora", "tambien", "ademas", "y ", "now", "also", "additionally", "and "}
	formatWords         = []string{"pdf", "excel", "json"}
	domainWords         = []string{
		"reporte", "ventas", "productos", "clientes", "inventario", "dashboard",
		"report", "sales", "products", "clients",
	}
	shortGroupingPhrases = []string{
		"por producto", "por cliente", "por categoria",
		"by product", "by client", "by category",
	}
)

// IsPartial reports whether normalized text reads as a continuation of the
// previous command rather than a standalone request.
func IsPartial(text string) bool {
	for _, marker := range continuationMarkers {
		if strings.HasPrefix(text, marker) {
			return true
		}
	}
	if containsAny(text, formatWords) && !containsAny(text, domainWords) {
		return true
	}
	if containsAny(text, shortGroupingPhrases) && len(strings.Fields(text)) <= 4 {
		return true
	}
	return false
}

// MergeStrategy names how a partial command changed the previous request.
type MergeStrategy string

const (
	MergeFormat   MergeStrategy = "format"
	MergeGrouping MergeStrategy = "grouping"
	MergeDates    MergeStrategy = "dates"
)

// Merged is a previous request modified by a partial command.
type Merged struct {
	Strategy        MergeStrategy
	ReportType      catalog.ReportID
	Format          catalog.Format
	Params          params.Params
	ReparseDates    bool
	OriginalCommand string
	Modification    string
}

type groupingPhrase struct {
	phrases []string
	report  catalog.ReportID
}

var groupingChanges = []groupingPhrase{
	{phrases: []string{"por producto", "by product"}, report: catalog.VentasPorProducto},
	{phrases: []string{"por cliente", "by client"}, report: catalog.VentasPorCliente},
	{phrases: []string{"por categoria", "by category"}, report: catalog.VentasPorCategoria},
	{phrases: []string{"por fecha", "by date"}, report: catalog.VentasPorFecha},
}

// Merge applies normalized text to the last resolved request. The format,
// grouping and date strategies are tried in that order and are exclusive.
// ok is false for an Empty context or when no strategy applies.
func (c *Context) Merge(text string) (Merged, bool) {
	if !c.Primed() {
		return Merged{}, false
	}

	m := Merged{
		ReportType:      c.LastReportType,
		Format:          c.LastFormat,
		Params:          c.LastParams,
		OriginalCommand: c.LastCommand,
	}

	if containsAny(text, formatWords) {
		switch {
		case strings.Contains(text, "pdf"):
			m.Format = catalog.FormatPDF
		case strings.Contains(text, "excel"):
			m.Format = catalog.FormatExcel
		default:
			m.Format = catalog.FormatJSON
		}
		m.Strategy = MergeFormat
		m.Modification = "Format changed to " + string(m.Format)
		return m, true
	}

	for _, g := range groupingChanges {
		if containsAny(text, g.phrases) {
			m.ReportType = g.report
			m.Strategy = MergeGrouping
			m.Modification = "Grouping changed to " + string(g.report)
			return m, true
		}
	}

	if dates.MentionsMonth(text) {
		m.Params = params.Params{}
		m.ReparseDates = true
		m.Strategy = MergeDates
		m.Modification = "Dates updated"
		return m, true
	}

	return Merged{}, false
}

var suggestions = map[catalog.ReportID][]string{
	catalog.VentasBasico: {
		"Ver por producto",
		"Ver por cliente",
		"Ver por categoría",
		"Comparar con mes anterior",
	},
	catalog.VentasPorProducto: {
		"Ver top 10",
		"Ver por categoría",
		"Exportar en PDF",
	},
	catalog.VentasPorCliente: {
		"Ver top 5 clientes",
		"Análisis RFM",
		"Exportar en Excel",
	},
	catalog.ComparativoTemporal: {
		"Ver productos más vendidos",
		"Ver por categoría",
		"Análisis de tendencia",
	},
}

// Suggest returns the first next-step suggestion for the last report.
func (c *Context) Suggest() (string, bool) {
	if !c.Primed() {
		return "", false
	}
	list := suggestions[c.LastReportType]
	if len(list) == 0 {
		return "", false
	}
	return list[0], true
}

// Summary is a compact description of a session.
type Summary struct {
	SessionID      string           `json:"session_id"`
	CommandsCount  int              `json:"commands_count"`
	LastCommand    string           `json:"last_command,omitempty"`
	LastReportType catalog.ReportID `json:"last_report_type,omitempty"`
	LastFormat     catalog.Format   `json:"last_format,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	LastUpdated    time.Time        `json:"last_updated"`
}

func (c *Context) Summary() Summary {
	return Summary{
		SessionID:      c.SessionID,
		CommandsCount:  len(c.History),
		LastCommand:    c.LastCommand,
		LastReportType: c.LastReportType,
		LastFormat:     c.LastFormat,
		CreatedAt:      c.CreatedAt,
		LastUpdated:    c.LastUpdated,
	}
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
