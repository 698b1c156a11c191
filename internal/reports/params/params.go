// internal/reports/params/params.go
package params

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"report-workers/internal/reports/catalog"
	"report-workers/internal/reports/dates"
)

// DefaultForecastDays is the horizon used when a prediction names none.
const DefaultForecastDays = 30

// SalesReportType tags the generic report of the basic endpoint.
const SalesReportType = "sales"

// Comparison is the baseline of a comparative report.
type Comparison string

const (
	ComparisonPreviousMonth  Comparison = "previous_month"
	ComparisonPreviousPeriod Comparison = "previous_period"
)

// Params is the parameter payload handed to the report generator.
type Params struct {
	StartDate    time.Time       `json:"start_date"`
	EndDate      time.Time       `json:"end_date"`
	PeriodText   string          `json:"period_text"`
	GroupBy      catalog.GroupBy `json:"group_by,omitempty"`
	ReportType   string          `json:"report_type,omitempty"`
	ForecastDays int             `json:"forecast_days,omitempty"`
	Comparison   Comparison      `json:"comparison,omitempty"`
}

// IsZero reports whether no parameter has been resolved.
func (p Params) IsZero() bool {
	return p == Params{}
}

// ToMap renders p as a generic map with RFC 3339 dates.
func (p Params) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"start_date":  p.StartDate.Format(time.RFC3339),
		"end_date":    p.EndDate.Format(time.RFC3339),
		"period_text": p.PeriodText,
	}
	if p.GroupBy != catalog.GroupByNone {
		m["group_by"] = string(p.GroupBy)
	}
	if p.ReportType != "" {
		m["report_type"] = p.ReportType
	}
	if p.ForecastDays > 0 {
		m["forecast_days"] = p.ForecastDays
	}
	if p.Comparison != "" {
		m["comparison"] = string(p.Comparison)
	}
	return m
}

var (
	forecastPattern   = regexp.MustCompile(`(?:prediccion|pronostico|forecast).*?(\d+)\s+(?:dias?|days?)`)
	excelWords        = []string{"excel", "xls", "xlsx"}
	screenWords       = []string{"json", "pantalla", "screen"}
	comparisonPhrases = []string{"mes anterior", "mes pasado", "previous month", "last month"}
)

// DetectFormat returns the format named in text, or fallback when none is.
// pdf takes precedence over excel, which takes precedence over json.
func DetectFormat(text string, fallback catalog.Format) catalog.Format {
	if strings.Contains(text, "pdf") {
		return catalog.FormatPDF
	}
	if containsAny(text, excelWords) {
		return catalog.FormatExcel
	}
	if containsAny(text, screenWords) {
		return catalog.FormatJSON
	}
	return fallback
}

// ValidateFormat downgrades f to the definition's preferred format when the
// report cannot render it.
func ValidateFormat(def catalog.Definition, f catalog.Format) (resolved catalog.Format, changed bool) {
	if def.SupportsFormat(f) {
		return f, false
	}
	return def.PreferredFormat(), true
}

// ApplyDates copies a resolved range into p.
func (p *Params) ApplyDates(r dates.Range) {
	p.StartDate = r.Start
	p.EndDate = r.End
	p.PeriodText = r.Label
}

// ApplyGrouping sets the group-by field and generic report type for basic
// reports and clears them for every other category.
func (p *Params) ApplyGrouping(def catalog.Definition) {
	if def.Category != catalog.CategoryBasicDynamic {
		p.GroupBy = catalog.GroupByNone
		p.ReportType = ""
		return
	}
	p.GroupBy = def.GroupBy
	p.ReportType = SalesReportType
}

// ApplyExtras resolves the forecast horizon for prediction reports and the
// comparison baseline for the comparative report.
func (p *Params) ApplyExtras(def catalog.Definition, text string) {
	p.ForecastDays = 0
	if def.SupportsML {
		p.ForecastDays = ForecastDays(text)
	}
	p.Comparison = ""
	if def.ID == catalog.ComparativoTemporal {
		p.Comparison = DetectComparison(text)
	}
}

// ForecastDays extracts "prediccion ... N dias", defaulting to 30.
func ForecastDays(text string) int {
	m := forecastPattern.FindStringSubmatch(text)
	if m == nil {
		return DefaultForecastDays
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return DefaultForecastDays
	}
	return n
}

// DetectComparison picks the comparison baseline named in text.
func DetectComparison(text string) Comparison {
	if containsAny(text, comparisonPhrases) {
		return ComparisonPreviousMonth
	}
	return ComparisonPreviousPeriod
}

// Extract builds the full parameter set for def from text and a resolved range.
func Extract(def catalog.Definition, text string, r dates.Range) Params {
	var p Params
	p.ApplyDates(r)
	p.ApplyGrouping(def)
	p.ApplyExtras(def, text)
	return p
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
