// internal/reports/dates/dates.go
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Strategy names the rule that resolved a Range.
type Strategy string

const (
	StrategyRelative      Strategy = "relative"
	StrategyExplicitRange Strategy = "explicit_range"
	StrategyNamedMonth    Strategy = "named_month"
	StrategyPreviousMonth Strategy = "previous_month"
	StrategyCurrentMonth  Strategy = "current_month"
)

// Range is a resolved reporting period.
type Range struct {
	Start    time.Time
	End      time.Time
	Label    string
	Strategy Strategy
}

// Months lists the Spanish month names in calendar order.
var Months = []string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var (
	relativePattern = regexp.MustCompile(`(?:ultimos?|pasados?|last|past)\s+(\d+)\s+(?:dias?|days?)`)
	rangePattern    = regexp.MustCompile(`(?:del?|from)\s+(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\s+(?:al?|to)\s+(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`)
	dateLayouts     = []string{"2/1/2006", "2/1/06"}
	previousMonth   = []string{"ultimo mes", "mes pasado", "last month"}
)

// Extractor resolves the reporting period named in a command. It holds no
// mutable state and is safe for concurrent use.
type Extractor struct {
	loc *time.Location
	now func() time.Time
}

// NewExtractor returns an extractor reporting in loc. A nil now uses time.Now.
func NewExtractor(loc *time.Location, now func() time.Time) *Extractor {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Extractor{loc: loc, now: now}
}

// Location is the reporting time zone.
func (e *Extractor) Location() *time.Location {
	return e.loc
}

// Extract applies the strategies in priority order; the first match wins.
// text must already be normalized.
func (e *Extractor) Extract(text string) Range {
	now := e.now().In(e.loc)

	if r, ok := e.relative(text, now); ok {
		return r
	}
	if r, ok := e.explicitRange(text); ok {
		return r
	}
	if r, ok := e.namedMonth(text, now); ok {
		return r
	}
	for _, phrase := range previousMonth {
		if strings.Contains(text, phrase) {
			return e.previousMonth(now)
		}
	}
	return Range{
		Start:    e.monthStart(now.Year(), now.Month()),
		End:      now,
		Label:    "Current month",
		Strategy: StrategyCurrentMonth,
	}
}

func (e *Extractor) relative(text string, now time.Time) (Range, bool) {
	m := relativePattern.FindStringSubmatch(text)
	if m == nil {
		return Range{}, false
	}
	days, err := strconv.Atoi(m[1])
	if err != nil {
		return Range{}, false
	}
	return Range{
		Start:    now.AddDate(0, 0, -days),
		End:      now,
		Label:    fmt.Sprintf("Last %d days", days),
		Strategy: StrategyRelative,
	}, true
}

// explicitRange falls through when either date is malformed.
func (e *Extractor) explicitRange(text string) (Range, bool) {
	m := rangePattern.FindStringSubmatch(text)
	if m == nil {
		return Range{}, false
	}
	from := strings.ReplaceAll(m[1], "-", "/")
	to := strings.ReplaceAll(m[2], "-", "/")

	start, ok := e.parseDate(from)
	if !ok {
		return Range{}, false
	}
	end, ok := e.parseDate(to)
	if !ok {
		return Range{}, false
	}

	return Range{
		Start:    start,
		End:      time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, e.loc),
		Label:    fmt.Sprintf("%s to %s", from, to),
		Strategy: StrategyExplicitRange,
	}, true
}

func (e *Extractor) parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, e.loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (e *Extractor) namedMonth(text string, now time.Time) (Range, bool) {
	for i, name := range Months {
		if !strings.Contains(text, "de "+name) && !strings.Contains(text, "of "+name) {
			continue
		}
		month := time.Month(i + 1)
		start := e.monthStart(now.Year(), month)
		return Range{
			Start:    start,
			End:      start.AddDate(0, 1, 0).Add(-time.Second),
			Label:    "Month of " + month.String(),
			Strategy: StrategyNamedMonth,
		}, true
	}
	return Range{}, false
}

func (e *Extractor) previousMonth(now time.Time) Range {
	end := e.monthStart(now.Year(), now.Month()).Add(-time.Second)
	return Range{
		Start:    e.monthStart(end.Year(), end.Month()),
		End:      end,
		Label:    "Previous month",
		Strategy: StrategyPreviousMonth,
	}
}

func (e *Extractor) monthStart(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, e.loc)
}

// MentionsMonth reports whether text names a Spanish month.
func MentionsMonth(text string) bool {
	for _, name := range Months {
		if strings.Contains(text, name) {
			return true
		}
	}
	return false
}
