// internal/reports/alerts/detect.go
package alerts

import (
	"regexp"
	"strconv"
	"strings"
)

type AlertType string

const (
	TypeScheduled AlertType = "scheduled"
	TypeCondition AlertType = "condition"
)

type Frequency string

const (
	FrequencyDaily       Frequency = "daily"
	FrequencyWeekly      Frequency = "weekly"
	FrequencyMonthly     Frequency = "monthly"
	FrequencyOnCondition Frequency = "on_condition"
)

type ConditionType string

const (
	ConditionStockLow      ConditionType = "stock_low"
	ConditionSalesDrop     ConditionType = "sales_drop"
	ConditionInventoryZero ConditionType = "inventory_zero"
)

const (
	DefaultHour         = 9
	DefaultStockLow     = 10
	DefaultSalesDropPct = 20
	DefaultDayOfMonth   = 1
	DefaultDayOfWeek    = 0
)

// Condition is evaluated against live data by the reporting collaborator.
type Condition struct {
	Type       ConditionType `json:"type"`
	Threshold  int           `json:"threshold,omitempty"`
	Percentage int           `json:"percentage,omitempty"`
}

// Schedule fixes when a scheduled alert fires. DayOfWeek counts from
// Monday=0; it is set for weekly alerts only, DayOfMonth for monthly ones.
type Schedule struct {
	Hour       int  `json:"hour"`
	Minute     int  `json:"minute"`
	DayOfWeek  *int `json:"day_of_week,omitempty"`
	DayOfMonth *int `json:"day_of_month,omitempty"`
}

// Detection is what Detect recognized in an alert command.
type Detection struct {
	Type        AlertType
	Frequency   Frequency
	Condition   *Condition
	Schedule    *Schedule
	BaseCommand string
}

var (
	triggerPhrases = []string{
		"avisame", "avisa", "notificame", "notifica", "alertame", "alerta",
		"cada dia", "cada semana", "cada mes", "cada lunes", "cada martes",
		"diario", "semanal", "mensual",
		"todos los dias", "todas las semanas", "todos los meses",
		"cuando", "en caso de",
	}
	conditionPhrases = []string{"avisame cuando", "notificame cuando", "alertame cuando"}

	stockLowPhrases      = []string{"stock bajo", "bajo stock", "stock este bajo"}
	salesDropPhrases     = []string{"ventas caen", "ventas bajen", "caida de ventas"}
	inventoryZeroPhrases = []string{"sin stock", "inventario cero"}

	dailyPhrases   = []string{"cada dia", "diario", "todos los dias"}
	weeklyPhrases  = []string{"cada semana", "semanal", "todas las semanas"}
	monthlyPhrases = []string{"cada mes", "mensual", "todos los meses"}

	weekdays = []string{"lunes", "martes", "miercoles", "jueves", "viernes", "sabado", "domingo"}

	strippedWords = map[string]bool{
		"avisame": true, "avisa": true, "notificame": true, "notifica": true,
		"alertame": true, "alerta": true, "cuando": true, "si": true,
		"cada": true, "enviame": true, "manda": true,
	}

	thresholdPattern  = regexp.MustCompile(`(?:menor|menos|bajo)\s+(?:de|a|que)\s+(\d+)`)
	percentagePattern = regexp.MustCompile(`(\d+)\s*%`)
	hourPattern       = regexp.MustCompile(`\b(\d{1,2})\s*(am|pm|hs|horas)\b`)
	dayOfMonthPattern = regexp.MustCompile(`dia\s+(\d{1,2})`)
)

// Detect recognizes alert and schedule requests in normalized text. ok is
// false when the text has no alert wording, or when neither a condition nor a
// frequency can be determined from it.
func Detect(text string, defaultHour int) (Detection, bool) {
	if !containsAny(text, triggerPhrases) && !mentionsWeekdaySchedule(text) {
		return Detection{}, false
	}
	if defaultHour < 0 || defaultHour > 23 {
		defaultHour = DefaultHour
	}

	var d Detection
	switch {
	case containsAny(text, conditionPhrases):
		cond, ok := detectCondition(text)
		if !ok {
			return Detection{}, false
		}
		d.Type = TypeCondition
		d.Frequency = FrequencyOnCondition
		d.Condition = cond

	default:
		freq, sched, ok := detectSchedule(text, defaultHour)
		if !ok {
			return Detection{}, false
		}
		d.Type = TypeScheduled
		d.Frequency = freq
		d.Schedule = sched
	}

	d.BaseCommand = baseCommand(text)
	return d, true
}

func detectCondition(text string) (*Condition, bool) {
	switch {
	case containsAny(text, stockLowPhrases):
		return &Condition{
			Type:      ConditionStockLow,
			Threshold: firstInt(thresholdPattern, text, DefaultStockLow),
		}, true
	case containsAny(text, salesDropPhrases):
		return &Condition{
			Type:       ConditionSalesDrop,
			Percentage: firstInt(percentagePattern, text, DefaultSalesDropPct),
		}, true
	case containsAny(text, inventoryZeroPhrases):
		return &Condition{Type: ConditionInventoryZero}, true
	}
	return nil, false
}

func detectSchedule(text string, defaultHour int) (Frequency, *Schedule, bool) {
	sched := &Schedule{Hour: parseHour(text, defaultHour)}

	switch {
	case containsAny(text, dailyPhrases):
		return FrequencyDaily, sched, true

	case containsAny(text, weeklyPhrases) || mentionsWeekdaySchedule(text):
		dow := DefaultDayOfWeek
		for i, day := range weekdays {
			if strings.Contains(text, day) {
				dow = i
				break
			}
		}
		sched.DayOfWeek = &dow
		return FrequencyWeekly, sched, true

	case containsAny(text, monthlyPhrases):
		dom := firstInt(dayOfMonthPattern, text, DefaultDayOfMonth)
		sched.DayOfMonth = &dom
		return FrequencyMonthly, sched, true
	}
	return "", nil, false
}

// parseHour reads "8 am", "3pm", "18 hs" or "18 horas". pm adds twelve hours
// and 12am is midnight.
func parseHour(text string, fallback int) int {
	m := hourPattern.FindStringSubmatch(text)
	if m == nil {
		return fallback
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return fallback
	}

	switch m[2] {
	case "am":
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour < 12 {
			hour += 12
		}
	}
	if hour > 23 {
		return fallback
	}
	return hour
}

func mentionsWeekdaySchedule(text string) bool {
	for _, day := range weekdays {
		if strings.Contains(text, "cada "+day) {
			return true
		}
	}
	return false
}

// baseCommand drops the alert wording, keeping the report request.
func baseCommand(text string) string {
	words := strings.Fields(text)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if !strippedWords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

func firstInt(re *regexp.Regexp, text string, fallback int) int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return fallback
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return fallback
	}
	return n
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
