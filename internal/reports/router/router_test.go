// internal/reports/router/router_test.go
package router

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"report-workers/internal/reports/catalog"
	"report-workers/internal/reports/intent"
	"report-workers/internal/reports/params"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.November, 15, 14, 30, 0, 0, time.UTC)

func newTestRouter() *Router {
	return New(Options{
		Location: time.UTC,
		Now:      func() time.Time { return fixedNow },
	})
}

// ==========================
// Normalize Tests
// ==========================

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Ventas por CATEGORÍA ", "ventas por categoria"},
		{"Predicción   de ventas", "prediccion de ventas"},
		{"Avísame cuando el stock esté bajo", "avisame cuando el stock este bajo"},
		{"últimos 7 días", "ultimos 7 dias"},
		{"año", "ano"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), tt.in)
	}
}

// ==========================
// Route Tests
// ==========================

func TestRoute_ProductPDFLastSevenDays(t *testing.T) {
	pc := newTestRouter().Route("ventas por producto en pdf de los ultimos 7 dias", nil)

	assert.Equal(t, catalog.VentasPorProducto, pc.ReportType)
	assert.Equal(t, catalog.FormatPDF, pc.Format)
	assert.True(t, fixedNow.AddDate(0, 0, -7).Equal(pc.Params.StartDate))
	assert.True(t, fixedNow.Equal(pc.Params.EndDate))
	assert.Equal(t, catalog.GroupByProduct, pc.Params.GroupBy)
	assert.Equal(t, params.SalesReportType, pc.Params.ReportType)
	assert.Equal(t, 1.0, pc.Confidence)
	assert.False(t, pc.FormatChanged)
	assert.False(t, pc.ContextUsed)
}

func TestRoute_Empty(t *testing.T) {
	pc := newTestRouter().Route("", nil)

	assert.Equal(t, catalog.VentasBasico, pc.ReportType)
	assert.Equal(t, intent.DefaultConfidence, pc.Confidence)
	assert.Equal(t, catalog.FormatJSON, pc.Format)
	assert.Empty(t, pc.Alternatives)
	assert.True(t, time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC).Equal(pc.Params.StartDate))
	assert.True(t, fixedNow.Equal(pc.Params.EndDate))
	assert.Equal(t, intent.SourceDefault, pc.Source)
}

func TestRoute_NamedMonthCategory(t *testing.T) {
	pc := newTestRouter().Route("Mes de Octubre ventas por categoría", nil)

	assert.Equal(t, catalog.VentasPorCategoria, pc.ReportType)
	assert.True(t, time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC).Equal(pc.Params.StartDate))
	assert.True(t, time.Date(2024, 10, 31, 23, 59, 59, 0, time.UTC).Equal(pc.Params.EndDate))
	assert.Equal(t, catalog.GroupByCategory, pc.Params.GroupBy)
}

func TestRoute_FormatPrecedence(t *testing.T) {
	pc := newTestRouter().Route("reporte de ventas en excel y pdf", nil)
	assert.Equal(t, catalog.FormatPDF, pc.Format)
}

func TestRoute_FormatDowngrade(t *testing.T) {
	pc := newTestRouter().Route("dashboard ejecutivo en pdf", nil)

	assert.Equal(t, catalog.DashboardEjecutivo, pc.ReportType)
	assert.Equal(t, catalog.FormatJSON, pc.Format)
	assert.True(t, pc.FormatChanged)
	assert.Equal(t, catalog.FormatPDF, pc.OriginalFormat)
}

func TestRoute_MLForecast(t *testing.T) {
	pc := newTestRouter().Route("prediccion de ventas para 60 dias", nil)

	assert.Equal(t, catalog.PrediccionVentas, pc.ReportType)
	assert.True(t, pc.SupportsML)
	assert.Equal(t, 60, pc.Params.ForecastDays)
	assert.Equal(t, catalog.CategoryMLPredictions, pc.Category)
}

func TestRoute_Comparison(t *testing.T) {
	pc := newTestRouter().Route("comparativo con el mes anterior", nil)

	assert.Equal(t, catalog.ComparativoTemporal, pc.ReportType)
	assert.Equal(t, params.ComparisonPreviousMonth, pc.Params.Comparison)
}

func TestRoute_WithVote(t *testing.T) {
	pc := newTestRouter().Route("clientes rfm", &intent.Vote{Label: catalog.AnalisisRFM, Confidence: 0.9})

	assert.Equal(t, catalog.AnalisisRFM, pc.ReportType)
	assert.Equal(t, intent.SourceVote, pc.Source)
}

func TestRoute_DefaultFormatOption(t *testing.T) {
	r := New(Options{DefaultFormat: catalog.FormatExcel, Location: time.UTC})
	assert.Equal(t, catalog.FormatExcel, r.Route("reporte de ventas", nil).Format)

	r = New(Options{DefaultFormat: "docx"})
	assert.Equal(t, catalog.FormatJSON, r.Route("reporte de ventas", nil).Format)
}

func TestRoute_Concurrent(t *testing.T) {
	r := newTestRouter()
	want := r.Route("ventas por cliente en excel", nil)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, r.Route("ventas por cliente en excel", nil))
		}()
	}
	wg.Wait()
}

func TestParsedCommand_JSON(t *testing.T) {
	pc := newTestRouter().Route("ventas por producto en pdf", nil)

	raw, err := json.Marshal(pc)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "ventas_por_producto", decoded["report_type"])
	assert.Equal(t, "pdf", decoded["format"])
	p := decoded["params"].(map[string]interface{})
	assert.Equal(t, "product", p["group_by"])
	assert.NotContains(t, decoded, "original_format")
}

// ==========================
// Continue Tests
// ==========================

func TestContinue_FormatChangeKeepsParams(t *testing.T) {
	r := newTestRouter()
	prev := r.Route("ventas por producto del mes de octubre", nil)

	pc, ok := r.Continue("ahora en pdf", Continuation{
		ReportType:      prev.ReportType,
		Format:          catalog.FormatPDF,
		Params:          prev.Params,
		OriginalCommand: prev.Command,
		Modification:    "Format changed to pdf",
	})
	require.True(t, ok)

	assert.Equal(t, catalog.VentasPorProducto, pc.ReportType)
	assert.Equal(t, catalog.FormatPDF, pc.Format)
	assert.True(t, pc.ContextUsed)
	assert.Equal(t, ContextConfidence, pc.Confidence)
	assert.Equal(t, intent.SourceContext, pc.Source)
	assert.Equal(t, prev.Command, pc.OriginalCommand)
	assert.True(t, prev.Params.StartDate.Equal(pc.Params.StartDate))
}

func TestContinue_GroupingRederived(t *testing.T) {
	r := newTestRouter()
	prev := r.Route("ventas por producto", nil)

	pc, ok := r.Continue("por cliente", Continuation{
		ReportType: catalog.VentasPorCliente,
		Format:     catalog.FormatJSON,
		Params:     prev.Params,
	})
	require.True(t, ok)
	assert.Equal(t, catalog.GroupByClient, pc.Params.GroupBy)
}

func TestContinue_ReparseDates(t *testing.T) {
	r := newTestRouter()

	pc, ok := r.Continue("y de marzo", Continuation{
		ReportType:   catalog.VentasPorCategoria,
		Format:       catalog.FormatExcel,
		ReparseDates: true,
	})
	require.True(t, ok)
	assert.True(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).Equal(pc.Params.StartDate))
	assert.Equal(t, catalog.GroupByCategory, pc.Params.GroupBy)
	assert.Equal(t, catalog.FormatExcel, pc.Format)
}

func TestContinue_FormatValidated(t *testing.T) {
	r := newTestRouter()
	prev := r.Route("recomendaciones", nil)

	pc, ok := r.Continue("en excel", Continuation{
		ReportType: prev.ReportType,
		Format:     catalog.FormatExcel,
		Params:     prev.Params,
	})
	require.True(t, ok)
	assert.Equal(t, catalog.FormatJSON, pc.Format)
	assert.True(t, pc.FormatChanged)
	assert.Equal(t, catalog.FormatExcel, pc.OriginalFormat)
	assert.Equal(t, params.DefaultForecastDays, pc.Params.ForecastDays)
}

func TestContinue_UnknownReport(t *testing.T) {
	_, ok := newTestRouter().Continue("x", Continuation{ReportType: "desconocido"})
	assert.False(t, ok)
}
