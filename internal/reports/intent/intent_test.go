// internal/reports/intent/intent_test.go
package intent

import (
	"testing"

	"report-workers/internal/reports/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClassifier() *Classifier {
	return NewClassifier(catalog.Builtin())
}

func TestClassify_Keywords(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		want       catalog.ReportID
		confidence float64
	}{
		{
			name:       "three word phrase",
			text:       "ventas por producto en pdf",
			want:       catalog.VentasPorProducto,
			confidence: 1.0,
		},
		{
			name:       "single word phrase",
			text:       "quiero ver el inventario",
			want:       catalog.AnalisisInventario,
			confidence: 1.0 / 3.0,
		},
		{
			name:       "two word phrase",
			text:       "analisis abc",
			want:       catalog.AnalisisABC,
			confidence: 1.0,
		},
		{
			name:       "longer phrases outweigh",
			text:       "prediccion por producto",
			want:       catalog.PrediccionProducto,
			confidence: 1.0,
		},
	}

	c := newTestClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := c.Classify(tt.text, nil)
			assert.Equal(t, tt.want, r.Definition.ID)
			assert.InDelta(t, tt.confidence, r.Confidence, 1e-9)
			assert.Equal(t, SourceKeyword, r.Source)
		})
	}
}

func TestClassify_Default(t *testing.T) {
	c := newTestClassifier()

	for _, text := range []string{"", "hola que tal", "mes de octubre"} {
		r := c.Classify(text, nil)
		assert.Equal(t, catalog.VentasBasico, r.Definition.ID, text)
		assert.Equal(t, DefaultConfidence, r.Confidence)
		assert.Empty(t, r.Alternatives)
		assert.NotNil(t, r.Alternatives)
		assert.Equal(t, SourceDefault, r.Source)
	}
}

func TestClassify_TieGoesToCatalogOrder(t *testing.T) {
	// "clientes" scores 1 for ventas_por_cliente, "rfm" scores 1 for analisis_rfm.
	r := newTestClassifier().Classify("clientes rfm", nil)
	assert.Equal(t, catalog.VentasPorCliente, r.Definition.ID)
	require.Len(t, r.Alternatives, 1)
	assert.Equal(t, catalog.AnalisisRFM, r.Alternatives[0].Type)
}

func TestClassify_Alternatives(t *testing.T) {
	// ventas_por_producto scores 3; analisis_abc, analisis_inventario and
	// prediccion_ventas score 1 each.
	r := newTestClassifier().Classify("ventas por producto prediccion inventario abc", nil)
	assert.Equal(t, catalog.VentasPorProducto, r.Definition.ID)
	require.Len(t, r.Alternatives, 3)
	for _, alt := range r.Alternatives {
		assert.NotEqual(t, catalog.VentasPorProducto, alt.Type)
		assert.Equal(t, 1, alt.Score)
	}
	// stable order among equal scores follows the catalog
	assert.Equal(t, catalog.AnalisisABC, r.Alternatives[0].Type)
	assert.Equal(t, catalog.AnalisisInventario, r.Alternatives[1].Type)
	assert.Equal(t, catalog.PrediccionVentas, r.Alternatives[2].Type)
}

func TestClassify_Votes(t *testing.T) {
	c := newTestClassifier()

	t.Run("strong vote overrides keyword tie", func(t *testing.T) {
		r := c.Classify("clientes rfm", &Vote{Label: catalog.AnalisisRFM, Confidence: 0.9})
		assert.Equal(t, catalog.AnalisisRFM, r.Definition.ID)
		assert.Equal(t, 1.0, r.Confidence)
		assert.Equal(t, SourceVote, r.Source)
	})

	t.Run("weak vote nudges", func(t *testing.T) {
		r := c.Classify("clientes rfm", &Vote{Label: catalog.AnalisisRFM, Confidence: 0.5})
		assert.Equal(t, catalog.AnalisisRFM, r.Definition.ID)
		// keyword confidence is min(4/3, 1)
		assert.Equal(t, 1.0, r.Confidence)
	})

	t.Run("weak vote loses to strong keywords", func(t *testing.T) {
		r := c.Classify("ventas por producto y categorias y dashboard", &Vote{Label: catalog.DashboardEjecutivo, Confidence: 0.4})
		// dashboard: 1 + 3 = 4, ventas_por_producto: 3
		assert.Equal(t, catalog.DashboardEjecutivo, r.Definition.ID)

		r = c.Classify("ventas por producto productos vendidos", &Vote{Label: catalog.DashboardEjecutivo, Confidence: 0.4})
		// ventas_por_producto: 5, dashboard: 3
		assert.Equal(t, catalog.VentasPorProducto, r.Definition.ID)
		assert.Equal(t, SourceKeyword, r.Source)
	})

	t.Run("vote raises but never lowers confidence", func(t *testing.T) {
		r := c.Classify("inventario", &Vote{Label: catalog.AnalisisInventario, Confidence: 0.2})
		// keyword 1 + weak bonus 3 = 4 -> capped at 1
		assert.Equal(t, 1.0, r.Confidence)
	})

	t.Run("vote alone picks an entry", func(t *testing.T) {
		r := c.Classify("algo raro", &Vote{Label: catalog.Recomendaciones, Confidence: 0.8})
		assert.Equal(t, catalog.Recomendaciones, r.Definition.ID)
		assert.Equal(t, 1.0, r.Confidence)
		assert.Empty(t, r.Alternatives)
	})

	t.Run("vote for unknown label is ignored", func(t *testing.T) {
		r := c.Classify("algo raro", &Vote{Label: "nope", Confidence: 0.99})
		assert.Equal(t, catalog.VentasBasico, r.Definition.ID)
		assert.Equal(t, DefaultConfidence, r.Confidence)
	})

	t.Run("alternatives exclude vote bonus", func(t *testing.T) {
		r := c.Classify("clientes rfm", &Vote{Label: catalog.AnalisisRFM, Confidence: 0.9})
		require.Len(t, r.Alternatives, 1)
		assert.Equal(t, catalog.VentasPorCliente, r.Alternatives[0].Type)
		assert.Equal(t, 1, r.Alternatives[0].Score)
	})
}

func TestScore(t *testing.T) {
	d, ok := catalog.Builtin().Lookup(catalog.PrediccionVentas)
	require.True(t, ok)
	assert.Equal(t, 0, Score(d, "nada"))
	// "prediccion" and "predicciones" both match
	assert.Equal(t, 2, Score(d, "predicciones"))
}
