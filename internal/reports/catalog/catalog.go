// internal/reports/catalog/catalog.go
package catalog

import (
	"fmt"
)

// ReportID identifies one report intent.
type ReportID string

const (
	VentasBasico        ReportID = "ventas_basico"
	VentasPorProducto   ReportID = "ventas_por_producto"
	VentasPorCliente    ReportID = "ventas_por_cliente"
	VentasPorCategoria  ReportID = "ventas_por_categoria"
	VentasPorFecha      ReportID = "ventas_por_fecha"
	AnalisisRFM         ReportID = "analisis_rfm"
	AnalisisABC         ReportID = "analisis_abc"
	ComparativoTemporal ReportID = "comparativo_temporal"
	DashboardEjecutivo  ReportID = "dashboard_ejecutivo"
	AnalisisInventario  ReportID = "analisis_inventario"
	PrediccionVentas    ReportID = "prediccion_ventas"
	PrediccionProducto  ReportID = "prediccion_producto"
	Recomendaciones     ReportID = "recomendaciones"
	DashboardML         ReportID = "dashboard_ml"
)

// Valid reports whether id names one of the built-in reports.
func (id ReportID) Valid() bool {
	switch id {
	case VentasBasico, VentasPorProducto, VentasPorCliente, VentasPorCategoria,
		VentasPorFecha, AnalisisRFM, AnalisisABC, ComparativoTemporal,
		DashboardEjecutivo, AnalisisInventario, PrediccionVentas,
		PrediccionProducto, Recomendaciones, DashboardML:
		return true
	}
	return false
}

// Format is an output format for a rendered report.
type Format string

const (
	FormatJSON  Format = "json"
	FormatPDF   Format = "pdf"
	FormatExcel Format = "excel"
)

// Valid reports whether f is one of the known formats.
func (f Format) Valid() bool {
	switch f {
	case FormatJSON, FormatPDF, FormatExcel:
		return true
	}
	return false
}

// Category decides which downstream endpoint renders a report.
type Category string

const (
	CategoryBasicDynamic         Category = "basic_dynamic"
	CategoryAdvanced             Category = "advanced"
	CategoryMLPredictions        Category = "ml_predictions"
	CategoryMLProductPredictions Category = "ml_product"
	CategoryMLRecommendations    Category = "ml_recommendations"
	CategoryMLDashboard          Category = "ml_dashboard"
)

// GroupBy is the aggregation field of a basic sales report.
type GroupBy string

const (
	GroupByNone     GroupBy = ""
	GroupByProduct  GroupBy = "product"
	GroupByClient   GroupBy = "client"
	GroupByCategory GroupBy = "category"
	GroupByDate     GroupBy = "date"
)

// Definition describes one report intent. Keywords are matched against
// normalized text, so they are lower-case and free of diacritics.
type Definition struct {
	ID          ReportID `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	SupportsML  bool     `json:"supportsMl"`
	Formats     []Format `json:"formats"`
	Category    Category `json:"category"`
	GroupBy     GroupBy  `json:"groupBy,omitempty"`
}

// SupportsFormat reports whether f is one of the definition's formats.
func (d Definition) SupportsFormat(f Format) bool {
	for _, candidate := range d.Formats {
		if candidate == f {
			return true
		}
	}
	return false
}

// PreferredFormat is the first supported format.
func (d Definition) PreferredFormat() Format {
	if len(d.Formats) == 0 {
		return FormatJSON
	}
	return d.Formats[0]
}

// Catalog is an ordered, immutable set of report definitions. Declaration
// order is the classifier's tie-break order.
type Catalog struct {
	defs      []Definition
	index     map[ReportID]int
	defaultID ReportID
}

// New builds a catalog. The first definition is the default report. Duplicate
// or empty ids are rejected.
func New(defs []Definition) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("%w: no report definitions", ErrInvalidCatalog)
	}

	c := &Catalog{
		defs:      make([]Definition, len(defs)),
		index:     make(map[ReportID]int, len(defs)),
		defaultID: defs[0].ID,
	}

	for i, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("%w: definition %d has no id", ErrInvalidCatalog, i)
		}
		if _, dup := c.index[d.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate report id %q", ErrInvalidCatalog, d.ID)
		}
		if len(d.Formats) == 0 {
			return nil, fmt.Errorf("%w: report %q has no formats", ErrInvalidCatalog, d.ID)
		}
		for _, f := range d.Formats {
			if !f.Valid() {
				return nil, fmt.Errorf("%w: report %q has unknown format %q", ErrInvalidCatalog, d.ID, f)
			}
		}

		d.Keywords = append([]string(nil), d.Keywords...)
		d.Formats = append([]Format(nil), d.Formats...)
		c.defs[i] = d
		c.index[d.ID] = i
	}

	return c, nil
}

// MustNew is New for package-level catalogs; it panics on an invalid catalog.
func MustNew(defs []Definition) *Catalog {
	c, err := New(defs)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the definition for id.
func (c *Catalog) Lookup(id ReportID) (Definition, bool) {
	i, ok := c.index[id]
	if !ok {
		return Definition{}, false
	}
	return c.defs[i], true
}

// All returns the definitions in declaration order.
func (c *Catalog) All() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Default is the report used when nothing matches.
func (c *Catalog) Default() Definition {
	return c.defs[c.index[c.defaultID]]
}

// ByCategory returns the definitions of one category in declaration order.
func (c *Catalog) ByCategory(cat Category) []Definition {
	var out []Definition
	for _, d := range c.defs {
		if d.Category == cat {
			out = append(out, d)
		}
	}
	return out
}

// MLReports returns the definitions backed by a prediction model.
func (c *Catalog) MLReports() []Definition {
	var out []Definition
	for _, d := range c.defs {
		if d.SupportsML {
			out = append(out, d)
		}
	}
	return out
}

// ForGroupBy returns the basic report that aggregates by g.
func (c *Catalog) ForGroupBy(g GroupBy) (Definition, bool) {
	if g == GroupByNone {
		return Definition{}, false
	}
	for _, d := range c.defs {
		if d.Category == CategoryBasicDynamic && d.GroupBy == g {
			return d, true
		}
	}
	return Definition{}, false
}

// Len is the number of definitions.
func (c *Catalog) Len() int {
	return len(c.defs)
}
