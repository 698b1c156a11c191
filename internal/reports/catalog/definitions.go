// internal/reports/catalog/definitions.go
package catalog

import "errors"

// ErrInvalidCatalog is wrapped by every catalog construction failure.
var ErrInvalidCatalog = errors.New("invalid report catalog")

var allFormats = []Format{FormatJSON, FormatPDF, FormatExcel}

var jsonOnly = []Format{FormatJSON}

// Definitions is the built-in sales report catalog.
var Definitions = []Definition{
	{
		ID:          VentasBasico,
		Name:        "Reporte Básico de Ventas",
		Description: "Ventas generales sin agrupación específica",
		Keywords:    []string{"ventas general", "reporte de ventas", "historial ventas"},
		Formats:     allFormats,
		Category:    CategoryBasicDynamic,
	},
	{
		ID:          VentasPorProducto,
		Name:        "Ventas por Producto",
		Description: "Ventas agrupadas por producto con estadísticas",
		Keywords:    []string{"ventas por producto", "productos vendidos", "reporte productos"},
		Formats:     allFormats,
		Category:    CategoryBasicDynamic,
		GroupBy:     GroupByProduct,
	},
	{
		ID:          VentasPorCliente,
		Name:        "Ventas por Cliente",
		Description: "Ventas agrupadas por cliente",
		Keywords:    []string{"ventas por cliente", "clientes", "mejores clientes"},
		Formats:     allFormats,
		Category:    CategoryBasicDynamic,
		GroupBy:     GroupByClient,
	},
	{
		ID:          VentasPorCategoria,
		Name:        "Ventas por Categoría",
		Description: "Ventas agrupadas por categoría de producto",
		Keywords:    []string{"ventas por categoria", "categorias"},
		Formats:     allFormats,
		Category:    CategoryBasicDynamic,
		GroupBy:     GroupByCategory,
	},
	{
		ID:          VentasPorFecha,
		Name:        "Ventas por Fecha",
		Description: "Ventas día a día",
		Keywords:    []string{"ventas por fecha", "ventas diarias", "por dia"},
		Formats:     allFormats,
		Category:    CategoryBasicDynamic,
		GroupBy:     GroupByDate,
	},
	{
		ID:          AnalisisRFM,
		Name:        "Análisis RFM de Clientes",
		Description: "Segmentación de clientes (VIP, Regular, En Riesgo, etc.)",
		Keywords:    []string{"analisis rfm", "segmentacion clientes", "rfm", "clientes vip"},
		Formats:     allFormats,
		Category:    CategoryAdvanced,
	},
	{
		ID:          AnalisisABC,
		Name:        "Análisis ABC de Productos",
		Description: "Clasificación de productos por el principio de Pareto (80/20)",
		Keywords:    []string{"analisis abc", "pareto", "clasificacion productos", "abc"},
		Formats:     allFormats,
		Category:    CategoryAdvanced,
	},
	{
		ID:          ComparativoTemporal,
		Name:        "Reporte Comparativo",
		Description: "Comparación entre dos períodos de tiempo",
		Keywords:    []string{"comparativo", "comparar periodos", "comparacion"},
		Formats:     allFormats,
		Category:    CategoryAdvanced,
	},
	{
		ID:          DashboardEjecutivo,
		Name:        "Dashboard Ejecutivo",
		Description: "KPIs principales y alertas del negocio",
		Keywords:    []string{"dashboard ejecutivo", "dashboard", "kpis", "resumen ejecutivo"},
		Formats:     jsonOnly,
		Category:    CategoryAdvanced,
	},
	{
		ID:          AnalisisInventario,
		Name:        "Análisis de Inventario",
		Description: "Estado del inventario con rotación y alertas",
		Keywords:    []string{"inventario", "stock", "analisis inventario"},
		Formats:     allFormats,
		Category:    CategoryAdvanced,
	},
	{
		ID:          PrediccionVentas,
		Name:        "Predicción de Ventas (ML)",
		Description: "Predicciones futuras de ventas usando Machine Learning",
		Keywords:    []string{"prediccion", "predicciones", "forecast", "pronostico", "ventas futuras"},
		SupportsML:  true,
		Formats:     allFormats,
		Category:    CategoryMLPredictions,
	},
	{
		ID:          PrediccionProducto,
		Name:        "Predicción por Producto (ML)",
		Description: "Predicciones de ventas para productos específicos",
		Keywords:    []string{"prediccion producto", "prediccion por producto", "forecast producto"},
		SupportsML:  true,
		Formats:     jsonOnly,
		Category:    CategoryMLProductPredictions,
	},
	{
		ID:          Recomendaciones,
		Name:        "Sistema de Recomendaciones (ML)",
		Description: "Recomendaciones personalizadas de productos",
		Keywords:    []string{"recomendaciones", "recomendar", "sugerencias"},
		SupportsML:  true,
		Formats:     jsonOnly,
		Category:    CategoryMLRecommendations,
	},
	{
		ID:          DashboardML,
		Name:        "Dashboard de Predicciones ML",
		Description: "Dashboard completo con predicciones y análisis ML",
		Keywords:    []string{"dashboard ml", "dashboard predicciones", "ml dashboard"},
		SupportsML:  true,
		Formats:     jsonOnly,
		Category:    CategoryMLDashboard,
	},
}

// Builtin returns the built-in catalog.
func Builtin() *Catalog {
	return builtin
}

var builtin = MustNew(Definitions)
