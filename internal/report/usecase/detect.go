package usecase

import (
	"regexp"

	"github.com/fekuna/omnipos-assistant-service/internal/analysis"
	"github.com/fekuna/omnipos-assistant-service/internal/extract"
)

// Patterns run against folded text.
var (
	salesWords     = regexp.MustCompile(`\b(?:ventas|venta|sales|ingresos|revenue|rendimiento|orders|ordenes|clientes|customers)\b`)
	inventoryWords = regexp.MustCompile(`\b(?:inventario|inventory|productos|products|stock|almacen|warehouse|existencias)\b`)
)

// DetectKind picks the report a mail request asks for. Sales words win over inventory words;
// with neither, the cached analysis decides, and inventory is the last resort.
func DetectKind(text string, cached *analysis.Entry) analysis.Kind {
	folded := extract.Fold(text)
	switch {
	case salesWords.MatchString(folded):
		return analysis.KindSales
	case inventoryWords.MatchString(folded):
		return analysis.KindInventory
	case cached != nil:
		return cached.Kind
	}
	return analysis.KindInventory
}
