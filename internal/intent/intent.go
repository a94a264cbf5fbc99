// Package intent classifies command text into one of a closed set of intents.
package intent

import (
	"regexp"
	"strings"

	"github.com/fekuna/omnipos-assistant-service/internal/extract"
)

type Type string

const (
	Email             Type = "EMAIL"
	AddProduct        Type = "ADD_PRODUCT"
	CreateSale        Type = "CREATE_SALE"
	ListInventory     Type = "LIST_INVENTORY"
	InventoryAnalysis Type = "INVENTORY_ANALYSIS"
	SalesAnalysis     Type = "SALES_ANALYSIS"
	EditInventory     Type = "EDIT_INVENTORY"
	Help              Type = "HELP"
)

// Types lists every intent in classification priority order.
var Types = []Type{Email, AddProduct, CreateSale, ListInventory, InventoryAnalysis, SalesAnalysis, EditInventory, Help}

func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Slug is the lowercase, dash separated form used in workflow ids.
func (t Type) Slug() string {
	return strings.ReplaceAll(strings.ToLower(string(t)), "_", "-")
}

const SlotMessage = "message"

type Intent struct {
	Type       Type
	Confidence float64
	Slots      map[string]string
}

// predicate sees the folded text and the raw text.
type predicate func(folded, raw string) bool

type rule struct {
	intent     Type
	confidence float64
	match      predicate
}

func anyWord(keywords ...string) predicate {
	patterns := make([]*regexp.Regexp, len(keywords))
	for i, kw := range keywords {
		patterns[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(extract.Fold(kw)) + `\b`)
	}
	return func(folded, _ string) bool {
		for _, p := range patterns {
			if p.MatchString(folded) {
				return true
			}
		}
		return false
	}
}

func pattern(expr string) predicate {
	re := regexp.MustCompile(expr)
	return func(folded, _ string) bool { return re.MatchString(folded) }
}

func rawContains(s string) predicate {
	return func(_, raw string) bool { return strings.Contains(raw, s) }
}

func or(ps ...predicate) predicate {
	return func(folded, raw string) bool {
		for _, p := range ps {
			if p(folded, raw) {
				return true
			}
		}
		return false
	}
}

func and(ps ...predicate) predicate {
	return func(folded, raw string) bool {
		for _, p := range ps {
			if !p(folded, raw) {
				return false
			}
		}
		return true
	}
}

func not(p predicate) predicate {
	return func(folded, raw string) bool { return !p(folded, raw) }
}

var addKeywords = anyWord("añadir", "añade", "agregar", "agrega", "crear producto", "nuevo producto", "add product", "add item", "añadir inventario", "create product", "new product")

var salesKeywords = anyWord("ventas", "ingresos", "rendimiento", "análisis de ventas", "analizar ventas", "analiza ventas", "muéstrame ventas",
	"sales", "revenue", "performance", "sales analysis", "show sales")

// rules is evaluated top to bottom; the first predicate that holds wins.
var rules = []rule{
	{
		intent:     Email,
		confidence: 0.9,
		match: and(
			anyWord("enviar", "envía", "envia", "mandar", "manda", "email", "e-mail", "correo", "informe", "reporte", "report", "send", "mail"),
			or(rawContains("@"), anyWord("correo", "mail")),
		),
	},
	{
		intent:     AddProduct,
		confidence: 0.85,
		match: or(
			addKeywords,
			pattern(`\b(?:add|anade|anadir|agregar|agrega|crear|create)\s+(?:(?:the|a|an|el|un)\s+)?(?:new\s+)?(?:product|producto)\b`),
		),
	},
	{
		intent:     CreateSale,
		confidence: 0.85,
		match: or(
			anyWord("vender", "crear venta", "nueva venta", "nueva orden", "crear orden", "sell", "create sale", "new sale", "new order", "create order"),
			pattern(`\d+\s+\w+.*\b(?:a|to|for|para)\s+(?:the\s+)?(?:cliente|customer|client)\b`),
			pattern(`\b(?:vender|sell)\s+\d+`),
		),
	},
	{
		intent:     ListInventory,
		confidence: 0.8,
		match: anyWord("ver inventario", "que elementos", "elementos hay", "qué hay en", "listar inventario", "mostrar productos",
			"list inventory", "show inventory", "list products", "show products", "what's in stock", "what is in stock", "in stock"),
	},
	{
		intent:     InventoryAnalysis,
		confidence: 0.8,
		// Any analysis word wins over the sales keywords below, so "sales analysis" lands here.
		match: anyWord("análisis de inventario", "analizar inventario", "ejecuta", "ejecutar", "analysis", "analyze", "restock", "run"),
	},
	{
		intent:     SalesAnalysis,
		confidence: 0.8,
		match:      salesKeywords,
	},
	{
		intent:     EditInventory,
		confidence: 0.75,
		match: and(
			anyWord("editar", "modificar", "actualizar", "cambiar", "edit", "modify", "update", "change"),
			anyWord("producto", "productos", "inventario", "product", "products", "inventory"),
			not(or(addKeywords, anyWord("crear", "nuevo", "create", "new"))),
		),
	},
}

const helpConfidence = 0.5

// Classify maps text to an intent. It is pure: the same text always yields the same intent.
func Classify(text string) Intent {
	folded := extract.Fold(text)
	for _, rl := range rules {
		if rl.match(folded, text) {
			return Intent{
				Type:       rl.intent,
				Confidence: rl.confidence,
				Slots:      map[string]string{SlotMessage: text},
			}
		}
	}
	return Intent{Type: Help, Confidence: helpConfidence, Slots: map[string]string{}}
}
