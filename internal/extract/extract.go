// Package extract pulls typed parameters out of free-form command text.
//
// Every field owns an ordered list of rules. The first rule whose pattern
// matches and yields a non-empty capture wins; when none does the field is
// absent, which callers resolve themselves.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type Field string

const (
	Name        Field = "name"
	Price       Field = "price"
	Quantity    Field = "quantity"
	Category    Field = "category"
	Description Field = "description"
	SKU         Field = "sku"
	MinStock    Field = "min_stock"
	MaxStock    Field = "max_stock"
	Location    Field = "location"
	Customer    Field = "customer"
	Payment     Field = "payment"
	Email       Field = "email"
	ProductID   Field = "product_id"
	Target      Field = "target"   // product named by an edit command
	NewName     Field = "new_name" // rename requested by an edit command
)

type rule struct {
	re    *regexp.Regexp
	clean func(string) string
}

func r(pattern string) rule {
	return rule{re: regexp.MustCompile(pattern)}
}

func rc(pattern string, clean func(string) string) rule {
	return rule{re: regexp.MustCompile(pattern), clean: clean}
}

const addVerbs = `(?:add|create|register|añad[ea]|añadir|anad[ea]|anadir|agreg[ae]|agregar|crear?)`

var (
	nameTail  = regexp.MustCompile(`(?i)\s+(?:with|and|at|priced|price|costing|qty|quantity|stock|sku|category|description|units?|con|y|precio|valor|cuesta|cantidad|categor[ií]a|tipo|descripci[oó]n|unidades?)\b.*$`)
	moneyTail = regexp.MustCompile(`\s*\$.*$`)
	countTail = regexp.MustCompile(`(?i)\s+\d+\s*(?:units?|unidades?|pcs)\b.*$`)
	editHead  = regexp.MustCompile(`(?i)^(?:the\s+|el\s+|la\s+)?(?:(?:price|precio|quantity|qty|cantidad|stock|inventory|inventario|category|categor[ií]a|description|descripci[oó]n)\s+(?:of|for|de|del)\s+)?(?:product\s+|producto\s+)?`)
)

func cleanName(v string) string {
	v = nameTail.ReplaceAllString(v, "")
	v = moneyTail.ReplaceAllString(v, "")
	v = countTail.ReplaceAllString(v, "")
	return strings.Trim(v, " \t\"'“”.,;:")
}

func cleanTarget(v string) string {
	v = editHead.ReplaceAllString(strings.TrimSpace(v), "")
	v = cleanName(v)
	switch Fold(v) {
	case "", "the", "el", "la", "product", "producto", "inventory", "inventario", "id", "stock":
		return ""
	}
	if _, err := strconv.Atoi(v); err == nil {
		return ""
	}
	if strings.HasPrefix(Fold(v), "id ") || strings.HasPrefix(v, "#") {
		return ""
	}
	return v
}

func cleanPhrase(v string) string {
	v = nameTail.ReplaceAllString(v, "")
	return strings.Trim(v, " \t\"'“”.,;:")
}

func cleanAmount(v string) string {
	return strings.ReplaceAll(v, ",", "")
}

const amount = `(\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d+(?:\.\d{1,2})?)`

var rules = map[Field][]rule{
	Name: {
		r(`(?i)\b(?:product|producto|name|nombre)\b\s*[:=]?\s*["“']([^"”']+)["”']`),
		rc(`(?i)\b`+addVerbs+`\s+(?:(?:a|an|the|un|una|el|la)\s+)?(?:new\s+|nuevo\s+|nueva\s+)?(?:product|producto|item|art[ií]culo)\b\s*:?\s*([^,\n]+)`, cleanName),
		rc(`(?i)\b(?:name|nombre)\b\s*[:=]?\s*([^,\n]+)`, cleanName),
		rc(`(?i)\b(?:product|producto)\b\s*:?\s*([^,\n]+)`, cleanName),
		rc(`(?i)\b`+addVerbs+`\s+([^,\d\s][^,\n]*?)\s+(?:with|con|at|priced|for|por)\b`, cleanName),
	},
	Price: {
		rc(`(?i)\b(?:price|precio)\b\s*(?:is\s+|es\s+|to\s+|a\s+|of\s+|de\s+)?[:=]?\s*\$?\s*`+amount, cleanAmount),
		rc(`(?i)\b(?:valor|value|cuesta|costs?|costing|priced\s+at|priced)\b\s*(?:de\s+|of\s+|at\s+)?[:=]?\s*\$?\s*`+amount, cleanAmount),
		rc(`(?i)\b(?:con|with)\s+(?:valor|precio|price)\s+(?:de\s+|of\s+)?\$?\s*`+amount, cleanAmount),
		rc(`\$\s*`+amount, cleanAmount),
	},
	Quantity: {
		r(`(?i)\b(?:quantity|qty|cantidad|stock|inventory|inventario)\s+(?:of|for|de|del)\s+.+?\s+(?:to|a)\s+(\d+)\b`),
		r(`(?i)\b(?:quantity|qty|cantidad)\b\s*(?:to\s+|a\s+|of\s+|de\s+)?[:=]?\s*(\d+)`),
		r(`(?i)\b(\d+)\s*(?:units?|unidades?|pcs|pieces|piezas)\b`),
		r(`(?i)\b(?:stock|inventory|inventario)\b\s*(?:to\s+|a\s+|of\s+|de\s+)?[:=]?\s*(\d+)`),
	},
	Category: {
		rc(`(?i)\b(?:category|categor[ií]a)\b\s*(?:to\s+|a\s+)?[:=]?\s*([^,\n]+)`, cleanPhrase),
		rc(`(?i)\b(?:type|tipo)\b\s*[:=]?\s*([^,\n]+)`, cleanPhrase),
		rc(`(?i)\bes\s+(?:un|una)\s+([^,\n]+)`, cleanPhrase),
	},
	Description: {
		r(`(?i)\b(?:description|descripci[oó]n)\b\s*(?:to\s+|a\s+)?[:=]?\s*["“]([^"”]+)["”]`),
		r(`(?i)\b(?:description|descripci[oó]n)\b\s*(?:to\s+|a\s+)?[:=]?\s*([^,\n]+)`),
		r(`(?i)\bdescribed?\b\s*(?:as\s+|como\s+)?[:=]?\s*([^,\n]+)`),
	},
	SKU: {
		r(`(?i)\bsku\b\s*[:#=]?\s*([A-Za-z0-9][A-Za-z0-9_-]*)`),
		r(`(?i)\b(?:code|c[oó]digo)\b\s*[:#=]?\s*([A-Za-z0-9][A-Za-z0-9_-]*)`),
	},
	MinStock: {
		r(`(?i)\b(?:min(?:imum)?(?:\s+stock)?|stock\s+m[ií]nimo|m[ií]nimo)\b\s*(?:to\s+|a\s+|of\s+|de\s+)?[:=]?\s*(\d+)`),
	},
	MaxStock: {
		r(`(?i)\b(?:max(?:imum)?(?:\s+stock)?|stock\s+m[aá]ximo|m[aá]ximo)\b\s*(?:to\s+|a\s+|of\s+|de\s+)?[:=]?\s*(\d+)`),
	},
	Location: {
		rc(`(?i)\b(?:location|ubicaci[oó]n|warehouse|almac[eé]n)\b\s*[:=]\s*([^,\n]+)`, cleanPhrase),
	},
	Customer: {
		r(`(?i)\b(?:customer|client|cliente)\s+id\s*[:#=]?\s*(\d+)`),
		r(`(?i)\b(?:to|for|a|para)\s+(?:the\s+)?(?:customer|client|cliente)\s*:?\s+([^,\n]+?)(?:\s*,|\s*\.?$|\s+(?:with|paying|payment|pago|con|using|via)\b)`),
		r(`(?i)\b(?:customer|client|cliente)\s*:?\s+([^,\n]+?)(?:\s*,|\s*\.?$|\s+(?:with|paying|payment|pago|con|using|via)\b)`),
	},
	Payment: {
		rc(`(?i)\b(?:payment(?:\s+method)?|paying|pay|pago|m[eé]todo(?:\s+de\s+pago)?)\b\s*[:=]?\s*(?:by\s+|with\s+|in\s+|con\s+|en\s+|por\s+)?([^,\n]+)`, cleanPhrase),
		rc(`(?i)\b(?:in|by|con|en)\s+(cash|efectivo|card|tarjeta|transfer|transferencia)\b`, cleanPhrase),
	},
	Email: {
		r(`\b([A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,})\b`),
	},
	ProductID: {
		r(`(?i)\b(?:product|producto)\s+id\s*[:#=]?\s*(\d+)`),
		r(`(?i)\bid\s*[:#=]?\s*(\d+)`),
		r(`(?i)\b(?:product|producto)\s*#?\s*(\d+)(?:\s|,|$)`),
	},
	Target: {
		rc(`(?i)\b(?:price|precio|quantity|qty|cantidad|stock|inventory|inventario|category|categor[ií]a|description|descripci[oó]n)\s+(?:of|for|de|del)\s+(?:the\s+|el\s+|la\s+)?(?:product\s+|producto\s+)?(.+?)(?:\s+to\b|\s+a\b|\s*,|\s*$)`, cleanTarget),
		rc(`(?i)\b(?:update|actualizar|actualiza)\s+(.+?)(?:\s+to\b|\s+a\b|\s+(?:price|precio|qty|quantity|cantidad|stock|category|categor[ií]a|description|descripci[oó]n|name|nombre|set|with|con)\b|\s*,|\s*$)`, cleanTarget),
		rc(`(?i)\b(?:edit|editar|edita|modify|modificar|modifica|change|cambiar|cambia|set)\s+(.+?)(?:\s+to\b|\s+a\b|\s+(?:price|precio|qty|quantity|cantidad|stock|category|categor[ií]a|description|descripci[oó]n|name|nombre|set|with|con)\b|\s*,|\s*$)`, cleanTarget),
		rc(`(?i)\b(?:product|producto)\s*:?\s+([^,\n]+?)(?:\s+to\b|\s+a\b|\s*,|\s*$)`, cleanTarget),
	},
	NewName: {
		r(`(?i)\b(?:rename(?:d)?\s+(?:it\s+)?to|renombrar\s+a|new\s+name|nuevo\s+nombre)\b\s*[:=]?\s*["“']?([^,"”'\n]+)`),
		r(`(?i)\b(?:name|nombre)\s*[:=]\s*["“']?([^,"”'\n]+)`),
	},
}

// Text returns the trimmed capture of the first matching rule for f.
func Text(f Field, text string) (string, bool) {
	for _, rl := range rules[f] {
		m := rl.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v := strings.TrimSpace(m[1])
		if rl.clean != nil {
			v = rl.clean(v)
		}
		v = strings.TrimRight(v, ".;:!?")
		if v == "" {
			continue
		}
		return v, true
	}
	return "", false
}

func Decimal(f Field, text string) (decimal.Decimal, bool) {
	v, ok := Text(f, text)
	if !ok {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func Int(f Field, text string) (int, bool) {
	v, ok := Text(f, text)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ID parses an int64 reference such as a product or customer id.
func ID(f Field, text string) (int64, bool) {
	v, ok := Text(f, text)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
