package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Item is one requested order line: a product reference and a quantity.
type Item struct {
	Product  string
	Quantity int
}

const lineEnd = `(?:\s*,|\s+(?:and|y)\s+|\s+(?:to|for|a|para)\s+(?:the\s+)?(?:customer|client|cliente)\b|\s+(?:paying|payment|pago)\b|\s*\.?$)`

// primaryItems is the repeating "N of PRODUCT" shape.
var primaryItems = regexp.MustCompile(`(?i)\b(\d+)\s+(?:(?:units?|unidades?|pcs)\s+)?(?:of|de)\s+(?:the\s+)?([^,]+?)` + lineEnd)

type itemShape struct {
	re         *regexp.Regexp
	productIdx int
	qtyIdx     int
}

// Alternate single-clause shapes, consulted only when the primary shape finds nothing.
var alternateItems = []itemShape{
	{re: regexp.MustCompile(`(?i)\b(?:product|producto)\s+([^,]+?)\s+(?:quantity|qty|cantidad)\s*:?\s*(\d+)`), productIdx: 1, qtyIdx: 2},
	{re: regexp.MustCompile(`(?i)([^,:]+?)\s*\bx\s*(\d+)\b`), productIdx: 1, qtyIdx: 2},
	{re: regexp.MustCompile(`(?i)\b(\d+)\s+([^,\d]+?)` + lineEnd), productIdx: 2, qtyIdx: 1},
}

var itemLead = regexp.MustCompile(`(?i)^(?:.*\b(?:sell|vender|vende|sale|venta|order|orden)\b\s*:?\s*)`)

// Items extracts every order line named in text, in order of appearance.
func Items(text string) []Item {
	if items := collect(primaryItems, text, 2, 1, false); len(items) > 0 {
		return items
	}
	for _, shape := range alternateItems {
		if items := collect(shape.re, text, shape.productIdx, shape.qtyIdx, true); len(items) > 0 {
			return items
		}
	}
	return nil
}

func collect(re *regexp.Regexp, text string, productIdx, qtyIdx int, singularize bool) []Item {
	var items []Item
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		qty, err := strconv.Atoi(m[qtyIdx])
		if err != nil {
			continue
		}
		name := itemLead.ReplaceAllString(strings.TrimSpace(m[productIdx]), "")
		name = strings.Trim(name, " \t\"'“”.;:")
		if singularize {
			name = singular(name)
		}
		if name == "" || isCustomerClause(name) {
			continue
		}
		items = append(items, Item{Product: name, Quantity: qty})
	}
	return items
}

func isCustomerClause(name string) bool {
	f := Fold(name)
	for _, prefix := range []string{"customer", "client", "cliente", "to customer", "to client", "for customer", "a cliente", "para cliente", "new order", "nueva orden"} {
		if strings.HasPrefix(f, prefix) {
			return true
		}
	}
	return false
}

// singular drops a trailing plural "s" from names longer than three letters.
func singular(name string) string {
	if len(name) > 3 && (strings.HasSuffix(name, "s") || strings.HasSuffix(name, "S")) {
		return name[:len(name)-1]
	}
	return name
}
