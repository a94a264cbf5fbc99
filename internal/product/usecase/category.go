package usecase

import (
	"strings"

	"github.com/fekuna/omnipos-assistant-service/internal/extract"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const DefaultCategory = "Other"

// Keys are folded, so accents in the command do not matter.
var categoryNames = map[string]string{
	"electronicos": "Electronics",
	"electronico":  "Electronics",
	"electronica":  "Electronics",
	"tecnologia":   "Electronics",
	"computadoras": "Computers",
	"computacion":  "Computers",
	"ropa":         "Clothing",
	"vestimenta":   "Clothing",
	"alimentos":    "Food",
	"comida":       "Food",
	"bebidas":      "Beverages",
	"hogar":        "Home",
	"casa":         "Home",
	"oficina":      "Office",
	"papeleria":    "Office",
	"deportes":     "Sports",
	"juguetes":     "Toys",
	"libros":       "Books",
	"herramientas": "Tools",
	"belleza":      "Beauty",
	"salud":        "Health",
	"accesorios":   "Accessories",
	"muebles":      "Furniture",
	"otros":        "Other",
	"otro":         "Other",
	"otra":         "Other",
}

// NormalizeCategory maps Spanish category words to their English names and title-cases anything else.
func NormalizeCategory(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultCategory
	}
	if name, ok := categoryNames[extract.Fold(raw)]; ok {
		return name
	}
	return cases.Title(language.English).String(strings.ToLower(raw))
}
