package customer

import (
	"strings"

	"github.com/fekuna/omnipos-assistant-service/internal/extract"
)

// SynthesizeEmail derives a placeholder address for customers created from a bare name.
func SynthesizeEmail(name string) string {
	local := strings.Join(strings.Fields(extract.Fold(name)), ".")
	local = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return -1
	}, local)
	if local == "" {
		local = "customer"
	}
	return local + "@example.com"
}
