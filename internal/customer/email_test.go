package customer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSynthesizeEmail(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Ana Lopez", "ana.lopez@example.com"},
		{"  José  María ", "jose.maria@example.com"},
		{"O'Brien", "obrien@example.com"},
		{"!!!", "customer@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SynthesizeEmail(tt.name))
		})
	}
}
