package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-assistant-service/internal/intent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// helpExamples returns the indented command lines of the help text.
func helpExamples() []string {
	var out []string
	for _, line := range strings.Split(helpText, "\n") {
		if strings.HasPrefix(line, "  ") {
			out = append(out, strings.TrimSpace(line))
		}
	}
	return out
}

func TestHelp_ExamplesReachTheirHandlers(t *testing.T) {
	tests := []struct {
		example string
		want    intent.Type
	}{
		{"add product Laptop, price $800, quantity 10, category electronics", intent.AddProduct},
		{"update the price of product Laptop to $750", intent.EditInventory},
		{"update product id 4 to 15 units", intent.EditInventory},
		{"sell 2 of Laptop and 3 of Mouse to customer Ana Lopez, pay cash", intent.CreateSale},
		{"show sales", intent.SalesAnalysis},
		{"show inventory", intent.ListInventory},
		{"analyze inventory", intent.InventoryAnalysis},
		{"send the inventory report to boss@example.com", intent.Email},
	}

	examples := helpExamples()
	require.Len(t, examples, len(tests), "every help example needs a row here")
	for i, tt := range tests {
		t.Run(tt.example, func(t *testing.T) {
			assert.Equal(t, tt.example, examples[i])
			got := intent.Classify(tt.example)
			assert.Equal(t, tt.want, got.Type)
			assert.NotEqual(t, intent.Help, got.Type)
		})
	}
}

func TestHelp_Handle(t *testing.T) {
	res, err := Help{}.Handle(context.Background(), intent.Help, "hello")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, helpText, res.Text)
}
