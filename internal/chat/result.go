// Package chat routes classified commands to capability handlers and shapes their replies.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-assistant-service/internal/chart"
	"github.com/fekuna/omnipos-assistant-service/internal/intent"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Result is the reply to one command.
type Result struct {
	Success    bool               `json:"success"`
	Text       string             `json:"response_text"`
	Data       map[string]any     `json:"data,omitempty"`
	Charts     []chart.Descriptor `json:"charts,omitempty"`
	Order      any                `json:"order,omitempty"`
	WorkflowID string             `json:"workflow_id,omitempty"`
	Intent     intent.Type        `json:"intent"`
	Confidence float64            `json:"confidence"`
}

// Handler serves one or more intents. A returned error means an unexpected fault;
// expected failures are reported through an unsuccessful Result.
type Handler interface {
	Handle(ctx context.Context, t intent.Type, text string) (Result, error)
}

type HandlerFunc func(ctx context.Context, t intent.Type, text string) (Result, error)

func (f HandlerFunc) Handle(ctx context.Context, t intent.Type, text string) (Result, error) {
	return f(ctx, t, text)
}

// NewWorkflowID tags a command outcome with the intent and second it finished.
func NewWorkflowID(t intent.Type, failed bool, at time.Time) string {
	if failed {
		return fmt.Sprintf("%s-error-%s", t.Slug(), at.Format("20060102-150405"))
	}
	return fmt.Sprintf("%s-%s", t.Slug(), at.Format("20060102-150405"))
}

var printer = message.NewPrinter(language.English)

// Money formats an amount with thousands separators, e.g. $1,234.50.
func Money(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return printer.Sprintf("$%.2f", f)
}

func Count(n int) string {
	return printer.Sprintf("%d", n)
}
