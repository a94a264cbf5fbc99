// Package analysis holds computed analytics reports and the cache that keeps the latest one.
package analysis

import (
	"time"

	"github.com/fekuna/omnipos-assistant-service/internal/chart"
)

type Kind string

const (
	KindInventory Kind = "inventory"
	KindSales     Kind = "sales"
)

// Report is the payload produced by an analysis and consumed by the email flow.
type Report struct {
	Kind            Kind               `json:"kind"`
	Title           string             `json:"title"`
	Text            string             `json:"text"`
	Summary         map[string]any     `json:"summary"`
	Recommendations []string           `json:"recommendations,omitempty"`
	Charts          []chart.Descriptor `json:"charts,omitempty"`
	GeneratedAt     time.Time          `json:"generated_at"`
}
