// Package chart describes charts abstractly; rendering is left to a Renderer.
package chart

import (
	"context"
	"encoding/json"
	"fmt"
)

type Kind string

const (
	Line Kind = "line"
	Bar  Kind = "bar"
	Pie  Kind = "pie"
)

type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type Descriptor struct {
	Type   Kind    `json:"type"`
	Title  string  `json:"title"`
	XLabel string  `json:"x_label,omitempty"`
	YLabel string  `json:"y_label,omitempty"`
	Data   []Point `json:"data"`
}

// Image is a rendered chart ready to be attached to a mail.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

type Renderer interface {
	Render(ctx context.Context, d Descriptor) (*Image, error)
}

// JSONRenderer serializes descriptors so downstream tools can draw them.
type JSONRenderer struct{}

func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

func (JSONRenderer) Render(ctx context.Context, d Descriptor) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(d.Data) == 0 {
		return nil, fmt.Errorf("chart %q has no data", d.Title)
	}
	body, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal chart: %w", err)
	}
	return &Image{Name: slug(d.Title) + ".json", ContentType: "application/json", Data: body}, nil
}

func slug(title string) string {
	out := make([]rune, 0, len(title))
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case len(out) > 0 && out[len(out)-1] != '_':
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "chart"
	}
	if out[len(out)-1] == '_' {
		out = out[:len(out)-1]
	}
	return string(out)
}

// Shorten trims a label to n runes, marking the cut with "...".
func Shorten(label string, n int) string {
	r := []rune(label)
	if len(r) <= n {
		return label
	}
	return string(r[:n]) + "..."
}
