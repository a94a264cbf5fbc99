package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-assistant-service/internal/analysis"
	"github.com/fekuna/omnipos-assistant-service/internal/apperr"
	"github.com/fekuna/omnipos-assistant-service/internal/chart"
	"github.com/fekuna/omnipos-assistant-service/internal/intent"
	"github.com/fekuna/omnipos-assistant-service/internal/logger"
	"github.com/fekuna/omnipos-assistant-service/internal/mailer"
	"github.com/fekuna/omnipos-assistant-service/internal/platform/timeouts"
	"github.com/fekuna/omnipos-assistant-service/internal/report/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []mailer.Message
	err  error
}

func (s *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

type fakeAnalyzer struct {
	kind  analysis.Kind
	calls int
	err   error
}

func (a *fakeAnalyzer) report() (*analysis.Report, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	return &analysis.Report{
		Kind:  a.kind,
		Title: "Fresh " + string(a.kind),
		Text:  "fresh " + string(a.kind) + " text",
		Charts: []chart.Descriptor{
			{Type: chart.Bar, Title: "Units", Data: []chart.Point{{Label: "a", Value: 1}}},
			{Type: chart.Pie, Title: "Empty"},
		},
		GeneratedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}, nil
}

func (a *fakeAnalyzer) Analyze(context.Context) (*analysis.Report, error)      { return a.report() }
func (a *fakeAnalyzer) AnalyzeSales(context.Context) (*analysis.Report, error) { return a.report() }

type fixture struct {
	agent     *usecase.Agent
	cache     *analysis.MemoryCache
	sender    *fakeSender
	inventory *fakeAnalyzer
	sales     *fakeAnalyzer
}

func newFixture() *fixture {
	f := &fixture{
		cache:     analysis.NewMemoryCache(analysis.DefaultTTL),
		sender:    &fakeSender{},
		inventory: &fakeAnalyzer{kind: analysis.KindInventory},
		sales:     &fakeAnalyzer{kind: analysis.KindSales},
	}
	f.agent = usecase.NewAgent(f.cache, f.inventory, f.sales, chart.NewJSONRenderer(), f.sender, timeouts.Config{}, logger.NewNop())
	return f
}

func TestDetectKind(t *testing.T) {
	cachedSales := &analysis.Entry{Kind: analysis.KindSales}

	tests := []struct {
		name   string
		text   string
		cached *analysis.Entry
		want   analysis.Kind
	}{
		{"sales words", "email the sales report to a@b.com", nil, analysis.KindSales},
		{"spanish sales", "envía las ventas a a@b.com", nil, analysis.KindSales},
		{"inventory words", "email the stock report to a@b.com", cachedSales, analysis.KindInventory},
		{"accented inventory", "envía el almacén a a@b.com", nil, analysis.KindInventory},
		{"sales beats inventory", "send sales and inventory to a@b.com", nil, analysis.KindSales},
		{"falls back to cache", "send the report to a@b.com", cachedSales, analysis.KindSales},
		{"defaults to inventory", "send the report to a@b.com", nil, analysis.KindInventory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, usecase.DetectKind(tt.text, tt.cached))
		})
	}
}

func TestEmailUsesMatchingCachedReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	require.NoError(t, f.cache.Set(ctx, analysis.KindSales, analysis.Report{
		Kind:            analysis.KindSales,
		Title:           "Sales",
		Text:            "cached sales text",
		Recommendations: []string{"Push the top seller"},
		Charts:          []chart.Descriptor{{Type: chart.Line, Title: "Daily sales", Data: []chart.Point{{Label: "03-01", Value: 10}}}},
		GeneratedAt:     time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}))

	res, err := f.agent.Handle(ctx, intent.Email, "send the report to boss@example.com")
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "Sent the sales report to boss@example.com with 1 charts.", res.Text)
	assert.Equal(t, true, res.Data["from_cache"])
	assert.Zero(t, f.sales.calls)

	require.Len(t, f.sender.sent, 1)
	msg := f.sender.sent[0]
	assert.Equal(t, "boss@example.com", msg.To)
	assert.Equal(t, "Sales - 2026-03-01 08:00", msg.Subject)
	assert.Contains(t, msg.Body, "cached sales text")
	assert.Contains(t, msg.Body, "- Push the top seller")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "application/json", msg.Attachments[0].ContentType)
}

func TestEmailRegeneratesWhenCacheKindDiffers(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	require.NoError(t, f.cache.Set(ctx, analysis.KindSales, analysis.Report{Kind: analysis.KindSales, Title: "Sales"}))

	res, err := f.agent.Handle(ctx, intent.Email, "email the inventory to boss@example.com")
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, 1, f.inventory.calls)
	assert.Zero(t, f.sales.calls)
	assert.Equal(t, false, res.Data["from_cache"])
	// the empty chart fails to render and is skipped
	assert.Equal(t, 1, res.Data["charts"])
	require.Len(t, f.sender.sent, 1)
	assert.Contains(t, f.sender.sent[0].Body, "fresh inventory text")
}

func TestEmailWithoutRecipientFails(t *testing.T) {
	f := newFixture()

	res, err := f.agent.Handle(context.Background(), intent.Email, "send the inventory report")
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Contains(t, res.Text, "email")
	assert.Empty(t, f.sender.sent)
	assert.Zero(t, f.inventory.calls)
}

func TestEmailSenderFailureIsReported(t *testing.T) {
	f := newFixture()
	f.sender.err = errors.New("smtp: 554 rejected")

	res, err := f.agent.Handle(context.Background(), intent.Email, "send inventory to boss@example.com")
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, false, res.Data["sent"])
	assert.Contains(t, res.Text, "boss@example.com")
}

func TestEmailAnalysisFailureIsReported(t *testing.T) {
	f := newFixture()
	f.inventory.err = apperr.Validation("", "There is no inventory to analyze yet.")

	res, err := f.agent.Handle(context.Background(), intent.Email, "send inventory to boss@example.com")
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Contains(t, res.Text, "There is no inventory to analyze yet.")
	assert.Empty(t, f.sender.sent)
}
