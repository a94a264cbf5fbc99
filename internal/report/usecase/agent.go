// Package usecase mails analysis reports on request.
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-assistant-service/internal/analysis"
	"github.com/fekuna/omnipos-assistant-service/internal/apperr"
	"github.com/fekuna/omnipos-assistant-service/internal/chart"
	"github.com/fekuna/omnipos-assistant-service/internal/chat"
	"github.com/fekuna/omnipos-assistant-service/internal/extract"
	"github.com/fekuna/omnipos-assistant-service/internal/intent"
	"github.com/fekuna/omnipos-assistant-service/internal/logger"
	"github.com/fekuna/omnipos-assistant-service/internal/mailer"
	"github.com/fekuna/omnipos-assistant-service/internal/platform/timeouts"
	"go.uber.org/zap"
)

// InventoryAnalyzer is satisfied by inventory.UseCase.
type InventoryAnalyzer interface {
	Analyze(ctx context.Context) (*analysis.Report, error)
}

// SalesAnalyzer is satisfied by order.UseCase.
type SalesAnalyzer interface {
	AnalyzeSales(ctx context.Context) (*analysis.Report, error)
}

type Agent struct {
	cache     analysis.Cache
	inventory InventoryAnalyzer
	sales     SalesAnalyzer
	renderer  chart.Renderer
	mail      mailer.Sender
	timeouts  timeouts.Config
	logger    logger.ZapLogger
}

func NewAgent(
	cache analysis.Cache,
	inventory InventoryAnalyzer,
	sales SalesAnalyzer,
	renderer chart.Renderer,
	mail mailer.Sender,
	t timeouts.Config,
	log logger.ZapLogger,
) *Agent {
	return &Agent{
		cache:     cache,
		inventory: inventory,
		sales:     sales,
		renderer:  renderer,
		mail:      mail,
		timeouts:  t.Defaults(),
		logger:    log,
	}
}

func (a *Agent) Handle(ctx context.Context, t intent.Type, text string) (chat.Result, error) {
	if t != intent.Email {
		return chat.Result{}, fmt.Errorf("email agent cannot handle %s", t)
	}

	to, ok := extract.Text(extract.Email, text)
	if !ok {
		return chat.Convert("Could not send the report", apperr.Validation("email",
			`Include the recipient address, e.g. "send the inventory report to boss@example.com".`))
	}

	entry, err := a.cache.Get(ctx)
	if err != nil {
		a.logger.Warn("Analysis cache unavailable, regenerating", zap.Error(err))
		entry = nil
	}
	kind := DetectKind(text, entry)

	report, fromCache, err := a.report(ctx, kind, entry)
	if err != nil {
		return chat.Convert("Could not prepare the report", err)
	}

	images := a.render(ctx, report.Charts)
	msg := mailer.Message{
		To:          to,
		Subject:     fmt.Sprintf("%s - %s", report.Title, report.GeneratedAt.Format("2006-01-02 15:04")),
		Body:        mailBody(report),
		Attachments: images,
	}

	data := map[string]any{
		"recipient":   to,
		"report_type": kind,
		"from_cache":  fromCache,
		"charts":      len(images),
	}
	if !a.deliver(ctx, msg) {
		data["sent"] = false
		return chat.Result{
			Success: false,
			Text:    fmt.Sprintf("Could not send the %s report to %s: the mail service did not accept the message.", kind, to),
			Data:    data,
		}, nil
	}

	data["sent"] = true
	return chat.Result{
		Success: true,
		Text:    fmt.Sprintf("Sent the %s report to %s with %d charts.", kind, to, len(images)),
		Data:    data,
	}, nil
}

// report prefers the cached analysis of the requested kind and recomputes otherwise.
func (a *Agent) report(ctx context.Context, kind analysis.Kind, entry *analysis.Entry) (*analysis.Report, bool, error) {
	if entry != nil && entry.Kind == kind {
		r := entry.Report
		return &r, true, nil
	}

	var (
		r   *analysis.Report
		err error
	)
	if kind == analysis.KindSales {
		r, err = a.sales.AnalyzeSales(ctx)
	} else {
		r, err = a.inventory.Analyze(ctx)
	}
	return r, false, err
}

func (a *Agent) render(ctx context.Context, charts []chart.Descriptor) []chart.Image {
	var images []chart.Image
	for _, d := range charts {
		rctx, cancel := timeouts.Bound(ctx, a.timeouts.Render)
		img, err := a.renderer.Render(rctx, d)
		cancel()
		if err != nil {
			a.logger.Warn("Chart render failed", zap.String("chart", d.Title), zap.Error(err))
			continue
		}
		if img != nil {
			images = append(images, *img)
		}
	}
	return images
}

func (a *Agent) deliver(ctx context.Context, msg mailer.Message) bool {
	ctx, cancel := timeouts.Bound(ctx, a.timeouts.Mail)
	defer cancel()

	start := time.Now()
	if err := a.mail.Send(ctx, msg); err != nil {
		a.logger.Error("Report mail failed", zap.String("to", msg.To), zap.Error(err))
		return false
	}
	a.logger.Info("Report mailed", zap.String("to", msg.To), zap.Duration("took", time.Since(start)))
	return true
}

func mailBody(r *analysis.Report) string {
	var b strings.Builder
	b.WriteString(r.Text)
	if len(r.Recommendations) > 0 && !strings.Contains(r.Text, r.Recommendations[0]) {
		b.WriteString("\n\nRecommendations:\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
	}
	b.WriteString("\n\nCharts are attached as JSON descriptors.\n")
	return b.String()
}
