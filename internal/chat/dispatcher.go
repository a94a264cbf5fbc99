package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-assistant-service/internal/apperr"
	"github.com/fekuna/omnipos-assistant-service/internal/intent"
	"github.com/fekuna/omnipos-assistant-service/internal/logger"
	"github.com/fekuna/omnipos-assistant-service/internal/platform/timeouts"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/fekuna/omnipos-assistant-service/internal/chat"

// Processor turns command text into a reply. Transports depend on this rather than on Dispatcher.
type Processor interface {
	Process(ctx context.Context, text string) Result
}

type Dispatcher struct {
	handlers map[intent.Type]Handler
	fallback Handler
	classify func(string) intent.Intent
	timeout  time.Duration
	tracer   trace.Tracer
	now      func() time.Time
	logger   logger.ZapLogger
}

type Option func(*Dispatcher)

// WithTimeout bounds every command; zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) { disp.timeout = d }
}

func WithTracer(t trace.Tracer) Option {
	return func(disp *Dispatcher) { disp.tracer = t }
}

func WithClock(now func() time.Time) Option {
	return func(disp *Dispatcher) { disp.now = now }
}

func WithClassifier(fn func(string) intent.Intent) Option {
	return func(disp *Dispatcher) { disp.classify = fn }
}

func NewDispatcher(log logger.ZapLogger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[intent.Type]Handler),
		fallback: Help{},
		classify: intent.Classify,
		timeout:  timeouts.Command,
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
		logger:   log,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register routes the given intents to h. Later registrations replace earlier ones.
func (d *Dispatcher) Register(h Handler, types ...intent.Type) {
	for _, t := range types {
		d.handlers[t] = h
	}
}

func (d *Dispatcher) handlerFor(t intent.Type) Handler {
	if h, ok := d.handlers[t]; ok {
		return h
	}
	return d.fallback
}

// Process classifies text and runs the matching handler. It never returns a Go error:
// unexpected faults and panics become a generic failure result.
func (d *Dispatcher) Process(ctx context.Context, text string) Result {
	text = strings.TrimSpace(text)
	in := d.classify(text)

	ctx, span := d.tracer.Start(ctx, "chat.Process", trace.WithAttributes(
		attribute.String("intent", string(in.Type)),
		attribute.Float64("confidence", in.Confidence),
	))
	defer span.End()

	ctx, cancel := timeouts.Bound(ctx, d.timeout)
	defer cancel()

	d.logger.Info("Command classified",
		zap.String("intent", string(in.Type)),
		zap.Float64("confidence", in.Confidence),
		zap.String("text", truncate(text, 120)),
	)

	res, err := d.safeHandle(ctx, d.handlerFor(in.Type), in.Type, text)
	if err != nil {
		d.logger.Error("Command failed", zap.String("intent", string(in.Type)), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		res = Failure("", &apperr.InternalError{Err: err})
	}

	res.Intent = in.Type
	res.Confidence = in.Confidence
	if res.WorkflowID == "" {
		res.WorkflowID = NewWorkflowID(in.Type, !res.Success, d.now())
	}
	span.SetAttributes(attribute.Bool("success", res.Success), attribute.String("workflow_id", res.WorkflowID))
	return res
}

func (d *Dispatcher) safeHandle(ctx context.Context, h Handler, t intent.Type, text string) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h.Handle(ctx, t, text)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
