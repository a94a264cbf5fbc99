// Package listener feeds commands published on a Kafka topic into the chat pipeline.
package listener

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/fekuna/omnipos-assistant-service/internal/chat"
	"github.com/fekuna/omnipos-assistant-service/internal/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is satisfied by broker.KafkaConsumer.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type CommandEvent struct {
	EventID string `json:"event_id"`
	Text    string `json:"text"`
}

type CommandListener struct {
	reader  MessageReader
	proc    chat.Processor
	logger  logger.ZapLogger
	backoff time.Duration
}

func NewCommandListener(reader MessageReader, proc chat.Processor, log logger.ZapLogger) *CommandListener {
	return &CommandListener{
		reader:  reader,
		proc:    proc,
		logger:  log,
		backoff: time.Second,
	}
}

// Start blocks until ctx is cancelled.
func (l *CommandListener) Start(ctx context.Context) {
	l.logger.Info("Starting command listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping command listener")
			return
		default:
		}

		msg, err := l.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			l.logger.Error("Failed to read kafka message", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(l.backoff):
			}
			continue
		}
		l.processMessage(ctx, msg.Value)
	}
}

func (l *CommandListener) processMessage(ctx context.Context, value []byte) {
	var event CommandEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal command", zap.Error(err))
		return
	}
	if strings.TrimSpace(event.Text) == "" {
		l.logger.Warn("Skipping empty command", zap.String("event_id", event.EventID))
		return
	}

	res := l.proc.Process(ctx, event.Text)
	l.logger.Info("Processed command",
		zap.String("event_id", event.EventID),
		zap.String("workflow_id", res.WorkflowID),
		zap.Bool("success", res.Success),
	)
}
