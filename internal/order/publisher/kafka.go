// Package publisher announces committed orders to downstream consumers.
package publisher

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/fekuna/omnipos-assistant-service/internal/order/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const EventOrderCreated = "OrderCreated"

type OrderCreatedEvent struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   OrderPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type OrderPayload struct {
	ID            int64              `json:"id"`
	CustomerID    int64              `json:"customer_id"`
	PaymentMethod string             `json:"payment_method"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	Items         []OrderItemPayload `json:"items"`
}

type OrderItemPayload struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// MessageWriter is satisfied by *broker.KafkaProducer.
type MessageWriter interface {
	Publish(ctx context.Context, key, value []byte) error
}

type Publisher interface {
	OrderCreated(ctx context.Context, receipt *dto.Receipt) error
}

type KafkaPublisher struct {
	writer MessageWriter
	now    func() time.Time
}

func NewKafkaPublisher(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w, now: time.Now}
}

func NewOrderCreatedEvent(receipt *dto.Receipt, at time.Time) OrderCreatedEvent {
	o := receipt.Order
	items := make([]OrderItemPayload, len(receipt.Lines))
	for i, l := range receipt.Lines {
		items[i] = OrderItemPayload{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.UnitPrice}
	}
	return OrderCreatedEvent{
		EventID:   uuid.NewString(),
		EventType: EventOrderCreated,
		Payload: OrderPayload{
			ID:            o.ID,
			CustomerID:    o.CustomerID,
			PaymentMethod: o.PaymentMethod,
			TotalAmount:   o.TotalAmount,
			Items:         items,
		},
		Timestamp: at.UTC(),
	}
}

func (p *KafkaPublisher) OrderCreated(ctx context.Context, receipt *dto.Receipt) error {
	event := NewOrderCreatedEvent(receipt, p.now())
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.Publish(ctx, []byte(strconv.FormatInt(event.Payload.ID, 10)), value)
}

// Noop is used when kafka is disabled.
type Noop struct{}

func (Noop) OrderCreated(context.Context, *dto.Receipt) error { return nil }
