package events

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
)

type EventEnvelope struct {
	EventName     string          `json:"eventName"`
	EventVersion  int             `json:"eventVersion"`
	EventID       string          `json:"eventId"`
	CorrelationID string          `json:"correlationId,omitempty"`
	Producer      string          `json:"producer"`
	PartitionKey  string          `json:"partitionKey"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Schema        string          `json:"schema"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderPlacedPayload struct {
	OrderID   int64             `json:"orderId"`
	UserID    string            `json:"userId"`
	Total     float64           `json:"total"`
	Status    string            `json:"status"`
	Items     []OrderPlacedItem `json:"items"`
	Timestamp time.Time         `json:"timestamp"`
}

type OrderPlacedItem struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name,omitempty"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

func newOrderPlacedPayload(order *entity.Order, now time.Time) OrderPlacedPayload {
	p := OrderPlacedPayload{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Total:     order.Total,
		Status:    string(order.Status),
		Items:     make([]OrderPlacedItem, 0, len(order.Items)),
		Timestamp: now,
	}
	for _, it := range order.Items {
		item := OrderPlacedItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price}
		if it.Product != nil {
			item.Name = it.Product.Name
		}
		p.Items = append(p.Items, item)
	}
	return p
}

func newOrderPlacedEvent(order *entity.Order, producer, correlationID string, now time.Time) (EventEnvelope, error) {
	payload, err := json.Marshal(newOrderPlacedPayload(order, now))
	if err != nil {
		return EventEnvelope{}, err
	}
	return EventEnvelope{
		EventName:     EventTypeOrderPlaced,
		EventVersion:  1,
		EventID:       uuid.NewString(),
		CorrelationID: correlationID,
		Producer:      producer,
		PartitionKey:  strconv.FormatInt(order.ID, 10),
		OccurredAt:    now,
		Schema:        orderPlacedSchema,
		Payload:       payload,
	}, nil
}
