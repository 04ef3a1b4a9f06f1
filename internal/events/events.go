package events

import (
	"encoding/json"
	"time"

	"app/internal/domain/model"

	"github.com/google/uuid"
)

const (
	EventOrderPlaced = "OrderPlaced"

	// イベントの発行元名
	producerName = "store-api"
)

// Kafkaに流す共通の封筒
type Envelope struct {
	EventID      string          `json:"event_id"`      // uuid
	EventType    string          `json:"event_type"`    // OrderPlaced
	EventVersion int             `json:"event_version"` // 1
	OccurredAt   time.Time       `json:"occurred_at"`   // RFC3339
	Producer     string          `json:"producer"`      // store-api
	Payload      json.RawMessage `json:"payload"`
}

type OrderPlacedItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

// 注文保存のたびに流すペイロード。
// Created=trueなら新規作成、falseなら更新（キャンセルなど）。
type OrderPlacedPayload struct {
	OrderID int64             `json:"order_id"`
	UserID  int64             `json:"user_id"`
	Status  string            `json:"status"`
	Total   int64             `json:"total"`
	Items   []OrderPlacedItem `json:"items,omitempty"`
	Created bool              `json:"created"`
}

// NewOrderPlaced はOrderPlacedイベントの封筒を組み立てる。
func NewOrderPlaced(order model.Order, items []model.OrderItem, created bool) (Envelope, error) {
	payload := OrderPlacedPayload{
		OrderID: order.ID,
		UserID:  order.UserID,
		Status:  string(order.Status),
		Total:   order.TotalPrice,
		Created: created,
	}
	for _, it := range items {
		payload.Items = append(payload.Items, OrderPlacedItem{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
		})
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}

	return Envelope{
		EventID:      uuid.NewString(),
		EventType:    EventOrderPlaced,
		EventVersion: 1,
		OccurredAt:   time.Now(),
		Producer:     producerName,
		Payload:      raw,
	}, nil
}
