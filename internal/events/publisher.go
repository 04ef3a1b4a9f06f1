package events

import (
	"context"
	"encoding/json"
	"strconv"

	"app/internal/domain/model"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// 注文保存の通知先。fire-and-forgetで、失敗しても注文処理は止めない。
type Publisher interface {
	OrderPlaced(ctx context.Context, order model.Order, items []model.OrderItem, created bool)
}

// Kafka実装。
// 同じ注文のイベント順序を保つためkey=order_id。
type KafkaPublisher struct {
	w   *kafka.Writer
	log *logrus.Entry
}

func NewKafkaPublisher(brokers []string, topic string, log *logrus.Entry) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true, // fire-and-forget。送信エラーはCompletionでログ
			Completion: func(messages []kafka.Message, err error) {
				if err != nil {
					log.WithError(err).Error("order event publish failed")
				}
			},
		},
		log: log,
	}
}

func (p *KafkaPublisher) OrderPlaced(ctx context.Context, order model.Order, items []model.OrderItem, created bool) {
	env, err := NewOrderPlaced(order, items, created)
	if err != nil {
		p.log.WithError(err).Error("order event encode failed")
		return
	}

	value, err := json.Marshal(env)
	if err != nil {
		p.log.WithError(err).Error("order event encode failed")
		return
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(order.ID, 10)),
		Value: value,
	}

	// Asyncなのでここでは待たない
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		p.log.WithError(err).Error("order event publish failed")
	}
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

// Kafka未設定のとき用
type NopPublisher struct{}

func (NopPublisher) OrderPlaced(ctx context.Context, order model.Order, items []model.OrderItem, created bool) {
}
