package service

import (
	"context"
	"encoding/json"

	"quiknote-be/internal/pkg/logger"
	"quiknote-be/internal/store"
	internalWS "quiknote-be/internal/websocket"
	"quiknote-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// ChangeDelivery pushes a frame to a user's open connections.
type ChangeDelivery interface {
	Send(userID string, msg internalWS.Message)
}

// EventExporter forwards events to the external stream.
type EventExporter interface {
	Publish(ctx context.Context, event events.Event) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	delivery   ChangeDelivery
	exporter   EventExporter
	log        logger.ILogger
}

// NewConsumerService relays bus messages to the websocket hub and, when
// exporter is non-nil, to the external event stream.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	delivery ChangeDelivery,
	exporter EventExporter,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		delivery:   delivery,
		exporter:   exporter,
		log:        log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()
	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	// Every message is acked: a bad payload would fail the same way again.
	defer msg.Ack()

	var change store.Change
	if err := json.Unmarshal(msg.Payload, &change); err != nil {
		cs.log.Error("ConsumerService", "Failed to unmarshal change", map[string]interface{}{"error": err})
		return
	}

	cs.delivery.Send(change.UserId, internalWS.Message{Type: string(change.Kind), Data: change})

	if cs.exporter == nil {
		return
	}
	evt := events.ChangeEvent{
		Kind:       string(change.Kind),
		UserId:     change.UserId,
		EntityIds:  change.EntityIds,
		OccurredAt: change.At,
	}
	if err := cs.exporter.Publish(ctx, evt); err != nil {
		cs.log.Warn("ConsumerService", "Failed to export change", map[string]interface{}{
			"kind":  change.Kind,
			"error": err,
		})
	}
}
