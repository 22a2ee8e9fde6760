package service

import (
	"context"
	"encoding/json"

	"quiknote-be/internal/store"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// IPublisherService puts store changes on the in-process event bus. It is
// the store's EventSink.
type IPublisherService interface {
	Publish(ctx context.Context, change store.Change) error
}

type publisherService struct {
	topicName string
	publisher message.Publisher
}

func NewPublisherService(topicName string, publisher message.Publisher) IPublisherService {
	return &publisherService{topicName: topicName, publisher: publisher}
}

func (p *publisherService) Publish(ctx context.Context, change store.Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return p.publisher.Publish(p.topicName, msg)
}
