package service

import (
	"context"

	"obi-site/internal/domain"
)

// eventPublisher is satisfied by *rabbitmq.Publisher
type eventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// BrokerAlerter publishes enquiry.created for downstream consumers
type BrokerAlerter struct {
	publisher eventPublisher
}

// NewBrokerAlerter wraps a message broker publisher
func NewBrokerAlerter(publisher eventPublisher) *BrokerAlerter {
	return &BrokerAlerter{publisher: publisher}
}

func (a *BrokerAlerter) Name() string {
	return "amqp"
}

func (a *BrokerAlerter) EnquiryCreated(ctx context.Context, event *domain.EnquiryCreatedEvent) error {
	return a.publisher.Publish(ctx, domain.RoutingKeyEnquiryCreated, event)
}
