package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/shipment-service/internal/events"
)

// NotificationService logs shipment lifecycle events. Email and webhook
// delivery are stubbed; the log stream is the observable output.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to shipment events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventShipmentCreated, n.handleEvent)
	n.dispatcher.Subscribe(events.EventShipmentPaid, n.handleEvent)
	n.dispatcher.Subscribe(events.EventShipmentAmountUpdated, n.handleEvent)
	n.dispatcher.Subscribe(events.EventDeliveryStatusChanged, n.handleEvent)
	n.dispatcher.Subscribe(events.EventShipmentDeleted, n.handleEvent)
}

func (n *NotificationService) handleEvent(_ context.Context, event events.Event) error {
	n.logger.Info("shipment event",
		zap.String("type", string(event.Type)),
		zap.Int64("shipment_id", event.ShipmentID),
		zap.Int64("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))
	return nil
}
