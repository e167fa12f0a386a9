package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventShipmentCreated       EventType = "shipment_created"
	EventShipmentPaid          EventType = "shipment_paid"
	EventShipmentAmountUpdated EventType = "shipment_amount_updated"
	EventDeliveryStatusChanged EventType = "delivery_status_changed"
	EventShipmentDeleted       EventType = "shipment_deleted"
)

// Event represents a domain event emitted by services. ActorID is the user
// who triggered the change.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	ShipmentID int64       `json:"shipment_id"`
	ActorID    int64       `json:"actor_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// ShipmentCreatedPayload payload.
type ShipmentCreatedPayload struct {
	Name            string `json:"name"`
	Type            string `json:"type"`
	SourceCity      string `json:"source_city"`
	DestinationCity string `json:"destination_city"`
}

// ShipmentPaidPayload payload.
type ShipmentPaidPayload struct {
	OldInternalStatus string `json:"old_internal_status"`
}

// ShipmentAmountUpdatedPayload payload.
type ShipmentAmountUpdatedPayload struct {
	Amount         float64 `json:"amount"`
	InternalStatus string  `json:"internal_status"`
}

// DeliveryStatusChangedPayload payload.
type DeliveryStatusChangedPayload struct {
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}
