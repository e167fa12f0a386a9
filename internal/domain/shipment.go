package domain

import "time"

// Internal (payment) status lifecycle: requested -> Payment Pending -> paid.
// An admin setting the amount forces "Payment Pending"; the owner paying sets
// "paid". There is no transition back. The mixed casing of "Payment Pending"
// is part of the wire contract.
const (
	InternalStatusRequested      = "requested"
	InternalStatusPaymentPending = "Payment Pending"
	InternalStatusPaid           = "paid"
)

// Delivery status is a free-running axis independent of payment. The default
// is "processing"; admins may set any value, "delivered" and "cancelled" being
// the conventional terminal ones.
const (
	DeliveryStatusProcessing = "processing"
	DeliveryStatusDelivered  = "delivered"
	DeliveryStatusCancelled  = "cancelled"
)

// DeliveryDatePending is the sentinel delivery date until an admin sets one.
const DeliveryDatePending = "to be updated"

// DefaultAmount is the placeholder cost until an admin prices the shipment.
const DefaultAmount = 1000

// Shipment is the aggregate for tracked deliveries. Initiation and delivery
// dates are free-text strings, kept as entered by the caller.
type Shipment struct {
	ID              int64
	Name            string
	UserID          int64
	Type            string
	Date            string
	DeliveryDate    string
	SourceCity      string
	DestinationCity string
	InternalStatus  string
	DeliveryStatus  string
	Description     string
	Amount          float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ShipmentRecord is a shipment joined with its owner's username for list and
// detail views.
type ShipmentRecord struct {
	Shipment
	OwnerUsername string
}
