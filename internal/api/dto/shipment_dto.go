package dto

import (
	"github.com/spec-kit/shipment-service/internal/domain"
)

// CreateShipmentRequest payload. Description is the only optional field.
type CreateShipmentRequest struct {
	Name            string `json:"name"`
	Type            string `json:"type"`
	Date            string `json:"date"`
	SourceCity      string `json:"source_city"`
	DestinationCity string `json:"destination_city"`
	Description     string `json:"description"`
}

// UpdateShipmentRequest carries a partial update; absent fields stay
// unchanged.
type UpdateShipmentRequest struct {
	Name            *string `json:"name"`
	Type            *string `json:"type"`
	Date            *string `json:"date"`
	SourceCity      *string `json:"source_city"`
	DestinationCity *string `json:"destination_city"`
	Description     *string `json:"description"`
}

// UpdateDeliveryStatusRequest payload.
type UpdateDeliveryStatusRequest struct {
	DeliveryStatus string `json:"delivery_status"`
}

// UpdateAmountRequest payload.
type UpdateAmountRequest struct {
	Amount *float64 `json:"amount"`
}

// UpdateDeliveryDateRequest payload.
type UpdateDeliveryDateRequest struct {
	DeliveryDate string `json:"delivery_date"`
}

// ShipmentView is the wire representation used by list and detail endpoints.
// Field names match the legacy API contract.
type ShipmentView struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	UserID          int64   `json:"user_id"`
	User            string  `json:"user"`
	Type            string  `json:"type"`
	Date            string  `json:"date"`
	DeliveryDate    string  `json:"delivery_date"`
	SourceCity      string  `json:"source_city"`
	DestinationCity string  `json:"destination_city"`
	InternalStatus  string  `json:"internal_status"`
	DeliveryStatus  string  `json:"delivery_status"`
	Description     string  `json:"description"`
	Amount          float64 `json:"amount"`
}

// NewShipmentView maps a joined shipment record to its wire form.
func NewShipmentView(record *domain.ShipmentRecord) ShipmentView {
	return ShipmentView{
		ID:              record.ID,
		Name:            record.Name,
		UserID:          record.UserID,
		User:            record.OwnerUsername,
		Type:            record.Type,
		Date:            record.Date,
		DeliveryDate:    record.DeliveryDate,
		SourceCity:      record.SourceCity,
		DestinationCity: record.DestinationCity,
		InternalStatus:  record.InternalStatus,
		DeliveryStatus:  record.DeliveryStatus,
		Description:     record.Description,
		Amount:          record.Amount,
	}
}
