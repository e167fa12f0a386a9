package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/shipment-service/internal/config"
	"github.com/spec-kit/shipment-service/internal/domain"
	"github.com/spec-kit/shipment-service/internal/events"
	"github.com/spec-kit/shipment-service/internal/repository"
	apperrors "github.com/spec-kit/shipment-service/pkg/util"
)

// ShipmentService coordinates shipment workflows. Every operation takes the
// authenticated caller explicitly; there is no ambient identity.
type ShipmentService struct {
	shipments  repository.ShipmentRepository
	dispatcher events.Dispatcher
	policy     config.PolicyConfig
}

// ShipmentDependencies bundles collaborators for the shipment service.
type ShipmentDependencies struct {
	ShipmentRepo repository.ShipmentRepository
	Dispatcher   events.Dispatcher
}

// NewShipmentService constructs the service.
func NewShipmentService(policy config.PolicyConfig, deps ShipmentDependencies) *ShipmentService {
	return &ShipmentService{
		shipments:  deps.ShipmentRepo,
		dispatcher: deps.Dispatcher,
		policy:     policy,
	}
}

// ShipmentCreateInput describes the creation payload.
type ShipmentCreateInput struct {
	Name            string
	Type            string
	Date            string
	SourceCity      string
	DestinationCity string
	Description     string
}

// ShipmentUpdateInput carries a partial update; nil fields are left unchanged.
type ShipmentUpdateInput struct {
	Name            *string
	Type            *string
	Date            *string
	SourceCity      *string
	DestinationCity *string
	Description     *string
}

// List returns all shipments for admins, the caller's own otherwise. An empty
// result is reported as a not-found condition; callers of the HTTP API depend
// on that 404, debatable as it is.
func (s *ShipmentService) List(ctx context.Context, caller *domain.User) ([]domain.ShipmentRecord, error) {
	var (
		records []domain.ShipmentRecord
		err     error
	)
	if caller.HasRole(domain.RoleAdmin) {
		records, err = s.shipments.ListAll(ctx)
	} else {
		records, err = s.shipments.ListByUser(ctx, caller.ID)
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewDomainError("NOT_FOUND", "no transactions found", 404, nil)
	}
	return records, nil
}

// Create registers a new shipment owned by the caller.
func (s *ShipmentService) Create(ctx context.Context, caller *domain.User, input ShipmentCreateInput) (*domain.Shipment, error) {
	missing := map[string]any{}
	for field, value := range map[string]string{
		"name":             input.Name,
		"type":             input.Type,
		"date":             input.Date,
		"source_city":      input.SourceCity,
		"destination_city": input.DestinationCity,
	} {
		if strings.TrimSpace(value) == "" {
			missing[field] = "required"
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("one or more required fields are missing", missing)
	}

	shipment := &domain.Shipment{
		Name:            input.Name,
		UserID:          caller.ID,
		Type:            input.Type,
		Date:            input.Date,
		DeliveryDate:    domain.DeliveryDatePending,
		SourceCity:      input.SourceCity,
		DestinationCity: input.DestinationCity,
		InternalStatus:  domain.InternalStatusRequested,
		DeliveryStatus:  domain.DeliveryStatusProcessing,
		Description:     input.Description,
		Amount:          domain.DefaultAmount,
	}
	if err := s.shipments.Create(ctx, shipment); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:       events.EventShipmentCreated,
		ShipmentID: shipment.ID,
		ActorID:    caller.ID,
		Payload: events.ShipmentCreatedPayload{
			Name:            shipment.Name,
			Type:            shipment.Type,
			SourceCity:      shipment.SourceCity,
			DestinationCity: shipment.DestinationCity,
		},
	})
	return shipment, nil
}

// Update applies a partial update to a shipment's metadata. Omitted fields
// keep their current value.
func (s *ShipmentService) Update(ctx context.Context, caller *domain.User, id int64, input ShipmentUpdateInput) error {
	record, err := s.getShipment(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkOwnership(caller, &record.Shipment); err != nil {
		return err
	}

	shipment := record.Shipment
	if input.Name != nil {
		shipment.Name = *input.Name
	}
	if input.Type != nil {
		shipment.Type = *input.Type
	}
	if input.Date != nil {
		shipment.Date = *input.Date
	}
	if input.SourceCity != nil {
		shipment.SourceCity = *input.SourceCity
	}
	if input.DestinationCity != nil {
		shipment.DestinationCity = *input.DestinationCity
	}
	if input.Description != nil {
		shipment.Description = *input.Description
	}

	if err := s.shipments.Update(ctx, &shipment); err != nil {
		return mapShipmentError(err)
	}
	return nil
}

// Delete removes a shipment permanently.
func (s *ShipmentService) Delete(ctx context.Context, caller *domain.User, id int64) error {
	record, err := s.getShipment(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkOwnership(caller, &record.Shipment); err != nil {
		return err
	}
	if err := s.shipments.Delete(ctx, id); err != nil {
		return mapShipmentError(err)
	}
	s.publish(ctx, events.Event{
		Type:       events.EventShipmentDeleted,
		ShipmentID: id,
		ActorID:    caller.ID,
	})
	return nil
}

// Pay marks a shipment as paid. Re-paying an already paid shipment is a
// harmless no-op.
func (s *ShipmentService) Pay(ctx context.Context, caller *domain.User, id int64) error {
	record, err := s.getShipment(ctx, id)
	if err != nil {
		return err
	}
	if err := s.shipments.SetInternalStatus(ctx, id, domain.InternalStatusPaid); err != nil {
		return mapShipmentError(err)
	}
	s.publish(ctx, events.Event{
		Type:       events.EventShipmentPaid,
		ShipmentID: id,
		ActorID:    caller.ID,
		Payload:    events.ShipmentPaidPayload{OldInternalStatus: record.InternalStatus},
	})
	return nil
}

// UpdateDeliveryStatus overwrites the delivery status. Any value is accepted;
// the delivery axis has no enforced transition graph.
func (s *ShipmentService) UpdateDeliveryStatus(ctx context.Context, caller *domain.User, id int64, status string) error {
	if strings.TrimSpace(status) == "" {
		return apperrors.NewValidationError("missing delivery status", nil)
	}
	record, err := s.getShipment(ctx, id)
	if err != nil {
		return err
	}
	if err := s.shipments.SetDeliveryStatus(ctx, id, status); err != nil {
		return mapShipmentError(err)
	}
	s.publish(ctx, events.Event{
		Type:       events.EventDeliveryStatusChanged,
		ShipmentID: id,
		ActorID:    caller.ID,
		Payload: events.DeliveryStatusChangedPayload{
			OldStatus: record.DeliveryStatus,
			NewStatus: status,
		},
	})
	return nil
}

// UpdateAmount prices a shipment. Changing the price always re-opens payment,
// so the amount and the "Payment Pending" status are written in one statement.
func (s *ShipmentService) UpdateAmount(ctx context.Context, caller *domain.User, id int64, amount float64) error {
	if _, err := s.getShipment(ctx, id); err != nil {
		return err
	}
	if err := s.shipments.SetAmountPaymentPending(ctx, id, amount); err != nil {
		return mapShipmentError(err)
	}
	s.publish(ctx, events.Event{
		Type:       events.EventShipmentAmountUpdated,
		ShipmentID: id,
		ActorID:    caller.ID,
		Payload: events.ShipmentAmountUpdatedPayload{
			Amount:         amount,
			InternalStatus: domain.InternalStatusPaymentPending,
		},
	})
	return nil
}

// UpdateDeliveryDate replaces the sentinel delivery date.
func (s *ShipmentService) UpdateDeliveryDate(ctx context.Context, caller *domain.User, id int64, deliveryDate string) (*domain.ShipmentRecord, error) {
	if strings.TrimSpace(deliveryDate) == "" {
		return nil, apperrors.NewValidationError("missing delivery date", nil)
	}
	record, err := s.getShipment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.shipments.SetDeliveryDate(ctx, id, deliveryDate); err != nil {
		return nil, mapShipmentError(err)
	}
	record.DeliveryDate = deliveryDate
	return record, nil
}

// Review returns the full detail view of a shipment, restricted to the owner
// or an admin.
func (s *ShipmentService) Review(ctx context.Context, caller *domain.User, id int64) (*domain.ShipmentRecord, error) {
	record, err := s.getShipment(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.UserID != caller.ID && !caller.HasRole(domain.RoleAdmin) {
		return nil, apperrors.NewForbidden("you do not have permission to view this transaction")
	}
	return record, nil
}

func (s *ShipmentService) getShipment(ctx context.Context, id int64) (*domain.ShipmentRecord, error) {
	record, err := s.shipments.GetByID(ctx, id)
	if err != nil {
		return nil, mapShipmentError(err)
	}
	return record, nil
}

// checkOwnership enforces the owner-or-admin policy on update and delete when
// enabled. The legacy behavior (any authenticated caller may edit any
// shipment) remains selectable via config.
func (s *ShipmentService) checkOwnership(caller *domain.User, shipment *domain.Shipment) error {
	if !s.policy.EnforceOwnership {
		return nil
	}
	if shipment.UserID != caller.ID && !caller.HasRole(domain.RoleAdmin) {
		return apperrors.NewForbidden("you do not have permission to modify this transaction")
	}
	return nil
}

func (s *ShipmentService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func mapShipmentError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("transaction", nil)
	}
	return apperrors.MapError(err)
}
