package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/shipment-service/internal/config"
	"github.com/spec-kit/shipment-service/internal/domain"
	"github.com/spec-kit/shipment-service/internal/events"
	apperrors "github.com/spec-kit/shipment-service/pkg/util"
)

type memShipmentRepo struct {
	nextID int64
	byID   map[int64]*domain.ShipmentRecord
}

func newMemShipmentRepo() *memShipmentRepo {
	return &memShipmentRepo{byID: map[int64]*domain.ShipmentRecord{}}
}

func (r *memShipmentRepo) Create(ctx context.Context, shipment *domain.Shipment) error {
	r.nextID++
	shipment.ID = r.nextID
	shipment.CreatedAt = time.Now()
	shipment.UpdatedAt = shipment.CreatedAt
	r.byID[shipment.ID] = &domain.ShipmentRecord{Shipment: *shipment, OwnerUsername: "owner"}
	return nil
}

func (r *memShipmentRepo) GetByID(ctx context.Context, id int64) (*domain.ShipmentRecord, error) {
	if record, ok := r.byID[id]; ok {
		copied := *record
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *memShipmentRepo) ListAll(ctx context.Context) ([]domain.ShipmentRecord, error) {
	var result []domain.ShipmentRecord
	for id := int64(1); id <= r.nextID; id++ {
		if record, ok := r.byID[id]; ok {
			result = append(result, *record)
		}
	}
	return result, nil
}

func (r *memShipmentRepo) ListByUser(ctx context.Context, userID int64) ([]domain.ShipmentRecord, error) {
	var result []domain.ShipmentRecord
	for id := int64(1); id <= r.nextID; id++ {
		if record, ok := r.byID[id]; ok && record.UserID == userID {
			result = append(result, *record)
		}
	}
	return result, nil
}

func (r *memShipmentRepo) Update(ctx context.Context, shipment *domain.Shipment) error {
	record, ok := r.byID[shipment.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	record.Name = shipment.Name
	record.Type = shipment.Type
	record.Date = shipment.Date
	record.SourceCity = shipment.SourceCity
	record.DestinationCity = shipment.DestinationCity
	record.Description = shipment.Description
	return nil
}

func (r *memShipmentRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.byID, id)
	return nil
}

func (r *memShipmentRepo) SetInternalStatus(ctx context.Context, id int64, status string) error {
	record, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	record.InternalStatus = status
	return nil
}

func (r *memShipmentRepo) SetAmountPaymentPending(ctx context.Context, id int64, amount float64) error {
	record, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	record.Amount = amount
	record.InternalStatus = domain.InternalStatusPaymentPending
	return nil
}

func (r *memShipmentRepo) SetDeliveryStatus(ctx context.Context, id int64, status string) error {
	record, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	record.DeliveryStatus = status
	return nil
}

func (r *memShipmentRepo) SetDeliveryDate(ctx context.Context, id int64, deliveryDate string) error {
	record, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	record.DeliveryDate = deliveryDate
	return nil
}

type capturingDispatcher struct {
	published []events.Event
}

func (d *capturingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *capturingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func (d *capturingDispatcher) last() events.Event {
	return d.published[len(d.published)-1]
}

var (
	adminCaller = &domain.User{ID: 1, Username: "root", Roles: []domain.Role{{Name: domain.RoleAdmin}, {Name: domain.RoleUser}}}
	aliceCaller = &domain.User{ID: 2, Username: "alice", Roles: []domain.Role{{Name: domain.RoleUser}}}
	bobCaller   = &domain.User{ID: 3, Username: "bob", Roles: []domain.Role{{Name: domain.RoleUser}}}
)

func newTestShipmentService(enforceOwnership bool) (*ShipmentService, *memShipmentRepo, *capturingDispatcher) {
	repo := newMemShipmentRepo()
	dispatcher := &capturingDispatcher{}
	svc := NewShipmentService(config.PolicyConfig{EnforceOwnership: enforceOwnership}, ShipmentDependencies{
		ShipmentRepo: repo,
		Dispatcher:   dispatcher,
	})
	return svc, repo, dispatcher
}

func validCreateInput() ShipmentCreateInput {
	return ShipmentCreateInput{
		Name:            "Laptops",
		Type:            "electronics",
		Date:            "2024-05-01",
		SourceCity:      "Hamburg",
		DestinationCity: "Munich",
		Description:     "fragile",
	}
}

func mustCreate(t *testing.T, svc *ShipmentService, caller *domain.User) *domain.Shipment {
	t.Helper()
	shipment, err := svc.Create(context.Background(), caller, validCreateInput())
	require.NoError(t, err)
	return shipment
}

func requireDomainErr(t *testing.T, err error, code string, status int) *apperrors.DomainError {
	t.Helper()
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, code, de.Code)
	assert.Equal(t, status, de.HTTPStatus)
	return de
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc, _, dispatcher := newTestShipmentService(true)

	shipment := mustCreate(t, svc, aliceCaller)

	assert.Equal(t, aliceCaller.ID, shipment.UserID)
	assert.Equal(t, domain.InternalStatusRequested, shipment.InternalStatus)
	assert.Equal(t, domain.DeliveryStatusProcessing, shipment.DeliveryStatus)
	assert.Equal(t, domain.DeliveryDatePending, shipment.DeliveryDate)
	assert.Equal(t, float64(domain.DefaultAmount), shipment.Amount)

	require.Len(t, dispatcher.published, 1)
	event := dispatcher.last()
	assert.Equal(t, events.EventShipmentCreated, event.Type)
	assert.Equal(t, shipment.ID, event.ShipmentID)
	assert.Equal(t, aliceCaller.ID, event.ActorID)
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())
}

func TestCreateMissingFields(t *testing.T) {
	svc, _, _ := newTestShipmentService(true)

	input := validCreateInput()
	input.DestinationCity = ""
	input.Date = "  "

	_, err := svc.Create(context.Background(), aliceCaller, input)
	de := requireDomainErr(t, err, "VALIDATION_FAILED", http.StatusBadRequest)
	assert.Contains(t, de.Details, "destination_city")
	assert.Contains(t, de.Details, "date")
	assert.NotContains(t, de.Details, "name")
}

func TestCreateDescriptionOptional(t *testing.T) {
	svc, _, _ := newTestShipmentService(true)

	input := validCreateInput()
	input.Description = ""
	shipment, err := svc.Create(context.Background(), aliceCaller, input)
	require.NoError(t, err)
	assert.Empty(t, shipment.Description)
}

func TestListScoping(t *testing.T) {
	svc, _, _ := newTestShipmentService(true)
	mustCreate(t, svc, aliceCaller)
	mustCreate(t, svc, aliceCaller)
	mustCreate(t, svc, bobCaller)

	all, err := svc.List(context.Background(), adminCaller)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := svc.List(context.Background(), aliceCaller)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, record := range mine {
		assert.Equal(t, aliceCaller.ID, record.UserID)
	}
}

func TestListEmptyIsNotFound(t *testing.T) {
	svc, _, _ := newTestShipmentService(true)

	_, err := svc.List(context.Background(), aliceCaller)
	de := requireDomainErr(t, err, "NOT_FOUND", http.StatusNotFound)
	assert.Equal(t, "no transactions found", de.Message)
}

func TestUpdatePartial(t *testing.T) {
	svc, repo, _ := newTestShipmentService(true)
	shipment := mustCreate(t, svc, aliceCaller)

	newName := "Monitors"
	err := svc.Update(context.Background(), aliceCaller, shipment.ID, ShipmentUpdateInput{Name: &newName})
	require.NoError(t, err)

	stored := repo.byID[shipment.ID]
	assert.Equal(t, "Monitors", stored.Name)
	assert.Equal(t, shipment.Type, stored.Type)
	assert.Equal(t, shipment.SourceCity, stored.SourceCity)
	assert.Equal(t, shipment.Description, stored.Description)
}

func TestUpdateOwnershipEnforced(t *testing.T) {
	svc, _, _ := newTestShipmentService(true)
	shipment := mustCreate(t, svc, aliceCaller)

	name := "hijacked"
	err := svc.Update(context.Background(), bobCaller, shipment.ID, ShipmentUpdateInput{Name: &name})
	requireDomainErr(t, err, "FORBIDDEN", http.StatusForbidden)

	// Admins bypass the ownership check.
	err = svc.Update(context.Background(), adminCaller, shipment.ID, ShipmentUpdateInput{Name: &name})
	assert.NoError(t, err)
}

func TestUpdateOwnershipDisabled(t *testing.T) {
	svc, _, _ := newTestShipmentService(false)
	shipment := mustCreate(t, svc, aliceCaller)

	name := "edited by bob"
	err := svc.Update(context.Background(), bobCaller, shipment.ID, ShipmentUpdateInput{Name: &name})
	assert.NoError(t, err)
}

func TestUpdateUnknownShipment(t *testing.T) {
	svc, _, _ := newTestShipmentService(true)

	name := "x"
	err := svc.Update(context.Background(), aliceCaller, 999, ShipmentUpdateInput{Name: &name})
	de := requireDomainErr(t, err, "NOT_FOUND", http.StatusNotFound)
	assert.Equal(t, "transaction not found", de.Message)
}

func TestDelete(t *testing.T) {
	svc, repo, dispatcher := newTestShipmentService(true)
	shipment := mustCreate(t, svc, aliceCaller)

	require.NoError(t, svc.Delete(context.Background(), aliceCaller, shipment.ID))
	assert.NotContains(t, repo.byID, shipment.ID)
	assert.Equal(t, events.EventShipmentDeleted, dispatcher.last().Type)

	err := svc.Delete(context.Background(), aliceCaller, shipment.ID)
	requireDomainErr(t, err, "NOT_FOUND", http.StatusNotFound)
}

func TestDeleteOwnershipEnforced(t *testing.T) {
	svc, repo, _ := newTestShipmentService(true)
	shipment := mustCreate(t, svc, aliceCaller)

	err := svc.Delete(context.Background(), bobCaller, shipment.ID)
	requireDomainErr(t, err, "FORBIDDEN", http.StatusForbidden)
	assert.Contains(t, repo.byID, shipment.ID)
}

func TestPay(t *testing.T) {
	svc, repo, dispatcher := newTestShipmentService(true)
	shipment := mustCreate(t, svc, aliceCaller)

	require.NoError(t, svc.Pay(context.Background(), aliceCaller, shipment.ID))
	assert.Equal(t, domain.InternalStatusPaid, repo.byID[shipment.ID].InternalStatus)

	event := dispatcher.last()
	assert.Equal(t, events.EventShipmentPaid, event.Type)
	payload, ok := event.Payload.(events.ShipmentPaidPayload)
	require.True(t, ok)
	assert.Equal(t, domain.InternalStatusRequested, payload.OldInternalStatus)

	// Paying again leaves the shipment paid.
	require.NoError(t, svc.Pay(context.Background(), aliceCaller, shipment.ID))
	assert.Equal(t, domain.InternalStatusPaid, repo.byID[shipment.ID].InternalStatus)
}

func TestPayUnknownShipment(t *testing.T) {
	svc, _, _ := newTestShipmentService(true)
	err := svc.Pay(context.Background(), aliceCaller, 404)
	requireDomainErr(t, err, "NOT_FOUND", http.StatusNotFound)
}

func TestUpdateDeliveryStatus(t *testing.T) {
	svc, repo, dispatcher := newTestShipmentService(true)
	shipment := mustCreate(t, svc, aliceCaller)

	// The delivery axis accepts arbitrary values.
	err := svc.UpdateDeliveryStatus(context.Background(), adminCaller, shipment.ID, "stuck at customs")
	require.NoError(t, err)
	assert.Equal(t, "stuck at customs", repo.byID[shipment.ID].DeliveryStatus)

	payload, ok := dispatcher.last().Payload.(events.DeliveryStatusChangedPayload)
	require.True(t, ok)
	assert.Equal(t, domain.DeliveryStatusProcessing, payload.OldStatus)
	assert.Equal(t, "stuck at customs", payload.NewStatus)
}

func TestUpdateDeliveryStatusBlank(t *testing.T) {
	svc, _, _ := newTestShipmentService(true)
	shipment := mustCreate(t, svc, aliceCaller)

	err := svc.UpdateDeliveryStatus(context.Background(), adminCaller, shipment.ID, "  ")
	requireDomainErr(t, err, "VALIDATION_FAILED", http.StatusBadRequest)
}

func TestUpdateDeliveryStatusDoesNotTouchInternalStatus(t *testing.T) {
	svc, repo, _ := newTestShipmentService(true)
	shipment := mustCreate(t, svc, aliceCaller)
	require.NoError(t, svc.Pay(context.Background(), aliceCaller, shipment.ID))

	require.NoError(t, svc.UpdateDeliveryStatus(context.Background(), adminCaller, shipment.ID, domain.DeliveryStatusDelivered))
	assert.Equal(t, domain.InternalStatusPaid, repo.byID[shipment.ID].InternalStatus)
}

func TestUpdateAmountReopensPayment(t *testing.T) {
	svc, repo, dispatcher := newTestShipmentService(true)
	shipment := mustCreate(t, svc, aliceCaller)
	require.NoError(t, svc.Pay(context.Background(), aliceCaller, shipment.ID))

	require.NoError(t, svc.UpdateAmount(context.Background(), adminCaller, shipment.ID, 2500))

	stored := repo.byID[shipment.ID]
	assert.Equal(t, float64(2500), stored.Amount)
	assert.Equal(t, domain.InternalStatusPaymentPending, stored.InternalStatus)

	payload, ok := dispatcher.last().Payload.(events.ShipmentAmountUpdatedPayload)
	require.True(t, ok)
	assert.Equal(t, float64(2500), payload.Amount)
	assert.Equal(t, domain.InternalStatusPaymentPending, payload.InternalStatus)
}

func TestUpdateDeliveryDate(t *testing.T) {
	svc, repo, _ := newTestShipmentService(true)
	shipment := mustCreate(t, svc, aliceCaller)

	record, err := svc.UpdateDeliveryDate(context.Background(), adminCaller, shipment.ID, "2024-06-15")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-15", record.DeliveryDate)
	assert.Equal(t, "2024-06-15", repo.byID[shipment.ID].DeliveryDate)

	_, err = svc.UpdateDeliveryDate(context.Background(), adminCaller, shipment.ID, "")
	requireDomainErr(t, err, "VALIDATION_FAILED", http.StatusBadRequest)
}

func TestReviewAccess(t *testing.T) {
	svc, _, _ := newTestShipmentService(true)
	shipment := mustCreate(t, svc, aliceCaller)

	record, err := svc.Review(context.Background(), aliceCaller, shipment.ID)
	require.NoError(t, err)
	assert.Equal(t, shipment.ID, record.ID)

	_, err = svc.Review(context.Background(), adminCaller, shipment.ID)
	assert.NoError(t, err)

	_, err = svc.Review(context.Background(), bobCaller, shipment.ID)
	requireDomainErr(t, err, "FORBIDDEN", http.StatusForbidden)
}

func TestReviewUnknownShipment(t *testing.T) {
	svc, _, _ := newTestShipmentService(true)
	_, err := svc.Review(context.Background(), aliceCaller, 777)
	requireDomainErr(t, err, "NOT_FOUND", http.StatusNotFound)
}
