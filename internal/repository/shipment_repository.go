package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/shipment-service/internal/domain"
)

// ShipmentRepository encapsulates shipment persistence. Reads return records
// joined with the owner's username for API views. Status mutations are single
// UPDATE statements so a concurrent reader never observes a half-applied
// change.
type ShipmentRepository interface {
	Create(ctx context.Context, shipment *domain.Shipment) error
	GetByID(ctx context.Context, id int64) (*domain.ShipmentRecord, error)
	ListAll(ctx context.Context) ([]domain.ShipmentRecord, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.ShipmentRecord, error)
	Update(ctx context.Context, shipment *domain.Shipment) error
	Delete(ctx context.Context, id int64) error
	SetInternalStatus(ctx context.Context, id int64, status string) error
	SetAmountPaymentPending(ctx context.Context, id int64, amount float64) error
	SetDeliveryStatus(ctx context.Context, id int64, status string) error
	SetDeliveryDate(ctx context.Context, id int64, deliveryDate string) error
}

type shipmentRepository struct {
	pool *pgxpool.Pool
}

// NewShipmentRepository instantiates the repository.
func NewShipmentRepository(pool *pgxpool.Pool) ShipmentRepository {
	return &shipmentRepository{pool: pool}
}

const shipmentColumns = `s.id, s.name, s.user_id, s.type, s.date, s.delivery_date,
    s.source_city, s.destination_city, s.internal_status, s.delivery_status,
    s.description, s.amount, s.created_at, s.updated_at, u.username`

func (r *shipmentRepository) Create(ctx context.Context, shipment *domain.Shipment) error {
	const query = `
        INSERT INTO shipments (name, user_id, type, date, delivery_date, source_city,
            destination_city, internal_status, delivery_status, description, amount)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		shipment.Name,
		shipment.UserID,
		shipment.Type,
		shipment.Date,
		shipment.DeliveryDate,
		shipment.SourceCity,
		shipment.DestinationCity,
		shipment.InternalStatus,
		shipment.DeliveryStatus,
		shipment.Description,
		shipment.Amount,
	).Scan(&shipment.ID, &shipment.CreatedAt, &shipment.UpdatedAt)
}

func (r *shipmentRepository) GetByID(ctx context.Context, id int64) (*domain.ShipmentRecord, error) {
	query := `SELECT ` + shipmentColumns + `
        FROM shipments s JOIN users u ON u.id = s.user_id
        WHERE s.id=$1`

	var record domain.ShipmentRecord
	if err := scanShipment(r.pool.QueryRow(ctx, query, id), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *shipmentRepository) ListAll(ctx context.Context) ([]domain.ShipmentRecord, error) {
	query := `SELECT ` + shipmentColumns + `
        FROM shipments s JOIN users u ON u.id = s.user_id
        ORDER BY s.id`
	return r.list(ctx, query)
}

func (r *shipmentRepository) ListByUser(ctx context.Context, userID int64) ([]domain.ShipmentRecord, error) {
	query := `SELECT ` + shipmentColumns + `
        FROM shipments s JOIN users u ON u.id = s.user_id
        WHERE s.user_id=$1
        ORDER BY s.id`
	return r.list(ctx, query, userID)
}

func (r *shipmentRepository) Update(ctx context.Context, shipment *domain.Shipment) error {
	const query = `
        UPDATE shipments SET name=$1, type=$2, date=$3, source_city=$4,
            destination_city=$5, description=$6, updated_at=NOW()
        WHERE id=$7`

	cmd, err := r.pool.Exec(ctx, query,
		shipment.Name,
		shipment.Type,
		shipment.Date,
		shipment.SourceCity,
		shipment.DestinationCity,
		shipment.Description,
		shipment.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *shipmentRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM shipments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *shipmentRepository) SetInternalStatus(ctx context.Context, id int64, status string) error {
	return r.exec(ctx, `UPDATE shipments SET internal_status=$1, updated_at=NOW() WHERE id=$2`, status, id)
}

// SetAmountPaymentPending sets the amount and re-opens payment in one
// statement: pricing a shipment always forces internal_status back to
// "Payment Pending".
func (r *shipmentRepository) SetAmountPaymentPending(ctx context.Context, id int64, amount float64) error {
	return r.exec(ctx,
		`UPDATE shipments SET amount=$1, internal_status=$2, updated_at=NOW() WHERE id=$3`,
		amount, domain.InternalStatusPaymentPending, id)
}

func (r *shipmentRepository) SetDeliveryStatus(ctx context.Context, id int64, status string) error {
	return r.exec(ctx, `UPDATE shipments SET delivery_status=$1, updated_at=NOW() WHERE id=$2`, status, id)
}

func (r *shipmentRepository) SetDeliveryDate(ctx context.Context, id int64, deliveryDate string) error {
	return r.exec(ctx, `UPDATE shipments SET delivery_date=$1, updated_at=NOW() WHERE id=$2`, deliveryDate, id)
}

func (r *shipmentRepository) exec(ctx context.Context, query string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *shipmentRepository) list(ctx context.Context, query string, args ...any) ([]domain.ShipmentRecord, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ShipmentRecord
	for rows.Next() {
		var record domain.ShipmentRecord
		if err := scanShipment(rows, &record); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}

func scanShipment(row pgx.Row, record *domain.ShipmentRecord) error {
	return row.Scan(
		&record.ID,
		&record.Name,
		&record.UserID,
		&record.Type,
		&record.Date,
		&record.DeliveryDate,
		&record.SourceCity,
		&record.DestinationCity,
		&record.InternalStatus,
		&record.DeliveryStatus,
		&record.Description,
		&record.Amount,
		&record.CreatedAt,
		&record.UpdatedAt,
		&record.OwnerUsername,
	)
}
