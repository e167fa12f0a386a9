package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/shipment-service/internal/domain"
)

// RoleRepository provides access to the seeded role reference data.
type RoleRepository interface {
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	Ensure(ctx context.Context, name, description string) (*domain.Role, error)
}

type roleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository returns a Postgres-backed implementation.
func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &roleRepository{pool: pool}
}

func (r *roleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	const query = `SELECT id, name, description FROM roles WHERE name=$1`

	var role domain.Role
	if err := r.pool.QueryRow(ctx, query, name).Scan(&role.ID, &role.Name, &role.Description); err != nil {
		return nil, err
	}
	return &role, nil
}

// Ensure creates the role if absent and returns it either way.
func (r *roleRepository) Ensure(ctx context.Context, name, description string) (*domain.Role, error) {
	const query = `
        INSERT INTO roles (name, description)
        VALUES ($1, $2)
        ON CONFLICT (name) DO UPDATE SET description = roles.description
        RETURNING id, name, description`

	var role domain.Role
	if err := r.pool.QueryRow(ctx, query, name, description).Scan(&role.ID, &role.Name, &role.Description); err != nil {
		return nil, err
	}
	return &role, nil
}
