package persistence

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/shipment-service/internal/auth"
	"github.com/spec-kit/shipment-service/internal/config"
	"github.com/spec-kit/shipment-service/internal/domain"
)

type seedUserRepo struct {
	nextID int64
	byID   map[int64]*domain.User
	roles  map[int64][]int64
}

func newSeedUserRepo() *seedUserRepo {
	return &seedUserRepo{byID: map[int64]*domain.User{}, roles: map[int64][]int64{}}
}

func (r *seedUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.nextID++
	user.ID = r.nextID
	copied := *user
	r.byID[user.ID] = &copied
	return nil
}

func (r *seedUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if user, ok := r.byID[id]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *seedUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, user := range r.byID {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *seedUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range r.byID {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *seedUserRepo) AssignRole(ctx context.Context, userID, roleID int64) error {
	r.roles[userID] = append(r.roles[userID], roleID)
	return nil
}

type seedRoleRepo struct {
	ensured map[string]string
}

func (r *seedRoleRepo) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	if _, ok := r.ensured[name]; ok {
		return &domain.Role{ID: roleID(name), Name: name}, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *seedRoleRepo) Ensure(ctx context.Context, name, description string) (*domain.Role, error) {
	if r.ensured == nil {
		r.ensured = map[string]string{}
	}
	r.ensured[name] = description
	return &domain.Role{ID: roleID(name), Name: name, Description: description}, nil
}

func roleID(name string) int64 {
	if name == domain.RoleAdmin {
		return 1
	}
	return 2
}

func TestSeedEnsuresRoles(t *testing.T) {
	users := newSeedUserRepo()
	roles := &seedRoleRepo{}

	err := Seed(context.Background(), config.Config{}, users, roles, zap.NewNop())
	require.NoError(t, err)

	assert.Contains(t, roles.ensured, domain.RoleAdmin)
	assert.Contains(t, roles.ensured, domain.RoleUser)
	assert.Empty(t, users.byID, "no admin account without seed config")
}

func TestSeedCreatesBootstrapAdmin(t *testing.T) {
	users := newSeedUserRepo()
	roles := &seedRoleRepo{}
	cfg := config.Config{
		Auth: config.AuthConfig{BcryptCost: bcrypt.MinCost},
		Seed: config.SeedConfig{
			AdminUsername: "root",
			AdminEmail:    "root@example.com",
			AdminPassword: "changeme",
		},
	}

	require.NoError(t, Seed(context.Background(), cfg, users, roles, zap.NewNop()))

	admin, err := users.GetByEmail(context.Background(), "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, "root", admin.Username)
	assert.True(t, admin.Active)
	assert.NotEmpty(t, admin.SecurityStamp)
	assert.NoError(t, auth.ComparePassword(admin.PasswordHash, "changeme"))
	assert.ElementsMatch(t, []int64{1, 2}, users.roles[admin.ID])
}

func TestSeedIdempotent(t *testing.T) {
	users := newSeedUserRepo()
	roles := &seedRoleRepo{}
	cfg := config.Config{
		Auth: config.AuthConfig{BcryptCost: bcrypt.MinCost},
		Seed: config.SeedConfig{
			AdminUsername: "root",
			AdminEmail:    "root@example.com",
			AdminPassword: "changeme",
		},
	}

	require.NoError(t, Seed(context.Background(), cfg, users, roles, zap.NewNop()))
	require.NoError(t, Seed(context.Background(), cfg, users, roles, zap.NewNop()))

	assert.Len(t, users.byID, 1)
}

func TestSeedPartialConfigSkipsAdmin(t *testing.T) {
	users := newSeedUserRepo()
	cfg := config.Config{Seed: config.SeedConfig{AdminUsername: "root"}}

	require.NoError(t, Seed(context.Background(), cfg, users, &seedRoleRepo{}, zap.NewNop()))
	assert.Empty(t, users.byID)
}
