package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/shipment-service/internal/auth"
	"github.com/spec-kit/shipment-service/internal/config"
	"github.com/spec-kit/shipment-service/internal/domain"
	"github.com/spec-kit/shipment-service/internal/repository"
)

// Seed ensures the role reference data exists and, when configured, creates a
// bootstrap admin account. Registration depends on the "user" role being
// present, so roles are always seeded.
func Seed(ctx context.Context, cfg config.Config, users repository.UserRepository, roles repository.RoleRepository, logger *zap.Logger) error {
	adminRole, err := roles.Ensure(ctx, domain.RoleAdmin, "Super user of app")
	if err != nil {
		return err
	}
	userRole, err := roles.Ensure(ctx, domain.RoleUser, "Normal user of app")
	if err != nil {
		return err
	}

	seed := cfg.Seed
	if seed.AdminUsername == "" || seed.AdminEmail == "" || seed.AdminPassword == "" {
		return nil
	}

	if _, err := users.GetByEmail(ctx, seed.AdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(seed.AdminPassword, cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	admin := &domain.User{
		Username:      seed.AdminUsername,
		Email:         seed.AdminEmail,
		PasswordHash:  hash,
		SecurityStamp: uuid.NewString(),
		Active:        true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}
	if err := users.AssignRole(ctx, admin.ID, adminRole.ID); err != nil {
		return err
	}
	if err := users.AssignRole(ctx, admin.ID, userRole.ID); err != nil {
		return err
	}

	logger.Info("seeded bootstrap admin account", zap.String("username", admin.Username))
	return nil
}
