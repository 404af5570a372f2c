package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/cinema-booking/internal/config"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// EnsureAdmin creates the configured ADMIN account unless its email is
// already registered.  It reports whether an account was created; with no
// admin credentials configured it does nothing.
func EnsureAdmin(ctx context.Context, users *repository.UserRepo, cfg config.AuthConfig) (bool, error) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return false, nil
	}
	_, err := users.GetByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("lookup admin: %w", err)
	}
	if _, err := users.Create(ctx, cfg.AdminEmail, cfg.AdminPassword, model.RoleAdmin, cfg.BcryptCost); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}
