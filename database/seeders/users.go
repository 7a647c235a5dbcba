package seeders

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

func init() {
	Register("admin", func(ctx context.Context, store *repositories.Store) error {
		return SeedAdmin(ctx, store, config.AdminEmail(), config.AdminPassword())
	})
}

// SeedAdmin creates the administrator account unless the email is taken.
// An empty password skips the seeder.
func SeedAdmin(ctx context.Context, store *repositories.Store, email, password string) error {
	if password == "" {
		logger.Warn("seed: ADMIN_PASSWORD not set, skipping admin user")
		return nil
	}

	_, err := store.Users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	return store.Users.Create(ctx, &models.User{
		Email:        email,
		Name:         "Administrator",
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	})
}
