// internal/database/seeder.go
package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"greencycle-api-server/config"
	"greencycle-api-server/internal/auth"
	"greencycle-api-server/internal/models"
	"greencycle-api-server/internal/store"

	"github.com/google/uuid"
)

// SeedAdmin creates the bootstrap admin account if it does not exist yet.
func SeedAdmin(ctx context.Context, st store.Store, cfg config.AdminConfig) error {
	email := cfg.Email
	if email == "" {
		email = "admin@greencycle.local"
	}
	name := cfg.Name
	if name == "" {
		name = "Admin"
	}
	if cfg.Password == "" {
		return errors.New("admin password is not configured")
	}

	if _, err := st.GetUserByEmail(ctx, email); err == nil {
		log.Println("Admin account already exists. Seeding skipped.")
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	log.Println("Admin account not found. Seeding...")
	hashedPassword, err := auth.HashPassword(cfg.Password)
	if err != nil {
		return err
	}

	now := time.Now()
	admin := &models.UserProfile{
		UserID:             fmt.Sprintf("USR-%s", strings.ToUpper(uuid.New().String()[:8])),
		Email:              email,
		Name:               name,
		Password:           hashedPassword,
		Role:               models.RoleAdmin,
		EmailNotifications: true,
		Newsletter:         true,
		LocationSharing:    true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := st.CreateUser(ctx, admin); err != nil {
		return err
	}

	log.Println("Admin account seeded successfully.")
	return nil
}
