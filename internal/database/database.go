package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonasLeetTheWay/eventbook/internal/auth"
	"github.com/JonasLeetTheWay/eventbook/internal/config"
	"github.com/JonasLeetTheWay/eventbook/internal/models"
	"github.com/JonasLeetTheWay/eventbook/internal/money"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the single process-wide handle and runs migrations. The
// returned *gorm.DB is passed explicitly to every service.
func Connect(cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := models.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("database connected and migrated", "host", cfg.DBHost, "db", cfg.DBName)
	return db, nil
}

// Ping checks the underlying connection, used by the health endpoint.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// SeedData inserts demo accounts, events and orders when the store is empty.
// Both demo accounts use the password "password123".
func SeedData(ctx context.Context, db *gorm.DB, bcryptCost int, log *slog.Logger) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		log.Info("data already seeded, skipping")
		return nil
	}

	hash, err := auth.HashPassword("password123", bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := models.User{
			Email:    "user@example.com",
			Name:     models.StringPtr("John Doe"),
			Password: hash,
			Role:     models.RoleUser,
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		organizerUser := models.User{
			Email:    "organizer@example.com",
			Name:     models.StringPtr("Jane Smith"),
			Password: hash,
			Role:     models.RoleOrganizer,
		}
		if err := tx.Create(&organizerUser).Error; err != nil {
			return fmt.Errorf("failed to create organizer user: %w", err)
		}

		organizer := models.Organizer{
			UserID:   organizerUser.ID,
			Name:     "Jane Smith Events",
			Bio:      models.StringPtr("Professional event organizer with 10+ years of experience in conferences and workshops."),
			VideoURL: models.StringPtr("https://example.com/sample-video"),
		}
		if err := tx.Create(&organizer).Error; err != nil {
			return fmt.Errorf("failed to create organizer: %w", err)
		}

		events := []models.Event{
			{Title: "Tech Conference 2024", Type: models.EventConference, Price: money.FromMinor(29999),
				Description: models.StringPtr("Annual technology conference featuring the latest innovations in AI, blockchain, and web development.")},
			{Title: "Music Festival Summer", Type: models.EventFestival, Price: money.FromMinor(14999),
				Description: models.StringPtr("Three-day music festival featuring top artists from around the world.")},
			{Title: "Business Leadership Summit", Type: models.EventSummit, Price: money.FromMinor(49999),
				Description: models.StringPtr("Executive summit for business leaders and entrepreneurs.")},
			{Title: "Web Development Workshop", Type: models.EventWorkshop, Price: money.FromMinor(8999),
				Description: models.StringPtr("Hands-on workshop covering modern web development technologies and best practices.")},
			{Title: "Digital Marketing Seminar", Type: models.EventSeminar, Price: money.FromMinor(7999),
				Description: models.StringPtr("Learn the latest digital marketing strategies and tools.")},
		}
		for i := range events {
			events[i].OrganizerID = organizer.ID
			if err := tx.Create(&events[i]).Error; err != nil {
				return fmt.Errorf("failed to create event %q: %w", events[i].Title, err)
			}
		}

		now := time.Now()
		orders := []models.Order{
			{UserID: user.ID, EventID: events[0].ID, BookingDate: now,
				SelectedDateTime: parseDate("2024-06-15T09:00:00Z"), FinalCost: events[0].Price,
				PaymentMethod: "Online Payment", PaymentStatus: models.PaymentCompleted,
				OrganizerConfirmation: models.ConfirmationConfirmed},
			{UserID: user.ID, EventID: events[1].ID, BookingDate: now,
				SelectedDateTime: parseDate("2024-07-20T18:00:00Z"), FinalCost: events[1].Price,
				PaymentMethod: "Cash on Delivery", PaymentStatus: models.PaymentPending,
				OrganizerConfirmation: models.ConfirmationPending},
		}
		if err := tx.Create(&orders).Error; err != nil {
			return fmt.Errorf("failed to create orders: %w", err)
		}

		log.Info("sample data seeded", "events", len(events), "orders", len(orders))
		return nil
	})
}

func parseDate(dateStr string) time.Time {
	t, _ := time.Parse(time.RFC3339, dateStr)
	return t
}
