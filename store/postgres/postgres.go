// Package postgres implements the store interfaces on PostgreSQL via GORM.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nutricalc/nutricalc-backend/logger"
	"github.com/nutricalc/nutricalc-backend/models"
	"github.com/nutricalc/nutricalc-backend/store"
)

// Store is the Postgres-backed store.Store and store.Catalog.
type Store struct {
	db *gorm.DB
}

// Open connects, runs migrations, and returns the store.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	logger.Info("Database connection established")

	if err := db.AutoMigrate(
		&models.Profile{},
		&models.FoodLogEntry{},
		&models.FoodFact{},
	); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	logger.Info("Migrations completed")

	return &Store{db: db}, nil
}

func (s *Store) Load(ctx context.Context, userEmail string) (store.State, error) {
	var state store.State

	var profile models.Profile
	err := s.db.WithContext(ctx).Where("user_email = ?", userEmail).First(&profile).Error
	switch {
	case err == nil:
		state.Profile = &profile
	case errors.Is(err, gorm.ErrRecordNotFound):
		// first run: no profile yet
	default:
		return store.State{}, fmt.Errorf("load profile: %w", err)
	}

	var entries []models.FoodLogEntry
	if err := s.db.WithContext(ctx).
		Where("user_email = ?", userEmail).
		Order("logged_at DESC").
		Find(&entries).Error; err != nil {
		return store.State{}, fmt.Errorf("load food log: %w", err)
	}
	state.FoodLog = entries

	return state, nil
}

func (s *Store) SaveProfile(ctx context.Context, userEmail string, p models.Profile) error {
	p.UserEmail = userEmail
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Replaced wholesale: delete-then-insert keeps the uniqueIndex simple.
		if err := tx.Where("user_email = ?", userEmail).Delete(&models.Profile{}).Error; err != nil {
			return err
		}
		return tx.Create(&p).Error
	})
}

func (s *Store) AppendEntry(ctx context.Context, userEmail string, e models.FoodLogEntry) error {
	e.UserEmail = userEmail
	return s.db.WithContext(ctx).Create(&e).Error
}

func (s *Store) RemoveEntry(ctx context.Context, userEmail, entryID string) error {
	// Unknown ids are a no-op by contract; RowsAffected is not checked.
	return s.db.WithContext(ctx).
		Where("entry_id = ? AND user_email = ?", entryID, userEmail).
		Delete(&models.FoodLogEntry{}).Error
}

func (s *Store) Replace(ctx context.Context, userEmail string, state store.State) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_email = ?", userEmail).Delete(&models.Profile{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_email = ?", userEmail).Delete(&models.FoodLogEntry{}).Error; err != nil {
			return err
		}
		if state.Profile != nil {
			p := *state.Profile
			p.ID = 0
			p.UserEmail = userEmail
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
		}
		// The slice is most-recent-first; insert back-to-front so logged_at
		// ordering on load reproduces it even when timestamps collide.
		for i := len(state.FoodLog) - 1; i >= 0; i-- {
			e := state.FoodLog[i]
			e.UserEmail = userEmail
			if err := tx.Create(&e).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) GetFact(ctx context.Context, query string) (*models.FoodFact, error) {
	var fact models.FoodFact
	err := s.db.WithContext(ctx).Where("query = ?", store.NormalizeQuery(query)).First(&fact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load food fact: %w", err)
	}
	return &fact, nil
}

func (s *Store) PutFact(ctx context.Context, fact models.FoodFact) error {
	fact.Query = store.NormalizeQuery(fact.Query)

	var existing models.FoodFact
	err := s.db.WithContext(ctx).Where("query = ?", fact.Query).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.db.WithContext(ctx).Create(&fact).Error
	case err != nil:
		return fmt.Errorf("load food fact: %w", err)
	default:
		fact.ID = existing.ID
		fact.CreatedAt = existing.CreatedAt
		return s.db.WithContext(ctx).Save(&fact).Error
	}
}

func (s *Store) ListUnverified(ctx context.Context, limit int) ([]models.FoodFact, error) {
	var facts []models.FoodFact
	if err := s.db.WithContext(ctx).
		Where("verified = ?", false).
		Order("updated_at ASC").
		Limit(limit).
		Find(&facts).Error; err != nil {
		return nil, fmt.Errorf("list unverified facts: %w", err)
	}
	return facts, nil
}
