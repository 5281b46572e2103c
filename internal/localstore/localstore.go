// Package localstore persists visitor sessions in an embedded sqlite
// database, so the durable client-side state (token, user record, display
// mode) survives process restarts. It implements the session manager's
// Store contract; nothing else is stored locally, all domain data lives in
// the remote backend.
package localstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	applog "boxboxd/internal/log"
)

type sessionRecord struct {
	Token  string    `gorm:"primaryKey;size:64"`
	Data   []byte    `gorm:"not null"`
	Expiry time.Time `gorm:"index;not null"`
}

func (sessionRecord) TableName() string {
	return "sessions"
}

// Store is a sqlite-backed session store with periodic expiry cleanup.
type Store struct {
	db          *gorm.DB
	stopCleanup chan struct{}
}

// Open opens (creating if needed) the session database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("localstore: database path must not be empty")
	}

	gormCfg := &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(sqlite.Open(path), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("localstore: open database: %w", err)
	}

	return New(db)
}

// New wraps an existing gorm handle, migrating the session schema.
func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("localstore: database handle must not be nil")
	}
	if err := db.AutoMigrate(&sessionRecord{}); err != nil {
		return nil, fmt.Errorf("localstore: migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Find returns the data for a session token, if present and unexpired.
func (s *Store) Find(token string) ([]byte, bool, error) {
	var record sessionRecord
	err := s.db.Where("token = ? AND expiry > ?", token, time.Now().UTC()).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("localstore: find session: %w", err)
	}
	return record.Data, true, nil
}

// Commit inserts or updates a session token with the given data and expiry.
func (s *Store) Commit(token string, b []byte, expiry time.Time) error {
	record := sessionRecord{Token: token, Data: b, Expiry: expiry.UTC()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		UpdateAll: true,
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("localstore: commit session: %w", err)
	}
	return nil
}

// Delete removes a session token. Deleting an absent token is not an error.
func (s *Store) Delete(token string) error {
	if err := s.db.Delete(&sessionRecord{}, "token = ?", token).Error; err != nil {
		return fmt.Errorf("localstore: delete session: %w", err)
	}
	return nil
}

// StartCleanup launches a background loop that removes expired sessions at
// the given interval. Call StopCleanup during shutdown.
func (s *Store) StartCleanup(interval time.Duration) {
	if s.stopCleanup != nil {
		return
	}
	if interval <= 0 {
		interval = time.Hour
	}
	s.stopCleanup = make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopCleanup:
				return
			case <-ticker.C:
				if err := s.deleteExpired(); err != nil {
					applog.Error(context.Background(), "session cleanup failed", "error", err)
				}
			}
		}
	}()
}

// StopCleanup terminates the cleanup loop. Safe to call when cleanup was
// never started.
func (s *Store) StopCleanup() {
	if s.stopCleanup == nil {
		return
	}
	close(s.stopCleanup)
	s.stopCleanup = nil
}

func (s *Store) deleteExpired() error {
	return s.db.Delete(&sessionRecord{}, "expiry <= ?", time.Now().UTC()).Error
}

// Close stops cleanup and closes the underlying database.
func (s *Store) Close() error {
	s.StopCleanup()
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("localstore: get sql db: %w", err)
	}
	return sqlDB.Close()
}
