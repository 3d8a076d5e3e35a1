package history

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Match is the stored form of a Result.
type Match struct {
	ID         uint      `gorm:"primaryKey"`
	GameID     string    `gorm:"index;not null"`
	P1Name     string    `gorm:"type:varchar(64);not null"`
	P2Name     string    `gorm:"type:varchar(64);not null"`
	Winner     string    `gorm:"type:varchar(2)"` // empty when abandoned
	Reason     string    `gorm:"type:varchar(16);check:reason IN ('victory','abandoned')"`
	P1Shots    int       `gorm:"default:0"`
	P2Shots    int       `gorm:"default:0"`
	P1Hits     int       `gorm:"default:0"`
	P2Hits     int       `gorm:"default:0"`
	StartedAt  time.Time `gorm:"not null"`
	FinishedAt time.Time `gorm:"index;not null"`
	CreatedAt  time.Time
}

func matchFromResult(r Result) Match {
	return Match{
		GameID:     r.GameID,
		P1Name:     r.P1Name,
		P2Name:     r.P2Name,
		Winner:     r.Winner,
		Reason:     string(r.Reason),
		P1Shots:    r.P1Shots,
		P2Shots:    r.P2Shots,
		P1Hits:     r.P1Hits,
		P2Hits:     r.P2Hits,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}

// Store writes finished matches to postgres through gorm.
type Store struct {
	db *gorm.DB
}

// OpenStore connects to dsn and migrates the matches table.
func OpenStore(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return NewStore(db)
}

func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Match{}); err != nil {
		return nil, fmt.Errorf("migrate matches: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Record(ctx context.Context, r Result) error {
	m := matchFromResult(r)
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("insert match %s: %w", r.GameID, err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
