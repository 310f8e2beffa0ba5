package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateKey    = errors.New("duplicate key")
	ErrVersionConflict = errors.New("version conflict")
)

// Store groups the repositories that must change together.
// Implementations: PostgreSQL (production) or in-memory (local dev / tests).
type Store interface {
	Accounts() AccountRepository
	Events() EventRepository
	// Transaction runs fn against a Store bound to a single transaction.
	// Any error returned by fn rolls the whole unit back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type pgStore struct {
	db *gorm.DB
}

func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

func (s *pgStore) Accounts() AccountRepository { return NewPGAccountRepository(s.db) }

func (s *pgStore) Events() EventRepository { return NewPGEventRepository(s.db) }

func (s *pgStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&pgStore{db: tx})
	})
}

func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey
	default:
		return err
	}
}
