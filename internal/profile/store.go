package profile

import (
	"context"
	"fmt"

	"github.com/verte-zerg/typemaster/internal/logger"
)

// Repository persists the raw profile document.
type Repository interface {
	LoadProfile(ctx context.Context) ([]byte, error)
	SaveProfile(ctx context.Context, version int, doc []byte) error
}

// Store reads and writes profiles with best-effort semantics: reads never
// fail and a failed write is simply superseded by the next one.
type Store struct {
	repo Repository
	log  *logger.Logger
}

// NewStore wraps a repository.
func NewStore(repo Repository, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{repo: repo, log: log}
}

// Load returns the stored profile or Default when nothing usable is stored.
func (s *Store) Load(ctx context.Context) Profile {
	data, err := s.repo.LoadProfile(ctx)
	if err != nil {
		s.log.Warn("failed to read profile, using defaults", "error", err)
		return Default()
	}
	return Decode(data)
}

// Save persists the profile. Errors are logged and returned for callers that care.
func (s *Store) Save(ctx context.Context, p Profile) error {
	doc, err := Encode(p)
	if err != nil {
		s.log.Error("failed to encode profile", "error", err)
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := s.repo.SaveProfile(ctx, Version, doc); err != nil {
		s.log.Warn("failed to save profile", "error", err)
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
