package users

import (
	"context"
	"strings"

	"github.com/praetor-auth/praetor/internal/shared"
)

// PasswordHasher abstracts credential hashing for password changes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// UpdateInput carries a profile update request. NewPassword is optional;
// when set, CurrentPassword must verify against the stored credential.
type UpdateInput struct {
	Email           string
	FirstName       string
	LastName        string
	MiddleName      string
	CurrentPassword string
	NewPassword     string
}

// Service handles account management business logic.
type Service struct {
	repo   RepositoryPort
	hasher PasswordHasher
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, hasher PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

// ListUsers returns all accounts.
func (s *Service) ListUsers(ctx context.Context) ([]Profile, error) {
	return s.repo.ListUsers(ctx)
}

// GetProfile returns the account for id.
func (s *Service) GetProfile(ctx context.Context, id int64) (*Profile, error) {
	return s.repo.GetProfile(ctx, id)
}

// UpdateProfile applies a profile edit. A password change must prove
// knowledge of the current password first; a wrong current password is a
// credential failure, not a validation one.
func (s *Service) UpdateProfile(ctx context.Context, id int64, in UpdateInput) (*Profile, error) {
	upd := ProfileUpdate{
		Email:      strings.TrimSpace(in.Email),
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		MiddleName: strings.TrimSpace(in.MiddleName),
	}
	if in.NewPassword != "" {
		current, err := s.repo.PasswordHash(ctx, id)
		if err != nil {
			return nil, err
		}
		if !s.hasher.Verify(in.CurrentPassword, current) {
			return nil, shared.ErrInvalidCredentials
		}
		hash, err := s.hasher.Hash(in.NewPassword)
		if err != nil {
			return nil, err
		}
		upd.PasswordHash = hash
	}
	return s.repo.UpdateProfile(ctx, id, upd)
}

// Deactivate soft-deletes the account and revokes all of its sessions.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.Deactivate(ctx, id)
}
