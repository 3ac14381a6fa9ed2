package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/praetor-auth/praetor/internal/sessions"
	"github.com/praetor-auth/praetor/internal/shared"
	"github.com/praetor-auth/praetor/internal/token"
)

// RegisterInput carries validated registration fields. Password strength and
// confirmation matching are the HTTP layer's job; the service only enforces
// identity uniqueness.
type RegisterInput struct {
	Email      string
	FirstName  string
	LastName   string
	MiddleName string
	Password   string
}

// LoginObserver counts login outcomes for monitoring.
type LoginObserver interface {
	ObserveLogin(outcome string)
}

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	hasher   Hasher
	codec    *token.Codec
	ledger   *sessions.Service
	throttle *LoginThrottle
	metrics  LoginObserver
	logger   *slog.Logger
}

// NewService constructs a Service. throttle and metrics may be nil.
func NewService(repo Repository, hasher Hasher, codec *token.Codec, ledger *sessions.Service, throttle *LoginThrottle, metrics LoginObserver, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		hasher:   hasher,
		codec:    codec,
		ledger:   ledger,
		throttle: throttle,
		metrics:  metrics,
		logger:   logger,
	}
}

func (s *Service) observeLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveLogin(outcome)
	}
}

// Register creates an active user with the default role attached when one
// exists, then logs the account in and returns the issued pair. A taken
// email surfaces as ErrConflict.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, TokenPair, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	user, err := s.repo.CreateUser(ctx, NewUser{
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		MiddleName:   in.MiddleName,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return user, pair, nil
}

// Login authenticates email/password credentials and issues a token pair. An
// unknown email, an inactive account, a wrong password and a throttled
// account all return ErrInvalidCredentials; the cause is only logged.
func (s *Service) Login(ctx context.Context, email, password string) (TokenPair, *User, error) {
	if s.throttle.Blocked(ctx, email) {
		s.logger.Warn("login attempt throttled")
		s.observeLogin("throttled")
		return TokenPair{}, nil, shared.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return TokenPair{}, nil, err
		}
		s.throttle.RecordFailure(ctx, email)
		s.observeLogin("failure")
		return TokenPair{}, nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		s.throttle.RecordFailure(ctx, email)
		s.observeLogin("failure")
		return TokenPair{}, nil, shared.ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		s.throttle.RecordFailure(ctx, email)
		s.observeLogin("failure")
		return TokenPair{}, nil, shared.ErrInvalidCredentials
	}
	s.throttle.Reset(ctx, email)

	pair, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return TokenPair{}, nil, err
	}
	s.observeLogin("success")
	return pair, user, nil
}

// issuePair creates an access/refresh pair and a ledger record for the
// access token only.
func (s *Service) issuePair(ctx context.Context, userID int64) (TokenPair, error) {
	access, claims, err := s.codec.Issue(userID, token.KindAccess)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, _, err := s.codec.Issue(userID, token.KindRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	expiresAt := claims.ExpiresAt.Time
	if _, err := s.ledger.Create(ctx, userID, access, expiresAt); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: expiresAt}, nil
}

// Logout invalidates the ledger record for the presented access token. An
// unknown token is an error, not a silent no-op: the caller expects
// confirmation that something was revoked.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	found, err := s.ledger.Invalidate(ctx, rawToken)
	if err != nil {
		return err
	}
	if !found {
		return shared.ErrInvalidToken
	}
	return nil
}

// Refresh exchanges a valid refresh token for a new pair. The subject must
// still exist and be active. The old refresh token is not revoked: refresh
// tokens are stateless and live until natural expiry.
func (s *Service) Refresh(ctx context.Context, rawRefresh string) (TokenPair, error) {
	claims, err := s.codec.Verify(rawRefresh, token.KindRefresh)
	if err != nil {
		return TokenPair{}, shared.ErrInvalidToken
	}
	userID, err := claims.UserID()
	if err != nil {
		return TokenPair{}, shared.ErrInvalidToken
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return TokenPair{}, shared.ErrInvalidToken
		}
		return TokenPair{}, err
	}
	if !user.IsActive {
		return TokenPair{}, shared.ErrInvalidToken
	}
	return s.issuePair(ctx, user.ID)
}

// UserByID fetches a user by id.
func (s *Service) UserByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// Authenticate resolves a raw access token to its user. The codec check
// alone is not enough: the ledger is the revocation authority, and an
// inactive user never authenticates even with a structurally valid token.
func (s *Service) Authenticate(ctx context.Context, rawAccess string) (*User, error) {
	if _, err := s.codec.Verify(rawAccess, token.KindAccess); err != nil {
		return nil, shared.ErrInvalidToken
	}
	record, err := s.ledger.LookupValid(ctx, rawAccess)
	if err != nil {
		return nil, err
	}
	if record == nil {
		s.logger.Debug("token rejected by session ledger")
		return nil, shared.ErrInvalidToken
	}
	user, err := s.repo.FindByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		s.logger.Debug("token rejected for inactive user", slog.Int64("user_id", user.ID))
		return nil, shared.ErrInvalidToken
	}
	return user, nil
}
