package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/gestion-comercial/backoffice/internal/core/domain"
	"github.com/gestion-comercial/backoffice/internal/core/ports"
	"github.com/gestion-comercial/backoffice/internal/pkg/metrics"
)

const tokenTypeBearer = "Bearer"

// AuthService is the authentication gate: rate-limit check, credential
// verification, token issuance and rate-limiter bookkeeping, in that order.
type AuthService struct {
	store     ports.CredentialStore
	codec     ports.TokenCodec
	limiter   ports.RateLimiter
	passwords ports.PasswordVerifier
	events    ports.LoginEventPublisher
	clock     clock.Clock
	log       zerolog.Logger
}

// AuthOption customises an AuthService.
type AuthOption func(*AuthService)

// WithEventPublisher sends every login outcome to the audit trail.
func WithEventPublisher(p ports.LoginEventPublisher) AuthOption {
	return func(s *AuthService) {
		if p != nil {
			s.events = p
		}
	}
}

// WithClock overrides the clock used to timestamp audit events.
func WithClock(c clock.Clock) AuthOption {
	return func(s *AuthService) {
		if c != nil {
			s.clock = c
		}
	}
}

func NewAuthService(
	store ports.CredentialStore,
	codec ports.TokenCodec,
	limiter ports.RateLimiter,
	passwords ports.PasswordVerifier,
	log zerolog.Logger,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{
		store:     store,
		codec:     codec,
		limiter:   limiter,
		passwords: passwords,
		clock:     clock.New(),
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login authenticates in.Identifier with in.Password.
//
// It returns domain.ErrTooManyAttempts when either the identity+origin key or
// the bare origin key is locked out (no credential check is made), and
// domain.ErrBadCredentials for both an unknown identifier and a wrong password.
// Failed attempts are registered on both keys before the rejection is returned.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	identityKey := in.Identifier + ":" + in.Origin
	originKey := in.Origin

	// 1. Lockout check, before touching the store.
	if s.limiter.IsBlocked(identityKey) || s.limiter.IsBlocked(originKey) {
		s.record(in, domain.OutcomeTooManyAttempts, "")
		s.log.Warn().Str("login_id", in.Identifier).Str("origin", in.Origin).Msg("login rejected: locked out")
		return nil, domain.ErrTooManyAttempts
	}

	// 2. Resolve and verify.
	principal, err := ResolvePrincipal(ctx, s.store, in.Identifier)
	if err != nil && !errors.Is(err, domain.ErrPrincipalNotFound) {
		s.record(in, domain.OutcomeError, "")
		return nil, fmt.Errorf("login: %w", err)
	}

	var matched bool
	if principal.IsZero() {
		s.passwords.Decoy(in.Password)
	} else {
		matched = s.passwords.Verify(principal.CredentialHash(), in.Password)
	}

	if !matched {
		s.limiter.RegisterFailedAttempt(identityKey)
		s.limiter.RegisterFailedAttempt(originKey)
		s.record(in, domain.OutcomeBadCredentials, "")
		s.log.Info().Str("login_id", in.Identifier).Str("origin", in.Origin).Msg("login rejected: bad credentials")
		return nil, domain.ErrBadCredentials
	}

	// 3. Success resets both keys independently.
	s.limiter.RegisterSuccessfulLogin(identityKey)
	s.limiter.RegisterSuccessfulLogin(originKey)

	token, expiresAt, err := s.codec.Issue(principal)
	if err != nil {
		s.record(in, domain.OutcomeError, "")
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	result := &ports.LoginResult{
		Token:     token,
		TokenType: tokenTypeBearer,
		ExpiresAt: expiresAt,
		Role:      principal.Role(),
		LoginID:   principal.LoginID(),
	}

	// 4. Presentation data only; a failure here does not abort the login.
	if prof, err := lookupProfile(ctx, s.store, principal.LoginID()); err != nil {
		s.log.Warn().Err(err).Str("login_id", principal.LoginID()).Msg("profile lookup failed")
	} else {
		result.DisplayName = &prof.name
		result.SubjectID = &prof.id
	}

	s.record(in, domain.OutcomeSuccess, principal.Role())
	s.log.Info().
		Str("login_id", principal.LoginID()).
		Str("role", string(principal.Role())).
		Str("account_kind", string(principal.AccountKind())).
		Msg("login succeeded")

	return result, nil
}

func (s *AuthService) record(in ports.LoginInput, outcome domain.LoginOutcome, role domain.Role) {
	metrics.LoginAttemptsTotal.WithLabelValues(string(outcome)).Inc()
	if s.events == nil {
		return
	}
	s.events.Publish(domain.LoginEvent{
		LoginID:    in.Identifier,
		Origin:     in.Origin,
		Outcome:    outcome,
		Role:       role,
		OccurredAt: s.clock.Now().UTC(),
	})
}
