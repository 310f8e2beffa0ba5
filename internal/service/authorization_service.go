package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ugurkiymetli/secret-santa/internal/model"
	"github.com/ugurkiymetli/secret-santa/internal/repository"
	jwtpkg "github.com/ugurkiymetli/secret-santa/pkg/jwt"
)

const revokedSessionPrefix = "revoked_session:"

// AuthorizationGate verifies session tokens and role requirements. Every
// verification failure is reported as ErrUnauthorized, whatever the cause.
type AuthorizationGate interface {
	IssueSession(p Principal) (string, error)
	VerifySession(ctx context.Context, token string) (*Principal, error)
	RequireRole(ctx context.Context, token string, roles ...model.Role) (*Principal, error)
	RevokeSession(ctx context.Context, token string) error
	// AuthorizeAccountCreation returns the caller, or (nil, nil) when the
	// token is unusable but the account store is still empty.
	AuthorizeAccountCreation(ctx context.Context, token string) (*Principal, error)
	SessionTTL() time.Duration
}

type authorizationGate struct {
	jwtManager  *jwtpkg.Manager
	stateStore  repository.StateStore
	accountRepo repository.AccountRepository
	logger      *zap.Logger
}

func NewAuthorizationGate(
	jwtManager *jwtpkg.Manager,
	stateStore repository.StateStore,
	accountRepo repository.AccountRepository,
	logger *zap.Logger,
) AuthorizationGate {
	return &authorizationGate{
		jwtManager:  jwtManager,
		stateStore:  stateStore,
		accountRepo: accountRepo,
		logger:      logger,
	}
}

func (g *authorizationGate) IssueSession(p Principal) (string, error) {
	token, _, err := g.jwtManager.GenerateSessionToken(p.AccountID, p.Handle, string(p.Role))
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return token, nil
}

func (g *authorizationGate) SessionTTL() time.Duration {
	return g.jwtManager.SessionTTL()
}

func (g *authorizationGate) VerifySession(ctx context.Context, token string) (*Principal, error) {
	p, _, err := g.verify(ctx, token)
	return p, err
}

func (g *authorizationGate) verify(ctx context.Context, token string) (*Principal, *jwtpkg.Claims, error) {
	if token == "" {
		return nil, nil, ErrUnauthorized
	}
	claims, err := g.jwtManager.Validate(token)
	if err != nil {
		g.logger.Debug("session rejected", zap.Error(err))
		return nil, nil, ErrUnauthorized
	}
	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, nil, ErrUnauthorized
	}
	role := model.Role(claims.Role)
	if !role.Valid() {
		return nil, nil, ErrUnauthorized
	}

	revoked, err := g.stateStore.Exists(ctx, revokedSessionPrefix+claims.ID)
	if err != nil {
		// Fail closed: an unreachable denylist must not let revoked tokens in.
		g.logger.Warn("session denylist unavailable", zap.Error(err))
		return nil, nil, ErrUnauthorized
	}
	if revoked {
		return nil, nil, ErrUnauthorized
	}

	return &Principal{AccountID: accountID, Handle: claims.Handle, Role: role}, claims, nil
}

func (g *authorizationGate) RequireRole(ctx context.Context, token string, roles ...model.Role) (*Principal, error) {
	p, err := g.VerifySession(ctx, token)
	if err != nil {
		return nil, err
	}
	if !p.HasRole(roles...) {
		return nil, ErrUnauthorized
	}
	return p, nil
}

func (g *authorizationGate) RevokeSession(ctx context.Context, token string) error {
	_, claims, err := g.verify(ctx, token)
	if err != nil {
		return err
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < time.Second {
		ttl = time.Second
	}
	if err := g.stateStore.Set(ctx, revokedSessionPrefix+claims.ID, []byte(claims.Subject), ttl); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (g *authorizationGate) AuthorizeAccountCreation(ctx context.Context, token string) (*Principal, error) {
	if p, err := g.VerifySession(ctx, token); err == nil {
		return p, nil
	}
	n, err := g.accountRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}
	if n > 0 {
		return nil, ErrUnauthorized
	}
	g.logger.Info("bootstrap account creation permitted")
	return nil, nil
}

var _ AuthorizationGate = (*authorizationGate)(nil)
