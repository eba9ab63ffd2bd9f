// Package identity resolves bearer tokens to platform identities.
//
// Identity management itself (account creation, sessions) lives outside the
// core; this package only wraps the token verifier the platform trusts and
// maps its claims onto the roles and account types the booking core needs.
package identity

import (
	"context"
	"errors"
	"strings"

	"romuo/internal/infra"
	"romuo/internal/types"
)

type Role string

const (
	RolePassenger Role = "passenger"
	RoleDriver    Role = "driver"
	RoleAdmin     Role = "admin"
)

type AccountType string

const (
	AccountPersonal AccountType = "personal"
	AccountBusiness AccountType = "business"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrSessionExpired  = errors.New("session expired")
)

// Identity is the resolved caller: who they are, what they may do, and how
// their rides are billed.
type Identity struct {
	UserID      types.ID
	Role        Role
	AccountType AccountType
	Name        string
	Email       string
}

// Resolver exchanges a raw bearer token for an Identity.
type Resolver interface {
	Resolve(ctx context.Context, token string) (Identity, error)
}

type firebaseResolver struct {
	verifier infra.TokenVerifier
}

func NewFirebaseResolver(verifier infra.TokenVerifier) Resolver {
	return &firebaseResolver{verifier: verifier}
}

func (r *firebaseResolver) Resolve(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrUnauthenticated
	}
	t, err := r.verifier.VerifyIDToken(ctx, token)
	if err != nil {
		if strings.Contains(err.Error(), "expired") {
			return Identity{}, ErrSessionExpired
		}
		return Identity{}, ErrUnauthenticated
	}
	id := Identity{
		UserID:      types.ID(t.UID),
		Role:        RolePassenger,
		AccountType: AccountPersonal,
	}
	if v, ok := t.Claims["role"].(string); ok {
		switch Role(v) {
		case RoleDriver, RoleAdmin:
			id.Role = Role(v)
		}
	}
	if v, ok := t.Claims["account_type"].(string); ok && AccountType(v) == AccountBusiness {
		id.AccountType = AccountBusiness
	}
	if v, ok := t.Claims["name"].(string); ok {
		id.Name = v
	}
	if v, ok := t.Claims["email"].(string); ok {
		id.Email = v
	}
	return id, nil
}
