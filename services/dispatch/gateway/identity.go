package gateway

import (
	"context"
	"fmt"

	"github.com/evgo/dispatch/internal/pkg/jwt"
	"github.com/evgo/dispatch/internal/pkg/models"
	"github.com/evgo/dispatch/services/dispatch"
)

// NewIdentityVerifier returns the JWT verifier when identity enforcement is
// on and a verifier that trusts the claimed identity otherwise.
func NewIdentityVerifier(cfg *models.Config) dispatch.IdentityVerifier {
	if cfg.Identity.Enforce {
		return NewJWTIdentity(cfg.JWT)
	}
	return TrustedIdentity{}
}

// JWTIdentity verifies HS256 tokens carried in role frames
type JWTIdentity struct {
	cfg models.JWTConfig
}

func NewJWTIdentity(cfg models.JWTConfig) *JWTIdentity {
	return &JWTIdentity{cfg: cfg}
}

// Verify validates the token and requires its role claim to match the
// claimed role. A userId sent next to the token must agree with it.
func (v *JWTIdentity) Verify(ctx context.Context, credential models.Credential) (*models.Identity, error) {
	if credential.Token == "" {
		return nil, fmt.Errorf("%w: token is required", dispatch.ErrAuthFailure)
	}

	claims, err := jwt.ValidateToken(credential.Token, v.cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dispatch.ErrAuthFailure, err)
	}
	if models.Role(claims.Role) != credential.Role {
		return nil, fmt.Errorf("%w: token role %q cannot join as %q", dispatch.ErrAuthFailure, claims.Role, credential.Role)
	}
	if credential.UserID != "" && credential.UserID != claims.UserID {
		return nil, fmt.Errorf("%w: userId does not match token", dispatch.ErrAuthFailure)
	}

	return &models.Identity{
		UserID: claims.UserID,
		Role:   credential.Role,
	}, nil
}

// TrustedIdentity accepts the claimed identity as is
type TrustedIdentity struct{}

func (TrustedIdentity) Verify(ctx context.Context, credential models.Credential) (*models.Identity, error) {
	return &models.Identity{
		UserID: credential.UserID,
		Role:   credential.Role,
	}, nil
}
