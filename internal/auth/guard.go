package auth

import (
	"slices"
	"strings"

	"github.com/taskhub-dev/taskhub/internal/apperr"
	"github.com/taskhub-dev/taskhub/internal/models"
)

var (
	ErrMissingToken   = apperr.New(apperr.KindAuthenticationMissing, "Authorization token is required")
	ErrInvalidToken   = apperr.New(apperr.KindAuthenticationInvalid, "Invalid or expired token")
	ErrRoleNotAllowed = apperr.New(apperr.KindAuthorizationDenied, "You do not have permission to access this resource")
)

// Authorize resolves an Authorization header value into an identity whose
// role is in allowed. It has no side effects.
func (t *TokenIssuer) Authorize(header string, allowed []models.Role) (Identity, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return Identity{}, ErrMissingToken
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return Identity{}, ErrInvalidToken
	}

	identity, err := t.Verify(strings.TrimSpace(token))
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	if !slices.Contains(allowed, identity.Role) {
		return Identity{}, ErrRoleNotAllowed
	}

	return identity, nil
}
