package google

import (
	"context"
	"strings"

	"github.com/lost-found-api/internal/domain"
	"google.golang.org/api/idtoken"
)

// Verifier verifies Google ID tokens against a specific client ID.
type Verifier struct {
	clientID string
}

func NewVerifier(clientID string) *Verifier {
	return &Verifier{clientID: clientID}
}

// Verify validates the Google ID token and returns the identity it asserts.
func (v *Verifier) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	if strings.Count(token, ".") != 2 {
		return nil, domain.ErrTokenMalformed
	}
	p, err := idtoken.Validate(ctx, token, v.clientID)
	if err != nil {
		if strings.Contains(err.Error(), "expired") {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	return identityFromClaims(p.Subject, p.Claims), nil
}

func identityFromClaims(sub string, claims map[string]interface{}) *domain.Identity {
	email, _ := claims["email"].(string)
	emailVerified, _ := claims["email_verified"].(bool)
	return &domain.Identity{UserID: sub, Email: email, EmailVerified: emailVerified}
}
