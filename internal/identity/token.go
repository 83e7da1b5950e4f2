package identity

import (
	"errors"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/quickdesk/ticket-engine/internal/domain"
)

// TokenParser validates gateway-issued JWTs and extracts the caller
// identity. Issuance lives in the upstream auth service.
type TokenParser struct {
	secret []byte
}

// NewTokenParser builds a parser for the shared signing secret.
func NewTokenParser(secret string) *TokenParser {
	return &TokenParser{secret: []byte(secret)}
}

// Claims describes the JWT payload the gateway issues.
type Claims struct {
	IsStaff    bool              `json:"is_staff"`
	StaffRole  domain.StaffRole  `json:"staff_role,omitempty"`
	Department domain.Department `json:"department,omitempty"`
	jwt.RegisteredClaims
}

// Parse validates the token and returns the embedded identity.
func (p *TokenParser) Parse(tokenStr string) (*Identity, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Subject == "" {
		return nil, errors.New("token missing subject")
	}
	return &Identity{
		UserID:     claims.Subject,
		IsStaff:    claims.IsStaff,
		StaffRole:  claims.StaffRole,
		Department: claims.Department,
	}, nil
}
