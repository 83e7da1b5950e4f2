package identity

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/quickdesk/ticket-engine/internal/domain"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestParseValidToken(t *testing.T) {
	parser := NewTokenParser(testSecret)
	tokenStr := signToken(t, testSecret, Claims{
		IsStaff:    true,
		StaffRole:  domain.StaffRoleAgent,
		Department: domain.DepartmentTechnical,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	caller, err := parser.Parse(tokenStr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if caller.UserID != "user-1" || !caller.IsStaff || caller.StaffRole != domain.StaffRoleAgent {
		t.Errorf("unexpected identity: %+v", caller)
	}
	if caller.Department != domain.DepartmentTechnical {
		t.Errorf("unexpected department: %s", caller.Department)
	}
}

func TestParseRejectsBadTokens(t *testing.T) {
	parser := NewTokenParser(testSecret)

	wrongSecret := signToken(t, "other-secret", Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})
	if _, err := parser.Parse(wrongSecret); err == nil {
		t.Error("token signed with a different secret must be rejected")
	}

	expired := signToken(t, testSecret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	if _, err := parser.Parse(expired); err == nil {
		t.Error("expired token must be rejected")
	}

	noSubject := signToken(t, testSecret, Claims{})
	if _, err := parser.Parse(noSubject); err == nil {
		t.Error("token without a subject must be rejected")
	}

	if _, err := parser.Parse("not-a-token"); err == nil {
		t.Error("garbage must be rejected")
	}
}
