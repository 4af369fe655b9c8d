package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/erazemk/najdeno/internal/model"
)

var testUser = &model.User{
	ID:    "4b8f0c1e-1d2a-4c3b-9e5f-000000000001",
	Email: "admin@example.com",
	Name:  "Admin User",
	Role:  model.RoleAdmin,
}

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"

	token, err := GenerateToken(secret, testUser)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if claims.UserID != testUser.ID {
		t.Errorf("expected user_id %q, got %q", testUser.ID, claims.UserID)
	}
	if claims.Email != testUser.Email || claims.Name != testUser.Name {
		t.Errorf("unexpected identity %q <%s>", claims.Name, claims.Email)
	}
	if claims.Role != model.RoleAdmin {
		t.Errorf("expected role 'admin', got %q", claims.Role)
	}
	if claims.ID == "" {
		t.Error("expected a JTI")
	}
}

func TestClaimsActor(t *testing.T) {
	claims := &Claims{UserID: "u-1", Email: "user@example.com", Name: "John Doe", Role: model.RoleUser}

	actor := claims.Actor()
	want := model.Person{ID: "u-1", Name: "John Doe", Email: "user@example.com"}
	if actor.Person != want {
		t.Errorf("expected %+v, got %+v", want, actor.Person)
	}
	if actor.IsAdmin() {
		t.Error("expected user actor not to be admin")
	}
}

func TestTokensAreUnique(t *testing.T) {
	a, _ := GenerateToken("secret", testUser)
	b, _ := GenerateToken("secret", testUser)
	ca, _ := ValidateToken("secret", a)
	cb, _ := ValidateToken("secret", b)
	if ca.ID == cb.ID {
		t.Error("expected distinct JTIs")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _ := GenerateToken("secret1", testUser)

	_, err := ValidateToken("secret2", token)
	if err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := ValidateToken("secret", "not-a-token")
	if err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	claims := Claims{
		UserID: "u-1",
		Role:   model.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("signing: %v", err)
	}

	if _, err := ValidateToken("secret", signed); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestValidateTokenWithoutUser(t *testing.T) {
	claims := Claims{
		Role: model.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))

	if _, err := ValidateToken("secret", signed); err == nil {
		t.Error("expected error for token without user id")
	}
}

func TestTokenExpiry(t *testing.T) {
	secret := "test"
	token, _ := GenerateToken(secret, testUser)
	claims, _ := ValidateToken(secret, token)

	diff := time.Now().Add(TokenExpiry).Sub(claims.ExpiresAt.Time)
	if diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("token expiry too far from expected: diff=%v", diff)
	}
}
