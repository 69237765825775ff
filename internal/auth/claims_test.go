package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-for-jwt-signing"

func TestSignAndParseSessionToken(t *testing.T) {
	user := &User{
		ID:       "usr-001",
		Username: "alice",
		Role:     RoleAdmin,
	}

	token, err := SignSessionToken(user, testSecret)
	if err != nil {
		t.Fatalf("SignSessionToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("SignSessionToken() returned empty token")
	}

	claims, err := ParseSessionToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseSessionToken() error = %v", err)
	}

	if claims.Subject != "usr-001" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "usr-001")
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, want %q", claims.Username, "alice")
	}
	if claims.Role != RoleAdmin {
		t.Errorf("Role = %q, want %q", claims.Role, RoleAdmin)
	}
}

func TestSignSessionToken_ExpiryIsOneHour(t *testing.T) {
	user := &User{ID: "usr-001", Username: "alice", Role: RoleUser}

	token, err := SignSessionToken(user, testSecret)
	if err != nil {
		t.Fatalf("SignSessionToken() error = %v", err)
	}

	claims, err := ParseSessionToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseSessionToken() error = %v", err)
	}

	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if ttl != SessionTokenTTL {
		t.Errorf("expiry - issued = %v, want %v", ttl, SessionTokenTTL)
	}
}

func TestParseSessionToken_WrongSecret(t *testing.T) {
	user := &User{ID: "usr-001", Username: "alice", Role: RoleUser}

	token, err := SignSessionToken(user, "correct-secret")
	if err != nil {
		t.Fatalf("SignSessionToken() error = %v", err)
	}

	_, err = ParseSessionToken(token, "wrong-secret")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("error = %v, want ErrTokenInvalid", err)
	}
}

func TestParseSessionToken_Expired(t *testing.T) {
	// Sign a token whose expiry is already in the past.
	now := time.Now().Add(-2 * time.Hour)
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "usr-001",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTokenTTL)),
		},
		Username: "alice",
		Role:     RoleUser,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing expired token: %v", err)
	}

	_, err = ParseSessionToken(signed, testSecret)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("error = %v, want ErrTokenExpired", err)
	}
}

func TestParseSessionToken_Malformed(t *testing.T) {
	for _, tok := range []string{"", "abc.def", "not-a-valid-jwt"} {
		if _, err := ParseSessionToken(tok, testSecret); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("ParseSessionToken(%q) error = %v, want ErrTokenInvalid", tok, err)
		}
	}
}

func TestParseSessionToken_MissingClaims(t *testing.T) {
	now := time.Now()

	// No subject
	noSub := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTokenTTL)),
		},
		Username: "alice",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, noSub).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	if _, err := ParseSessionToken(signed, testSecret); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("token without subject: error = %v, want ErrTokenInvalid", err)
	}

	// No username
	noUser := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "usr-001",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTokenTTL)),
		},
	}
	signed, err = jwt.NewWithClaims(jwt.SigningMethodHS256, noUser).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	if _, err := ParseSessionToken(signed, testSecret); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("token without username: error = %v, want ErrTokenInvalid", err)
	}
}

func TestParseSessionToken_RejectsUnexpectedAlgorithm(t *testing.T) {
	// alg=none tokens must never validate.
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "usr-001",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Username: "alice",
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing none token: %v", err)
	}

	if _, err := ParseSessionToken(unsigned, testSecret); err == nil {
		t.Error("ParseSessionToken() should reject alg=none tokens")
	}
}
