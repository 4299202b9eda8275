package services

import (
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/argon2"
)

func testTokens() TokenService {
	return TokenService{
		Secret:     []byte("test-secret-key"),
		Issuer:     "mindhaven-test",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	tokens := testTokens()
	hash, err := tokens.HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !tokens.VerifyPassword("s3cret-pass", hash) {
		t.Error("correct password rejected")
	}
	if tokens.VerifyPassword("wrong-pass", hash) {
		t.Error("wrong password accepted")
	}
}

func TestVerifyPasswordArgon2id(t *testing.T) {
	tokens := testTokens()
	salt := []byte("0123456789abcdef")
	key := argon2.IDKey([]byte("legacy-pass"), salt, 2, 19456, 1, 32)
	encoded := fmt.Sprintf("$argon2id$v=19$m=19456,t=2,p=1$%s$%s",
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))

	if !tokens.VerifyPassword("legacy-pass", encoded) {
		t.Error("valid argon2id hash rejected")
	}
	if tokens.VerifyPassword("other-pass", encoded) {
		t.Error("wrong password accepted against argon2id hash")
	}
	if tokens.VerifyPassword("legacy-pass", "$argon2id$garbage") {
		t.Error("malformed argon2id hash accepted")
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tokens := testTokens()
	signed, exp, err := tokens.CreateAccessToken("user-1", "a@b.com", RoleStaff)
	if err != nil {
		t.Fatalf("CreateAccessToken: %v", err)
	}
	if exp <= time.Now().Unix() {
		t.Errorf("expiry %d is not in the future", exp)
	}

	token, claims, err := tokens.ParseToken(signed)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if !token.Valid {
		t.Fatal("token not valid")
	}
	if claims["sub"] != "user-1" {
		t.Errorf("sub = %v, want user-1", claims["sub"])
	}
	if claims["typ"] != "access" {
		t.Errorf("typ = %v, want access", claims["typ"])
	}
	if claims["email"] != "a@b.com" {
		t.Errorf("email = %v, want a@b.com", claims["email"])
	}
	if claims["role"] != RoleStaff {
		t.Errorf("role = %v, want %s", claims["role"], RoleStaff)
	}
}

func TestRefreshTokenTyp(t *testing.T) {
	tokens := testTokens()
	signed, err := tokens.CreateRefreshToken("user-2")
	if err != nil {
		t.Fatalf("CreateRefreshToken: %v", err)
	}
	_, claims, err := tokens.ParseToken(signed)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims["typ"] != "refresh" {
		t.Errorf("typ = %v, want refresh", claims["typ"])
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tokens := testTokens()
	signed, _, err := tokens.CreateAccessToken("user-3", "c@d.com", RoleUser)
	if err != nil {
		t.Fatalf("CreateAccessToken: %v", err)
	}

	other := testTokens()
	other.Secret = []byte("different-secret")
	if _, _, err := other.ParseToken(signed); err == nil {
		t.Error("token signed with another secret was accepted")
	}
}

func TestParseTokenRejectsWrongIssuer(t *testing.T) {
	tokens := testTokens()
	signed, _, err := tokens.CreateAccessToken("user-4", "e@f.com", RoleUser)
	if err != nil {
		t.Fatalf("CreateAccessToken: %v", err)
	}

	other := testTokens()
	other.Issuer = "someone-else"
	if _, _, err := other.ParseToken(signed); err == nil {
		t.Error("token from another issuer was accepted")
	}
}
