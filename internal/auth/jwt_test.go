package auth

import (
	"errors"
	"testing"
	"time"

	"crimewatch/config"

	"github.com/golang-jwt/jwt/v5"
)

func testConfig() *config.JWTConfig {
	return &config.JWTConfig{AccessSecret: "secret", AccessExpiry: time.Minute, Issuer: "crimewatch"}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	cfg := testConfig()
	tok, err := GenerateAccessToken(cfg, 42, "a@b.c", "ADMIN")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ParseAccessToken(cfg, tok)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "a@b.c" || claims.Role != "ADMIN" || claims.Subject != "42" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseAccessToken_Rejects(t *testing.T) {
	cfg := testConfig()
	good, _ := GenerateAccessToken(cfg, 1, "", "USER")

	other := *cfg
	other.AccessSecret = "different"
	if _, err := ParseAccessToken(&other, good); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong secret: err = %v", err)
	}

	other = *cfg
	other.Issuer = "someone-else"
	if _, err := ParseAccessToken(&other, good); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong issuer: err = %v", err)
	}

	expired := *cfg
	expired.AccessExpiry = -time.Minute
	old, _ := GenerateAccessToken(&expired, 1, "", "USER")
	if _, err := ParseAccessToken(cfg, old); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expired: err = %v", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1})
	s, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := ParseAccessToken(cfg, s); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("alg none: err = %v", err)
	}

	if _, err := ParseAccessToken(cfg, "garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage: err = %v", err)
	}
}

func TestParseAccessToken_RequiresUser(t *testing.T) {
	cfg := testConfig()
	tok, _ := GenerateAccessToken(cfg, 0, "", "USER")
	if _, err := ParseAccessToken(cfg, tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("user 0: err = %v", err)
	}
}
