package security

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
)

const googleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

// GoogleClaims are the identity claims extracted from a verified Google ID token
type GoogleClaims struct {
	Subject string
	Email   string
	Name    string
}

type googleTokenClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

type googleJWK struct {
	Keys []googleJWKKey `json:"keys"`
}

type googleJWKKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// VerifyGoogleIDToken validates a Google-issued ID token against Google's
// published signing keys and the accepted audiences, and returns its identity
// claims. An empty audience list accepts any audience.
func VerifyGoogleIDToken(ctx context.Context, idToken string, audiences []string) (GoogleClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}))
	claims := &googleTokenClaims{}

	parsedToken, err := parser.ParseWithClaims(idToken, claims, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing key id")
		}
		return fetchGooglePublicKey(ctx, kid)
	})
	if err != nil || !parsedToken.Valid {
		return GoogleClaims{}, errors.New("invalid Google token")
	}

	if claims.Issuer != "https://accounts.google.com" && claims.Issuer != "accounts.google.com" {
		return GoogleClaims{}, errors.New("invalid Google issuer")
	}
	if len(audiences) > 0 && !audienceMatches(claims.Audience, audiences) {
		return GoogleClaims{}, errors.New("invalid Google audience")
	}
	if claims.Subject == "" || claims.Email == "" {
		return GoogleClaims{}, errors.New("incomplete Google profile")
	}

	return GoogleClaims{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
	}, nil
}

func audienceMatches(audience jwt.ClaimStrings, accepted []string) bool {
	for _, entry := range audience {
		for _, want := range accepted {
			if entry == want {
				return true
			}
		}
	}
	return false
}

func fetchGooglePublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, googleJWKSURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch Google signing keys: status %d", resp.StatusCode)
	}

	var jwks googleJWK
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return nil, err
	}

	for _, key := range jwks.Keys {
		if key.Kid != kid || key.Kty != "RSA" {
			continue
		}
		return parseRSAKey(key)
	}

	return nil, errors.New("signing key not found")
}

func parseRSAKey(key googleJWKKey) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(key.N)
	if err != nil {
		return nil, err
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(key.E)
	if err != nil {
		return nil, err
	}

	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}
