package security

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.CreateAccessToken("user-123")
	if err != nil {
		t.Fatalf("CreateAccessToken() error = %v", err)
	}

	userID, err := issuer.VerifyAccessToken(token)
	if err != nil {
		t.Fatalf("VerifyAccessToken() error = %v", err)
	}
	if userID != "user-123" {
		t.Errorf("VerifyAccessToken() = %q, want %q", userID, "user-123")
	}
}

func TestVerifyAccessTokenRejects(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	tests := []struct {
		name  string
		token func() string
	}{
		{
			name:  "garbage token",
			token: func() string { return "not-a-token" },
		},
		{
			name: "wrong secret",
			token: func() string {
				other := NewTokenIssuer("other-secret", time.Hour)
				tok, _ := other.CreateAccessToken("user-123")
				return tok
			},
		},
		{
			name: "expired token",
			token: func() string {
				expired := NewTokenIssuer("test-secret", -time.Minute)
				tok, _ := expired.CreateAccessToken("user-123")
				return tok
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := issuer.VerifyAccessToken(tt.token()); err == nil {
				t.Error("VerifyAccessToken() expected error, got nil")
			}
		})
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if !CheckPassword("correct horse battery", hash) {
		t.Error("CheckPassword() = false for matching password")
	}
	if CheckPassword("wrong password", hash) {
		t.Error("CheckPassword() = true for wrong password")
	}
	if CheckPassword("anything", "") {
		t.Error("CheckPassword() = true for empty hash")
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("Allow() = false on request %d, want true", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("Allow() = true after limit exhausted")
	}

	// Other IPs have their own bucket
	if !rl.Allow("10.0.0.2") {
		t.Error("Allow() = false for fresh IP")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{
			name:   "remote addr only",
			remote: "192.0.2.7:51234",
			want:   "192.0.2.7:51234",
		},
		{
			name:    "single forwarded hop",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.9"},
			remote:  "10.0.0.1:80",
			want:    "203.0.113.9",
		},
		{
			name:    "first hop of a proxy chain",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.2, 10.0.0.3"},
			remote:  "10.0.0.1:80",
			want:    "203.0.113.9",
		},
		{
			name:    "real ip header",
			headers: map[string]string{"X-Real-IP": "198.51.100.4"},
			remote:  "10.0.0.1:80",
			want:    "198.51.100.4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
