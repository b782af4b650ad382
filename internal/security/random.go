package security

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
)

// GenerateStateToken returns a 32-byte random hex string, used for OAuth
// state values
func GenerateStateToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}

// IsSecureRequest reports whether the request arrived over HTTPS, directly
// or through a proxy
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return r.Header.Get("X-Forwarded-Proto") == "https"
}
