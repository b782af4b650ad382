package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"nestling/internal/security"
	"nestling/internal/service"
)

// AuthHandler handles registration, login and Google sign-in
type AuthHandler struct {
	authService          *service.AuthService
	googleOAuth          *oauth2.Config
	oauthRedirectBaseURL string
	frontendBaseURL      string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, googleOAuth *oauth2.Config, oauthRedirectBaseURL, frontendBaseURL string) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		googleOAuth:          googleOAuth,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
		frontendBaseURL:      frontendBaseURL,
	}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	pair, err := h.authService.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toTokenResponse(pair))
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	pair, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toTokenResponse(pair))
}

// GoogleLogin handles POST /api/v1/auth/google with an ID token obtained by
// the client
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken string `json:"id_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if req.IDToken == "" {
		respondBadRequest(w, "id_token is required")
		return
	}

	pair, err := h.authService.LoginWithGoogle(r.Context(), req.IDToken)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toTokenResponse(pair))
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(user))
}

// StartGoogleOAuth handles GET /auth/google/start, the browser-based flow
func (h *AuthHandler) StartGoogleOAuth(w http.ResponseWriter, r *http.Request) {
	if !h.googleOAuthConfigured() {
		respondBadRequest(w, "Google sign-in is not configured")
		return
	}

	state := security.GenerateStateToken()
	h.setTempCookie(w, r, "oauth_state", state, 10*time.Minute)

	config := *h.googleOAuth
	config.RedirectURL = h.oauthRedirectURL(r)

	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOnline)
	http.Redirect(w, r, authURL, http.StatusFound)
}

// GoogleOAuthCallback handles GET /auth/google/callback. On success the
// browser is redirected to the frontend with an access token.
func (h *AuthHandler) GoogleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	if !h.googleOAuthConfigured() {
		respondBadRequest(w, "Google sign-in is not configured")
		return
	}

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectWithError(w, r, "missing authorization code")
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		h.redirectWithError(w, r, "invalid oauth state")
		return
	}
	h.clearTempCookie(w, r, "oauth_state")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	config := *h.googleOAuth
	config.RedirectURL = h.oauthRedirectURL(r)

	token, err := config.Exchange(ctx, code)
	if err != nil {
		h.redirectWithError(w, r, "failed to exchange authorization code")
		return
	}

	idToken, _ := token.Extra("id_token").(string)
	if idToken == "" {
		h.redirectWithError(w, r, "missing id_token in provider response")
		return
	}

	pair, err := h.authService.LoginWithGoogle(ctx, idToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidGoogleToken) {
			h.redirectWithError(w, r, "invalid google token")
		} else {
			h.redirectWithError(w, r, "sign-in failed")
		}
		return
	}

	redirect := fmt.Sprintf("%s/auth/callback#access_token=%s",
		strings.TrimRight(h.frontendBaseURL, "/"), url.QueryEscape(pair.AccessToken))
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

func (h *AuthHandler) googleOAuthConfigured() bool {
	return h.googleOAuth != nil && h.googleOAuth.ClientID != "" && h.googleOAuth.ClientSecret != ""
}

func (h *AuthHandler) oauthRedirectURL(r *http.Request) string {
	baseURL := strings.TrimSpace(h.oauthRedirectBaseURL)
	if baseURL == "" {
		scheme := "http"
		if security.IsSecureRequest(r) {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s", scheme, r.Host)
	}
	return strings.TrimRight(baseURL, "/") + "/auth/google/callback"
}

func (h *AuthHandler) redirectWithError(w http.ResponseWriter, r *http.Request, message string) {
	redirect := fmt.Sprintf("%s/auth/callback?%s",
		strings.TrimRight(h.frontendBaseURL, "/"),
		url.Values{"error": []string{message}}.Encode())
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

func (h *AuthHandler) setTempCookie(w http.ResponseWriter, r *http.Request, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   security.IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
	})
}

func (h *AuthHandler) clearTempCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   security.IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
