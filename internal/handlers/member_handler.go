package handlers

import (
	"encoding/json"
	"net/http"

	"nestling/internal/models"
	"nestling/internal/service"
)

// MemberHandler handles care team membership endpoints
type MemberHandler struct {
	memberService *service.MemberService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService *service.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// List handles GET /api/v1/children/{childID}/members
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	childID := r.PathValue("childID")

	members, err := h.memberService.ListMembers(childID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toMemberResponses(members))
}

// Invite handles POST /api/v1/children/{childID}/members
func (h *MemberHandler) Invite(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	childID := r.PathValue("childID")

	var req struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if req.Email == "" {
		respondBadRequest(w, "email is required")
		return
	}

	membership, err := h.memberService.Invite(r.Context(), childID, user.ID, req.Email, models.Role(req.Role))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toMemberResponse(membership))
}

// UpdateRole handles PUT /api/v1/children/{childID}/members/{memberID}
func (h *MemberHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	childID := r.PathValue("childID")
	memberID := r.PathValue("memberID")

	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	membership, err := h.memberService.UpdateRole(childID, user.ID, memberID, models.Role(req.Role))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toMemberResponse(membership))
}

// Remove handles DELETE /api/v1/children/{childID}/members/{memberID}
func (h *MemberHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	childID := r.PathValue("childID")
	memberID := r.PathValue("memberID")

	if err := h.memberService.Remove(childID, user.ID, memberID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
