package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"nestling/internal/models"
	"nestling/internal/service"
)

// ChildHandler handles child profile endpoints
type ChildHandler struct {
	childService *service.ChildService
}

// NewChildHandler creates a new child handler
func NewChildHandler(childService *service.ChildService) *ChildHandler {
	return &ChildHandler{childService: childService}
}

// Create handles POST /api/v1/children
func (h *ChildHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req struct {
		Name      string `json:"name"`
		DOB       string `json:"dob"`
		Gender    string `json:"gender"`
		BloodType string `json:"blood_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	dob, err := time.Parse(dateFormat, req.DOB)
	if err != nil {
		respondBadRequest(w, "dob must be formatted as YYYY-MM-DD")
		return
	}

	child, err := h.childService.Create(user.ID, req.Name, dob, models.Gender(req.Gender), req.BloodType)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toChildResponse(child))
}

// List handles GET /api/v1/children
func (h *ChildHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	children, err := h.childService.List(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toChildResponses(children))
}

// Get handles GET /api/v1/children/{childID}
func (h *ChildHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	childID := r.PathValue("childID")

	child, err := h.childService.Get(childID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toChildResponse(child))
}

// Update handles PUT /api/v1/children/{childID}
func (h *ChildHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	childID := r.PathValue("childID")

	var req struct {
		Name      *string `json:"name"`
		DOB       *string `json:"dob"`
		Gender    *string `json:"gender"`
		BloodType *string `json:"blood_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	update := service.ChildUpdate{
		Name:      req.Name,
		BloodType: req.BloodType,
	}
	if req.DOB != nil {
		dob, err := time.Parse(dateFormat, *req.DOB)
		if err != nil {
			respondBadRequest(w, "dob must be formatted as YYYY-MM-DD")
			return
		}
		update.DOB = &dob
	}
	if req.Gender != nil {
		gender := models.Gender(*req.Gender)
		update.Gender = &gender
	}

	child, err := h.childService.Update(childID, user.ID, update)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toChildResponse(child))
}

// Delete handles DELETE /api/v1/children/{childID}
func (h *ChildHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	childID := r.PathValue("childID")

	if err := h.childService.Delete(childID, user.ID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
