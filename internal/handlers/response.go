package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"nestling/internal/models"
	"nestling/internal/service"
	"nestling/internal/validation"
)

const dateFormat = "2006-01-02"

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// respondServiceError maps service errors to HTTP statuses
func respondServiceError(w http.ResponseWriter, err error) {
	var validationErr *validation.ValidationError
	if errors.As(err, &validationErr) {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: validationErr.Message, Field: validationErr.Field})
		return
	}

	switch {
	case errors.Is(err, service.ErrChildNotFound),
		errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRecordNotFound):
		respondJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrForbidden):
		respondJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrLastGuardian):
		respondJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrEmailTaken):
		respondJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidGoogleToken):
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidRole):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		log.Printf("Internal error: %v", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func respondBadRequest(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusBadRequest, errorResponse{Error: message})
}

// Response shapes

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        userResponse `json:"user"`
}

func toTokenResponse(pair *service.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   pair.TokenType,
		User:        toUserResponse(pair.User),
	}
}

type childResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	DOB       string `json:"dob"`
	Gender    string `json:"gender"`
	BloodType string `json:"blood_type,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toChildResponse(c *models.Child) childResponse {
	return childResponse{
		ID:        c.ID,
		Name:      c.Name,
		DOB:       c.DOB.Format(dateFormat),
		Gender:    string(c.Gender),
		BloodType: c.BloodType,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toChildResponses(children []models.Child) []childResponse {
	out := make([]childResponse, 0, len(children))
	for i := range children {
		out = append(out, toChildResponse(&children[i]))
	}
	return out
}

type memberResponse struct {
	ID       string `json:"id"`
	ChildID  string `json:"child_id"`
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

func toMemberResponse(m *models.Membership) memberResponse {
	return memberResponse{
		ID:      m.ID,
		ChildID: m.ChildID,
		UserID:  m.UserID,
		Role:    string(m.Role),
	}
}

func toMemberResponses(members []models.MembershipWithUser) []memberResponse {
	out := make([]memberResponse, 0, len(members))
	for i := range members {
		m := &members[i]
		resp := toMemberResponse(&m.Membership)
		resp.Email = m.User.Email
		resp.FullName = m.User.FullName
		out = append(out, resp)
	}
	return out
}

type growthResponse struct {
	ID         string  `json:"id"`
	ChildID    string  `json:"child_id"`
	RecordDate string  `json:"record_date"`
	WeightKg   float64 `json:"weight_kg"`
	HeightCm   float64 `json:"height_cm"`
}

func toGrowthResponse(g *models.GrowthLog) growthResponse {
	return growthResponse{
		ID:         g.ID,
		ChildID:    g.ChildID,
		RecordDate: g.RecordDate.Format(dateFormat),
		WeightKg:   g.WeightKg,
		HeightCm:   g.HeightCm,
	}
}

func toGrowthResponses(logs []models.GrowthLog) []growthResponse {
	out := make([]growthResponse, 0, len(logs))
	for i := range logs {
		out = append(out, toGrowthResponse(&logs[i]))
	}
	return out
}

type medicationResponse struct {
	ID             string `json:"id"`
	ChildID        string `json:"child_id"`
	MedicineName   string `json:"medicine_name"`
	Dosage         string `json:"dosage,omitempty"`
	AdministeredAt string `json:"administered_at"`
}

func toMedicationResponse(m *models.MedicationLog) medicationResponse {
	return medicationResponse{
		ID:             m.ID,
		ChildID:        m.ChildID,
		MedicineName:   m.MedicineName,
		Dosage:         m.Dosage,
		AdministeredAt: m.AdministeredAt.UTC().Format(time.RFC3339),
	}
}

func toMedicationResponses(logs []models.MedicationLog) []medicationResponse {
	out := make([]medicationResponse, 0, len(logs))
	for i := range logs {
		out = append(out, toMedicationResponse(&logs[i]))
	}
	return out
}

type vaccineResponse struct {
	ID               string  `json:"id"`
	ChildID          string  `json:"child_id"`
	VaccineName      string  `json:"vaccine_name"`
	ScheduledDate    string  `json:"scheduled_date"`
	Status           string  `json:"status"`
	AdministeredDate *string `json:"administered_date"`
	IsRecommended    bool    `json:"is_recommended"`
}

func toVaccineResponse(v *models.VaccineRecord) vaccineResponse {
	resp := vaccineResponse{
		ID:            v.ID,
		ChildID:       v.ChildID,
		VaccineName:   v.VaccineName,
		ScheduledDate: v.ScheduledDate.Format(dateFormat),
		Status:        string(v.Status),
		IsRecommended: v.IsRecommended,
	}
	if v.AdministeredDate != nil {
		s := v.AdministeredDate.Format(dateFormat)
		resp.AdministeredDate = &s
	}
	return resp
}

func toVaccineResponses(records []models.VaccineRecord) []vaccineResponse {
	out := make([]vaccineResponse, 0, len(records))
	for i := range records {
		out = append(out, toVaccineResponse(&records[i]))
	}
	return out
}
