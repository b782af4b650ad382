package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"nestling/internal/models"
	"nestling/internal/service"
)

// HealthHandler handles growth, medication and vaccine record endpoints
type HealthHandler struct {
	healthService *service.HealthService
	pdfService    *service.PDFService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(healthService *service.HealthService, pdfService *service.PDFService) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
		pdfService:    pdfService,
	}
}

// Growth logs

// CreateGrowthLog handles POST /api/v1/children/{childID}/growth
func (h *HealthHandler) CreateGrowthLog(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	childID := r.PathValue("childID")

	var req struct {
		RecordDate string  `json:"record_date"`
		WeightKg   float64 `json:"weight_kg"`
		HeightCm   float64 `json:"height_cm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	recordDate, err := time.Parse(dateFormat, req.RecordDate)
	if err != nil {
		respondBadRequest(w, "record_date must be formatted as YYYY-MM-DD")
		return
	}

	log, err := h.healthService.CreateGrowthLog(childID, user.ID, recordDate, req.WeightKg, req.HeightCm)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toGrowthResponse(log))
}

// ListGrowthLogs handles GET /api/v1/children/{childID}/growth
func (h *HealthHandler) ListGrowthLogs(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	childID := r.PathValue("childID")

	logs, err := h.healthService.ListGrowthLogs(childID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toGrowthResponses(logs))
}

// ListAllGrowthLogs handles GET /api/v1/health/growth, covering every child
// the caller is a member of
func (h *HealthHandler) ListAllGrowthLogs(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	logs, err := h.healthService.ListUserGrowthLogs(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toGrowthResponses(logs))
}

// UpdateGrowthLog handles PUT /api/v1/health/growth/{logID}. Omitted fields
// are left unchanged.
func (h *HealthHandler) UpdateGrowthLog(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	logID := r.PathValue("logID")

	var req struct {
		RecordDate *string  `json:"record_date"`
		WeightKg   *float64 `json:"weight_kg"`
		HeightCm   *float64 `json:"height_cm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	update := service.GrowthUpdate{
		WeightKg: req.WeightKg,
		HeightCm: req.HeightCm,
	}
	if req.RecordDate != nil {
		recordDate, err := time.Parse(dateFormat, *req.RecordDate)
		if err != nil {
			respondBadRequest(w, "record_date must be formatted as YYYY-MM-DD")
			return
		}
		update.RecordDate = &recordDate
	}

	log, err := h.healthService.UpdateGrowthLog(logID, user.ID, update)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toGrowthResponse(log))
}

// DeleteGrowthLog handles DELETE /api/v1/health/growth/{logID}
func (h *HealthHandler) DeleteGrowthLog(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	logID := r.PathValue("logID")

	if err := h.healthService.DeleteGrowthLog(logID, user.ID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// Medication logs

// CreateMedicationLog handles POST /api/v1/children/{childID}/medications
func (h *HealthHandler) CreateMedicationLog(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	childID := r.PathValue("childID")

	var req struct {
		MedicineName   string `json:"medicine_name"`
		Dosage         string `json:"dosage"`
		AdministeredAt string `json:"administered_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	administeredAt, err := parseTimestamp(req.AdministeredAt)
	if err != nil {
		respondBadRequest(w, "administered_at must be an RFC 3339 timestamp or YYYY-MM-DD date")
		return
	}

	log, err := h.healthService.CreateMedicationLog(childID, user.ID, req.MedicineName, req.Dosage, administeredAt)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toMedicationResponse(log))
}

// ListMedicationLogs handles GET /api/v1/children/{childID}/medications
func (h *HealthHandler) ListMedicationLogs(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	childID := r.PathValue("childID")

	logs, err := h.healthService.ListMedicationLogs(childID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toMedicationResponses(logs))
}

// ListAllMedicationLogs handles GET /api/v1/health/medications
func (h *HealthHandler) ListAllMedicationLogs(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	logs, err := h.healthService.ListUserMedicationLogs(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toMedicationResponses(logs))
}

// UpdateMedicationLog handles PUT /api/v1/health/medications/{logID}. Omitted
// fields are left unchanged.
func (h *HealthHandler) UpdateMedicationLog(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	logID := r.PathValue("logID")

	var req struct {
		MedicineName   *string `json:"medicine_name"`
		Dosage         *string `json:"dosage"`
		AdministeredAt *string `json:"administered_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	update := service.MedicationUpdate{
		MedicineName: req.MedicineName,
		Dosage:       req.Dosage,
	}
	if req.AdministeredAt != nil {
		administeredAt, err := parseTimestamp(*req.AdministeredAt)
		if err != nil {
			respondBadRequest(w, "administered_at must be an RFC 3339 timestamp or YYYY-MM-DD date")
			return
		}
		update.AdministeredAt = &administeredAt
	}

	log, err := h.healthService.UpdateMedicationLog(logID, user.ID, update)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toMedicationResponse(log))
}

// DeleteMedicationLog handles DELETE /api/v1/health/medications/{logID}
func (h *HealthHandler) DeleteMedicationLog(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	logID := r.PathValue("logID")

	if err := h.healthService.DeleteMedicationLog(logID, user.ID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// Vaccine records

// CreateVaccineRecord handles POST /api/v1/children/{childID}/vaccines
func (h *HealthHandler) CreateVaccineRecord(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	childID := r.PathValue("childID")

	var req struct {
		VaccineName      string  `json:"vaccine_name"`
		ScheduledDate    string  `json:"scheduled_date"`
		Status           string  `json:"status"`
		AdministeredDate *string `json:"administered_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	scheduledDate, err := time.Parse(dateFormat, req.ScheduledDate)
	if err != nil {
		respondBadRequest(w, "scheduled_date must be formatted as YYYY-MM-DD")
		return
	}

	status := models.VaccineStatus(req.Status)
	if req.Status == "" {
		status = models.VaccinePending
	}

	administeredDate, err := parseOptionalDate(req.AdministeredDate)
	if err != nil {
		respondBadRequest(w, "administered_date must be formatted as YYYY-MM-DD")
		return
	}

	record, err := h.healthService.CreateVaccineRecord(childID, user.ID, req.VaccineName, scheduledDate, status, administeredDate)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toVaccineResponse(record))
}

// ListVaccineRecords handles GET /api/v1/children/{childID}/vaccines
func (h *HealthHandler) ListVaccineRecords(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	childID := r.PathValue("childID")

	records, err := h.healthService.ListVaccineRecords(childID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toVaccineResponses(records))
}

// ListAllVaccineRecords handles GET /api/v1/health/vaccines
func (h *HealthHandler) ListAllVaccineRecords(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	records, err := h.healthService.ListUserVaccineRecords(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toVaccineResponses(records))
}

// UpdateVaccineRecord handles PUT /api/v1/health/vaccines/{recordID}. Omitted
// fields are left unchanged.
func (h *HealthHandler) UpdateVaccineRecord(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	recordID := r.PathValue("recordID")

	var req struct {
		VaccineName      *string `json:"vaccine_name"`
		ScheduledDate    *string `json:"scheduled_date"`
		Status           *string `json:"status"`
		AdministeredDate *string `json:"administered_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}

	update := service.VaccineUpdate{VaccineName: req.VaccineName}
	if req.ScheduledDate != nil {
		scheduledDate, err := time.Parse(dateFormat, *req.ScheduledDate)
		if err != nil {
			respondBadRequest(w, "scheduled_date must be formatted as YYYY-MM-DD")
			return
		}
		update.ScheduledDate = &scheduledDate
	}
	if req.Status != nil {
		status := models.VaccineStatus(*req.Status)
		update.Status = &status
	}
	administeredDate, err := parseOptionalDate(req.AdministeredDate)
	if err != nil {
		respondBadRequest(w, "administered_date must be formatted as YYYY-MM-DD")
		return
	}
	update.AdministeredDate = administeredDate

	record, err := h.healthService.UpdateVaccineRecord(recordID, user.ID, update)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toVaccineResponse(record))
}

// DeleteVaccineRecord handles DELETE /api/v1/health/vaccines/{recordID}
func (h *HealthHandler) DeleteVaccineRecord(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	recordID := r.PathValue("recordID")

	if err := h.healthService.DeleteVaccineRecord(recordID, user.ID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// PDF exports

// ExportMedicationsPDF handles GET /api/v1/health/medications/export/pdf?child_id=...
func (h *HealthHandler) ExportMedicationsPDF(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	childID := r.URL.Query().Get("child_id")
	if childID == "" {
		respondBadRequest(w, "child_id is required")
		return
	}

	child, err := h.healthService.GetChild(childID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	logs, err := h.healthService.ListMedicationLogs(childID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	pdf, err := h.pdfService.MedicationSummary(child, logs)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	writePDF(w, service.ExportFilename("medications", child.Name), pdf)
}

// ExportVaccinesPDF handles GET /api/v1/health/vaccines/export/pdf?child_id=...
func (h *HealthHandler) ExportVaccinesPDF(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	childID := r.URL.Query().Get("child_id")
	if childID == "" {
		respondBadRequest(w, "child_id is required")
		return
	}

	child, err := h.healthService.GetChild(childID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	records, err := h.healthService.ListVaccineRecords(childID, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	pdf, err := h.pdfService.VaccineSchedule(child, records)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	writePDF(w, service.ExportFilename("vaccines", child.Name), pdf)
}

func writePDF(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		// client went away mid-download
		return
	}
}

// parseTimestamp accepts either an RFC 3339 timestamp or a bare date
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(dateFormat, s)
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateFormat, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
