package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"nestling/internal/database"
)

// BackupData represents the complete database backup structure
type BackupData struct {
	Version     string             `json:"version"`
	ExportedAt  time.Time          `json:"exported_at"`
	Users       []UserBackup       `json:"users"`
	Children    []ChildBackup      `json:"children"`
	Members     []MemberBackup     `json:"members"`
	GrowthLogs  []GrowthBackup     `json:"growth_logs"`
	Medications []MedicationBackup `json:"medication_logs"`
	Vaccines    []VaccineBackup    `json:"vaccine_records"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	GoogleSub    string    `json:"google_sub"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ChildBackup represents a child record for backup
type ChildBackup struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parent_id"`
	Name      string    `json:"name"`
	DOB       time.Time `json:"dob"`
	Gender    string    `json:"gender"`
	BloodType string    `json:"blood_type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MemberBackup represents a care team membership for backup
type MemberBackup struct {
	ID        string    `json:"id"`
	ChildID   string    `json:"child_id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// GrowthBackup represents a growth measurement for backup
type GrowthBackup struct {
	ID         string    `json:"id"`
	ChildID    string    `json:"child_id"`
	RecordDate time.Time `json:"record_date"`
	WeightKg   float64   `json:"weight_kg"`
	HeightCm   float64   `json:"height_cm"`
}

// MedicationBackup represents a medication dose for backup
type MedicationBackup struct {
	ID             string    `json:"id"`
	ChildID        string    `json:"child_id"`
	MedicineName   string    `json:"medicine_name"`
	Dosage         string    `json:"dosage"`
	AdministeredAt time.Time `json:"administered_at"`
}

// VaccineBackup represents a vaccine record for backup
type VaccineBackup struct {
	ID               string     `json:"id"`
	ChildID          string     `json:"child_id"`
	VaccineName      string     `json:"vaccine_name"`
	ScheduledDate    time.Time  `json:"scheduled_date"`
	Status           string     `json:"status"`
	AdministeredDate *time.Time `json:"administered_date"`
	IsRecommended    bool       `json:"is_recommended"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting database export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter exports the database to an io.Writer
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
	}

	if err := s.exportUsers(backup); err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	if err := s.exportChildren(backup); err != nil {
		return fmt.Errorf("failed to export children: %w", err)
	}
	if err := s.exportMembers(backup); err != nil {
		return fmt.Errorf("failed to export members: %w", err)
	}
	if err := s.exportGrowthLogs(backup); err != nil {
		return fmt.Errorf("failed to export growth logs: %w", err)
	}
	if err := s.exportMedications(backup); err != nil {
		return fmt.Errorf("failed to export medication logs: %w", err)
	}
	if err := s.exportVaccines(backup); err != nil {
		return fmt.Errorf("failed to export vaccine records: %w", err)
	}

	log.Printf("Exported: %d users, %d children, %d members, %d growth logs, %d medications, %d vaccines",
		len(backup.Users), len(backup.Children), len(backup.Members),
		len(backup.GrowthLogs), len(backup.Medications), len(backup.Vaccines))

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(backup)
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a database from a backup reader
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	// Import in dependency order
	if err := s.importUsers(backup.Users); err != nil {
		return fmt.Errorf("failed to import users: %w", err)
	}
	if err := s.importChildren(backup.Children); err != nil {
		return fmt.Errorf("failed to import children: %w", err)
	}
	if err := s.importMembers(backup.Members); err != nil {
		return fmt.Errorf("failed to import members: %w", err)
	}
	if err := s.importGrowthLogs(backup.GrowthLogs); err != nil {
		return fmt.Errorf("failed to import growth logs: %w", err)
	}
	if err := s.importMedications(backup.Medications); err != nil {
		return fmt.Errorf("failed to import medication logs: %w", err)
	}
	if err := s.importVaccines(backup.Vaccines); err != nil {
		return fmt.Errorf("failed to import vaccine records: %w", err)
	}

	log.Println("Database import completed successfully")
	return nil
}

func (s *BackupService) exportUsers(backup *BackupData) error {
	query := "SELECT id, email, COALESCE(full_name, ''), COALESCE(google_sub, ''), COALESCE(password_hash, ''), created_at, updated_at FROM users ORDER BY created_at"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.GoogleSub, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportChildren(backup *BackupData) error {
	query := "SELECT id, parent_id, name, dob, gender, COALESCE(blood_type, ''), created_at, updated_at FROM children ORDER BY created_at"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c ChildBackup
		if err := rows.Scan(&c.ID, &c.ParentID, &c.Name, &c.DOB, &c.Gender, &c.BloodType, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return err
		}
		backup.Children = append(backup.Children, c)
	}
	return rows.Err()
}

func (s *BackupService) exportMembers(backup *BackupData) error {
	query := "SELECT id, child_id, user_id, role, created_at FROM child_members ORDER BY created_at"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var m MemberBackup
		if err := rows.Scan(&m.ID, &m.ChildID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return err
		}
		backup.Members = append(backup.Members, m)
	}
	return rows.Err()
}

func (s *BackupService) exportGrowthLogs(backup *BackupData) error {
	query := "SELECT id, child_id, record_date, weight_kg, height_cm FROM growth_logs ORDER BY record_date"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var g GrowthBackup
		if err := rows.Scan(&g.ID, &g.ChildID, &g.RecordDate, &g.WeightKg, &g.HeightCm); err != nil {
			return err
		}
		backup.GrowthLogs = append(backup.GrowthLogs, g)
	}
	return rows.Err()
}

func (s *BackupService) exportMedications(backup *BackupData) error {
	query := "SELECT id, child_id, medicine_name, COALESCE(dosage, ''), administered_at FROM medication_logs ORDER BY administered_at"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var m MedicationBackup
		if err := rows.Scan(&m.ID, &m.ChildID, &m.MedicineName, &m.Dosage, &m.AdministeredAt); err != nil {
			return err
		}
		backup.Medications = append(backup.Medications, m)
	}
	return rows.Err()
}

func (s *BackupService) exportVaccines(backup *BackupData) error {
	query := "SELECT id, child_id, vaccine_name, scheduled_date, status, administered_date, is_recommended FROM vaccine_records ORDER BY scheduled_date"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var v VaccineBackup
		var administered sql.NullTime
		if err := rows.Scan(&v.ID, &v.ChildID, &v.VaccineName, &v.ScheduledDate, &v.Status, &administered, &v.IsRecommended); err != nil {
			return err
		}
		if administered.Valid {
			v.AdministeredDate = &administered.Time
		}
		backup.Vaccines = append(backup.Vaccines, v)
	}
	return rows.Err()
}

func (s *BackupService) importUsers(users []UserBackup) error {
	log.Printf("Importing %d users...", len(users))
	for _, u := range users {
		query := "INSERT INTO users (id, email, full_name, google_sub, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, u.ID, u.Email, nullIfEmpty(u.FullName), nullIfEmpty(u.GoogleSub), nullIfEmpty(u.PasswordHash), u.CreatedAt, u.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import user %s: %w", u.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importChildren(children []ChildBackup) error {
	log.Printf("Importing %d children...", len(children))
	for _, c := range children {
		query := "INSERT INTO children (id, parent_id, name, dob, gender, blood_type, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, c.ID, c.ParentID, c.Name, c.DOB, c.Gender, nullIfEmpty(c.BloodType), c.CreatedAt, c.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import child %s: %w", c.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importMembers(members []MemberBackup) error {
	log.Printf("Importing %d members...", len(members))
	for _, m := range members {
		query := "INSERT INTO child_members (id, child_id, user_id, role, created_at) VALUES (?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, m.ID, m.ChildID, m.UserID, m.Role, m.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import member %s: %w", m.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importGrowthLogs(logs []GrowthBackup) error {
	log.Printf("Importing %d growth logs...", len(logs))
	for _, g := range logs {
		query := "INSERT INTO growth_logs (id, child_id, record_date, weight_kg, height_cm) VALUES (?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, g.ID, g.ChildID, g.RecordDate, g.WeightKg, g.HeightCm)
		if err != nil {
			return fmt.Errorf("failed to import growth log %s: %w", g.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importMedications(logs []MedicationBackup) error {
	log.Printf("Importing %d medication logs...", len(logs))
	for _, m := range logs {
		query := "INSERT INTO medication_logs (id, child_id, medicine_name, dosage, administered_at) VALUES (?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, m.ID, m.ChildID, m.MedicineName, nullIfEmpty(m.Dosage), m.AdministeredAt)
		if err != nil {
			return fmt.Errorf("failed to import medication log %s: %w", m.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importVaccines(records []VaccineBackup) error {
	log.Printf("Importing %d vaccine records...", len(records))
	for _, v := range records {
		var administered interface{}
		if v.AdministeredDate != nil {
			administered = *v.AdministeredDate
		}
		query := "INSERT INTO vaccine_records (id, child_id, vaccine_name, scheduled_date, status, administered_date, is_recommended) VALUES (?, ?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, v.ID, v.ChildID, v.VaccineName, v.ScheduledDate, v.Status, administered, v.IsRecommended)
		if err != nil {
			return fmt.Errorf("failed to import vaccine record %s: %w", v.ID, err)
		}
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
