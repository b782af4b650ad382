package service

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"nestling/internal/models"
)

// PDFService renders printable summaries of a child's health records
type PDFService struct{}

// NewPDFService creates a new PDF service
func NewPDFService() *PDFService {
	return &PDFService{}
}

// ExportFilename builds a download filename like "medications_mia_rose.pdf"
func ExportFilename(prefix, childName string) string {
	slug := strings.ToLower(strings.TrimSpace(childName))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '_'
		default:
			return -1
		}
	}, slug)
	if slug == "" {
		slug = "child"
	}
	return fmt.Sprintf("%s_%s.pdf", prefix, slug)
}

// MedicationSummary renders a child's medication history as a PDF
func (s *PDFService) MedicationSummary(child *models.Child, logs []models.MedicationLog) ([]byte, error) {
	pdf := s.newDocument("Medication Summary", child)

	headers := []string{"Medicine", "Dosage", "Administered"}
	widths := []float64{80, 50, 60}
	s.tableHeader(pdf, headers, widths)

	if len(logs) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(190, 10, "No medications recorded.", "1", 1, "C", false, 0, "")
	}
	for i, log := range logs {
		fill := i%2 == 1
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(widths[0], 8, log.MedicineName, "1", 0, "L", fill, 0, "")
		pdf.CellFormat(widths[1], 8, log.Dosage, "1", 0, "L", fill, 0, "")
		pdf.CellFormat(widths[2], 8, log.AdministeredAt.Format("2 Jan 2006 15:04"), "1", 1, "L", fill, 0, "")
	}

	return s.output(pdf)
}

// VaccineSchedule renders a child's vaccine schedule as a PDF
func (s *PDFService) VaccineSchedule(child *models.Child, records []models.VaccineRecord) ([]byte, error) {
	pdf := s.newDocument("Vaccine Schedule", child)

	headers := []string{"Vaccine", "Scheduled", "Status", "Administered"}
	widths := []float64{75, 40, 35, 40}
	s.tableHeader(pdf, headers, widths)

	if len(records) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(190, 10, "No vaccines recorded.", "1", 1, "C", false, 0, "")
	}
	for i, record := range records {
		fill := i%2 == 1
		administered := "-"
		if record.AdministeredDate != nil {
			administered = record.AdministeredDate.Format("2 Jan 2006")
		}
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(widths[0], 8, record.VaccineName, "1", 0, "L", fill, 0, "")
		pdf.CellFormat(widths[1], 8, record.ScheduledDate.Format("2 Jan 2006"), "1", 0, "L", fill, 0, "")
		pdf.CellFormat(widths[2], 8, string(record.Status), "1", 0, "C", fill, 0, "")
		pdf.CellFormat(widths[3], 8, administered, "1", 1, "L", fill, 0, "")
	}

	return s.output(pdf)
}

func (s *PDFService) newDocument(title string, child *models.Child) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFillColor(46, 139, 87)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(190, 12, "Nestling - "+title, "", 1, "C", true, 0, "")
	pdf.Ln(4)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(190, 7, "Patient: "+child.Name, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(190, 6, "Date of birth: "+child.DOB.Format("2 January 2006"), "", 1, "L", false, 0, "")
	if child.BloodType != "" {
		pdf.CellFormat(190, 6, "Blood type: "+child.BloodType, "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(190, 6, "Generated: "+time.Now().Format("2 January 2006"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	return pdf
}

func (s *PDFService) tableHeader(pdf *fpdf.Fpdf, headers []string, widths []float64) {
	pdf.SetFillColor(46, 139, 87)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFillColor(240, 247, 242)
}

func (s *PDFService) output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
