package service

import (
	"strings"

	"gorm.io/gorm"

	"github.com/corvidian/backend/internal/db"
)

// ValidationError reports a missing required field. Its message is the
// exact text surfaced to API clients.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " is required"
}

// LeadService persists consultation leads. Leads are append-only; there
// are no update or delete paths.
type LeadService struct {
	db *gorm.DB
}

// LeadInput carries the five required consultation form fields.
type LeadInput struct {
	Name     string
	Email    string
	Phone    string
	Company  string
	Question string
}

// NewLeadService creates a LeadService instance.
func NewLeadService(gdb *gorm.DB) *LeadService {
	return &LeadService{db: gdb}
}

// Create validates that every field is present, in form order, and
// persists the lead. The first missing field aborts the write.
func (s *LeadService) Create(input LeadInput) (*db.ConsultationLead, error) {
	fields := []struct {
		name  string
		value string
	}{
		{"name", input.Name},
		{"email", input.Email},
		{"phone", input.Phone},
		{"company", input.Company},
		{"question", input.Question},
	}
	for _, field := range fields {
		if strings.TrimSpace(field.value) == "" {
			return nil, &ValidationError{Field: field.name}
		}
	}

	lead := db.ConsultationLead{
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.TrimSpace(input.Email),
		Phone:    strings.TrimSpace(input.Phone),
		Company:  strings.TrimSpace(input.Company),
		Question: strings.TrimSpace(input.Question),
	}

	if err := s.db.Create(&lead).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

// List returns leads newest first, for the admin overview.
func (s *LeadService) List() ([]db.ConsultationLead, error) {
	var leads []db.ConsultationLead
	if err := s.db.Order("created_at desc").Find(&leads).Error; err != nil {
		return nil, err
	}
	return leads, nil
}
