package models

import (
	"time"

	"gorm.io/gorm"
)

// Program types
const (
	ProgramTypeSprintWorkshop = "sprint_workshop"
	ProgramTypeMasterClass    = "master_class"
)

// Program represents a scheduled cohort offering with a date range and sessions
type Program struct {
	gorm.Model
	CompanyID *uint `gorm:"index" json:"company_id,omitempty"`

	Name        string `gorm:"not null" json:"name"`
	ProgramType string `gorm:"not null;default:'sprint_workshop'" json:"program_type"` // sprint_workshop, master_class
	Description string `gorm:"type:text" json:"description"`

	StartDate *time.Time `gorm:"type:date" json:"start_date"`
	EndDate   *time.Time `gorm:"type:date" json:"end_date"`
	Status    string     `gorm:"default:'draft'" json:"status"` // draft, active, completed, archived

	// Statistics (denormalized for listing screens)
	SessionCount    int `gorm:"default:0" json:"session_count"`
	EnrollmentCount int `gorm:"default:0" json:"enrollment_count"`

	// Relations
	Company     *Company     `json:"company,omitempty"`
	Sessions    []Session    `gorm:"foreignKey:ProgramID" json:"sessions,omitempty"`
	Enrollments []Enrollment `gorm:"foreignKey:ProgramID" json:"enrollments,omitempty"`
}

// Session represents a single scheduled meeting inside a program
type Session struct {
	gorm.Model
	ProgramID uint `gorm:"not null;index" json:"program_id"`

	Title           string    `gorm:"not null" json:"title"`
	StartsAt        time.Time `gorm:"not null;index" json:"starts_at"`
	DurationMinutes int       `gorm:"default:60" json:"duration_minutes"`
	MeetingURL      string    `json:"meeting_url"`
	Status          string    `gorm:"default:'scheduled'" json:"status"` // scheduled, completed, canceled

	// Set once the reminder worker has notified enrolled participants
	ReminderSentAt *time.Time `json:"reminder_sent_at,omitempty"`

	// Relations
	Program Program `json:"-"`
}
