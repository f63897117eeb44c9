package models

import (
	"time"

	"gorm.io/gorm"
)

// Participant represents a person taking part in programs
type Participant struct {
	gorm.Model
	CompanyID *uint `gorm:"index" json:"company_id,omitempty"`

	FullName string `gorm:"not null" json:"full_name"`
	Email    string `gorm:"not null;index" json:"email"`
	Phone    string `json:"phone"`
	Timezone string `json:"timezone"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	// Relations
	Enrollments   []Enrollment   `gorm:"foreignKey:ParticipantID" json:"enrollments,omitempty"`
	Notifications []Notification `gorm:"foreignKey:ParticipantID" json:"notifications,omitempty"`
}

// Enrollment joins participants to programs
type Enrollment struct {
	gorm.Model
	ParticipantID uint `gorm:"not null;index" json:"participant_id"`
	ProgramID     uint `gorm:"not null;index" json:"program_id"`

	Status     string     `gorm:"default:'enrolled'" json:"status"` // enrolled, completed, dropped
	EnrolledAt *time.Time `json:"enrolled_at"`

	// Relations
	Participant Participant `json:"-"`
	Program     Program     `json:"-"`
}
