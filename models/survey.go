package models

import (
	"time"

	"gorm.io/gorm"
)

// SurveyResponse stores a participant's onboarding survey for one program.
// One response per participant per program.
type SurveyResponse struct {
	gorm.Model
	ParticipantID uint `gorm:"not null;index:idx_survey_participant_program,unique" json:"participant_id"`
	ProgramID     uint `gorm:"not null;index:idx_survey_participant_program,unique" json:"program_id"`

	Goals              string `gorm:"type:text" json:"goals"`
	ExperienceLevel    string `json:"experience_level"` // beginner, intermediate, advanced
	Expectations       string `gorm:"type:text" json:"expectations"`
	SchedulePreference string `json:"schedule_preference"` // morning, afternoon, evening

	SubmittedAt time.Time `gorm:"not null" json:"submitted_at"`

	// Relations
	Participant Participant `json:"-"`
	Program     Program     `json:"-"`
}
