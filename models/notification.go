package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification kinds
const (
	NotificationKindSessionReminder = "session_reminder"
	NotificationKindBroadcast       = "broadcast"
	NotificationKindSurvey          = "survey"
)

// Notification is a per-participant message shown in the in-app feed
type Notification struct {
	gorm.Model
	ParticipantID uint  `gorm:"not null;index" json:"participant_id"`
	SessionID     *uint `gorm:"index" json:"session_id,omitempty"`
	ProgramID     *uint `gorm:"index" json:"program_id,omitempty"`

	Kind  string `gorm:"not null" json:"kind"` // session_reminder, broadcast, survey
	Title string `gorm:"not null" json:"title"`
	Body  string `gorm:"type:text" json:"body"`

	ReadAt *time.Time `json:"read_at,omitempty"`

	// Relations
	Participant Participant `json:"-"`
}
