package models

import (
	"gorm.io/gorm"
)

// Company represents a client company whose people join programs
type Company struct {
	gorm.Model
	Name     string `gorm:"not null;index" json:"name"`
	Website  string `json:"website"`
	Industry string `json:"industry"`
	Notes    string `gorm:"type:text" json:"notes"`

	// Relations
	Programs     []Program     `gorm:"foreignKey:CompanyID" json:"programs,omitempty"`
	Participants []Participant `gorm:"foreignKey:CompanyID" json:"participants,omitempty"`
}
