package models

import (
	"time"

	"github.com/google/uuid"
)

// GuestUserID is recorded for every analysis until authentication exists.
const GuestUserID = "guest"

type Analysis struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID          string     `gorm:"type:text;not null;index" json:"user_id"`
	ExtractedText   string     `gorm:"type:text" json:"extracted_text"`
	JobDescription  string     `gorm:"type:text" json:"job_description"`
	Score           int        `gorm:"not null" json:"score"`
	Summary         string     `gorm:"type:text" json:"summary"`
	MissingKeywords []string   `gorm:"type:text;serializer:json" json:"missing_keywords"`
	Suggestions     []string   `gorm:"type:text;serializer:json" json:"suggestions"`
	IsPremium       bool       `gorm:"not null;default:false" json:"is_premium"`
	ResumeFile      string     `gorm:"type:text" json:"resume_file,omitempty"`
	IndexedAt       *time.Time `json:"indexed_at,omitempty"`
	CreatedAt       time.Time  `gorm:"not null;index;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Analysis) TableName() string {
	return "analyses"
}
