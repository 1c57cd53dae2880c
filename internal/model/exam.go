package model

import (
	"time"

	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/scoring"
	"gorm.io/gorm"
)

// Exam is immutable while any attempt against it is in progress.
type Exam struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	Title           string         `json:"title" gorm:"not null;uniqueIndex"`
	Description     string         `json:"description,omitempty"`
	Scheme          scoring.Scheme `json:"scheme" gorm:"type:varchar(32);not null"`
	DurationMinutes int            `json:"duration_minutes" gorm:"not null"`
	Active          bool           `json:"active" gorm:"not null;default:true"`
	Questions       []Question     `json:"questions,omitempty" gorm:"foreignKey:ExamID"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
