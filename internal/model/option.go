package model

import (
	"time"

	"gorm.io/gorm"
)

type Option struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Label      string `json:"label" gorm:"not null"`
	// OrderInQuestion is 1-indexed display order. The Likert scheme derives
	// an option's raw 0-4 value from this position, never from the ID.
	OrderInQuestion int            `json:"order_in_question" gorm:"not null"`
	IsCorrect       bool           `json:"is_correct,omitempty"` // generic scheme only
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
