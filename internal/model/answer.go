package model

import "time"

// Answer holds the selected option for one (attempt, question) pair. The
// unique index makes answer writes upserts: a resubmission for the same
// question overwrites rather than duplicates.
type Answer struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	AttemptID        uint      `json:"attempt_id" gorm:"not null;uniqueIndex:uniq_attempt_question"`
	QuestionID       uint      `json:"question_id" gorm:"not null;uniqueIndex:uniq_attempt_question"`
	SelectedOptionID uint      `json:"selected_option_id" gorm:"not null"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
