package model

import (
	"time"

	"gorm.io/datatypes"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
)

// Attempt is the one mutable entity of the engine. The in_progress ->
// completed transition is one-way and happens exactly once; a completed
// attempt is immutable. A partial unique index over (participant_id,
// exam_id) filtered to in_progress status guarantees at most one open
// attempt per participant and exam (see database migration in cmd/main.go).
//
// No soft delete: attempts are never deleted by this engine.
type Attempt struct {
	ID            uint          `gorm:"primarykey" json:"id"`
	ExamID        uint          `json:"exam_id" gorm:"not null;index"`
	Exam          Exam          `json:"exam,omitempty" gorm:"foreignKey:ExamID"`
	ParticipantID uint          `json:"participant_id" gorm:"not null;index"`
	Status        AttemptStatus `json:"status" gorm:"type:varchar(16);not null;default:'in_progress'"`
	// StartedAt is server-assigned and immutable once set. Remaining time is
	// always derived from it, never stored.
	StartedAt     time.Time      `json:"started_at" gorm:"not null"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty"`
	Score         *float64       `json:"score,omitempty"`
	ResultPayload datatypes.JSON `json:"result_payload,omitempty"`
	CategoryLabel string         `json:"category_label,omitempty"`
	Answers       []Answer       `json:"answers,omitempty" gorm:"foreignKey:AttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
