package dto

import (
	"encoding/json"
	"time"
)

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// OptionResponse deliberately omits the correctness flag so it never leaks
// to the client.
type OptionResponse struct {
	ID              uint   `json:"id"`
	Label           string `json:"label"`
	OrderInQuestion int    `json:"order_in_question"`
}

// QuestionResponse deliberately omits the marks weight.
type QuestionResponse struct {
	ID          uint             `json:"id"`
	Text        string           `json:"text"`
	OrderInExam int              `json:"order_in_exam"`
	Options     []OptionResponse `json:"options"`
}

type ExamSummaryResponse struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Scheme          string    `json:"scheme"`
	DurationMinutes int       `json:"duration_minutes"`
	QuestionCount   int       `json:"question_count"`
	CreatedAt       time.Time `json:"created_at"`
}

type ExamResponse struct {
	ID              uint               `json:"id"`
	Title           string             `json:"title"`
	Description     string             `json:"description,omitempty"`
	Scheme          string             `json:"scheme"`
	DurationMinutes int                `json:"duration_minutes"`
	Questions       []QuestionResponse `json:"questions"`
	CreatedAt       time.Time          `json:"created_at"`
}

type SavedAnswerResponse struct {
	QuestionID uint `json:"question_id"`
	OptionID   uint `json:"option_id"`
}

// AttemptSessionResponse is the begin-or-resume payload.
type AttemptSessionResponse struct {
	AttemptID        uint                  `json:"attempt_id"`
	ExamID           uint                  `json:"exam_id"`
	ExamTitle        string                `json:"exam_title"`
	StartedAt        time.Time             `json:"started_at"`
	RemainingSeconds int64                 `json:"remaining_seconds"`
	Questions        []QuestionResponse    `json:"questions"`
	SavedAnswers     []SavedAnswerResponse `json:"saved_answers"`
}

// AttemptResultResponse is the completed-attempt view returned by submit and
// by the result endpoint.
type AttemptResultResponse struct {
	AttemptID     uint            `json:"attempt_id"`
	ExamID        uint            `json:"exam_id"`
	Status        string          `json:"status"`
	Score         float64         `json:"score"`
	CategoryLabel string          `json:"category_label,omitempty"`
	Result        json.RawMessage `json:"result,omitempty"`
	StartedAt     time.Time       `json:"started_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}
