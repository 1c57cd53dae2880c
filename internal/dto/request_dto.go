package dto

// OptionForExamRequest is one option created as part of a new exam.
type OptionForExamRequest struct {
	Label           string `json:"label" binding:"required"`
	OrderInQuestion int    `json:"order_in_question" binding:"required,min=1"`
	IsCorrect       bool   `json:"is_correct"` // generic scheme only
}

// QuestionForExamRequest is one question created as part of a new exam.
type QuestionForExamRequest struct {
	Text        string                 `json:"text" binding:"required"`
	OrderInExam int                    `json:"order_in_exam" binding:"required,min=1"`
	Marks       float64                `json:"marks"` // generic scheme only
	Options     []OptionForExamRequest `json:"options" binding:"required,min=2,dive"`
}

type CreateExamRequest struct {
	Title           string                   `json:"title" binding:"required"`
	Description     string                   `json:"description"`
	Scheme          string                   `json:"scheme" binding:"required,oneof=generic likert_reverse categorical_threshold"`
	DurationMinutes int                      `json:"duration_minutes" binding:"required,min=1"`
	Questions       []QuestionForExamRequest `json:"questions" binding:"required,min=1,dive"`
}

// SaveAnswerRequest records or updates one answer while an attempt is open.
type SaveAnswerRequest struct {
	QuestionID uint `json:"question_id" binding:"required"`
	OptionID   uint `json:"option_id" binding:"required"`
}

// AnswerSubmission is one (question, option) pair of a full submission.
type AnswerSubmission struct {
	QuestionID uint `json:"question_id" binding:"required"`
	OptionID   uint `json:"option_id" binding:"required"`
}

type SubmitAttemptRequest struct {
	Answers []AnswerSubmission `json:"answers" binding:"required,min=1,dive"`
}
