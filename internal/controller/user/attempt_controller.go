package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/dto"
	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type AttemptController struct {
	catalogService    service.CatalogService
	attemptService    service.AttemptService
	submissionService service.SubmissionService
}

func NewAttemptController(
	cs service.CatalogService,
	as service.AttemptService,
	ss service.SubmissionService,
) *AttemptController {
	return &AttemptController{
		catalogService:    cs,
		attemptService:    as,
		submissionService: ss,
	}
}

// participantID reads the identity set by the upstream auth layer. Identity
// verification itself is outside this engine.
func participantID(ctx *gin.Context) (uint, bool) {
	raw := ctx.GetHeader("X-Participant-ID")
	if raw == "" {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Missing participant identity"})
		return 0, false
	}
	val, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Invalid participant identity"})
		return 0, false
	}
	return uint(val), true
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	val, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return 0, false
	}
	return uint(val), true
}

// GetAllExams godoc
// @Summary (User) List available exams
// @Tags User - Exams & Attempts
// @Produce json
// @Success 200 {array} dto.ExamSummaryResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /exams [get]
func (c *AttemptController) GetAllExams(ctx *gin.Context) {
	exams, err := c.catalogService.GetAllExams()
	if err != nil {
		log.Error().Err(err).Msg("User GetAllExams: service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve exams", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, exams)
}

// GetExamByID godoc
// @Summary (User) Get one exam with its questions and options
// @Description Returns the participant-facing catalog view. Correctness
// @Description flags and marks are never included.
// @Tags User - Exams & Attempts
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Success 200 {object} dto.ExamResponse
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Router /exams/{exam_id} [get]
func (c *AttemptController) GetExamByID(ctx *gin.Context) {
	examID, ok := pathID(ctx, "exam_id")
	if !ok {
		return
	}

	exam, err := c.catalogService.GetExam(examID)
	if err != nil {
		c.respondError(ctx, err, "Failed to retrieve exam")
		return
	}
	ctx.JSON(http.StatusOK, exam)
}

// BeginOrResumeAttempt godoc
// @Summary (User) Begin or resume an attempt for an exam
// @Description Creates an in_progress attempt on first access, or resumes
// @Description the existing one with its saved answers and remaining time.
// @Tags User - Exams & Attempts
// @Produce json
// @Param exam_id path int true "Exam ID"
// @Param X-Participant-ID header int true "Verified participant identity"
// @Success 200 {object} dto.AttemptSessionResponse
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Failure 409 {object} dto.ErrorResponse "Exam already completed"
// @Failure 410 {object} dto.ErrorResponse "Time budget expired"
// @Router /exams/{exam_id}/attempts [post]
func (c *AttemptController) BeginOrResumeAttempt(ctx *gin.Context) {
	pid, ok := participantID(ctx)
	if !ok {
		return
	}
	examID, ok := pathID(ctx, "exam_id")
	if !ok {
		return
	}

	session, err := c.attemptService.GetOrCreateAttempt(pid, examID)
	if err != nil {
		c.respondError(ctx, err, "Failed to begin or resume attempt")
		return
	}
	ctx.JSON(http.StatusOK, session)
}

// SaveAnswer godoc
// @Summary (User) Record or update one answer
// @Description Idempotent upsert keyed by (attempt, question); safe to retry.
// @Tags User - Exams & Attempts
// @Accept json
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Param X-Participant-ID header int true "Verified participant identity"
// @Param answer body dto.SaveAnswerRequest true "Selected option"
// @Success 204 "Answer saved"
// @Failure 400 {object} dto.ErrorResponse "Answer outside the exam's catalog"
// @Failure 403 {object} dto.ErrorResponse "Attempt owned by another participant"
// @Failure 409 {object} dto.ErrorResponse "Attempt already submitted"
// @Router /attempts/{attempt_id}/answers [put]
func (c *AttemptController) SaveAnswer(ctx *gin.Context) {
	pid, ok := participantID(ctx)
	if !ok {
		return
	}
	attemptID, ok := pathID(ctx, "attempt_id")
	if !ok {
		return
	}
	var req dto.SaveAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request payload", Details: []string{err.Error()}})
		return
	}

	if err := c.attemptService.SaveAnswer(attemptID, pid, req); err != nil {
		c.respondError(ctx, err, "Failed to save answer")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// SubmitAttempt godoc
// @Summary (User) Submit a complete answer set and score the attempt
// @Description One-way transition to completed. A retried submit returns the
// @Description previously stored result instead of re-scoring.
// @Tags User - Exams & Attempts
// @Accept json
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Param X-Participant-ID header int true "Verified participant identity"
// @Param submission body dto.SubmitAttemptRequest true "Full answer set"
// @Success 200 {object} dto.AttemptResultResponse
// @Failure 400 {object} dto.ErrorResponse "Answer set references questions outside the exam"
// @Failure 403 {object} dto.ErrorResponse "Attempt owned by another participant"
// @Failure 409 {object} dto.ErrorResponse "Attempt already submitted (prior result included)"
// @Failure 410 {object} dto.ErrorResponse "Time budget plus grace window exceeded"
// @Router /attempts/{attempt_id}/submit [post]
func (c *AttemptController) SubmitAttempt(ctx *gin.Context) {
	pid, ok := participantID(ctx)
	if !ok {
		return
	}
	attemptID, ok := pathID(ctx, "attempt_id")
	if !ok {
		return
	}
	var req dto.SubmitAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request payload", Details: []string{err.Error()}})
		return
	}

	result, err := c.submissionService.SubmitAttempt(attemptID, pid, req)
	if err != nil {
		if errors.Is(err, service.ErrAlreadySubmitted) {
			// Idempotent no-op from the caller's perspective: surface the
			// stored result so the UI can show it.
			if prior, priorErr := c.submissionService.GetAttemptResult(attemptID, pid); priorErr == nil {
				ctx.JSON(http.StatusConflict, prior)
				return
			}
		}
		c.respondError(ctx, err, "Failed to submit attempt")
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetAttemptResult godoc
// @Summary (User) Get the current state and stored result of an attempt
// @Tags User - Exams & Attempts
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Param X-Participant-ID header int true "Verified participant identity"
// @Success 200 {object} dto.AttemptResultResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /attempts/{attempt_id} [get]
func (c *AttemptController) GetAttemptResult(ctx *gin.Context) {
	pid, ok := participantID(ctx)
	if !ok {
		return
	}
	attemptID, ok := pathID(ctx, "attempt_id")
	if !ok {
		return
	}

	result, err := c.submissionService.GetAttemptResult(attemptID, pid)
	if err != nil {
		c.respondError(ctx, err, "Failed to retrieve attempt")
		return
	}
	ctx.JSON(http.StatusOK, result)
}

func (c *AttemptController) respondError(ctx *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: message, Details: []string{err.Error()}})
	case errors.Is(err, service.ErrForbidden):
		ctx.JSON(http.StatusForbidden, dto.ErrorResponse{Message: message, Details: []string{err.Error()}})
	case errors.Is(err, service.ErrAlreadyCompleted), errors.Is(err, service.ErrAlreadySubmitted):
		ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: message, Details: []string{err.Error()}})
	case errors.Is(err, service.ErrTimeExpired):
		ctx.JSON(http.StatusGone, dto.ErrorResponse{Message: message, Details: []string{err.Error()}})
	case errors.Is(err, service.ErrValidation):
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: message, Details: []string{err.Error()}})
	default:
		log.Error().Err(err).Msg("Attempt controller: unexpected service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: message, Details: []string{err.Error()}})
	}
}
