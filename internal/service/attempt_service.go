package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/dto"
	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/model"
	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AttemptService governs the open phase of an attempt: begin-or-resume and
// per-question answer writes. The terminal transition lives in
// SubmissionService.
type AttemptService interface {
	GetOrCreateAttempt(participantID, examID uint) (*dto.AttemptSessionResponse, error)
	SaveAnswer(attemptID, participantID uint, req dto.SaveAnswerRequest) error
}

type attemptService struct {
	examRepo    repository.ExamRepository
	attemptRepo repository.AttemptRepository
	answerRepo  repository.AnswerRepository
	clock       Clock
}

func NewAttemptService(
	examRepo repository.ExamRepository,
	attemptRepo repository.AttemptRepository,
	answerRepo repository.AnswerRepository,
	clock Clock,
) AttemptService {
	return &attemptService{
		examRepo:    examRepo,
		attemptRepo: attemptRepo,
		answerRepo:  answerRepo,
		clock:       clock,
	}
}

// GetOrCreateAttempt resumes the participant's in_progress attempt for the
// exam, or creates one with a server-assigned start time. Remaining time is
// always derived from the stored start time, so the deadline survives
// reconnects and ignores client clocks.
func (s *attemptService) GetOrCreateAttempt(participantID, examID uint) (*dto.AttemptSessionResponse, error) {
	exam, err := s.examRepo.FindActiveByIDWithQuestions(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("exam %d: %w", examID, ErrNotFound)
		}
		log.Error().Err(err).Uint("examID", examID).Msg("GetOrCreateAttempt: failed to load exam")
		return nil, fmt.Errorf("error loading exam %d: %w", examID, err)
	}

	completed, err := s.attemptRepo.HasCompleted(participantID, examID)
	if err != nil {
		log.Error().Err(err).Uint("participantID", participantID).Uint("examID", examID).Msg("GetOrCreateAttempt: completed-attempt lookup failed")
		return nil, fmt.Errorf("error checking completed attempts: %w", err)
	}
	if completed {
		return nil, fmt.Errorf("exam %d, participant %d: %w", examID, participantID, ErrAlreadyCompleted)
	}

	attempt, err := s.resumeOrCreate(participantID, examID)
	if err != nil {
		return nil, err
	}

	budget := time.Duration(exam.DurationMinutes) * time.Minute
	remaining := budget - s.clock.Now().Sub(attempt.StartedAt)
	if remaining <= 0 {
		// Lazy expiry: force-complete with a zero score. The conditional
		// guard keeps this atomic against a concurrent submit.
		if err := s.forceExpire(attempt.ID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("attempt %d: %w", attempt.ID, ErrTimeExpired)
	}

	questions, err := toQuestionResponses(exam.Questions)
	if err != nil {
		log.Error().Err(err).Uint("examID", examID).Msg("GetOrCreateAttempt: question mapping failed")
		return nil, err
	}

	saved, err := s.answerRepo.FindByAttemptID(attempt.ID)
	if err != nil {
		log.Error().Err(err).Uint("attemptID", attempt.ID).Msg("GetOrCreateAttempt: failed to load saved answers")
		return nil, fmt.Errorf("error loading saved answers: %w", err)
	}
	savedDTOs := make([]dto.SavedAnswerResponse, len(saved))
	for i, a := range saved {
		savedDTOs[i] = dto.SavedAnswerResponse{QuestionID: a.QuestionID, OptionID: a.SelectedOptionID}
	}

	return &dto.AttemptSessionResponse{
		AttemptID:        attempt.ID,
		ExamID:           exam.ID,
		ExamTitle:        exam.Title,
		StartedAt:        attempt.StartedAt,
		RemainingSeconds: int64(remaining / time.Second),
		Questions:        questions,
		SavedAnswers:     savedDTOs,
	}, nil
}

// resumeOrCreate returns the surviving in_progress attempt under concurrent
// first-access. The insert is create-if-absent against the partial unique
// index, so a lost race falls back to reading the winner's row.
func (s *attemptService) resumeOrCreate(participantID, examID uint) (*model.Attempt, error) {
	attempt, err := s.attemptRepo.FindInProgress(participantID, examID)
	if err == nil {
		return attempt, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error().Err(err).Uint("participantID", participantID).Uint("examID", examID).Msg("resumeOrCreate: in-progress lookup failed")
		return nil, fmt.Errorf("error looking up attempt: %w", err)
	}

	fresh := &model.Attempt{
		ExamID:        examID,
		ParticipantID: participantID,
		Status:        model.AttemptInProgress,
		StartedAt:     s.clock.Now(),
	}
	created, err := s.attemptRepo.CreateIfAbsent(fresh)
	if err != nil {
		log.Error().Err(err).Uint("participantID", participantID).Uint("examID", examID).Msg("resumeOrCreate: attempt creation failed")
		return nil, fmt.Errorf("error creating attempt: %w", err)
	}
	if created {
		// A concurrent submit may complete the prior attempt between the
		// caller's completed-attempt check and this insert, in which case
		// the partial index no longer blocks it. Completion is one-way, so
		// a clean re-check here means no completed row existed at insert
		// time either.
		completed, err := s.attemptRepo.HasCompleted(participantID, examID)
		if err != nil {
			log.Error().Err(err).Uint("participantID", participantID).Uint("examID", examID).Msg("resumeOrCreate: completed-attempt re-check failed")
			return nil, fmt.Errorf("error checking completed attempts: %w", err)
		}
		if completed {
			if derr := s.attemptRepo.DeleteByID(fresh.ID); derr != nil {
				log.Error().Err(derr).Uint("attemptID", fresh.ID).Msg("resumeOrCreate: failed to discard attempt created past completion")
			}
			return nil, fmt.Errorf("exam %d, participant %d: %w", examID, participantID, ErrAlreadyCompleted)
		}
		log.Info().Uint("attemptID", fresh.ID).Uint("participantID", participantID).Uint("examID", examID).Msg("Attempt created")
		return fresh, nil
	}

	// Lost the creation race; the concurrent request's row is authoritative.
	attempt, err = s.attemptRepo.FindInProgress(participantID, examID)
	if err != nil {
		log.Error().Err(err).Uint("participantID", participantID).Uint("examID", examID).Msg("resumeOrCreate: winner lookup failed after conflict")
		return nil, fmt.Errorf("error resolving concurrent attempt creation: %w", err)
	}
	return attempt, nil
}

func (s *attemptService) forceExpire(attemptID uint) error {
	ok, err := s.attemptRepo.CompleteIfInProgress(attemptID, 0, nil, "", s.clock.Now())
	if err != nil {
		log.Error().Err(err).Uint("attemptID", attemptID).Msg("forceExpire: conditional completion failed")
		return fmt.Errorf("error expiring attempt %d: %w", attemptID, err)
	}
	if ok {
		log.Info().Uint("attemptID", attemptID).Msg("Attempt force-completed after time budget expiry")
	}
	// ok == false means another request already completed the row; either
	// way the attempt is terminal now.
	return nil
}

// SaveAnswer upserts one answer for an open attempt. Independently
// idempotent; last writer wins per (attempt, question).
func (s *attemptService) SaveAnswer(attemptID, participantID uint, req dto.SaveAnswerRequest) error {
	attempt, err := s.attemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("attempt %d: %w", attemptID, ErrNotFound)
		}
		log.Error().Err(err).Uint("attemptID", attemptID).Msg("SaveAnswer: failed to load attempt")
		return fmt.Errorf("error loading attempt %d: %w", attemptID, err)
	}
	if attempt.ParticipantID != participantID {
		log.Warn().Uint("attemptID", attemptID).Uint("ownerID", attempt.ParticipantID).Uint("callerID", participantID).Msg("SaveAnswer: ownership mismatch rejected")
		return fmt.Errorf("attempt %d: %w", attemptID, ErrForbidden)
	}
	if attempt.Status != model.AttemptInProgress {
		return fmt.Errorf("attempt %d: %w", attemptID, ErrAlreadySubmitted)
	}

	exam, err := s.examRepo.FindByIDWithQuestions(attempt.ExamID)
	if err != nil {
		log.Error().Err(err).Uint("examID", attempt.ExamID).Msg("SaveAnswer: failed to load exam catalog")
		return fmt.Errorf("error loading exam %d: %w", attempt.ExamID, err)
	}
	if err := validateSelection(exam, req.QuestionID, req.OptionID); err != nil {
		return err
	}

	answer := &model.Answer{
		AttemptID:        attemptID,
		QuestionID:       req.QuestionID,
		SelectedOptionID: req.OptionID,
	}
	if err := s.answerRepo.Upsert(answer); err != nil {
		log.Error().Err(err).Uint("attemptID", attemptID).Uint("questionID", req.QuestionID).Msg("SaveAnswer: upsert failed")
		return fmt.Errorf("error saving answer: %w", err)
	}
	return nil
}

// validateSelection checks that the question belongs to the exam and the
// option belongs to the question.
func validateSelection(exam *model.Exam, questionID, optionID uint) error {
	for _, q := range exam.Questions {
		if q.ID != questionID {
			continue
		}
		for _, opt := range q.Options {
			if opt.ID == optionID {
				return nil
			}
		}
		return fmt.Errorf("option %d does not belong to question %d: %w", optionID, questionID, ErrValidation)
	}
	return fmt.Errorf("question %d does not belong to exam %d: %w", questionID, exam.ID, ErrValidation)
}
