package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/dto"
	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/model"
	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/repository"
	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/scoring"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// submitGraceWindow is added to the exam's time budget before a late submit
// is force-completed with a zero score. Product constant, not configurable.
const submitGraceWindow = 2 * time.Minute

// SubmissionService performs the terminal in_progress -> completed
// transition: it persists the submitted answers, computes the score from the
// authoritative catalog and records the result, all in one transaction.
type SubmissionService interface {
	SubmitAttempt(attemptID, participantID uint, req dto.SubmitAttemptRequest) (*dto.AttemptResultResponse, error)
	GetAttemptResult(attemptID, participantID uint) (*dto.AttemptResultResponse, error)
}

type submissionService struct {
	examRepo    repository.ExamRepository
	attemptRepo repository.AttemptRepository
	answerRepo  repository.AnswerRepository
	clock       Clock
	db          *gorm.DB
}

func NewSubmissionService(
	examRepo repository.ExamRepository,
	attemptRepo repository.AttemptRepository,
	answerRepo repository.AnswerRepository,
	clock Clock,
	db *gorm.DB,
) SubmissionService {
	return &submissionService{
		examRepo:    examRepo,
		attemptRepo: attemptRepo,
		answerRepo:  answerRepo,
		clock:       clock,
		db:          db,
	}
}

func (s *submissionService) SubmitAttempt(attemptID, participantID uint, req dto.SubmitAttemptRequest) (*dto.AttemptResultResponse, error) {
	attempt, err := s.attemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("attempt %d: %w", attemptID, ErrNotFound)
		}
		log.Error().Err(err).Uint("attemptID", attemptID).Msg("SubmitAttempt: failed to load attempt")
		return nil, fmt.Errorf("error loading attempt %d: %w", attemptID, err)
	}

	if attempt.ParticipantID != participantID {
		log.Warn().Uint("attemptID", attemptID).Uint("ownerID", attempt.ParticipantID).Uint("callerID", participantID).Msg("SubmitAttempt: ownership mismatch rejected")
		return nil, fmt.Errorf("attempt %d: %w", attemptID, ErrForbidden)
	}
	if attempt.Status != model.AttemptInProgress {
		return nil, fmt.Errorf("attempt %d: %w", attemptID, ErrAlreadySubmitted)
	}

	// Catalog is loaded without the active filter: a deactivated exam must
	// still score attempts that were opened against it.
	exam, err := s.examRepo.FindByIDWithQuestions(attempt.ExamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("exam %d: %w", attempt.ExamID, ErrNotFound)
		}
		log.Error().Err(err).Uint("examID", attempt.ExamID).Msg("SubmitAttempt: failed to load exam catalog")
		return nil, fmt.Errorf("error loading exam %d: %w", attempt.ExamID, err)
	}

	// Server-computed elapsed time; client-supplied timing is never trusted.
	now := s.clock.Now()
	budget := time.Duration(exam.DurationMinutes) * time.Minute
	if now.Sub(attempt.StartedAt) > budget+submitGraceWindow {
		ok, err := s.attemptRepo.CompleteIfInProgress(attempt.ID, 0, nil, "", now)
		if err != nil {
			log.Error().Err(err).Uint("attemptID", attempt.ID).Msg("SubmitAttempt: expiry completion failed")
			return nil, fmt.Errorf("error expiring attempt %d: %w", attempt.ID, err)
		}
		if !ok {
			return nil, fmt.Errorf("attempt %d: %w", attempt.ID, ErrAlreadySubmitted)
		}
		log.Info().Uint("attemptID", attempt.ID).Msg("Late submission force-completed with zero score")
		return nil, fmt.Errorf("attempt %d: %w", attempt.ID, ErrTimeExpired)
	}

	answers, err := buildAnswerRows(attempt.ID, exam, req.Answers)
	if err != nil {
		return nil, err
	}

	var result *dto.AttemptResultResponse
	err = s.db.Transaction(func(tx *gorm.DB) error {
		answerRepo := s.answerRepo.WithTx(tx)
		if err := answerRepo.UpsertAll(answers); err != nil {
			return fmt.Errorf("error persisting answers: %w", err)
		}

		// Score from the freshly persisted rows, not from the request, so
		// the stored answers and the recorded score can never diverge.
		persisted, err := answerRepo.FindByAttemptID(attempt.ID)
		if err != nil {
			return fmt.Errorf("error reading back answers: %w", err)
		}

		score, payload, label, err := scoreAttempt(exam, persisted)
		if err != nil {
			return err
		}

		ok, err := s.attemptRepo.WithTx(tx).CompleteIfInProgress(attempt.ID, score, payload, label, now)
		if err != nil {
			return fmt.Errorf("error completing attempt %d: %w", attempt.ID, err)
		}
		if !ok {
			// A concurrent submit won the transition; roll everything back
			// so its answers and score stand untouched.
			return fmt.Errorf("attempt %d: %w", attempt.ID, ErrAlreadySubmitted)
		}

		completedAt := now
		result = &dto.AttemptResultResponse{
			AttemptID:     attempt.ID,
			ExamID:        exam.ID,
			Status:        string(model.AttemptCompleted),
			Score:         score,
			CategoryLabel: label,
			Result:        []byte(payload),
			StartedAt:     attempt.StartedAt,
			CompletedAt:   &completedAt,
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrAlreadySubmitted) && !errors.Is(err, ErrValidation) {
			log.Error().Err(err).Uint("attemptID", attempt.ID).Msg("SubmitAttempt: submission transaction failed")
		}
		return nil, err
	}

	log.Info().Uint("attemptID", attempt.ID).Float64("score", result.Score).Str("categoryLabel", result.CategoryLabel).Msg("Attempt submitted and scored")
	return result, nil
}

// GetAttemptResult returns the participant's view of an attempt, including
// the stored result once completed.
func (s *submissionService) GetAttemptResult(attemptID, participantID uint) (*dto.AttemptResultResponse, error) {
	attempt, err := s.attemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("attempt %d: %w", attemptID, ErrNotFound)
		}
		log.Error().Err(err).Uint("attemptID", attemptID).Msg("GetAttemptResult: failed to load attempt")
		return nil, fmt.Errorf("error loading attempt %d: %w", attemptID, err)
	}
	if attempt.ParticipantID != participantID {
		log.Warn().Uint("attemptID", attemptID).Uint("ownerID", attempt.ParticipantID).Uint("callerID", participantID).Msg("GetAttemptResult: ownership mismatch rejected")
		return nil, fmt.Errorf("attempt %d: %w", attemptID, ErrForbidden)
	}
	return toAttemptResult(attempt), nil
}

// buildAnswerRows validates the submitted set against the catalog and turns
// it into answer rows. Duplicate question IDs collapse to the last pair,
// matching upsert semantics.
func buildAnswerRows(attemptID uint, exam *model.Exam, submissions []dto.AnswerSubmission) ([]model.Answer, error) {
	selected := make(map[uint]uint, len(submissions))
	for _, sub := range submissions {
		if err := validateSelection(exam, sub.QuestionID, sub.OptionID); err != nil {
			return nil, err
		}
		selected[sub.QuestionID] = sub.OptionID
	}

	answers := make([]model.Answer, 0, len(selected))
	for _, q := range exam.Questions {
		optionID, ok := selected[q.ID]
		if !ok {
			continue
		}
		answers = append(answers, model.Answer{
			AttemptID:        attemptID,
			QuestionID:       q.ID,
			SelectedOptionID: optionID,
		})
	}
	return answers, nil
}

// scoreAttempt dispatches on the exam's scheme discriminator. All scoring
// inputs beyond the raw selections come from the catalog.
func scoreAttempt(exam *model.Exam, answers []model.Answer) (float64, datatypes.JSON, string, error) {
	selected := make(map[uint]uint, len(answers))
	for _, a := range answers {
		selected[a.QuestionID] = a.SelectedOptionID
	}

	questions := make([]model.Question, len(exam.Questions))
	copy(questions, exam.Questions)
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].OrderInExam < questions[j].OrderInExam
	})

	switch exam.Scheme {
	case scoring.SchemeGeneric:
		return scoreGeneric(questions, selected)
	case scoring.SchemeLikertReverse:
		return scoreWithDecoder(exam, questions, selected, scoring.LikertItemCount, func(raw []int) (float64, interface{}, string, error) {
			res, err := scoring.LikertReverse(raw)
			if err != nil {
				return 0, nil, "", err
			}
			return float64(res.Total), res, string(res.Band), nil
		})
	case scoring.SchemeCategoricalThreshold:
		return scoreWithDecoder(exam, questions, selected, scoring.CategoricalItemCount, func(raw []int) (float64, interface{}, string, error) {
			res, err := scoring.CategoricalThreshold(raw)
			if err != nil {
				return 0, nil, "", err
			}
			return float64(res.Total), res, res.Status, nil
		})
	default:
		return 0, nil, "", fmt.Errorf("exam %d has unknown scoring scheme %q", exam.ID, exam.Scheme)
	}
}

func scoreGeneric(questions []model.Question, selected map[uint]uint) (float64, datatypes.JSON, string, error) {
	items := make([]scoring.GenericItem, len(questions))
	for i, q := range questions {
		item := scoring.GenericItem{Marks: q.Marks}
		if optionID, ok := selected[q.ID]; ok {
			item.Answered = true
			for _, opt := range q.Options {
				if opt.ID == optionID {
					item.Correct = opt.IsCorrect
					break
				}
			}
		}
		items[i] = item
	}

	res, err := scoring.Generic(items)
	if err != nil {
		return 0, nil, "", fmt.Errorf("generic scoring failed: %w", err)
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return 0, nil, "", fmt.Errorf("error encoding result payload: %w", err)
	}
	return res.Percent, payload, "", nil
}

// scoreWithDecoder builds the raw item vector for the fixed instruments and
// hands it to the scheme function. The fixed instruments require a complete
// answer set; a missing item is a caller error.
func scoreWithDecoder(
	exam *model.Exam,
	questions []model.Question,
	selected map[uint]uint,
	itemCount int,
	score func(raw []int) (float64, interface{}, string, error),
) (float64, datatypes.JSON, string, error) {
	if len(questions) != itemCount {
		// Catalog invariant violated; validated at creation time.
		return 0, nil, "", fmt.Errorf("exam %d carries %d questions, scheme %q requires %d", exam.ID, len(questions), exam.Scheme, itemCount)
	}
	decoder := scoring.DecoderFor(exam.Scheme)
	if decoder == nil {
		return 0, nil, "", fmt.Errorf("no option decoder for scheme %q", exam.Scheme)
	}

	raw := make([]int, len(questions))
	for i, q := range questions {
		optionID, ok := selected[q.ID]
		if !ok {
			return 0, nil, "", fmt.Errorf("question %d is unanswered, %s exams require a complete answer set: %w", q.ID, exam.Scheme, ErrValidation)
		}
		value, err := decoder.Decode(optionID, optionMetas(q))
		if err != nil {
			return 0, nil, "", fmt.Errorf("question %d: %s: %w", q.ID, err.Error(), ErrValidation)
		}
		raw[i] = value
	}

	total, payloadObj, label, err := score(raw)
	if err != nil {
		return 0, nil, "", fmt.Errorf("scheme %q scoring failed: %w", exam.Scheme, err)
	}
	payload, err := json.Marshal(payloadObj)
	if err != nil {
		return 0, nil, "", fmt.Errorf("error encoding result payload: %w", err)
	}
	return total, payload, label, nil
}

func optionMetas(q model.Question) []scoring.OptionMeta {
	metas := make([]scoring.OptionMeta, len(q.Options))
	for i, opt := range q.Options {
		metas[i] = scoring.OptionMeta{ID: opt.ID, Ordinal: opt.OrderInQuestion, Label: opt.Label}
	}
	return metas
}
