package service

import (
	"errors"
	"fmt"

	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/dto"
	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/model"
	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/repository"
	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/scoring"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// CatalogService is the seeding and listing surface around the read-only
// question/option catalog. Exams are validated against their scheme's
// decoder at creation time so malformed seed data fails fast, not at
// scoring time.
type CatalogService interface {
	CreateExam(req dto.CreateExamRequest) (*dto.ExamResponse, error)
	GetAllExams() ([]dto.ExamSummaryResponse, error)
	GetExam(id uint) (*dto.ExamResponse, error)
}

type catalogService struct {
	examRepo repository.ExamRepository
}

func NewCatalogService(examRepo repository.ExamRepository) CatalogService {
	return &catalogService{examRepo: examRepo}
}

func (s *catalogService) CreateExam(req dto.CreateExamRequest) (*dto.ExamResponse, error) {
	scheme := scoring.Scheme(req.Scheme)
	if !scheme.Valid() {
		return nil, fmt.Errorf("unknown scoring scheme %q: %w", req.Scheme, ErrValidation)
	}

	exam := model.Exam{
		Title:           req.Title,
		Description:     req.Description,
		Scheme:          scheme,
		DurationMinutes: req.DurationMinutes,
		Active:          true,
		Questions:       make([]model.Question, len(req.Questions)),
	}
	for i, q := range req.Questions {
		question := model.Question{
			Text:        q.Text,
			OrderInExam: q.OrderInExam,
			Marks:       q.Marks,
			Options:     make([]model.Option, len(q.Options)),
		}
		for j, opt := range q.Options {
			question.Options[j] = model.Option{
				Label:           opt.Label,
				OrderInQuestion: opt.OrderInQuestion,
				IsCorrect:       opt.IsCorrect,
			}
		}
		exam.Questions[i] = question
	}

	if err := validateExamCatalog(&exam); err != nil {
		return nil, err
	}

	if err := s.examRepo.Create(&exam); err != nil {
		log.Error().Err(err).Str("title", req.Title).Msg("CreateExam: failed to create exam")
		return nil, fmt.Errorf("error creating exam: %w", err)
	}
	log.Info().Uint("examID", exam.ID).Str("scheme", string(exam.Scheme)).Int("questions", len(exam.Questions)).Msg("Exam created")

	questions, err := toQuestionResponses(exam.Questions)
	if err != nil {
		return nil, err
	}
	return &dto.ExamResponse{
		ID:              exam.ID,
		Title:           exam.Title,
		Description:     exam.Description,
		Scheme:          string(exam.Scheme),
		DurationMinutes: exam.DurationMinutes,
		Questions:       questions,
		CreatedAt:       exam.CreatedAt,
	}, nil
}

func (s *catalogService) GetAllExams() ([]dto.ExamSummaryResponse, error) {
	examsWithCount, err := s.examRepo.FindAllActiveWithQuestionCount()
	if err != nil {
		log.Error().Err(err).Msg("GetAllExams: repository lookup failed")
		return nil, fmt.Errorf("error fetching exams: %w", err)
	}

	var dtos []dto.ExamSummaryResponse
	for _, ewc := range examsWithCount {
		dtos = append(dtos, dto.ExamSummaryResponse{
			ID:              ewc.Exam.ID,
			Title:           ewc.Exam.Title,
			Description:     ewc.Exam.Description,
			Scheme:          string(ewc.Exam.Scheme),
			DurationMinutes: ewc.Exam.DurationMinutes,
			QuestionCount:   ewc.QuestionCount,
			CreatedAt:       ewc.Exam.CreatedAt,
		})
	}
	return dtos, nil
}

// GetExam returns one active exam with its full sanitized question set. The
// response carries no correctness flags or marks.
func (s *catalogService) GetExam(id uint) (*dto.ExamResponse, error) {
	exam, err := s.examRepo.FindActiveByIDWithQuestions(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("exam %d: %w", id, ErrNotFound)
		}
		log.Error().Err(err).Uint("examID", id).Msg("GetExam: repository lookup failed")
		return nil, fmt.Errorf("error fetching exam %d: %w", id, err)
	}

	questions, err := toQuestionResponses(exam.Questions)
	if err != nil {
		return nil, err
	}
	return &dto.ExamResponse{
		ID:              exam.ID,
		Title:           exam.Title,
		Description:     exam.Description,
		Scheme:          string(exam.Scheme),
		DurationMinutes: exam.DurationMinutes,
		Questions:       questions,
		CreatedAt:       exam.CreatedAt,
	}, nil
}

// validateExamCatalog enforces the per-scheme catalog invariants the scoring
// engine later relies on.
func validateExamCatalog(exam *model.Exam) error {
	seenOrder := make(map[int]bool, len(exam.Questions))
	for _, q := range exam.Questions {
		if seenOrder[q.OrderInExam] {
			return fmt.Errorf("duplicate question order %d: %w", q.OrderInExam, ErrValidation)
		}
		seenOrder[q.OrderInExam] = true
	}

	switch exam.Scheme {
	case scoring.SchemeGeneric:
		for _, q := range exam.Questions {
			if q.Marks <= 0 {
				return fmt.Errorf("question %q needs a positive marks weight: %w", q.Text, ErrValidation)
			}
			correct := 0
			for _, opt := range q.Options {
				if opt.IsCorrect {
					correct++
				}
			}
			if correct != 1 {
				return fmt.Errorf("question %q must flag exactly one correct option, got %d: %w", q.Text, correct, ErrValidation)
			}
		}
	case scoring.SchemeLikertReverse:
		if err := validateInstrument(exam, scoring.LikertItemCount); err != nil {
			return err
		}
	case scoring.SchemeCategoricalThreshold:
		if err := validateInstrument(exam, scoring.CategoricalItemCount); err != nil {
			return err
		}
	}
	return nil
}

func validateInstrument(exam *model.Exam, itemCount int) error {
	if len(exam.Questions) != itemCount {
		return fmt.Errorf("scheme %q requires exactly %d questions, got %d: %w", exam.Scheme, itemCount, len(exam.Questions), ErrValidation)
	}
	decoder := scoring.DecoderFor(exam.Scheme)
	for _, q := range exam.Questions {
		metas := optionMetas(q)
		if err := decoder.Validate(metas); err != nil {
			return fmt.Errorf("question %q: %s: %w", q.Text, err.Error(), ErrValidation)
		}
	}
	return nil
}
