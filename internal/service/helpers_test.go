package service

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/dto"
	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/model"
	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/repository"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// fakeClock lets tests control the server-authoritative timing model.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEngine struct {
	db          *gorm.DB
	clock       *fakeClock
	examRepo    repository.ExamRepository
	catalog     CatalogService
	attempts    AttemptService
	submissions SubmissionService
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	// One connection serializes concurrent transactions the way row locks
	// do on Postgres.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.Exam{}, &model.Question{}, &model.Option{}, &model.Attempt{}, &model.Answer{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Exec(repository.UniqueInProgressIndexSQL).Error; err != nil {
		t.Fatalf("partial unique index: %v", err)
	}

	clock := &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	examRepo := repository.NewExamRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	answerRepo := repository.NewAnswerRepository(db)

	return &testEngine{
		db:          db,
		clock:       clock,
		examRepo:    examRepo,
		catalog:     NewCatalogService(examRepo),
		attempts:    NewAttemptService(examRepo, attemptRepo, answerRepo, clock),
		submissions: NewSubmissionService(examRepo, attemptRepo, answerRepo, clock, db),
	}
}

func (e *testEngine) createExam(t *testing.T, req dto.CreateExamRequest) *model.Exam {
	t.Helper()
	created, err := e.catalog.CreateExam(req)
	if err != nil {
		t.Fatalf("CreateExam: %v", err)
	}
	exam, err := e.examRepo.FindByIDWithQuestions(created.ID)
	if err != nil {
		t.Fatalf("reload exam: %v", err)
	}
	return exam
}

// seedGenericExam creates a 2-question, single-mark exam with a 30-minute
// budget. Option A is correct on both questions.
func seedGenericExam(t *testing.T, e *testEngine) *model.Exam {
	t.Helper()
	questions := make([]dto.QuestionForExamRequest, 2)
	for i := range questions {
		questions[i] = dto.QuestionForExamRequest{
			Text:        fmt.Sprintf("Question %d", i+1),
			OrderInExam: i + 1,
			Marks:       1,
			Options: []dto.OptionForExamRequest{
				{Label: "A", OrderInQuestion: 1, IsCorrect: true},
				{Label: "B", OrderInQuestion: 2},
				{Label: "C", OrderInQuestion: 3},
			},
		}
	}
	return e.createExam(t, dto.CreateExamRequest{
		Title:           "General Knowledge",
		Scheme:          "generic",
		DurationMinutes: 30,
		Questions:       questions,
	})
}

func likertOptionSet() []dto.OptionForExamRequest {
	labels := []string{"Never", "Rarely", "Sometimes", "Often", "Always"}
	opts := make([]dto.OptionForExamRequest, len(labels))
	for i, label := range labels {
		opts[i] = dto.OptionForExamRequest{Label: label, OrderInQuestion: i + 1}
	}
	return opts
}

func seedLikertExam(t *testing.T, e *testEngine) *model.Exam {
	t.Helper()
	questions := make([]dto.QuestionForExamRequest, 10)
	for i := range questions {
		questions[i] = dto.QuestionForExamRequest{
			Text:        fmt.Sprintf("Item %d", i+1),
			OrderInExam: i + 1,
			Options:     likertOptionSet(),
		}
	}
	return e.createExam(t, dto.CreateExamRequest{
		Title:           "Wellbeing Scale",
		Scheme:          "likert_reverse",
		DurationMinutes: 15,
		Questions:       questions,
	})
}

func seedCategoricalExam(t *testing.T, e *testEngine) *model.Exam {
	t.Helper()
	questions := make([]dto.QuestionForExamRequest, 29)
	for i := range questions {
		questions[i] = dto.QuestionForExamRequest{
			Text:        fmt.Sprintf("Item %d", i+1),
			OrderInExam: i + 1,
			Options: []dto.OptionForExamRequest{
				{Label: "Yes", OrderInQuestion: 1},
				{Label: "No", OrderInQuestion: 2},
			},
		}
	}
	return e.createExam(t, dto.CreateExamRequest{
		Title:           "Screening Questionnaire",
		Scheme:          "categorical_threshold",
		DurationMinutes: 20,
		Questions:       questions,
	})
}

// optionByPosition returns the option at the given 1-indexed display
// position of a question loaded with ordered options.
func optionByPosition(t *testing.T, q model.Question, pos int) uint {
	t.Helper()
	if pos < 1 || pos > len(q.Options) {
		t.Fatalf("question %d has no option position %d", q.ID, pos)
	}
	return q.Options[pos-1].ID
}

func correctOption(t *testing.T, q model.Question) uint {
	t.Helper()
	for _, opt := range q.Options {
		if opt.IsCorrect {
			return opt.ID
		}
	}
	t.Fatalf("question %d has no correct option", q.ID)
	return 0
}

func wrongOption(t *testing.T, q model.Question) uint {
	t.Helper()
	for _, opt := range q.Options {
		if !opt.IsCorrect {
			return opt.ID
		}
	}
	t.Fatalf("question %d has no incorrect option", q.ID)
	return 0
}

func (e *testEngine) beginAttempt(t *testing.T, participantID, examID uint) *dto.AttemptSessionResponse {
	t.Helper()
	session, err := e.attempts.GetOrCreateAttempt(participantID, examID)
	if err != nil {
		t.Fatalf("GetOrCreateAttempt: %v", err)
	}
	return session
}

func (e *testEngine) loadAttempt(t *testing.T, id uint) *model.Attempt {
	t.Helper()
	var attempt model.Attempt
	if err := e.db.First(&attempt, id).Error; err != nil {
		t.Fatalf("load attempt %d: %v", id, err)
	}
	return &attempt
}

func (e *testEngine) answerRows(t *testing.T, attemptID uint) []model.Answer {
	t.Helper()
	var answers []model.Answer
	if err := e.db.Where("attempt_id = ?", attemptID).Order("question_id ASC").Find(&answers).Error; err != nil {
		t.Fatalf("load answers: %v", err)
	}
	return answers
}
