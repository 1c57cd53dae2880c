package repository

import (
	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerRepository interface {
	WithTx(tx *gorm.DB) AnswerRepository
	// Upsert writes one answer, last-writer-wins per (attempt, question).
	Upsert(answer *model.Answer) error
	UpsertAll(answers []model.Answer) error
	FindByAttemptID(attemptID uint) ([]model.Answer, error)
}

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) WithTx(tx *gorm.DB) AnswerRepository {
	return &answerRepository{db: tx}
}

func upsertClause() clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"selected_option_id", "updated_at"}),
	}
}

func (r *answerRepository) Upsert(answer *model.Answer) error {
	return r.db.Clauses(upsertClause()).Create(answer).Error
}

func (r *answerRepository) UpsertAll(answers []model.Answer) error {
	if len(answers) == 0 {
		return nil
	}
	return r.db.Clauses(upsertClause()).Create(&answers).Error
}

func (r *answerRepository) FindByAttemptID(attemptID uint) ([]model.Answer, error) {
	var answers []model.Answer
	if err := r.db.Where("attempt_id = ?", attemptID).Order("question_id ASC").Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}
