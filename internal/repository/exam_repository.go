package repository

import (
	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/model"
	"gorm.io/gorm"
)

type ExamRepository interface {
	Create(exam *model.Exam) error
	FindByID(id uint) (*model.Exam, error)
	FindByIDWithQuestions(id uint) (*model.Exam, error)
	FindActiveByIDWithQuestions(id uint) (*model.Exam, error)
	FindAllActiveWithQuestionCount() ([]struct {
		model.Exam
		QuestionCount int
	}, error)
}

type examRepository struct {
	db *gorm.DB
}

func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

func (r *examRepository) Create(exam *model.Exam) error {
	// GORM creates associated questions and options along with the exam.
	return r.db.Create(exam).Error
}

func (r *examRepository) FindByID(id uint) (*model.Exam, error) {
	var exam model.Exam
	if err := r.db.First(&exam, id).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func preloadCatalog(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.order_in_exam ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("options.order_in_question ASC")
		})
}

func (r *examRepository) FindByIDWithQuestions(id uint) (*model.Exam, error) {
	var exam model.Exam
	if err := preloadCatalog(r.db).First(&exam, id).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *examRepository) FindActiveByIDWithQuestions(id uint) (*model.Exam, error) {
	var exam model.Exam
	if err := preloadCatalog(r.db).Where("active = ?", true).First(&exam, id).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *examRepository) FindAllActiveWithQuestionCount() ([]struct {
	model.Exam
	QuestionCount int
}, error) {
	var results []struct {
		model.Exam
		QuestionCount int
	}
	err := r.db.Model(&model.Exam{}).
		Select("exams.*, (SELECT COUNT(*) FROM questions WHERE questions.exam_id = exams.id AND questions.deleted_at IS NULL) AS question_count").
		Where("exams.active = ?", true).
		Order("exams.created_at DESC").
		Find(&results).Error
	return results, err
}
