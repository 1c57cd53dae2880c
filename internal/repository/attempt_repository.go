package repository

import (
	"time"

	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// inProgressPredicate is the partial-index predicate. The ON CONFLICT target
// in CreateIfAbsent must render it verbatim as literal SQL, not as a bound
// parameter, or the database cannot match it to the index. The migration DDL
// is built from the same literal so the two cannot drift.
const inProgressPredicate = "status = 'in_progress'"

// UniqueInProgressIndexSQL creates the partial unique index enforcing at
// most one open attempt per (participant, exam). Run at migration time.
const UniqueInProgressIndexSQL = "CREATE UNIQUE INDEX IF NOT EXISTS uniq_inprogress_attempt ON attempts (participant_id, exam_id) WHERE " + inProgressPredicate

type AttemptRepository interface {
	// WithTx returns a repository bound to the given transaction.
	WithTx(tx *gorm.DB) AttemptRepository
	FindByID(id uint) (*model.Attempt, error)
	FindInProgress(participantID, examID uint) (*model.Attempt, error)
	HasCompleted(participantID, examID uint) (bool, error)
	// CreateIfAbsent inserts the attempt unless an in_progress row already
	// exists for the same (participant, exam). It reports whether the insert
	// happened; on false the caller should re-read the surviving row. Safety
	// under concurrent duplicate requests comes from the partial unique
	// index uniq_inprogress_attempt.
	CreateIfAbsent(attempt *model.Attempt) (bool, error)
	// DeleteByID removes an attempt row. Only used to discard a row this
	// engine created moments earlier, when the post-insert completed-attempt
	// re-check fails; attempts are otherwise never deleted.
	DeleteByID(id uint) error
	// CompleteIfInProgress performs the one-way transition guarded by the
	// current status, so concurrent completions race to exactly one winner.
	CompleteIfInProgress(id uint, score float64, payload datatypes.JSON, label string, completedAt time.Time) (bool, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) WithTx(tx *gorm.DB) AttemptRepository {
	return &attemptRepository{db: tx}
}

func (r *attemptRepository) FindByID(id uint) (*model.Attempt, error) {
	var attempt model.Attempt
	if err := r.db.First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindInProgress(participantID, examID uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.
		Where("participant_id = ? AND exam_id = ? AND status = ?", participantID, examID, model.AttemptInProgress).
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) HasCompleted(participantID, examID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Attempt{}).
		Where("participant_id = ? AND exam_id = ? AND status = ?", participantID, examID, model.AttemptCompleted).
		Count(&count).Error
	return count > 0, err
}

func (r *attemptRepository) CreateIfAbsent(attempt *model.Attempt) (bool, error) {
	res := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "participant_id"}, {Name: "exam_id"}},
		TargetWhere: clause.Where{
			Exprs: []clause.Expression{gorm.Expr(inProgressPredicate)},
		},
		DoNothing: true,
	}).Create(attempt)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *attemptRepository) DeleteByID(id uint) error {
	return r.db.Delete(&model.Attempt{}, id).Error
}

func (r *attemptRepository) CompleteIfInProgress(id uint, score float64, payload datatypes.JSON, label string, completedAt time.Time) (bool, error) {
	res := r.db.Model(&model.Attempt{}).
		Where("id = ? AND status = ?", id, model.AttemptInProgress).
		Updates(map[string]interface{}{
			"status":         model.AttemptCompleted,
			"score":          score,
			"result_payload": payload,
			"category_label": label,
			"completed_at":   completedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
