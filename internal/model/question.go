package model

import (
	"time"

	"gorm.io/gorm"
)

type Question struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	ExamID uint   `json:"exam_id" gorm:"not null;index"`
	Text   string `json:"text" gorm:"type:text;not null"`
	// OrderInExam is 1-indexed. For the fixed instruments it defines the
	// item's category membership, so it must be unique within an exam.
	OrderInExam int            `json:"order_in_exam" gorm:"not null"`
	Marks       float64        `json:"marks,omitempty"` // generic scheme only
	Options     []Option       `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
