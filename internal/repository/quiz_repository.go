package repository

import (
	"errors"

	"github.com/coursehub-next/internal/models"

	"gorm.io/gorm"
)

// QuizRepository 测验数据访问接口
type QuizRepository interface {
	GetByID(id uint) (*models.Quiz, error)
	GetByIDWithQuestions(id uint) (*models.Quiz, error)
	GetByLessonID(lessonID uint) (*models.Quiz, error)
	Create(quiz *models.Quiz) error
}

// GormQuizRepository GORM 实现
type GormQuizRepository struct {
	db *gorm.DB
}

// NewQuizRepository 创建测验仓库
func NewQuizRepository(db *gorm.DB) *GormQuizRepository {
	return &GormQuizRepository{db: db}
}

// GetByID 根据ID获取测验（不含题目）
func (r *GormQuizRepository) GetByID(id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := r.db.First(&quiz, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &quiz, nil
}

// GetByIDWithQuestions 根据ID获取测验（含题目与选项）
func (r *GormQuizRepository) GetByIDWithQuestions(id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc, id asc")
	}).Preload("Questions.Answers").
		First(&quiz, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &quiz, nil
}

// GetByLessonID 根据课时ID获取测验（含题目与选项）
func (r *GormQuizRepository) GetByLessonID(lessonID uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc, id asc")
	}).Preload("Questions.Answers").
		Where("lesson_id = ?", lessonID).
		First(&quiz).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &quiz, nil
}

// Create 创建测验（级联写入题目与选项）
func (r *GormQuizRepository) Create(quiz *models.Quiz) error {
	return r.db.Create(quiz).Error
}
