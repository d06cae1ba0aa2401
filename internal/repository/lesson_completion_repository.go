package repository

import (
	"errors"

	"github.com/coursehub-next/internal/models"

	"gorm.io/gorm"
)

// LessonCompletionRepository 课时完成记录数据访问接口
type LessonCompletionRepository interface {
	GetByUserLesson(userID, lessonID uint) (*models.LessonCompletion, error)
	Create(completion *models.LessonCompletion) error
	DeleteByUserLesson(userID, lessonID uint) error
	CountByUserCourse(userID, courseID uint) (int64, error)
	ListByUserCourse(userID, courseID uint) ([]models.LessonCompletion, error)
	WithTx(tx *gorm.DB) *GormLessonCompletionRepository
}

// GormLessonCompletionRepository GORM 实现
type GormLessonCompletionRepository struct {
	db *gorm.DB
}

// NewLessonCompletionRepository 创建课时完成记录仓库
func NewLessonCompletionRepository(db *gorm.DB) *GormLessonCompletionRepository {
	return &GormLessonCompletionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormLessonCompletionRepository) WithTx(tx *gorm.DB) *GormLessonCompletionRepository {
	if tx == nil {
		return r
	}
	return &GormLessonCompletionRepository{db: tx}
}

// GetByUserLesson 获取用户课时完成记录
func (r *GormLessonCompletionRepository) GetByUserLesson(userID, lessonID uint) (*models.LessonCompletion, error) {
	var completion models.LessonCompletion
	err := r.db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		First(&completion).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &completion, nil
}

// Create 创建完成记录
func (r *GormLessonCompletionRepository) Create(completion *models.LessonCompletion) error {
	return r.db.Create(completion).Error
}

// DeleteByUserLesson 删除完成记录（取消完成，不存在时无副作用）
func (r *GormLessonCompletionRepository) DeleteByUserLesson(userID, lessonID uint) error {
	return r.db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Delete(&models.LessonCompletion{}).Error
}

// CountByUserCourse 统计用户在某课程下已完成的课时数
func (r *GormLessonCompletionRepository) CountByUserCourse(userID, courseID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.LessonCompletion{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListByUserCourse 获取用户在某课程下的完成记录
func (r *GormLessonCompletionRepository) ListByUserCourse(userID, courseID uint) ([]models.LessonCompletion, error) {
	var completions []models.LessonCompletion
	if err := r.db.Where("user_id = ? AND course_id = ?", userID, courseID).
		Find(&completions).Error; err != nil {
		return nil, err
	}
	return completions, nil
}
