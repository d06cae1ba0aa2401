package repository

import (
	"errors"

	"github.com/coursehub-next/internal/models"

	"gorm.io/gorm"
)

// LessonRepository 课时数据访问接口
type LessonRepository interface {
	GetByID(id uint) (*models.Lesson, error)
	ListByCourse(courseID uint) ([]models.Lesson, error)
	CountByCourse(courseID uint) (int64, error)
	Create(lesson *models.Lesson) error
	WithTx(tx *gorm.DB) *GormLessonRepository
}

// GormLessonRepository GORM 实现
type GormLessonRepository struct {
	db *gorm.DB
}

// NewLessonRepository 创建课时仓库
func NewLessonRepository(db *gorm.DB) *GormLessonRepository {
	return &GormLessonRepository{db: db}
}

// WithTx 绑定事务
func (r *GormLessonRepository) WithTx(tx *gorm.DB) *GormLessonRepository {
	if tx == nil {
		return r
	}
	return &GormLessonRepository{db: tx}
}

// GetByID 根据ID获取课时
func (r *GormLessonRepository) GetByID(id uint) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := r.db.First(&lesson, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lesson, nil
}

// ListByCourse 获取课程课时列表（按排序）
func (r *GormLessonRepository) ListByCourse(courseID uint) ([]models.Lesson, error) {
	var lessons []models.Lesson
	if err := r.db.Where("course_id = ?", courseID).
		Order("position asc, id asc").
		Find(&lessons).Error; err != nil {
		return nil, err
	}
	return lessons, nil
}

// CountByCourse 统计课程课时数量
func (r *GormLessonRepository) CountByCourse(courseID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Lesson{}).
		Where("course_id = ?", courseID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create 创建课时
func (r *GormLessonRepository) Create(lesson *models.Lesson) error {
	return r.db.Create(lesson).Error
}
