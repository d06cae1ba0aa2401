package repository

import (
	"errors"
	"time"

	"github.com/coursehub-next/internal/constants"
	"github.com/coursehub-next/internal/models"

	"gorm.io/gorm"
)

// EnrollmentRepository 报名数据访问接口
type EnrollmentRepository interface {
	GetByUserCourse(userID, courseID uint) (*models.Enrollment, error)
	Create(enrollment *models.Enrollment) error
	Update(enrollment *models.Enrollment) error
	MarkCompleted(id uint, completedAt time.Time) error
	ListByUser(filter EnrollmentListFilter) ([]models.Enrollment, int64, error)
	WithTx(tx *gorm.DB) *GormEnrollmentRepository
}

// GormEnrollmentRepository GORM 实现
type GormEnrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository 创建报名仓库
func NewEnrollmentRepository(db *gorm.DB) *GormEnrollmentRepository {
	return &GormEnrollmentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormEnrollmentRepository) WithTx(tx *gorm.DB) *GormEnrollmentRepository {
	if tx == nil {
		return r
	}
	return &GormEnrollmentRepository{db: tx}
}

// GetByUserCourse 获取用户在某课程下的报名记录
func (r *GormEnrollmentRepository) GetByUserCourse(userID, courseID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &enrollment, nil
}

// Create 创建报名记录
func (r *GormEnrollmentRepository) Create(enrollment *models.Enrollment) error {
	return r.db.Create(enrollment).Error
}

// Update 更新报名记录
func (r *GormEnrollmentRepository) Update(enrollment *models.Enrollment) error {
	return r.db.Save(enrollment).Error
}

// MarkCompleted 将报名置为完课状态（幂等）
func (r *GormEnrollmentRepository) MarkCompleted(id uint, completedAt time.Time) error {
	return r.db.Model(&models.Enrollment{}).
		Where("id = ? AND status = ?", id, constants.EnrollmentStatusActive).
		Updates(map[string]interface{}{
			"status":       constants.EnrollmentStatusCompleted,
			"completed_at": completedAt,
		}).Error
}

// ListByUser 获取用户报名列表
func (r *GormEnrollmentRepository) ListByUser(filter EnrollmentListFilter) ([]models.Enrollment, int64, error) {
	query := r.db.Model(&models.Enrollment{}).Where("user_id = ?", filter.UserID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.WithCourse {
		query = query.Preload("Course")
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var enrollments []models.Enrollment
	if err := query.Order("id desc").Find(&enrollments).Error; err != nil {
		return nil, 0, err
	}
	return enrollments, total, nil
}
