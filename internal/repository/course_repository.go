package repository

import (
	"errors"
	"strings"

	"github.com/coursehub-next/internal/constants"
	"github.com/coursehub-next/internal/models"

	"gorm.io/gorm"
)

// CourseRepository 课程数据访问接口
type CourseRepository interface {
	GetByID(id uint) (*models.Course, error)
	GetBySlug(slug string) (*models.Course, error)
	GetDetail(id uint) (*models.Course, error)
	Create(course *models.Course) error
	Update(course *models.Course) error
	List(filter CourseListFilter) ([]models.Course, int64, error)
	WithTx(tx *gorm.DB) *GormCourseRepository
}

// GormCourseRepository GORM 实现
type GormCourseRepository struct {
	db *gorm.DB
}

// NewCourseRepository 创建课程仓库
func NewCourseRepository(db *gorm.DB) *GormCourseRepository {
	return &GormCourseRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCourseRepository) WithTx(tx *gorm.DB) *GormCourseRepository {
	if tx == nil {
		return r
	}
	return &GormCourseRepository{db: tx}
}

// GetByID 根据ID获取课程
func (r *GormCourseRepository) GetByID(id uint) (*models.Course, error) {
	var course models.Course
	if err := r.db.First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &course, nil
}

// GetBySlug 根据 slug 获取课程
func (r *GormCourseRepository) GetBySlug(slug string) (*models.Course, error) {
	var course models.Course
	if err := r.db.Where("slug = ?", slug).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &course, nil
}

// GetDetail 获取课程详情（含分类与按序排列的课时）
func (r *GormCourseRepository) GetDetail(id uint) (*models.Course, error) {
	var course models.Course
	err := r.db.Preload("Category").
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc, id asc")
		}).
		First(&course, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &course, nil
}

// Create 创建课程
func (r *GormCourseRepository) Create(course *models.Course) error {
	return r.db.Create(course).Error
}

// Update 更新课程
func (r *GormCourseRepository) Update(course *models.Course) error {
	return r.db.Save(course).Error
}

// List 获取课程列表
func (r *GormCourseRepository) List(filter CourseListFilter) ([]models.Course, int64, error) {
	query := r.db.Model(&models.Course{})

	if filter.OnlyPublished {
		query = query.Where("status = ?", constants.CourseStatusPublished)
	} else if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CategoryID > 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		condition, argCount := buildSearchCondition(r.db, []string{"title", "description"})
		like := "%" + search + "%"
		query = query.Where(condition, repeatLikeArgs(like, argCount)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.WithCategory {
		query = query.Preload("Category")
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var courses []models.Course
	if err := query.Order("id desc").Find(&courses).Error; err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}
