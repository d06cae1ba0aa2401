package service

import (
	"github.com/coursehub-next/internal/models"
	"github.com/coursehub-next/internal/repository"
)

// CourseService 课程目录服务（仅读，课程内容由运营侧维护）
type CourseService struct {
	courseRepo   repository.CourseRepository
	categoryRepo repository.CategoryRepository
}

// NewCourseService 创建课程目录服务
func NewCourseService(
	courseRepo repository.CourseRepository,
	categoryRepo repository.CategoryRepository,
) *CourseService {
	return &CourseService{
		courseRepo:   courseRepo,
		categoryRepo: categoryRepo,
	}
}

// ListPublished 获取已发布课程列表
func (s *CourseService) ListPublished(filter repository.CourseListFilter) ([]models.Course, int64, error) {
	filter.OnlyPublished = true
	filter.WithCategory = true
	return s.courseRepo.List(filter)
}

// GetPublishedDetail 获取已发布课程详情（含课时目录）
// 未发布课程对外视为不存在。
func (s *CourseService) GetPublishedDetail(id uint) (*models.Course, error) {
	course, err := s.courseRepo.GetDetail(id)
	if err != nil {
		return nil, err
	}
	if course == nil || !course.IsPublished() {
		return nil, ErrCourseNotFound
	}
	return course, nil
}

// ListCategories 获取启用中的分类
func (s *CourseService) ListCategories() ([]models.Category, error) {
	return s.categoryRepo.ListActive()
}
