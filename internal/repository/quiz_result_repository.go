package repository

import (
	"github.com/coursehub-next/internal/models"

	"gorm.io/gorm"
)

// QuizResultRepository 测验成绩数据访问接口（只追加）
type QuizResultRepository interface {
	Create(result *models.QuizResult) error
	List(filter QuizResultListFilter) ([]models.QuizResult, int64, error)
	CountPassed(quizID, userID uint) (int64, error)
}

// GormQuizResultRepository GORM 实现
type GormQuizResultRepository struct {
	db *gorm.DB
}

// NewQuizResultRepository 创建测验成绩仓库
func NewQuizResultRepository(db *gorm.DB) *GormQuizResultRepository {
	return &GormQuizResultRepository{db: db}
}

// Create 追加一条成绩记录
func (r *GormQuizResultRepository) Create(result *models.QuizResult) error {
	return r.db.Create(result).Error
}

// List 获取成绩列表（按时间倒序）
func (r *GormQuizResultRepository) List(filter QuizResultListFilter) ([]models.QuizResult, int64, error) {
	query := r.db.Model(&models.QuizResult{})

	if filter.QuizID > 0 {
		query = query.Where("quiz_id = ?", filter.QuizID)
	}
	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var results []models.QuizResult
	if err := query.Order("id desc").Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// CountPassed 统计用户在某测验下的及格次数
func (r *GormQuizResultRepository) CountPassed(quizID, userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.QuizResult{}).
		Where("quiz_id = ? AND user_id = ? AND passed = ?", quizID, userID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
