package repository

import (
	"errors"
	"time"

	"github.com/coursehub-next/internal/constants"
	"github.com/coursehub-next/internal/models"

	"gorm.io/gorm"
)

// TransactionRepository 交易数据访问接口
type TransactionRepository interface {
	GetByID(id uint) (*models.Transaction, error)
	GetByTransactionNo(transactionNo string) (*models.Transaction, error)
	GetOpenByUserCourse(userID, courseID uint) (*models.Transaction, error)
	GetCompletedByUserCourse(userID, courseID uint) (*models.Transaction, error)
	Create(txn *models.Transaction) error
	Update(txn *models.Transaction) error
	MarkCompleted(id uint, paidAt time.Time, gatewayRef string) (bool, error)
	MarkFailed(id uint, reason string) (bool, error)
	List(filter TransactionListFilter) ([]models.Transaction, int64, error)
	WithTx(tx *gorm.DB) *GormTransactionRepository
}

// GormTransactionRepository GORM 实现
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository 创建交易仓库
func NewTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormTransactionRepository) WithTx(tx *gorm.DB) *GormTransactionRepository {
	if tx == nil {
		return r
	}
	return &GormTransactionRepository{db: tx}
}

// GetByID 根据ID获取交易
func (r *GormTransactionRepository) GetByID(id uint) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.First(&txn, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// GetByTransactionNo 根据交易号获取交易
func (r *GormTransactionRepository) GetByTransactionNo(transactionNo string) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.Where("transaction_no = ?", transactionNo).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// GetOpenByUserCourse 获取用户在某课程下未关闭（pending）的交易
func (r *GormTransactionRepository) GetOpenByUserCourse(userID, courseID uint) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.db.Where("user_id = ? AND course_id = ? AND status = ?",
		userID, courseID, constants.TransactionStatusPending).
		Order("id desc").
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// GetCompletedByUserCourse 获取用户在某课程下已完成的交易
func (r *GormTransactionRepository) GetCompletedByUserCourse(userID, courseID uint) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.db.Where("user_id = ? AND course_id = ? AND status = ?",
		userID, courseID, constants.TransactionStatusCompleted).
		Order("id desc").
		First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// Create 创建交易
func (r *GormTransactionRepository) Create(txn *models.Transaction) error {
	return r.db.Create(txn).Error
}

// Update 更新交易
func (r *GormTransactionRepository) Update(txn *models.Transaction) error {
	return r.db.Save(txn).Error
}

// MarkCompleted 将 pending 交易置为 completed
// 条件更新保证并发确认时只有一个写入者生效，返回 false 表示状态已被他人变更。
func (r *GormTransactionRepository) MarkCompleted(id uint, paidAt time.Time, gatewayRef string) (bool, error) {
	result := r.db.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, constants.TransactionStatusPending).
		Updates(map[string]interface{}{
			"status":      constants.TransactionStatusCompleted,
			"paid_at":     paidAt,
			"gateway_ref": gatewayRef,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkFailed 将 pending 交易置为 failed
func (r *GormTransactionRepository) MarkFailed(id uint, reason string) (bool, error) {
	result := r.db.Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, constants.TransactionStatusPending).
		Updates(map[string]interface{}{
			"status":         constants.TransactionStatusFailed,
			"failure_reason": reason,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// List 获取交易列表
func (r *GormTransactionRepository) List(filter TransactionListFilter) ([]models.Transaction, int64, error) {
	query := r.db.Model(&models.Transaction{})

	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.CourseID > 0 {
		query = query.Where("course_id = ?", filter.CourseID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.TransactionNo != "" {
		query = query.Where("transaction_no = ?", filter.TransactionNo)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query.Preload("Course"), filter.Page, filter.PageSize)

	var txns []models.Transaction
	if err := query.Order("id desc").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}
