package repository

import (
	"errors"

	"github.com/coursehub-next/internal/models"

	"gorm.io/gorm"
)

// CertificateRepository 证书数据访问接口
type CertificateRepository interface {
	GetByUserCourse(userID, courseID uint) (*models.Certificate, error)
	GetByNumber(certificateNo string) (*models.Certificate, error)
	Create(certificate *models.Certificate) error
	ListByUser(filter CertificateListFilter) ([]models.Certificate, int64, error)
	WithTx(tx *gorm.DB) *GormCertificateRepository
}

// GormCertificateRepository GORM 实现
type GormCertificateRepository struct {
	db *gorm.DB
}

// NewCertificateRepository 创建证书仓库
func NewCertificateRepository(db *gorm.DB) *GormCertificateRepository {
	return &GormCertificateRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCertificateRepository) WithTx(tx *gorm.DB) *GormCertificateRepository {
	if tx == nil {
		return r
	}
	return &GormCertificateRepository{db: tx}
}

// GetByUserCourse 获取用户在某课程下的证书
func (r *GormCertificateRepository) GetByUserCourse(userID, courseID uint) (*models.Certificate, error) {
	var certificate models.Certificate
	err := r.db.Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&certificate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &certificate, nil
}

// GetByNumber 根据证书编号获取证书（含持有人与课程，供公开校验）
func (r *GormCertificateRepository) GetByNumber(certificateNo string) (*models.Certificate, error) {
	var certificate models.Certificate
	err := r.db.Preload("User").Preload("Course").
		Where("certificate_no = ?", certificateNo).
		First(&certificate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &certificate, nil
}

// Create 创建证书
func (r *GormCertificateRepository) Create(certificate *models.Certificate) error {
	return r.db.Create(certificate).Error
}

// ListByUser 获取用户证书列表
func (r *GormCertificateRepository) ListByUser(filter CertificateListFilter) ([]models.Certificate, int64, error) {
	query := r.db.Model(&models.Certificate{}).Where("user_id = ?", filter.UserID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.WithCourse {
		query = query.Preload("Course")
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var certificates []models.Certificate
	if err := query.Order("id desc").Find(&certificates).Error; err != nil {
		return nil, 0, err
	}
	return certificates, total, nil
}
