package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coursehub-next/internal/cache"
	"github.com/coursehub-next/internal/config"
	"github.com/coursehub-next/internal/constants"
	"github.com/coursehub-next/internal/logger"
	"github.com/coursehub-next/internal/models"
	"github.com/coursehub-next/internal/queue"
	"github.com/coursehub-next/internal/repository"

	"gorm.io/gorm"
)

// CertificateService 结业证书服务
// 证书在课程 100% 完成时签发，每人每课程恰好一张。
type CertificateService struct {
	certRepo       repository.CertificateRepository
	enrollRepo     repository.EnrollmentRepository
	lessonRepo     repository.LessonRepository
	completionRepo repository.LessonCompletionRepository
	courseRepo     repository.CourseRepository
	queueClient    *queue.Client
	verifyCacheTTL time.Duration
}

// NewCertificateService 创建证书服务
func NewCertificateService(
	certRepo repository.CertificateRepository,
	enrollRepo repository.EnrollmentRepository,
	lessonRepo repository.LessonRepository,
	completionRepo repository.LessonCompletionRepository,
	courseRepo repository.CourseRepository,
	queueClient *queue.Client,
	cfg *config.CertificateConfig,
) *CertificateService {
	verifyCacheTTL := 5 * time.Minute
	if cfg != nil && cfg.VerifyCacheTTLSeconds > 0 {
		verifyCacheTTL = time.Duration(cfg.VerifyCacheTTLSeconds) * time.Second
	}
	return &CertificateService{
		certRepo:       certRepo,
		enrollRepo:     enrollRepo,
		lessonRepo:     lessonRepo,
		completionRepo: completionRepo,
		courseRepo:     courseRepo,
		queueClient:    queueClient,
		verifyCacheTTL: verifyCacheTTL,
	}
}

// CertificateVerification 证书公开校验结果
type CertificateVerification struct {
	CertificateNo string    `json:"certificate_no"`
	HolderName    string    `json:"holder_name"`
	CourseTitle   string    `json:"course_title"`
	IssuedAt      time.Time `json:"issued_at"`
}

// CheckAndIssue 检查完课进度并在满足条件时签发证书
// 幂等：已有证书直接返回；进度不足返回 (nil, nil)，调用方据此判断未完课。
func (s *CertificateService) CheckAndIssue(userID, courseID uint) (*models.Certificate, error) {
	enrollment, err := s.enrollRepo.GetByUserCourse(userID, courseID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil || enrollment.Status == constants.EnrollmentStatusCancelled {
		return nil, ErrNotEnrolled
	}

	existing, err := s.certRepo.GetByUserCourse(userID, courseID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	total, err := s.lessonRepo.CountByCourse(courseID)
	if err != nil {
		return nil, err
	}
	// 零课时课程永远不算完成
	if total == 0 {
		return nil, nil
	}
	completed, err := s.completionRepo.CountByUserCourse(userID, courseID)
	if err != nil {
		return nil, err
	}
	if completed < total {
		return nil, nil
	}

	now := time.Now()
	certificate := &models.Certificate{
		CertificateNo: generateCertificateNo(now),
		UserID:        userID,
		CourseID:      courseID,
		IssuedAt:      now,
	}
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.certRepo.WithTx(tx).Create(certificate); err != nil {
			return err
		}
		return s.enrollRepo.WithTx(tx).MarkCompleted(enrollment.ID, now)
	})
	if err != nil {
		// 并发签发时由唯一约束兜底，返回先写入者的证书
		if repository.IsUniqueViolation(err) {
			winner, werr := s.certRepo.GetByUserCourse(userID, courseID)
			if werr != nil {
				return nil, werr
			}
			if winner != nil {
				return winner, nil
			}
		}
		return nil, err
	}

	logger.Infow("certificate_issued",
		"certificate_no", certificate.CertificateNo,
		"user_id", userID,
		"course_id", courseID,
	)

	if err := s.queueClient.EnqueueCourseCompletedEmail(queue.CourseCompletedEmailPayload{
		UserID:        userID,
		CourseID:      courseID,
		CertificateID: certificate.ID,
	}); err != nil {
		logger.Warnw("course_completed_email_enqueue_failed",
			"certificate_no", certificate.CertificateNo, "error", err)
	}

	return certificate, nil
}

// GetForUser 获取用户在某课程下的证书
func (s *CertificateService) GetForUser(userID, courseID uint) (*models.Certificate, error) {
	enrollment, err := s.enrollRepo.GetByUserCourse(userID, courseID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, ErrNotEnrolled
	}
	certificate, err := s.certRepo.GetByUserCourse(userID, courseID)
	if err != nil {
		return nil, err
	}
	if certificate == nil {
		return nil, ErrCertificateNotReady
	}
	return certificate, nil
}

// ListByUser 获取用户证书列表
func (s *CertificateService) ListByUser(filter repository.CertificateListFilter) ([]models.Certificate, int64, error) {
	filter.WithCourse = true
	return s.certRepo.ListByUser(filter)
}

// VerifyByNumber 公开校验证书编号（无需登录）
func (s *CertificateService) VerifyByNumber(certificateNo string) (*CertificateVerification, error) {
	trimmed := strings.TrimSpace(certificateNo)
	if trimmed == "" {
		return nil, ErrCertificateNotFound
	}

	ctx := context.Background()
	cacheKey := "certificate:verify:" + trimmed
	var cached CertificateVerification
	if ok, _ := cache.GetJSON(ctx, cacheKey, &cached); ok {
		return &cached, nil
	}

	certificate, err := s.certRepo.GetByNumber(trimmed)
	if err != nil {
		return nil, err
	}
	if certificate == nil {
		return nil, ErrCertificateNotFound
	}

	verification := &CertificateVerification{
		CertificateNo: certificate.CertificateNo,
		IssuedAt:      certificate.IssuedAt,
	}
	if certificate.User != nil {
		verification.HolderName = certificate.User.DisplayName
		if verification.HolderName == "" {
			verification.HolderName = certificate.User.Email
		}
	}
	if certificate.Course != nil {
		verification.CourseTitle = certificate.Course.Title
	}

	if err := cache.SetJSON(ctx, cacheKey, verification, s.verifyCacheTTL); err != nil {
		logger.Warnw("certificate_verify_cache_failed", "certificate_no", trimmed, "error", err)
	}
	return verification, nil
}

// generateCertificateNo 生成证书编号（CERT-XXXXXXXXXXXX-YYYYMMDD）
func generateCertificateNo(now time.Time) string {
	return fmt.Sprintf("%s%s-%s", constants.CertificateNoPrefix, randUpper(12), now.Format("20060102"))
}
