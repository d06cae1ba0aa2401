package service

import (
	"strings"
	"time"

	"github.com/coursehub-next/internal/constants"
	"github.com/coursehub-next/internal/logger"
	"github.com/coursehub-next/internal/models"
	"github.com/coursehub-next/internal/queue"
	"github.com/coursehub-next/internal/repository"

	"github.com/shopspring/decimal"
)

// EnrollmentService 报名服务
// 付费课程的报名必须由同一用户、同一课程的已完成交易背书。
type EnrollmentService struct {
	courseRepo     repository.CourseRepository
	enrollRepo     repository.EnrollmentRepository
	txnRepo        repository.TransactionRepository
	lessonRepo     repository.LessonRepository
	completionRepo repository.LessonCompletionRepository
	queueClient    *queue.Client
}

// NewEnrollmentService 创建报名服务
func NewEnrollmentService(
	courseRepo repository.CourseRepository,
	enrollRepo repository.EnrollmentRepository,
	txnRepo repository.TransactionRepository,
	lessonRepo repository.LessonRepository,
	completionRepo repository.LessonCompletionRepository,
	queueClient *queue.Client,
) *EnrollmentService {
	return &EnrollmentService{
		courseRepo:     courseRepo,
		enrollRepo:     enrollRepo,
		txnRepo:        txnRepo,
		lessonRepo:     lessonRepo,
		completionRepo: completionRepo,
		queueClient:    queueClient,
	}
}

// EnrollInput 报名输入
type EnrollInput struct {
	UserID        uint
	CourseID      uint
	TransactionNo string
}

// EnrollmentWithProgress 报名记录及学习进度
type EnrollmentWithProgress struct {
	models.Enrollment
	TotalLessons     int64  `json:"total_lessons"`
	CompletedLessons int64  `json:"completed_lessons"`
	Progress         string `json:"progress"`
}

// Enroll 报名课程
// 免费课程可直接报名；付费课程需要已完成的交易凭证。
func (s *EnrollmentService) Enroll(input EnrollInput) (*models.Enrollment, error) {
	course, err := s.courseRepo.GetByID(input.CourseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	if !course.IsPublished() {
		return nil, ErrCourseNotAvailable
	}

	existing, err := s.enrollRepo.GetByUserCourse(input.UserID, input.CourseID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status != constants.EnrollmentStatusCancelled {
		return existing, ErrAlreadyEnrolled
	}

	var transactionID *uint
	if !course.IsFree() {
		txn, err := s.resolveCompletedTransaction(input)
		if err != nil {
			return nil, err
		}
		transactionID = &txn.ID
	}

	enrollment := existing
	if enrollment != nil {
		// 已取消的报名原地重新激活，不另起一行
		enrollment.Status = constants.EnrollmentStatusActive
		enrollment.TransactionID = transactionID
		enrollment.EnrolledAt = time.Now()
		enrollment.CompletedAt = nil
		if err := s.enrollRepo.Update(enrollment); err != nil {
			return nil, err
		}
	} else {
		enrollment = &models.Enrollment{
			UserID:        input.UserID,
			CourseID:      input.CourseID,
			TransactionID: transactionID,
			Status:        constants.EnrollmentStatusActive,
			EnrolledAt:    time.Now(),
		}
		if err := s.enrollRepo.Create(enrollment); err != nil {
			// 并发报名时由唯一约束兜底
			if repository.IsUniqueViolation(err) {
				return nil, ErrAlreadyEnrolled
			}
			return nil, err
		}
	}

	logger.Infow("enrollment_created",
		"user_id", input.UserID,
		"course_id", input.CourseID,
		"free", course.IsFree(),
	)

	if err := s.queueClient.EnqueueEnrollmentConfirmedEmail(queue.EnrollmentConfirmedEmailPayload{
		UserID:   input.UserID,
		CourseID: input.CourseID,
	}); err != nil {
		logger.Warnw("enrollment_confirmed_email_enqueue_failed",
			"user_id", input.UserID, "course_id", input.CourseID, "error", err)
	}

	return enrollment, nil
}

// resolveCompletedTransaction 定位为本次报名背书的已完成交易
// 未携带交易号时回退为查找该用户在该课程下最近一笔已完成交易。
func (s *EnrollmentService) resolveCompletedTransaction(input EnrollInput) (*models.Transaction, error) {
	trimmed := strings.TrimSpace(input.TransactionNo)
	if trimmed == "" {
		txn, err := s.txnRepo.GetCompletedByUserCourse(input.UserID, input.CourseID)
		if err != nil {
			return nil, err
		}
		if txn == nil {
			return nil, ErrPaymentRequired
		}
		return txn, nil
	}

	txn, err := s.txnRepo.GetByTransactionNo(trimmed)
	if err != nil {
		return nil, err
	}
	if txn == nil || txn.UserID != input.UserID || txn.CourseID != input.CourseID {
		return nil, ErrTransactionInvalid
	}
	if txn.Status != constants.TransactionStatusCompleted {
		return nil, ErrPaymentIncomplete
	}
	return txn, nil
}

// GetByUserCourse 获取报名记录
func (s *EnrollmentService) GetByUserCourse(userID, courseID uint) (*models.Enrollment, error) {
	enrollment, err := s.enrollRepo.GetByUserCourse(userID, courseID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, ErrNotEnrolled
	}
	return enrollment, nil
}

// ListByUser 获取用户课程列表（含学习进度）
func (s *EnrollmentService) ListByUser(filter repository.EnrollmentListFilter) ([]EnrollmentWithProgress, int64, error) {
	filter.WithCourse = true
	enrollments, total, err := s.enrollRepo.ListByUser(filter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]EnrollmentWithProgress, 0, len(enrollments))
	for _, enrollment := range enrollments {
		totalLessons, err := s.lessonRepo.CountByCourse(enrollment.CourseID)
		if err != nil {
			return nil, 0, err
		}
		completed, err := s.completionRepo.CountByUserCourse(enrollment.UserID, enrollment.CourseID)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, EnrollmentWithProgress{
			Enrollment:       enrollment,
			TotalLessons:     totalLessons,
			CompletedLessons: completed,
			Progress:         completionRatio(completed, totalLessons).StringFixed(4),
		})
	}
	return result, total, nil
}

// completionRatio 计算完成比例，零课时课程视为未完成。
func completionRatio(completed, total int64) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	ratio := decimal.NewFromInt(completed).Div(decimal.NewFromInt(total))
	if ratio.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	return ratio
}
