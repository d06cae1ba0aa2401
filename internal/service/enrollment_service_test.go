package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/coursehub-next/internal/constants"
	"github.com/coursehub-next/internal/models"
	"github.com/coursehub-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupEnrollmentServiceTest(t *testing.T) (*EnrollmentService, *gorm.DB) {
	t.Helper()
	db := setupServiceTestDB(t, "enrollment_service_test")
	svc := NewEnrollmentService(
		repository.NewCourseRepository(db),
		repository.NewEnrollmentRepository(db),
		repository.NewTransactionRepository(db),
		repository.NewLessonRepository(db),
		repository.NewLessonCompletionRepository(db),
		nil,
	)
	return svc, db
}

func createCompletedTransaction(t *testing.T, db *gorm.DB, userID, courseID uint, amount decimal.Decimal) *models.Transaction {
	t.Helper()
	now := time.Now()
	txn := &models.Transaction{
		TransactionNo: "TXN-TEST" + time.Now().Format("150405.000000000"),
		UserID:        userID,
		CourseID:      courseID,
		Amount:        models.NewMoneyFromDecimal(amount),
		Currency:      constants.DefaultCurrency,
		PaymentMethod: constants.PaymentMethodCard,
		Status:        constants.TransactionStatusCompleted,
		PaidAt:        &now,
	}
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("create transaction failed: %v", err)
	}
	return txn
}

func TestEnrollFreeCourse(t *testing.T) {
	svc, db := setupEnrollmentServiceTest(t)
	user := createTestUser(t, db, 1)
	course := createTestCourse(t, db, "free-enroll", decimal.Zero, constants.CourseStatusPublished)

	enrollment, err := svc.Enroll(EnrollInput{UserID: user.ID, CourseID: course.ID})
	if err != nil {
		t.Fatalf("enroll failed: %v", err)
	}
	if enrollment.Status != constants.EnrollmentStatusActive {
		t.Fatalf("unexpected status: %s", enrollment.Status)
	}
	if enrollment.TransactionID != nil {
		t.Fatalf("expected free enrollment without transaction, got %v", *enrollment.TransactionID)
	}

	if _, err := svc.Enroll(EnrollInput{UserID: user.ID, CourseID: course.ID}); !errors.Is(err, ErrAlreadyEnrolled) {
		t.Fatalf("expected ErrAlreadyEnrolled, got %v", err)
	}
}

func TestEnrollPaidCourseRequiresCompletedTransaction(t *testing.T) {
	svc, db := setupEnrollmentServiceTest(t)
	user := createTestUser(t, db, 1)
	stranger := createTestUser(t, db, 2)
	course := createTestCourse(t, db, "paid-enroll", decimal.NewFromInt(60), constants.CourseStatusPublished)

	if _, err := svc.Enroll(EnrollInput{UserID: user.ID, CourseID: course.ID}); !errors.Is(err, ErrPaymentRequired) {
		t.Fatalf("expected ErrPaymentRequired, got %v", err)
	}

	pending := createCompletedTransaction(t, db, user.ID, course.ID, decimal.NewFromInt(60))
	if err := db.Model(pending).Update("status", constants.TransactionStatusPending).Error; err != nil {
		t.Fatalf("update txn failed: %v", err)
	}
	if _, err := svc.Enroll(EnrollInput{UserID: user.ID, CourseID: course.ID, TransactionNo: pending.TransactionNo}); !errors.Is(err, ErrPaymentIncomplete) {
		t.Fatalf("expected ErrPaymentIncomplete, got %v", err)
	}

	foreign := createCompletedTransaction(t, db, stranger.ID, course.ID, decimal.NewFromInt(60))
	if _, err := svc.Enroll(EnrollInput{UserID: user.ID, CourseID: course.ID, TransactionNo: foreign.TransactionNo}); !errors.Is(err, ErrTransactionInvalid) {
		t.Fatalf("expected ErrTransactionInvalid, got %v", err)
	}

	paid := createCompletedTransaction(t, db, user.ID, course.ID, decimal.NewFromInt(60))
	enrollment, err := svc.Enroll(EnrollInput{UserID: user.ID, CourseID: course.ID, TransactionNo: paid.TransactionNo})
	if err != nil {
		t.Fatalf("enroll with completed transaction failed: %v", err)
	}
	if enrollment.TransactionID == nil || *enrollment.TransactionID != paid.ID {
		t.Fatalf("expected enrollment to reference transaction %d", paid.ID)
	}
}

func TestEnrollFallsBackToCompletedTransaction(t *testing.T) {
	svc, db := setupEnrollmentServiceTest(t)
	user := createTestUser(t, db, 1)
	course := createTestCourse(t, db, "fallback-enroll", decimal.NewFromInt(45), constants.CourseStatusPublished)
	paid := createCompletedTransaction(t, db, user.ID, course.ID, decimal.NewFromInt(45))

	// 未携带交易号时按用户与课程查找已完成交易
	enrollment, err := svc.Enroll(EnrollInput{UserID: user.ID, CourseID: course.ID})
	if err != nil {
		t.Fatalf("enroll without transaction no failed: %v", err)
	}
	if enrollment.TransactionID == nil || *enrollment.TransactionID != paid.ID {
		t.Fatalf("expected enrollment to reference transaction %d", paid.ID)
	}
}

func TestEnrollReactivatesCancelledEnrollment(t *testing.T) {
	svc, db := setupEnrollmentServiceTest(t)
	user := createTestUser(t, db, 1)
	course := createTestCourse(t, db, "cancel-enroll", decimal.NewFromInt(45), constants.CourseStatusPublished)

	cancelled := createTestEnrollment(t, db, user.ID, course.ID)
	completedAt := time.Now()
	if err := db.Model(cancelled).Updates(map[string]interface{}{
		"status":       constants.EnrollmentStatusCancelled,
		"completed_at": completedAt,
	}).Error; err != nil {
		t.Fatalf("cancel enrollment failed: %v", err)
	}

	// 没有新的已完成交易时仍然不能恢复
	if _, err := svc.Enroll(EnrollInput{UserID: user.ID, CourseID: course.ID}); !errors.Is(err, ErrPaymentRequired) {
		t.Fatalf("expected ErrPaymentRequired, got %v", err)
	}

	paid := createCompletedTransaction(t, db, user.ID, course.ID, decimal.NewFromInt(45))
	enrollment, err := svc.Enroll(EnrollInput{UserID: user.ID, CourseID: course.ID, TransactionNo: paid.TransactionNo})
	if err != nil {
		t.Fatalf("re-enroll after cancellation failed: %v", err)
	}
	if enrollment.ID != cancelled.ID {
		t.Fatalf("expected the cancelled row to be reused, got %d", enrollment.ID)
	}
	if enrollment.Status != constants.EnrollmentStatusActive {
		t.Fatalf("expected reactivated enrollment, got %s", enrollment.Status)
	}
	if enrollment.TransactionID == nil || *enrollment.TransactionID != paid.ID {
		t.Fatalf("expected enrollment to reference transaction %d", paid.ID)
	}
	if enrollment.CompletedAt != nil {
		t.Fatalf("expected completed_at to be cleared on reactivation")
	}
}

func TestEnrollConcurrentSingleRow(t *testing.T) {
	svc, db := setupEnrollmentServiceTest(t)
	user := createTestUser(t, db, 1)
	course := createTestCourse(t, db, "race-enroll", decimal.Zero, constants.CourseStatusPublished)

	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.Enroll(EnrollInput{UserID: user.ID, CourseID: course.ID})
		}(i)
	}
	close(start)
	wg.Wait()

	var created, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrAlreadyEnrolled):
			rejected++
		default:
			t.Fatalf("unexpected enroll error: %v", err)
		}
	}
	if created != 1 || rejected != 1 {
		t.Fatalf("expected one creation and one rejection, got created=%d rejected=%d", created, rejected)
	}

	var count int64
	if err := db.Model(&models.Enrollment{}).Where("user_id = ? AND course_id = ?", user.ID, course.ID).Count(&count).Error; err != nil {
		t.Fatalf("count enrollments failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single enrollment row, got %d", count)
	}
}

func TestEnrollRejectsUnpublishedCourse(t *testing.T) {
	svc, db := setupEnrollmentServiceTest(t)
	user := createTestUser(t, db, 1)
	draft := createTestCourse(t, db, "draft-enroll", decimal.Zero, constants.CourseStatusDraft)

	if _, err := svc.Enroll(EnrollInput{UserID: user.ID, CourseID: draft.ID}); !errors.Is(err, ErrCourseNotAvailable) {
		t.Fatalf("expected ErrCourseNotAvailable, got %v", err)
	}
	if _, err := svc.Enroll(EnrollInput{UserID: user.ID, CourseID: 999}); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestListByUserIncludesProgress(t *testing.T) {
	svc, db := setupEnrollmentServiceTest(t)
	user := createTestUser(t, db, 1)
	course := createTestCourse(t, db, "progress-list", decimal.Zero, constants.CourseStatusPublished)
	first := createTestLesson(t, db, course.ID, 1)
	createTestLesson(t, db, course.ID, 2)
	createTestEnrollment(t, db, user.ID, course.ID)

	completion := models.LessonCompletion{
		UserID:      user.ID,
		LessonID:    first.ID,
		CourseID:    course.ID,
		CompletedAt: time.Now(),
	}
	if err := db.Create(&completion).Error; err != nil {
		t.Fatalf("create completion failed: %v", err)
	}

	items, total, err := svc.ListByUser(repository.EnrollmentListFilter{Page: 1, PageSize: 10, UserID: user.ID})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected one enrollment, got total=%d len=%d", total, len(items))
	}
	item := items[0]
	if item.TotalLessons != 2 || item.CompletedLessons != 1 {
		t.Fatalf("unexpected lesson counts: %d/%d", item.CompletedLessons, item.TotalLessons)
	}
	if item.Progress != "0.5000" {
		t.Fatalf("expected progress 0.5000, got %s", item.Progress)
	}
}

func TestCompletionRatioZeroLessons(t *testing.T) {
	if !completionRatio(0, 0).IsZero() {
		t.Fatalf("expected zero ratio for empty course")
	}
	if got := completionRatio(3, 2); !got.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected ratio clamped to 1, got %s", got.String())
	}
}
