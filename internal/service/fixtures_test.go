package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/coursehub-next/internal/constants"
	"github.com/coursehub-next/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	// 内存库限制单连接，避免并发用例触发表锁错误
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Course{},
		&models.Lesson{},
		&models.Coupon{},
		&models.CouponUsage{},
		&models.Transaction{},
		&models.Enrollment{},
		&models.LessonCompletion{},
		&models.Certificate{},
		&models.Quiz{},
		&models.QuizQuestion{},
		&models.QuizAnswer{},
		&models.QuizResult{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, id uint) *models.User {
	t.Helper()
	user := &models.User{
		ID:           id,
		Email:        fmt.Sprintf("learner_%d@example.com", id),
		PasswordHash: "hash",
		DisplayName:  fmt.Sprintf("Learner %d", id),
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func createTestCourse(t *testing.T, db *gorm.DB, slug string, price decimal.Decimal, status string) *models.Course {
	t.Helper()
	course := &models.Course{
		Title:    "Course " + slug,
		Slug:     slug,
		Price:    models.NewMoneyFromDecimal(price),
		Currency: constants.DefaultCurrency,
		Status:   status,
	}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("create course failed: %v", err)
	}
	return course
}

func createTestLesson(t *testing.T, db *gorm.DB, courseID uint, position int) *models.Lesson {
	t.Helper()
	lesson := &models.Lesson{
		CourseID: courseID,
		Title:    fmt.Sprintf("Lesson %d", position),
		Position: position,
	}
	if err := db.Create(lesson).Error; err != nil {
		t.Fatalf("create lesson failed: %v", err)
	}
	return lesson
}

func createTestEnrollment(t *testing.T, db *gorm.DB, userID, courseID uint) *models.Enrollment {
	t.Helper()
	enrollment := &models.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		Status:     constants.EnrollmentStatusActive,
		EnrolledAt: time.Now(),
	}
	if err := db.Create(enrollment).Error; err != nil {
		t.Fatalf("create enrollment failed: %v", err)
	}
	return enrollment
}

func createTestCoupon(t *testing.T, db *gorm.DB, coupon *models.Coupon) *models.Coupon {
	t.Helper()
	// IsActive 带 default:true 标签，零值在 Create 时会被忽略且会被 RETURNING 回填，需先记录再显式落库
	isActive := coupon.IsActive
	if err := db.Create(coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	if !isActive {
		if err := db.Model(coupon).Update("is_active", false).Error; err != nil {
			t.Fatalf("deactivate coupon failed: %v", err)
		}
		coupon.IsActive = false
	}
	return coupon
}
