package service

import (
	"errors"
	"testing"
	"time"

	"github.com/coursehub-next/internal/constants"
	"github.com/coursehub-next/internal/models"
	"github.com/coursehub-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCouponServiceTest(t *testing.T) (*CouponService, *gorm.DB) {
	t.Helper()
	db := setupServiceTestDB(t, "coupon_service_test")
	return NewCouponService(
		repository.NewCouponRepository(db),
		repository.NewCouponUsageRepository(db),
	), db
}

func TestCouponValidateNotFound(t *testing.T) {
	svc, _ := setupCouponServiceTest(t)

	if _, err := svc.Validate("NOPE", 1, 1); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("expected ErrCouponNotFound, got %v", err)
	}
	if _, err := svc.Validate("   ", 1, 1); !errors.Is(err, ErrCouponInvalid) {
		t.Fatalf("expected ErrCouponInvalid for blank code, got %v", err)
	}
}

func TestCouponValidateLifecycle(t *testing.T) {
	svc, db := setupCouponServiceTest(t)

	createTestCoupon(t, db, &models.Coupon{
		Code:     "INACTIVE",
		Type:     constants.CouponTypeFixed,
		Value:    models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		IsActive: false,
	})
	if _, err := svc.Validate("INACTIVE", 1, 1); !errors.Is(err, ErrCouponInactive) {
		t.Fatalf("expected ErrCouponInactive, got %v", err)
	}

	future := time.Now().Add(time.Hour)
	createTestCoupon(t, db, &models.Coupon{
		Code:      "EARLY",
		Type:      constants.CouponTypeFixed,
		Value:     models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		ValidFrom: &future,
		IsActive:  true,
	})
	if _, err := svc.Validate("EARLY", 1, 1); !errors.Is(err, ErrCouponNotStarted) {
		t.Fatalf("expected ErrCouponNotStarted, got %v", err)
	}

	past := time.Now().Add(-time.Hour)
	createTestCoupon(t, db, &models.Coupon{
		Code:       "LATE",
		Type:       constants.CouponTypeFixed,
		Value:      models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		ValidUntil: &past,
		IsActive:   true,
	})
	if _, err := svc.Validate("LATE", 1, 1); !errors.Is(err, ErrCouponExpired) {
		t.Fatalf("expected ErrCouponExpired, got %v", err)
	}
}

func TestCouponValidateUsageLimitAndScope(t *testing.T) {
	svc, db := setupCouponServiceTest(t)

	createTestCoupon(t, db, &models.Coupon{
		Code:      "SOLDOUT",
		Type:      constants.CouponTypeFixed,
		Value:     models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		MaxUses:   2,
		UsedCount: 2,
		IsActive:  true,
	})
	if _, err := svc.Validate("SOLDOUT", 1, 1); !errors.Is(err, ErrCouponUsageLimit) {
		t.Fatalf("expected ErrCouponUsageLimit, got %v", err)
	}

	courseID := uint(7)
	createTestCoupon(t, db, &models.Coupon{
		Code:     "SCOPED",
		Type:     constants.CouponTypeFixed,
		Value:    models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		CourseID: &courseID,
		IsActive: true,
	})
	if _, err := svc.Validate("SCOPED", 1, 8); !errors.Is(err, ErrCouponScopeMismatch) {
		t.Fatalf("expected ErrCouponScopeMismatch, got %v", err)
	}
	if _, err := svc.Validate("SCOPED", 1, 7); err != nil {
		t.Fatalf("expected scoped coupon to validate for its course, got %v", err)
	}
}

func TestCouponValidatePerUserOnce(t *testing.T) {
	svc, db := setupCouponServiceTest(t)

	coupon := createTestCoupon(t, db, &models.Coupon{
		Code:     "ONCE",
		Type:     constants.CouponTypeFixed,
		Value:    models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		IsActive: true,
	})
	usage := models.CouponUsage{
		CouponID:       coupon.ID,
		UserID:         1,
		TransactionID:  1,
		DiscountAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
	}
	if err := db.Create(&usage).Error; err != nil {
		t.Fatalf("create usage failed: %v", err)
	}

	if _, err := svc.Validate("ONCE", 1, 1); !errors.Is(err, ErrCouponAlreadyUsed) {
		t.Fatalf("expected ErrCouponAlreadyUsed, got %v", err)
	}
	if _, err := svc.Validate("ONCE", 2, 1); err != nil {
		t.Fatalf("expected other user to validate, got %v", err)
	}
	// userID=0 仅用于系统内部校验，跳过每人一次检查
	if _, err := svc.Validate("ONCE", 0, 1); err != nil {
		t.Fatalf("expected system validation to pass, got %v", err)
	}
}

func TestCouponPreviewRejectsAlreadyUsed(t *testing.T) {
	svc, db := setupCouponServiceTest(t)
	course := createTestCourse(t, db, "preview-used", decimal.NewFromInt(50), constants.CourseStatusPublished)

	coupon := createTestCoupon(t, db, &models.Coupon{
		Code:     "USEDUP",
		Type:     constants.CouponTypePercentage,
		Value:    models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
		IsActive: true,
	})
	usage := models.CouponUsage{
		CouponID:       coupon.ID,
		UserID:         7,
		TransactionID:  1,
		DiscountAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
	}
	if err := db.Create(&usage).Error; err != nil {
		t.Fatalf("create usage failed: %v", err)
	}

	// 已用过该券的用户在试算阶段即被拒绝
	if _, err := svc.Preview("USEDUP", 7, course); !errors.Is(err, ErrCouponAlreadyUsed) {
		t.Fatalf("expected ErrCouponAlreadyUsed, got %v", err)
	}
	preview, err := svc.Preview("USEDUP", 8, course)
	if err != nil {
		t.Fatalf("preview for fresh user failed: %v", err)
	}
	if preview.FinalPrice.String() != "40.00" {
		t.Fatalf("expected final price 40.00, got %s", preview.FinalPrice.String())
	}
}

func TestCouponDiscount(t *testing.T) {
	svc, _ := setupCouponServiceTest(t)

	percentage := &models.Coupon{
		Type:  constants.CouponTypePercentage,
		Value: models.NewMoneyFromDecimal(decimal.NewFromInt(25)),
	}
	got := svc.Discount(percentage, models.NewMoneyFromDecimal(decimal.NewFromInt(40)))
	if got.String() != "10.00" {
		t.Fatalf("expected 25%% of 40 to be 10.00, got %s", got.String())
	}

	fixed := &models.Coupon{
		Type:  constants.CouponTypeFixed,
		Value: models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
	}
	got = svc.Discount(fixed, models.NewMoneyFromDecimal(decimal.NewFromInt(30)))
	if got.String() != "30.00" {
		t.Fatalf("expected discount capped at price, got %s", got.String())
	}

	threshold := &models.Coupon{
		Type:      constants.CouponTypeFixed,
		Value:     models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		MinAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
	}
	got = svc.Discount(threshold, models.NewMoneyFromDecimal(decimal.NewFromInt(30)))
	if !got.Decimal.IsZero() {
		t.Fatalf("expected zero discount below threshold, got %s", got.String())
	}

	if got := svc.Discount(nil, models.NewMoneyFromDecimal(decimal.NewFromInt(30))); !got.Decimal.IsZero() {
		t.Fatalf("expected zero discount for nil coupon, got %s", got.String())
	}
}

func TestCouponPreviewFinalPrice(t *testing.T) {
	svc, db := setupCouponServiceTest(t)
	course := createTestCourse(t, db, "preview", decimal.NewFromInt(20), constants.CourseStatusPublished)

	createTestCoupon(t, db, &models.Coupon{
		Code:     "FULL",
		Type:     constants.CouponTypeFixed,
		Value:    models.NewMoneyFromDecimal(decimal.NewFromInt(80)),
		IsActive: true,
	})

	preview, err := svc.Preview("FULL", 0, course)
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if preview.Discount.String() != "20.00" {
		t.Fatalf("expected discount 20.00, got %s", preview.Discount.String())
	}
	if preview.FinalPrice.String() != "0.00" {
		t.Fatalf("expected final price 0.00, got %s", preview.FinalPrice.String())
	}
}
