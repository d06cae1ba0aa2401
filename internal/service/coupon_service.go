package service

import (
	"strings"
	"time"

	"github.com/coursehub-next/internal/constants"
	"github.com/coursehub-next/internal/models"
	"github.com/coursehub-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CouponService 优惠券服务
type CouponService struct {
	couponRepo repository.CouponRepository
	usageRepo  repository.CouponUsageRepository
}

// NewCouponService 创建优惠券服务
func NewCouponService(couponRepo repository.CouponRepository, usageRepo repository.CouponUsageRepository) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		usageRepo:  usageRepo,
	}
}

// CouponPreview 优惠试算结果
type CouponPreview struct {
	Coupon     *models.Coupon `json:"coupon"`
	Discount   models.Money   `json:"discount"`
	FinalPrice models.Money   `json:"final_price"`
}

// Validate 校验优惠券是否可用于指定用户与课程
// 校验顺序固定：存在 -> 启用 -> 有效期 -> 总量上限 -> 课程范围 -> 每人一次。
func (s *CouponService) Validate(code string, userID, courseID uint) (*models.Coupon, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return nil, ErrCouponInvalid
	}

	coupon, err := s.couponRepo.GetByCode(trimmed)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	if !coupon.IsActive {
		return coupon, ErrCouponInactive
	}

	now := time.Now()
	if coupon.ValidFrom != nil && now.Before(*coupon.ValidFrom) {
		return coupon, ErrCouponNotStarted
	}
	if coupon.ValidUntil != nil && now.After(*coupon.ValidUntil) {
		return coupon, ErrCouponExpired
	}

	if coupon.MaxUses > 0 && coupon.UsedCount >= coupon.MaxUses {
		return coupon, ErrCouponUsageLimit
	}

	if coupon.CourseID != nil && *coupon.CourseID != courseID {
		return coupon, ErrCouponScopeMismatch
	}

	if userID != 0 {
		count, err := s.usageRepo.CountByUser(coupon.ID, userID)
		if err != nil {
			return coupon, err
		}
		if count > 0 {
			return coupon, ErrCouponAlreadyUsed
		}
	}

	return coupon, nil
}

// Discount 计算优惠金额
// 低于使用门槛不产生优惠；优惠金额不会超过原价。
func (s *CouponService) Discount(coupon *models.Coupon, amount models.Money) models.Money {
	if coupon == nil {
		return models.NewMoneyFromDecimal(decimal.Zero)
	}
	if amount.Decimal.Cmp(coupon.MinAmount.Decimal) < 0 {
		return models.NewMoneyFromDecimal(decimal.Zero)
	}

	var discount decimal.Decimal
	switch strings.ToLower(strings.TrimSpace(coupon.Type)) {
	case constants.CouponTypePercentage:
		if coupon.Value.Decimal.LessThanOrEqual(decimal.Zero) {
			return models.NewMoneyFromDecimal(decimal.Zero)
		}
		percent := coupon.Value.Decimal.Div(decimal.NewFromInt(100))
		discount = amount.Decimal.Mul(percent)
	case constants.CouponTypeFixed:
		if coupon.Value.Decimal.LessThanOrEqual(decimal.Zero) {
			return models.NewMoneyFromDecimal(decimal.Zero)
		}
		discount = coupon.Value.Decimal
	default:
		return models.NewMoneyFromDecimal(decimal.Zero)
	}

	if discount.GreaterThan(amount.Decimal) {
		discount = amount.Decimal
	}
	return models.NewMoneyFromDecimal(discount)
}

// Preview 校验并试算优惠后的价格
func (s *CouponService) Preview(code string, userID uint, course *models.Course) (*CouponPreview, error) {
	if course == nil {
		return nil, ErrCourseNotFound
	}
	coupon, err := s.Validate(code, userID, course.ID)
	if err != nil {
		return nil, err
	}

	discount := s.Discount(coupon, course.Price)
	final := models.NewMoneyFromDecimal(course.Price.Decimal.Sub(discount.Decimal))
	if final.Decimal.IsNegative() {
		final = models.NewMoneyFromDecimal(decimal.Zero)
	}

	return &CouponPreview{
		Coupon:     coupon,
		Discount:   discount,
		FinalPrice: final,
	}, nil
}

// RecordUsage 在支付事务内登记一次优惠券使用
// 唯一约束挡住同一用户的并发重复使用，条件自增挡住总量超卖。
func (s *CouponService) RecordUsage(tx *gorm.DB, coupon *models.Coupon, userID, transactionID uint, discount models.Money) error {
	usage := &models.CouponUsage{
		CouponID:       coupon.ID,
		UserID:         userID,
		TransactionID:  transactionID,
		DiscountAmount: discount,
	}
	if err := s.usageRepo.WithTx(tx).Create(usage); err != nil {
		if repository.IsUniqueViolation(err) {
			return ErrCouponAlreadyUsed
		}
		return err
	}

	ok, err := s.couponRepo.WithTx(tx).IncrementUsedCount(coupon.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCouponUsageLimit
	}
	return nil
}
