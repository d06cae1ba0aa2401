package service

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/coursehub-next/internal/constants"
	"github.com/coursehub-next/internal/logger"
	"github.com/coursehub-next/internal/models"
	"github.com/coursehub-next/internal/queue"
	"github.com/coursehub-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentService 购买交易服务
// 状态机：pending -> completed / failed，终态不可再变更。
type PaymentService struct {
	txnRepo       repository.TransactionRepository
	courseRepo    repository.CourseRepository
	enrollRepo    repository.EnrollmentRepository
	couponRepo    repository.CouponRepository
	couponService *CouponService
	queueClient   *queue.Client
}

// NewPaymentService 创建交易服务
func NewPaymentService(
	txnRepo repository.TransactionRepository,
	courseRepo repository.CourseRepository,
	enrollRepo repository.EnrollmentRepository,
	couponRepo repository.CouponRepository,
	couponService *CouponService,
	queueClient *queue.Client,
) *PaymentService {
	return &PaymentService{
		txnRepo:       txnRepo,
		courseRepo:    courseRepo,
		enrollRepo:    enrollRepo,
		couponRepo:    couponRepo,
		couponService: couponService,
		queueClient:   queueClient,
	}
}

// CreateIntentInput 创建支付意图输入
type CreateIntentInput struct {
	UserID        uint
	CourseID      uint
	CouponCode    string
	PaymentMethod string
}

// CreateIntent 创建支付意图
// 金额始终以课程当前售价在服务端重新计算，不信任客户端。
// 免费结果（免费课程或优惠券全额抵扣）直接生成 completed 交易并完成报名。
func (s *PaymentService) CreateIntent(input CreateIntentInput) (*models.Transaction, error) {
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

	enrollment, err := s.enrollRepo.GetByUserCourse(input.UserID, input.CourseID)
	if err != nil {
		return nil, err
	}
	if enrollment != nil && enrollment.Status != constants.EnrollmentStatusCancelled {
		return nil, ErrAlreadyEnrolled
	}

	open, err := s.txnRepo.GetOpenByUserCourse(input.UserID, input.CourseID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, ErrDuplicateTransaction
	}

	price := course.Price
	discount := models.NewMoneyFromDecimal(decimal.Zero)
	var coupon *models.Coupon
	if strings.TrimSpace(input.CouponCode) != "" {
		coupon, err = s.couponService.Validate(input.CouponCode, input.UserID, input.CourseID)
		if err != nil {
			return nil, err
		}
		discount = s.couponService.Discount(coupon, price)
	}

	final := models.NewMoneyFromDecimal(price.Decimal.Sub(discount.Decimal))
	if final.Decimal.IsNegative() {
		final = models.NewMoneyFromDecimal(decimal.Zero)
	}

	details := models.JSON{
		"original_amount": price.String(),
		"discount_amount": discount.String(),
	}
	if coupon != nil {
		details["coupon_code"] = coupon.Code
		details["coupon_id"] = float64(coupon.ID)
	}

	if !final.Decimal.IsPositive() {
		return s.createFreeTransaction(input, course, coupon, discount, details)
	}

	method := strings.TrimSpace(input.PaymentMethod)
	if method == "" {
		method = constants.PaymentMethodCard
	}

	txn := &models.Transaction{
		TransactionNo:  generateTransactionNo(false),
		UserID:         input.UserID,
		CourseID:       input.CourseID,
		Amount:         final,
		Currency:       course.Currency,
		PaymentMethod:  method,
		Status:         constants.TransactionStatusPending,
		PaymentDetails: details,
	}
	if err := s.txnRepo.Create(txn); err != nil {
		return nil, err
	}

	logger.Infow("payment_intent_created",
		"transaction_no", txn.TransactionNo,
		"user_id", input.UserID,
		"course_id", input.CourseID,
		"amount", final.String(),
	)
	return txn, nil
}

// createFreeTransaction 免费路径：交易直接落为 completed 并同步完成报名
func (s *PaymentService) createFreeTransaction(
	input CreateIntentInput,
	course *models.Course,
	coupon *models.Coupon,
	discount models.Money,
	details models.JSON,
) (*models.Transaction, error) {
	now := time.Now()
	txn := &models.Transaction{
		TransactionNo:  generateTransactionNo(true),
		UserID:         input.UserID,
		CourseID:       input.CourseID,
		Amount:         models.NewMoneyFromDecimal(decimal.Zero),
		Currency:       course.Currency,
		PaymentMethod:  constants.PaymentMethodFree,
		Status:         constants.TransactionStatusCompleted,
		PaymentDetails: details,
		PaidAt:         &now,
	}

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.txnRepo.WithTx(tx).Create(txn); err != nil {
			return err
		}
		if coupon != nil {
			if err := s.couponService.RecordUsage(tx, coupon, input.UserID, txn.ID, discount); err != nil {
				return err
			}
		}
		return s.createEnrollment(tx, input.UserID, input.CourseID, txn.ID)
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("free_transaction_completed",
		"transaction_no", txn.TransactionNo,
		"user_id", input.UserID,
		"course_id", input.CourseID,
	)
	s.notifyEnrollmentConfirmed(input.UserID, input.CourseID)
	return txn, nil
}

// Confirm 确认支付完成
// 幂等：已完成的交易直接返回 ErrAlreadyCompleted，不再产生任何副作用；
// 并发确认通过条件更新保证只有一个写入者生效。
func (s *PaymentService) Confirm(userID uint, transactionNo, gatewayRef string) (*models.Transaction, error) {
	txn, err := s.getOwnedTransaction(userID, transactionNo)
	if err != nil {
		return nil, err
	}

	switch txn.Status {
	case constants.TransactionStatusCompleted:
		return txn, ErrAlreadyCompleted
	case constants.TransactionStatusFailed:
		return txn, ErrTransactionClosed
	}

	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		ok, err := s.txnRepo.WithTx(tx).MarkCompleted(txn.ID, now, gatewayRef)
		if err != nil {
			return err
		}
		if !ok {
			// 另一个确认请求已经抢先落库
			return ErrAlreadyCompleted
		}

		if couponID := paymentDetailCouponID(txn.PaymentDetails); couponID > 0 {
			coupon, err := s.couponRepo.WithTx(tx).GetByID(couponID)
			if err != nil {
				return err
			}
			if coupon != nil {
				discount := paymentDetailDiscount(txn.PaymentDetails)
				if err := s.couponService.RecordUsage(tx, coupon, txn.UserID, txn.ID, discount); err != nil {
					return err
				}
			}
		}

		return s.createEnrollment(tx, txn.UserID, txn.CourseID, txn.ID)
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyCompleted) {
			fresh, ferr := s.txnRepo.GetByID(txn.ID)
			if ferr == nil && fresh != nil {
				if fresh.Status == constants.TransactionStatusFailed {
					return fresh, ErrTransactionClosed
				}
				return fresh, ErrAlreadyCompleted
			}
		}
		return nil, err
	}

	txn, err = s.txnRepo.GetByID(txn.ID)
	if err != nil {
		return nil, err
	}

	logger.Infow("payment_confirmed",
		"transaction_no", txn.TransactionNo,
		"user_id", txn.UserID,
		"course_id", txn.CourseID,
		"amount", txn.Amount.String(),
	)

	if txn.Amount.Decimal.IsPositive() {
		s.notifyPaymentConfirmed(txn)
	}
	s.notifyEnrollmentConfirmed(txn.UserID, txn.CourseID)
	return txn, nil
}

// Fail 将支付标记为失败
// 已完成的交易不允许改写为失败；重复标记失败是幂等的。
func (s *PaymentService) Fail(userID uint, transactionNo, reason string) (*models.Transaction, error) {
	txn, err := s.getOwnedTransaction(userID, transactionNo)
	if err != nil {
		return nil, err
	}

	switch txn.Status {
	case constants.TransactionStatusCompleted:
		return txn, ErrAlreadyCompleted
	case constants.TransactionStatusFailed:
		return txn, nil
	}

	ok, err := s.txnRepo.MarkFailed(txn.ID, strings.TrimSpace(reason))
	if err != nil {
		return nil, err
	}
	if !ok {
		fresh, ferr := s.txnRepo.GetByID(txn.ID)
		if ferr != nil {
			return nil, ferr
		}
		if fresh != nil && fresh.Status == constants.TransactionStatusCompleted {
			return fresh, ErrAlreadyCompleted
		}
		return fresh, nil
	}

	txn, err = s.txnRepo.GetByID(txn.ID)
	if err != nil {
		return nil, err
	}

	logger.Infow("payment_failed",
		"transaction_no", txn.TransactionNo,
		"user_id", txn.UserID,
		"reason", txn.FailureReason,
	)
	return txn, nil
}

// GetByTransactionNo 获取用户自己的交易详情
func (s *PaymentService) GetByTransactionNo(userID uint, transactionNo string) (*models.Transaction, error) {
	return s.getOwnedTransaction(userID, transactionNo)
}

// ListByUser 获取用户交易列表
func (s *PaymentService) ListByUser(filter repository.TransactionListFilter) ([]models.Transaction, int64, error) {
	return s.txnRepo.List(filter)
}

func (s *PaymentService) getOwnedTransaction(userID uint, transactionNo string) (*models.Transaction, error) {
	trimmed := strings.TrimSpace(transactionNo)
	if trimmed == "" {
		return nil, ErrTransactionNotFound
	}
	txn, err := s.txnRepo.GetByTransactionNo(trimmed)
	if err != nil {
		return nil, err
	}
	if txn == nil || txn.UserID != userID {
		return nil, ErrTransactionNotFound
	}
	return txn, nil
}

// createEnrollment 在事务内创建报名记录（已存在时不重复写入）
// 已取消的报名在重新购买后原地重新激活，保证付款即获得访问权。
func (s *PaymentService) createEnrollment(tx *gorm.DB, userID, courseID, transactionID uint) error {
	repo := s.enrollRepo.WithTx(tx)
	existing, err := repo.GetByUserCourse(userID, courseID)
	if err != nil {
		return err
	}
	txnID := transactionID
	if existing != nil {
		if existing.Status != constants.EnrollmentStatusCancelled {
			return nil
		}
		existing.Status = constants.EnrollmentStatusActive
		existing.TransactionID = &txnID
		existing.EnrolledAt = time.Now()
		existing.CompletedAt = nil
		return repo.Update(existing)
	}
	enrollment := &models.Enrollment{
		UserID:        userID,
		CourseID:      courseID,
		TransactionID: &txnID,
		Status:        constants.EnrollmentStatusActive,
		EnrolledAt:    time.Now(),
	}
	if err := repo.Create(enrollment); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil
		}
		return err
	}
	return nil
}

func (s *PaymentService) notifyPaymentConfirmed(txn *models.Transaction) {
	if err := s.queueClient.EnqueuePaymentConfirmedEmail(queue.PaymentConfirmedEmailPayload{
		TransactionID: txn.ID,
	}); err != nil {
		logger.Warnw("payment_confirmed_email_enqueue_failed",
			"transaction_no", txn.TransactionNo, "error", err)
	}
}

func (s *PaymentService) notifyEnrollmentConfirmed(userID, courseID uint) {
	if err := s.queueClient.EnqueueEnrollmentConfirmedEmail(queue.EnrollmentConfirmedEmailPayload{
		UserID:   userID,
		CourseID: courseID,
	}); err != nil {
		logger.Warnw("enrollment_confirmed_email_enqueue_failed",
			"user_id", userID, "course_id", courseID, "error", err)
	}
}

// paymentDetailCouponID 从支付明细快照中解析优惠券ID
func paymentDetailCouponID(details models.JSON) uint {
	if details == nil {
		return 0
	}
	switch v := details["coupon_id"].(type) {
	case float64:
		return uint(v)
	case int:
		return uint(v)
	case uint:
		return v
	default:
		return 0
	}
}

// paymentDetailDiscount 从支付明细快照中解析优惠金额
func paymentDetailDiscount(details models.JSON) models.Money {
	if details == nil {
		return models.NewMoneyFromDecimal(decimal.Zero)
	}
	raw, ok := details["discount_amount"].(string)
	if !ok {
		return models.NewMoneyFromDecimal(decimal.Zero)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return models.NewMoneyFromDecimal(decimal.Zero)
	}
	return models.NewMoneyFromDecimal(d)
}

// generateTransactionNo 生成交易号
func generateTransactionNo(free bool) string {
	prefix := constants.TransactionNoPrefix
	if free {
		prefix = constants.TransactionNoFreePrefix
	}
	return prefix + randUpper(12)
}

const upperAlnum = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randUpper(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(upperAlnum))))
		if err != nil {
			b.WriteByte('0')
			continue
		}
		b.WriteByte(upperAlnum[n.Int64()])
	}
	return b.String()
}
