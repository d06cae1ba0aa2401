package service

import "errors"

// 优惠券相关错误
var (
	ErrCouponInvalid       = errors.New("coupon invalid")
	ErrCouponNotFound      = errors.New("coupon not found")
	ErrCouponInactive      = errors.New("coupon inactive")
	ErrCouponNotStarted    = errors.New("coupon not started")
	ErrCouponExpired       = errors.New("coupon expired")
	ErrCouponUsageLimit    = errors.New("coupon usage limit reached")
	ErrCouponScopeMismatch = errors.New("coupon not applicable to course")
	ErrCouponAlreadyUsed   = errors.New("coupon already used by user")
)

// 课程相关错误
var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrCourseNotAvailable = errors.New("course not available")
	ErrLessonNotFound     = errors.New("lesson not found")
)

// 交易相关错误
var (
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrDuplicateTransaction = errors.New("duplicate pending transaction")
	ErrAlreadyCompleted     = errors.New("transaction already completed")
	ErrTransactionClosed    = errors.New("transaction already closed")
)

// 报名相关错误
var (
	ErrAlreadyEnrolled    = errors.New("already enrolled")
	ErrNotEnrolled        = errors.New("not enrolled")
	ErrPaymentRequired    = errors.New("payment required")
	ErrTransactionInvalid = errors.New("transaction invalid for enrollment")
	ErrPaymentIncomplete  = errors.New("payment not completed")
)

// 证书相关错误
var (
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrCertificateNotReady = errors.New("course not completed yet")
)

// 测验相关错误
var (
	ErrQuizNotFound = errors.New("quiz not found")
)

// 邮件相关错误
var (
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrInvalidEmail              = errors.New("invalid email address")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
)
