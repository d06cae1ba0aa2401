package public

import (
	"errors"

	"github.com/coursehub-next/internal/http/response"
	"github.com/coursehub-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var couponErrorRules = []mappedHandlerError{
	{target: service.ErrCouponInvalid, code: response.CodeBadRequest, msg: "coupon code is invalid"},
	{target: service.ErrCouponNotFound, code: response.CodeNotFound, msg: "coupon not found"},
	{target: service.ErrCouponInactive, code: response.CodeBadRequest, msg: "coupon is inactive"},
	{target: service.ErrCouponNotStarted, code: response.CodeBadRequest, msg: "coupon is not yet valid"},
	{target: service.ErrCouponExpired, code: response.CodeBadRequest, msg: "coupon has expired"},
	{target: service.ErrCouponUsageLimit, code: response.CodeBadRequest, msg: "coupon usage limit reached"},
	{target: service.ErrCouponScopeMismatch, code: response.CodeBadRequest, msg: "coupon does not apply to this course"},
	{target: service.ErrCouponAlreadyUsed, code: response.CodeBadRequest, msg: "coupon already used"},
}

var paymentIntentErrorRules = []mappedHandlerError{
	{target: service.ErrCourseNotFound, code: response.CodeNotFound, msg: "course not found"},
	{target: service.ErrCourseNotAvailable, code: response.CodeBadRequest, msg: "course is not available"},
	{target: service.ErrAlreadyEnrolled, code: response.CodeConflict, msg: "already enrolled in this course"},
	{target: service.ErrDuplicateTransaction, code: response.CodeConflict, msg: "a pending transaction already exists for this course"},
}

var paymentConfirmErrorRules = []mappedHandlerError{
	{target: service.ErrTransactionNotFound, code: response.CodeNotFound, msg: "transaction not found"},
	{target: service.ErrAlreadyCompleted, code: response.CodeConflict, msg: "transaction already completed"},
	{target: service.ErrTransactionClosed, code: response.CodeConflict, msg: "transaction is closed"},
	{target: service.ErrCouponAlreadyUsed, code: response.CodeBadRequest, msg: "coupon already used"},
	{target: service.ErrCouponUsageLimit, code: response.CodeBadRequest, msg: "coupon usage limit reached"},
}

var paymentFailErrorRules = []mappedHandlerError{
	{target: service.ErrTransactionNotFound, code: response.CodeNotFound, msg: "transaction not found"},
	{target: service.ErrAlreadyCompleted, code: response.CodeConflict, msg: "transaction already completed"},
}

var enrollErrorRules = []mappedHandlerError{
	{target: service.ErrCourseNotFound, code: response.CodeNotFound, msg: "course not found"},
	{target: service.ErrCourseNotAvailable, code: response.CodeBadRequest, msg: "course is not available"},
	{target: service.ErrAlreadyEnrolled, code: response.CodeConflict, msg: "already enrolled in this course"},
	{target: service.ErrPaymentRequired, code: response.CodeBadRequest, msg: "a completed payment is required for this course"},
	{target: service.ErrTransactionInvalid, code: response.CodeBadRequest, msg: "transaction does not match this enrollment"},
	{target: service.ErrPaymentIncomplete, code: response.CodeBadRequest, msg: "payment is not completed"},
}

var progressErrorRules = []mappedHandlerError{
	{target: service.ErrLessonNotFound, code: response.CodeNotFound, msg: "lesson not found"},
	{target: service.ErrNotEnrolled, code: response.CodeForbidden, msg: "not enrolled in this course"},
}

var quizErrorRules = []mappedHandlerError{
	{target: service.ErrLessonNotFound, code: response.CodeNotFound, msg: "lesson not found"},
	{target: service.ErrQuizNotFound, code: response.CodeNotFound, msg: "quiz not found"},
	{target: service.ErrNotEnrolled, code: response.CodeForbidden, msg: "not enrolled in this course"},
}

var certificateErrorRules = []mappedHandlerError{
	{target: service.ErrNotEnrolled, code: response.CodeForbidden, msg: "not enrolled in this course"},
	{target: service.ErrCertificateNotReady, code: response.CodeNotFound, msg: "certificate not issued yet"},
	{target: service.ErrCertificateNotFound, code: response.CodeNotFound, msg: "certificate not found"},
}

func respondCouponValidateError(c *gin.Context, err error) {
	rules := concatMappedHandlerErrors(couponErrorRules, []mappedHandlerError{
		{target: service.ErrCourseNotFound, code: response.CodeNotFound, msg: "course not found"},
	})
	respondWithMappedError(c, err, rules, response.CodeInternal, "coupon validation failed")
}

func respondPaymentIntentError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(paymentIntentErrorRules, couponErrorRules),
		response.CodeInternal, "failed to create payment intent")
}

func respondPaymentConfirmError(c *gin.Context, err error) {
	respondWithMappedError(c, err, paymentConfirmErrorRules, response.CodeInternal, "failed to confirm payment")
}

func respondPaymentFailError(c *gin.Context, err error) {
	respondWithMappedError(c, err, paymentFailErrorRules, response.CodeInternal, "failed to mark payment as failed")
}

func respondEnrollError(c *gin.Context, err error) {
	respondWithMappedError(c, err, enrollErrorRules, response.CodeInternal, "failed to enroll")
}

func respondProgressError(c *gin.Context, err error) {
	respondWithMappedError(c, err, progressErrorRules, response.CodeInternal, "failed to update progress")
}

func respondQuizError(c *gin.Context, err error) {
	respondWithMappedError(c, err, quizErrorRules, response.CodeInternal, "quiz operation failed")
}

func respondCertificateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, certificateErrorRules, response.CodeInternal, "certificate operation failed")
}
