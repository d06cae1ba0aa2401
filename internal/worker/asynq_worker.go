package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/coursehub-next/internal/logger"
	"github.com/coursehub-next/internal/models"
	"github.com/coursehub-next/internal/provider"
	"github.com/coursehub-next/internal/queue"
	"github.com/coursehub-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskPaymentConfirmedEmail, c.handlePaymentConfirmedEmail)
	mux.HandleFunc(queue.TaskEnrollmentConfirmedEmail, c.handleEnrollmentConfirmedEmail)
	mux.HandleFunc(queue.TaskCourseCompletedEmail, c.handleCourseCompletedEmail)
}

func (c *Consumer) handlePaymentConfirmedEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.PaymentConfirmedEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_payment_confirmed_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.TransactionID == 0 {
		logger.Debugw("worker_payment_confirmed_email_skip_invalid_payload")
		return nil
	}

	txn, err := c.TransactionRepo.GetByID(payload.TransactionID)
	if err != nil {
		logger.Warnw("worker_payment_confirmed_email_fetch_transaction_failed",
			"transaction_id", payload.TransactionID, "error", err)
		return err
	}
	if txn == nil {
		logger.Debugw("worker_payment_confirmed_email_skip_transaction_not_found",
			"transaction_id", payload.TransactionID)
		return nil
	}

	email, user := c.resolveUserEmail(txn.UserID)
	if email == "" || user == nil {
		logger.Debugw("worker_payment_confirmed_email_skip_empty_receiver",
			"transaction_no", txn.TransactionNo, "user_id", txn.UserID)
		return nil
	}
	course, err := c.CourseRepo.GetByID(txn.CourseID)
	if err != nil {
		return err
	}
	courseTitle := ""
	if course != nil {
		courseTitle = course.Title
	}

	err = c.EmailService.SendPaymentConfirmedEmail(email, service.PaymentConfirmedEmailInput{
		TransactionNo: txn.TransactionNo,
		CourseTitle:   courseTitle,
		Amount:        txn.Amount,
		Currency:      txn.Currency,
	})
	return c.normalizeSendResult("payment_confirmed", email, err)
}

func (c *Consumer) handleEnrollmentConfirmedEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.EnrollmentConfirmedEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_enrollment_confirmed_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.UserID == 0 || payload.CourseID == 0 {
		logger.Debugw("worker_enrollment_confirmed_email_skip_invalid_payload",
			"user_id", payload.UserID, "course_id", payload.CourseID)
		return nil
	}

	email, user := c.resolveUserEmail(payload.UserID)
	if email == "" || user == nil {
		logger.Debugw("worker_enrollment_confirmed_email_skip_empty_receiver", "user_id", payload.UserID)
		return nil
	}
	course, err := c.CourseRepo.GetByID(payload.CourseID)
	if err != nil {
		return err
	}
	if course == nil {
		logger.Debugw("worker_enrollment_confirmed_email_skip_course_not_found", "course_id", payload.CourseID)
		return nil
	}

	err = c.EmailService.SendEnrollmentConfirmedEmail(email, course.Title)
	return c.normalizeSendResult("enrollment_confirmed", email, err)
}

func (c *Consumer) handleCourseCompletedEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.CourseCompletedEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_course_completed_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.UserID == 0 || payload.CourseID == 0 {
		logger.Debugw("worker_course_completed_email_skip_invalid_payload",
			"user_id", payload.UserID, "course_id", payload.CourseID)
		return nil
	}

	email, user := c.resolveUserEmail(payload.UserID)
	if email == "" || user == nil {
		logger.Debugw("worker_course_completed_email_skip_empty_receiver", "user_id", payload.UserID)
		return nil
	}
	course, err := c.CourseRepo.GetByID(payload.CourseID)
	if err != nil {
		return err
	}
	if course == nil {
		logger.Debugw("worker_course_completed_email_skip_course_not_found", "course_id", payload.CourseID)
		return nil
	}
	certificate, err := c.CertificateRepo.GetByUserCourse(payload.UserID, payload.CourseID)
	if err != nil {
		return err
	}
	certificateNo := ""
	if certificate != nil {
		certificateNo = certificate.CertificateNo
	}

	err = c.EmailService.SendCourseCompletedEmail(email, course.Title, certificateNo)
	return c.normalizeSendResult("course_completed", email, err)
}

// resolveUserEmail 读取用户邮箱，空邮箱跳过发送
func (c *Consumer) resolveUserEmail(userID uint) (string, *models.User) {
	if userID == 0 {
		return "", nil
	}
	user, err := c.UserRepo.GetByID(userID)
	if err != nil || user == nil {
		return "", nil
	}
	return strings.TrimSpace(user.Email), user
}

// normalizeSendResult 邮件服务未启用或收件人无效时不重试
func (c *Consumer) normalizeSendResult(kind, email string, err error) error {
	if err == nil {
		logger.Infow("worker_email_sent", "kind", kind, "to", email)
		return nil
	}
	if errors.Is(err, service.ErrEmailServiceDisabled) ||
		errors.Is(err, service.ErrEmailServiceNotConfigured) ||
		errors.Is(err, service.ErrInvalidEmail) ||
		errors.Is(err, service.ErrEmailRecipientRejected) {
		logger.Debugw("worker_email_skip", "kind", kind, "to", email, "reason", err.Error())
		return nil
	}
	logger.Warnw("worker_email_send_failed", "kind", kind, "to", email, "error", err)
	return err
}
