package queue

import (
	"encoding/json"

	"github.com/coursehub-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskPaymentConfirmedEmail 支付成功邮件通知任务
	TaskPaymentConfirmedEmail = constants.TaskPaymentConfirmedEmail
	// TaskEnrollmentConfirmedEmail 报名成功邮件通知任务
	TaskEnrollmentConfirmedEmail = constants.TaskEnrollmentConfirmedEmail
	// TaskCourseCompletedEmail 完课证书邮件通知任务
	TaskCourseCompletedEmail = constants.TaskCourseCompletedEmail
)

// PaymentConfirmedEmailPayload 支付成功邮件任务载荷
type PaymentConfirmedEmailPayload struct {
	TransactionID uint `json:"transaction_id"`
}

// EnrollmentConfirmedEmailPayload 报名成功邮件任务载荷
type EnrollmentConfirmedEmailPayload struct {
	UserID   uint `json:"user_id"`
	CourseID uint `json:"course_id"`
}

// CourseCompletedEmailPayload 完课证书邮件任务载荷
type CourseCompletedEmailPayload struct {
	UserID        uint `json:"user_id"`
	CourseID      uint `json:"course_id"`
	CertificateID uint `json:"certificate_id"`
}

// NewPaymentConfirmedEmailTask 创建支付成功邮件任务
func NewPaymentConfirmedEmailTask(payload PaymentConfirmedEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPaymentConfirmedEmail, body), nil
}

// NewEnrollmentConfirmedEmailTask 创建报名成功邮件任务
func NewEnrollmentConfirmedEmailTask(payload EnrollmentConfirmedEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskEnrollmentConfirmedEmail, body), nil
}

// NewCourseCompletedEmailTask 创建完课证书邮件任务
func NewCourseCompletedEmailTask(payload CourseCompletedEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCourseCompletedEmail, body), nil
}
