package constants

// 交易状态常量
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

// 支付方式常量
const (
	PaymentMethodFree   = "free"
	PaymentMethodCard   = "card"
	PaymentMethodPaypal = "paypal"
	PaymentMethodWallet = "wallet"
)

// 课程状态常量
const (
	CourseStatusDraft     = "draft"
	CourseStatusPublished = "published"
	CourseStatusArchived  = "archived"
)

// 报名状态常量
const (
	EnrollmentStatusActive    = "active"
	EnrollmentStatusCompleted = "completed"
	EnrollmentStatusCancelled = "cancelled"
)

// 优惠券类型常量
const (
	CouponTypePercentage = "percentage"
	CouponTypeFixed      = "fixed"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 默认币种
const DefaultCurrency = "USD"

// 编号前缀常量
const (
	TransactionNoPrefix     = "TXN-"
	TransactionNoFreePrefix = "TXN-FREE-"
	CertificateNoPrefix     = "CERT-"
)

// 队列与任务常量
const (
	QueueDefault                 = "default"
	TaskPaymentConfirmedEmail    = "email:payment_confirmed"
	TaskEnrollmentConfirmedEmail = "email:enrollment_confirmed"
	TaskCourseCompletedEmail     = "email:course_completed"
)
