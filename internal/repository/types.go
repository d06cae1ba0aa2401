package repository

import "time"

// CourseListFilter 查询课程列表的过滤条件
type CourseListFilter struct {
	Page          int
	PageSize      int
	CategoryID    uint
	Search        string
	Status        string
	OnlyPublished bool
	WithCategory  bool
}

// TransactionListFilter 查询交易列表的过滤条件
type TransactionListFilter struct {
	Page          int
	PageSize      int
	UserID        uint
	CourseID      uint
	Status        string
	TransactionNo string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// EnrollmentListFilter 查询报名列表的过滤条件
type EnrollmentListFilter struct {
	Page       int
	PageSize   int
	UserID     uint
	Status     string
	WithCourse bool
}

// CertificateListFilter 查询证书列表的过滤条件
type CertificateListFilter struct {
	Page       int
	PageSize   int
	UserID     uint
	WithCourse bool
}

// CouponUsageListFilter 查询优惠券使用记录列表的过滤条件
type CouponUsageListFilter struct {
	Page     int
	PageSize int
	UserID   uint
}

// QuizResultListFilter 查询测验成绩列表的过滤条件
type QuizResultListFilter struct {
	Page     int
	PageSize int
	QuizID   uint
	UserID   uint
}
