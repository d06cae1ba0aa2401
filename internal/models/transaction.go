package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction 购买交易表
// 状态机：pending -> completed / failed，终态不可再变更。
type Transaction struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                  // 主键
	TransactionNo  string         `gorm:"uniqueIndex;not null" json:"transaction_no"`            // 交易号（TXN- 前缀）
	UserID         uint           `gorm:"index:idx_txn_user_course;not null" json:"user_id"`     // 用户ID
	CourseID       uint           `gorm:"index:idx_txn_user_course;not null" json:"course_id"`   // 课程ID
	Amount         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`   // 应付金额（服务端重新计算）
	Currency       string         `gorm:"not null;default:'USD'" json:"currency"`                // 币种
	PaymentMethod  string         `gorm:"not null;default:''" json:"payment_method"`             // 支付方式（free/card/...）
	Status         string         `gorm:"index;not null;default:'pending'" json:"status"`        // 状态（pending/completed/failed）
	PaymentDetails JSON           `gorm:"type:text" json:"payment_details"`                      // 支付明细快照（原价、优惠等）
	GatewayRef     string         `gorm:"default:''" json:"gateway_ref"`                         // 外部网关凭证号
	FailureReason  string         `gorm:"default:''" json:"failure_reason"`                      // 失败原因
	PaidAt         *time.Time     `json:"paid_at"`                                               // 支付完成时间
	Course         *Course        `gorm:"foreignKey:CourseID" json:"course,omitempty"`           // 课程信息
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                               // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                        // 软删除时间
}

// TableName 指定表名
func (Transaction) TableName() string {
	return "transactions"
}
