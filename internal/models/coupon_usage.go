package models

import "time"

// CouponUsage 优惠券使用记录
// (coupon_id, user_id) 唯一约束保证同一用户同一优惠券只能使用一次。
type CouponUsage struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                         // 主键
	CouponID       uint      `gorm:"uniqueIndex:idx_coupon_user;not null" json:"coupon_id"`        // 优惠券ID
	UserID         uint      `gorm:"uniqueIndex:idx_coupon_user;not null" json:"user_id"`          // 用户ID
	TransactionID  uint      `gorm:"index;not null" json:"transaction_id"`                         // 交易ID
	DiscountAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 优惠金额
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                                      // 创建时间
}

// TableName 指定表名
func (CouponUsage) TableName() string {
	return "coupon_usages"
}
