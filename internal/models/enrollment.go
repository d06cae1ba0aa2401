package models

import "time"

// Enrollment 报名表
// (user_id, course_id) 唯一约束保证同一用户同一课程只存在一条报名记录。
type Enrollment struct {
	ID            uint       `gorm:"primarykey" json:"id"`                                    // 主键
	UserID        uint       `gorm:"uniqueIndex:idx_enroll_user_course;not null" json:"user_id"`   // 用户ID
	CourseID      uint       `gorm:"uniqueIndex:idx_enroll_user_course;not null" json:"course_id"` // 课程ID
	TransactionID *uint      `gorm:"index" json:"transaction_id"`                             // 关联交易ID（免费课程为空）
	Status        string     `gorm:"index;not null;default:'active'" json:"status"`           // 状态（active/completed/cancelled）
	EnrolledAt    time.Time  `gorm:"index;not null" json:"enrolled_at"`                       // 报名时间
	CompletedAt   *time.Time `json:"completed_at"`                                            // 完课时间
	Course        *Course    `gorm:"foreignKey:CourseID" json:"course,omitempty"`             // 课程信息
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt     time.Time  `gorm:"index" json:"updated_at"`                                 // 更新时间
}

// TableName 指定表名
func (Enrollment) TableName() string {
	return "enrollments"
}
