package models

import "time"

// Certificate 结业证书表
// (user_id, course_id) 唯一约束保证每人每课程最多一张证书。
type Certificate struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                      // 主键
	CertificateNo string    `gorm:"uniqueIndex;not null" json:"certificate_no"`                // 证书编号（CERT- 前缀，可公开校验）
	UserID        uint      `gorm:"uniqueIndex:idx_cert_user_course;not null" json:"user_id"`  // 用户ID
	CourseID      uint      `gorm:"uniqueIndex:idx_cert_user_course;not null" json:"course_id"` // 课程ID
	IssuedAt      time.Time `gorm:"index;not null" json:"issued_at"`                           // 颁发时间
	User          *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`                   // 持有人
	Course        *Course   `gorm:"foreignKey:CourseID" json:"course,omitempty"`               // 课程信息
	CreatedAt     time.Time `json:"created_at"`                                                // 创建时间
}

// TableName 指定表名
func (Certificate) TableName() string {
	return "certificates"
}
