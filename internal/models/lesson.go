package models

import (
	"time"

	"gorm.io/gorm"
)

// Lesson 课时表
type Lesson struct {
	ID              uint           `gorm:"primarykey" json:"id"`                        // 主键
	CourseID        uint           `gorm:"index;not null" json:"course_id"`             // 所属课程ID
	Title           string         `gorm:"not null" json:"title"`                       // 课时标题
	Content         string         `gorm:"type:text" json:"content"`                    // 课时内容
	VideoURL        string         `gorm:"default:''" json:"video_url"`                 // 视频地址
	DurationMinutes int            `gorm:"not null;default:0" json:"duration_minutes"`  // 时长（分钟）
	Position        int            `gorm:"index;not null;default:0" json:"position"`    // 课程内排序
	IsPreview       bool           `gorm:"not null;default:false" json:"is_preview"`    // 是否可试看
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                     // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                     // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                              // 软删除时间
}

// TableName 指定表名
func (Lesson) TableName() string {
	return "lessons"
}
