package models

import (
	"time"

	"gorm.io/gorm"
)

// Course 课程表
type Course struct {
	ID          uint           `gorm:"primarykey" json:"id"`                              // 主键
	CategoryID  uint           `gorm:"index" json:"category_id"`                          // 分类ID
	Title       string         `gorm:"not null" json:"title"`                             // 课程标题
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`                  // URL 标识
	Description string         `gorm:"type:text" json:"description"`                      // 课程简介
	CoverURL    string         `gorm:"default:''" json:"cover_url"`                       // 封面图
	Price       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"` // 售价（0 表示免费）
	Currency    string         `gorm:"not null;default:'USD'" json:"currency"`            // 币种
	Status      string         `gorm:"index;not null;default:'draft'" json:"status"`      // 状态（draft/published/archived）
	Category    *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`   // 所属分类
	Lessons     []Lesson       `gorm:"foreignKey:CourseID" json:"lessons,omitempty"`      // 课时列表
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                           // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                           // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                    // 软删除时间
}

// TableName 指定表名
func (Course) TableName() string {
	return "courses"
}

// IsFree 判断课程是否免费
func (c *Course) IsFree() bool {
	return !c.Price.IsPositive()
}

// IsPublished 判断课程是否已发布
func (c *Course) IsPublished() bool {
	return c.Status == "published"
}
