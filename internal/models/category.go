package models

import (
	"time"

	"gorm.io/gorm"
)

// Category 课程分类表
type Category struct {
	ID          uint           `gorm:"primarykey" json:"id"`              // 主键
	Name        string         `gorm:"not null" json:"name"`              // 分类名称
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`  // URL 标识
	Description string         `gorm:"type:text" json:"description"`      // 分类描述
	Position    int            `gorm:"not null;default:0" json:"position"` // 排序权重
	IsActive    bool           `gorm:"not null;default:true" json:"is_active"` // 是否启用
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`           // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`           // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                    // 软删除时间
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}
