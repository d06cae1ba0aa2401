package models

import "time"

// LessonCompletion 课时完成记录
// (user_id, lesson_id) 唯一约束保证重复标记完成是幂等的。
type LessonCompletion struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                        // 主键
	UserID      uint      `gorm:"uniqueIndex:idx_completion_user_lesson;not null" json:"user_id"`   // 用户ID
	LessonID    uint      `gorm:"uniqueIndex:idx_completion_user_lesson;not null" json:"lesson_id"` // 课时ID
	CourseID    uint      `gorm:"index;not null" json:"course_id"`                             // 所属课程ID（冗余，便于统计进度）
	CompletedAt time.Time `gorm:"index;not null" json:"completed_at"`                          // 完成时间
	CreatedAt   time.Time `json:"created_at"`                                                  // 创建时间
}

// TableName 指定表名
func (LessonCompletion) TableName() string {
	return "lesson_completions"
}
