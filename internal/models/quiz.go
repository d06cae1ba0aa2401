package models

import (
	"time"

	"gorm.io/gorm"
)

// Quiz 课时测验表（每个课时最多一份测验）
type Quiz struct {
	ID           uint           `gorm:"primarykey" json:"id"`                          // 主键
	LessonID     uint           `gorm:"uniqueIndex;not null" json:"lesson_id"`         // 所属课时ID
	Title        string         `gorm:"not null" json:"title"`                         // 测验标题
	PassingScore int            `gorm:"not null;default:60" json:"passing_score"`      // 及格分（0-100）
	Questions    []QuizQuestion `gorm:"foreignKey:QuizID" json:"questions,omitempty"`  // 题目列表
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                       // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                       // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                // 软删除时间
}

// TableName 指定表名
func (Quiz) TableName() string {
	return "quizzes"
}

// QuizQuestion 测验题目表
type QuizQuestion struct {
	ID        uint         `gorm:"primarykey" json:"id"`                            // 主键
	QuizID    uint         `gorm:"index;not null" json:"quiz_id"`                   // 所属测验ID
	Text      string       `gorm:"type:text;not null" json:"text"`                  // 题干
	Position  int          `gorm:"index;not null;default:0" json:"position"`        // 题目排序
	Answers   []QuizAnswer `gorm:"foreignKey:QuestionID" json:"answers,omitempty"`  // 选项列表
	CreatedAt time.Time    `json:"created_at"`                                      // 创建时间
	UpdatedAt time.Time    `json:"updated_at"`                                      // 更新时间
}

// TableName 指定表名
func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// QuizAnswer 测验选项表
type QuizAnswer struct {
	ID         uint      `gorm:"primarykey" json:"id"`                       // 主键
	QuestionID uint      `gorm:"index;not null" json:"question_id"`          // 所属题目ID
	Text       string    `gorm:"type:text;not null" json:"text"`             // 选项内容
	IsCorrect  bool      `gorm:"not null;default:false" json:"is_correct"`   // 是否为正确答案（对外接口需剔除）
	CreatedAt  time.Time `json:"created_at"`                                 // 创建时间
	UpdatedAt  time.Time `json:"updated_at"`                                 // 更新时间
}

// TableName 指定表名
func (QuizAnswer) TableName() string {
	return "quiz_answers"
}
