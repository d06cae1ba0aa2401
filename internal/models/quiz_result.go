package models

import "time"

// QuizResult 测验成绩记录（只追加，保留全部历史）
type QuizResult struct {
	ID        uint      `gorm:"primarykey" json:"id"`                   // 主键
	QuizID    uint      `gorm:"index:idx_result_quiz_user;not null" json:"quiz_id"` // 测验ID
	UserID    uint      `gorm:"index:idx_result_quiz_user;not null" json:"user_id"` // 用户ID
	Score     int       `gorm:"not null;default:0" json:"score"`        // 得分（0-100 四舍五入）
	Passed    bool      `gorm:"not null;default:false" json:"passed"`   // 是否及格
	Answers   JSON      `gorm:"type:text" json:"answers"`               // 答题快照（题目ID -> 选项ID）
	CreatedAt time.Time `gorm:"index" json:"created_at"`                // 创建时间
}

// TableName 指定表名
func (QuizResult) TableName() string {
	return "quiz_results"
}
