package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/coursehub-next/internal/cache"
	"github.com/coursehub-next/internal/constants"
	"github.com/coursehub-next/internal/logger"
	"github.com/coursehub-next/internal/models"
	"github.com/coursehub-next/internal/repository"

	"github.com/shopspring/decimal"
)

// QuizService 课时测验服务
// 成绩只追加不覆盖；判分不写学习进度，是否据此完成课时由调用方决定。
type QuizService struct {
	quizRepo   repository.QuizRepository
	resultRepo repository.QuizResultRepository
	lessonRepo repository.LessonRepository
	enrollRepo repository.EnrollmentRepository
}

// NewQuizService 创建测验服务
func NewQuizService(
	quizRepo repository.QuizRepository,
	resultRepo repository.QuizResultRepository,
	lessonRepo repository.LessonRepository,
	enrollRepo repository.EnrollmentRepository,
) *QuizService {
	return &QuizService{
		quizRepo:   quizRepo,
		resultRepo: resultRepo,
		lessonRepo: lessonRepo,
		enrollRepo: enrollRepo,
	}
}

// QuizAnswerView 对外展示的选项（不含答案标记）
type QuizAnswerView struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// QuizQuestionView 对外展示的题目
type QuizQuestionView struct {
	ID       uint             `json:"id"`
	Text     string           `json:"text"`
	Position int              `json:"position"`
	Answers  []QuizAnswerView `json:"answers"`
}

// QuizView 对外展示的测验
type QuizView struct {
	ID           uint               `json:"id"`
	LessonID     uint               `json:"lesson_id"`
	Title        string             `json:"title"`
	PassingScore int                `json:"passing_score"`
	Questions    []QuizQuestionView `json:"questions"`
}

// SubmitQuizInput 交卷输入
type SubmitQuizInput struct {
	UserID  uint
	QuizID  uint
	Answers map[uint]uint // 题目ID -> 选项ID
}

// GetForLesson 获取课时测验（剔除正确答案标记）
func (s *QuizService) GetForLesson(userID, lessonID uint) (*QuizView, error) {
	lesson, err := s.lessonRepo.GetByID(lessonID)
	if err != nil {
		return nil, err
	}
	if lesson == nil {
		return nil, ErrLessonNotFound
	}
	if err := s.requireEnrollment(userID, lesson.CourseID); err != nil {
		return nil, err
	}

	ctx := context.Background()
	cacheKey := fmt.Sprintf("quiz:view:lesson:%d", lessonID)
	var cached QuizView
	if ok, _ := cache.GetJSON(ctx, cacheKey, &cached); ok {
		return &cached, nil
	}

	quiz, err := s.quizRepo.GetByLessonID(lessonID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, ErrQuizNotFound
	}

	view := buildQuizView(quiz)
	if err := cache.SetJSON(ctx, cacheKey, view, 10*time.Minute); err != nil {
		logger.Warnw("quiz_view_cache_failed", "lesson_id", lessonID, "error", err)
	}
	return view, nil
}

// Submit 交卷判分
// score = round(correct/total*100)；零题测验得 0 分；
// 未作答或提交了不属于该题的选项按答错计。
func (s *QuizService) Submit(input SubmitQuizInput) (*models.QuizResult, error) {
	quiz, err := s.quizRepo.GetByIDWithQuestions(input.QuizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, ErrQuizNotFound
	}

	lesson, err := s.lessonRepo.GetByID(quiz.LessonID)
	if err != nil {
		return nil, err
	}
	if lesson == nil {
		return nil, ErrLessonNotFound
	}
	if err := s.requireEnrollment(input.UserID, lesson.CourseID); err != nil {
		return nil, err
	}

	total := len(quiz.Questions)
	correct := 0
	snapshot := models.JSON{}
	for _, question := range quiz.Questions {
		chosen, answered := input.Answers[question.ID]
		if answered {
			snapshot[strconv.FormatUint(uint64(question.ID), 10)] = float64(chosen)
		}
		if !answered {
			continue
		}
		for _, answer := range question.Answers {
			if answer.ID == chosen && answer.IsCorrect {
				correct++
				break
			}
		}
	}

	score := calculateScore(correct, total)
	result := &models.QuizResult{
		QuizID:  quiz.ID,
		UserID:  input.UserID,
		Score:   score,
		Passed:  score >= quiz.PassingScore,
		Answers: snapshot,
	}
	if err := s.resultRepo.Create(result); err != nil {
		return nil, err
	}

	logger.Infow("quiz_submitted",
		"quiz_id", quiz.ID,
		"user_id", input.UserID,
		"score", score,
		"passed", result.Passed,
	)
	return result, nil
}

// ListResults 获取用户在某测验下的历史成绩（倒序）
func (s *QuizService) ListResults(userID, quizID uint, page, pageSize int) ([]models.QuizResult, int64, error) {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return nil, 0, err
	}
	if quiz == nil {
		return nil, 0, ErrQuizNotFound
	}
	return s.resultRepo.List(repository.QuizResultListFilter{
		Page:     page,
		PageSize: pageSize,
		QuizID:   quizID,
		UserID:   userID,
	})
}

func (s *QuizService) requireEnrollment(userID, courseID uint) error {
	enrollment, err := s.enrollRepo.GetByUserCourse(userID, courseID)
	if err != nil {
		return err
	}
	if enrollment == nil || enrollment.Status == constants.EnrollmentStatusCancelled {
		return ErrNotEnrolled
	}
	return nil
}

// calculateScore 按正确率折算百分制整数分（四舍五入）
func calculateScore(correct, total int) int {
	if total <= 0 {
		return 0
	}
	score := decimal.NewFromInt(int64(correct)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(0)
	return int(score.IntPart())
}

func buildQuizView(quiz *models.Quiz) *QuizView {
	view := &QuizView{
		ID:           quiz.ID,
		LessonID:     quiz.LessonID,
		Title:        quiz.Title,
		PassingScore: quiz.PassingScore,
		Questions:    make([]QuizQuestionView, 0, len(quiz.Questions)),
	}
	for _, question := range quiz.Questions {
		questionView := QuizQuestionView{
			ID:       question.ID,
			Text:     question.Text,
			Position: question.Position,
			Answers:  make([]QuizAnswerView, 0, len(question.Answers)),
		}
		for _, answer := range question.Answers {
			questionView.Answers = append(questionView.Answers, QuizAnswerView{
				ID:   answer.ID,
				Text: answer.Text,
			})
		}
		view.Questions = append(view.Questions, questionView)
	}
	return view
}
