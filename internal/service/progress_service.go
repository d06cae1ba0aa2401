package service

import (
	"time"

	"github.com/coursehub-next/internal/constants"
	"github.com/coursehub-next/internal/logger"
	"github.com/coursehub-next/internal/models"
	"github.com/coursehub-next/internal/repository"

	"github.com/shopspring/decimal"
)

// ProgressService 学习进度服务
// 完成/取消完成均幂等；每次完成后顺带检查是否满足发证条件。
type ProgressService struct {
	lessonRepo         repository.LessonRepository
	enrollRepo         repository.EnrollmentRepository
	completionRepo     repository.LessonCompletionRepository
	certificateService *CertificateService
}

// NewProgressService 创建进度服务
func NewProgressService(
	lessonRepo repository.LessonRepository,
	enrollRepo repository.EnrollmentRepository,
	completionRepo repository.LessonCompletionRepository,
	certificateService *CertificateService,
) *ProgressService {
	return &ProgressService{
		lessonRepo:         lessonRepo,
		enrollRepo:         enrollRepo,
		completionRepo:     completionRepo,
		certificateService: certificateService,
	}
}

// LessonProgress 单课时进度
type LessonProgress struct {
	LessonID  uint       `json:"lesson_id"`
	Title     string     `json:"title"`
	Position  int        `json:"position"`
	Completed bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CourseProgress 课程进度汇总
type CourseProgress struct {
	CourseID         uint             `json:"course_id"`
	TotalLessons     int64            `json:"total_lessons"`
	CompletedLessons int64            `json:"completed_lessons"`
	Ratio            string           `json:"ratio"`
	Lessons          []LessonProgress `json:"lessons"`
}

// CompleteLesson 标记课时完成
// 幂等：重复标记返回已有记录，不产生新行。
func (s *ProgressService) CompleteLesson(userID, lessonID uint) (*models.LessonCompletion, error) {
	lesson, enrollment, err := s.requireEnrolledLesson(userID, lessonID)
	if err != nil {
		return nil, err
	}

	existing, err := s.completionRepo.GetByUserLesson(userID, lessonID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	completion := &models.LessonCompletion{
		UserID:      userID,
		LessonID:    lessonID,
		CourseID:    lesson.CourseID,
		CompletedAt: time.Now(),
	}
	if err := s.completionRepo.Create(completion); err != nil {
		// 并发重复标记时由唯一约束兜底，回读已有记录
		if repository.IsUniqueViolation(err) {
			return s.completionRepo.GetByUserLesson(userID, lessonID)
		}
		return nil, err
	}

	logger.Infow("lesson_completed",
		"user_id", userID,
		"lesson_id", lessonID,
		"course_id", lesson.CourseID,
	)

	// 发证检查是尽力而为的：失败只记日志，不影响本次标记
	if s.certificateService != nil {
		if _, err := s.certificateService.CheckAndIssue(userID, enrollment.CourseID); err != nil {
			logger.Warnw("certificate_issue_check_failed",
				"user_id", userID, "course_id", enrollment.CourseID, "error", err)
		}
	}

	return completion, nil
}

// UncompleteLesson 取消课时完成标记（记录不存在时无副作用）
func (s *ProgressService) UncompleteLesson(userID, lessonID uint) error {
	if _, _, err := s.requireEnrolledLesson(userID, lessonID); err != nil {
		return err
	}
	if err := s.completionRepo.DeleteByUserLesson(userID, lessonID); err != nil {
		return err
	}
	logger.Infow("lesson_uncompleted", "user_id", userID, "lesson_id", lessonID)
	return nil
}

// CompletionRatio 计算课程完成比例（[0,1]，零课时课程恒为 0）
func (s *ProgressService) CompletionRatio(userID, courseID uint) (decimal.Decimal, error) {
	total, err := s.lessonRepo.CountByCourse(courseID)
	if err != nil {
		return decimal.Zero, err
	}
	completed, err := s.completionRepo.CountByUserCourse(userID, courseID)
	if err != nil {
		return decimal.Zero, err
	}
	return completionRatio(completed, total), nil
}

// GetCourseProgress 获取课程进度明细
func (s *ProgressService) GetCourseProgress(userID, courseID uint) (*CourseProgress, error) {
	enrollment, err := s.enrollRepo.GetByUserCourse(userID, courseID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil || enrollment.Status == constants.EnrollmentStatusCancelled {
		return nil, ErrNotEnrolled
	}

	lessons, err := s.lessonRepo.ListByCourse(courseID)
	if err != nil {
		return nil, err
	}
	completions, err := s.completionRepo.ListByUserCourse(userID, courseID)
	if err != nil {
		return nil, err
	}
	completedAt := make(map[uint]time.Time, len(completions))
	for _, completion := range completions {
		completedAt[completion.LessonID] = completion.CompletedAt
	}

	progress := &CourseProgress{
		CourseID:     courseID,
		TotalLessons: int64(len(lessons)),
		Lessons:      make([]LessonProgress, 0, len(lessons)),
	}
	for _, lesson := range lessons {
		item := LessonProgress{
			LessonID: lesson.ID,
			Title:    lesson.Title,
			Position: lesson.Position,
		}
		if at, ok := completedAt[lesson.ID]; ok {
			item.Completed = true
			at := at
			item.CompletedAt = &at
			progress.CompletedLessons++
		}
		progress.Lessons = append(progress.Lessons, item)
	}
	progress.Ratio = completionRatio(progress.CompletedLessons, progress.TotalLessons).StringFixed(4)
	return progress, nil
}

// requireEnrolledLesson 校验课时存在且用户在其课程下有有效报名
func (s *ProgressService) requireEnrolledLesson(userID, lessonID uint) (*models.Lesson, *models.Enrollment, error) {
	lesson, err := s.lessonRepo.GetByID(lessonID)
	if err != nil {
		return nil, nil, err
	}
	if lesson == nil {
		return nil, nil, ErrLessonNotFound
	}
	enrollment, err := s.enrollRepo.GetByUserCourse(userID, lesson.CourseID)
	if err != nil {
		return nil, nil, err
	}
	if enrollment == nil || enrollment.Status == constants.EnrollmentStatusCancelled {
		return nil, nil, ErrNotEnrolled
	}
	return lesson, enrollment, nil
}
