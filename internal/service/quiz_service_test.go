package service

import (
	"errors"
	"testing"

	"github.com/coursehub-next/internal/constants"
	"github.com/coursehub-next/internal/models"
	"github.com/coursehub-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupQuizServiceTest(t *testing.T) (*QuizService, *gorm.DB) {
	t.Helper()
	db := setupServiceTestDB(t, "quiz_service_test")
	svc := NewQuizService(
		repository.NewQuizRepository(db),
		repository.NewQuizResultRepository(db),
		repository.NewLessonRepository(db),
		repository.NewEnrollmentRepository(db),
	)
	return svc, db
}

// createTestQuiz 创建指定题数的测验，每题三个选项，第一个为正确答案
func createTestQuiz(t *testing.T, db *gorm.DB, lessonID uint, questionCount, passingScore int) (*models.Quiz, []models.QuizQuestion) {
	t.Helper()
	quiz := &models.Quiz{LessonID: lessonID, Title: "Checkpoint", PassingScore: passingScore}
	if err := db.Create(quiz).Error; err != nil {
		t.Fatalf("create quiz failed: %v", err)
	}
	questions := make([]models.QuizQuestion, 0, questionCount)
	for i := 0; i < questionCount; i++ {
		question := models.QuizQuestion{QuizID: quiz.ID, Text: "Question", Position: i + 1}
		if err := db.Create(&question).Error; err != nil {
			t.Fatalf("create question failed: %v", err)
		}
		for j := 0; j < 3; j++ {
			answer := models.QuizAnswer{QuestionID: question.ID, Text: "Option", IsCorrect: j == 0}
			if err := db.Create(&answer).Error; err != nil {
				t.Fatalf("create answer failed: %v", err)
			}
		}
		questions = append(questions, question)
	}
	return quiz, questions
}

func correctAnswerID(t *testing.T, db *gorm.DB, questionID uint) uint {
	t.Helper()
	var answer models.QuizAnswer
	if err := db.Where("question_id = ? AND is_correct = ?", questionID, true).First(&answer).Error; err != nil {
		t.Fatalf("load correct answer failed: %v", err)
	}
	return answer.ID
}

func wrongAnswerID(t *testing.T, db *gorm.DB, questionID uint) uint {
	t.Helper()
	var answer models.QuizAnswer
	if err := db.Where("question_id = ? AND is_correct = ?", questionID, false).First(&answer).Error; err != nil {
		t.Fatalf("load wrong answer failed: %v", err)
	}
	return answer.ID
}

func TestSubmitQuizScoring(t *testing.T) {
	svc, db := setupQuizServiceTest(t)
	user := createTestUser(t, db, 1)
	course := createTestCourse(t, db, "quiz-score", decimal.Zero, constants.CourseStatusPublished)
	lesson := createTestLesson(t, db, course.ID, 1)
	createTestEnrollment(t, db, user.ID, course.ID)
	quiz, questions := createTestQuiz(t, db, lesson.ID, 4, 60)

	// 答对 3/4：75 分，及格。第四题提交错误选项。
	answers := map[uint]uint{
		questions[0].ID: correctAnswerID(t, db, questions[0].ID),
		questions[1].ID: correctAnswerID(t, db, questions[1].ID),
		questions[2].ID: correctAnswerID(t, db, questions[2].ID),
		questions[3].ID: wrongAnswerID(t, db, questions[3].ID),
	}
	result, err := svc.Submit(SubmitQuizInput{UserID: user.ID, QuizID: quiz.ID, Answers: answers})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.Score != 75 {
		t.Fatalf("expected score 75, got %d", result.Score)
	}
	if !result.Passed {
		t.Fatalf("expected passing result at 75 with threshold 60")
	}
}

func TestSubmitQuizUnansweredCountsWrong(t *testing.T) {
	svc, db := setupQuizServiceTest(t)
	user := createTestUser(t, db, 1)
	course := createTestCourse(t, db, "quiz-partial", decimal.Zero, constants.CourseStatusPublished)
	lesson := createTestLesson(t, db, course.ID, 1)
	createTestEnrollment(t, db, user.ID, course.ID)
	quiz, questions := createTestQuiz(t, db, lesson.ID, 3, 60)

	// 只答一题，其余未作答按错计：round(1/3*100) = 33
	answers := map[uint]uint{
		questions[0].ID: correctAnswerID(t, db, questions[0].ID),
	}
	result, err := svc.Submit(SubmitQuizInput{UserID: user.ID, QuizID: quiz.ID, Answers: answers})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.Score != 33 {
		t.Fatalf("expected score 33, got %d", result.Score)
	}
	if result.Passed {
		t.Fatalf("expected failing result")
	}

	// 提交不属于该题的选项ID同样按错计
	foreign := map[uint]uint{
		questions[0].ID: correctAnswerID(t, db, questions[1].ID),
		questions[1].ID: correctAnswerID(t, db, questions[1].ID),
		questions[2].ID: correctAnswerID(t, db, questions[2].ID),
	}
	result, err = svc.Submit(SubmitQuizInput{UserID: user.ID, QuizID: quiz.ID, Answers: foreign})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.Score != 67 {
		t.Fatalf("expected score 67, got %d", result.Score)
	}
}

func TestSubmitQuizWithoutQuestions(t *testing.T) {
	svc, db := setupQuizServiceTest(t)
	user := createTestUser(t, db, 1)
	course := createTestCourse(t, db, "quiz-empty", decimal.Zero, constants.CourseStatusPublished)
	lesson := createTestLesson(t, db, course.ID, 1)
	createTestEnrollment(t, db, user.ID, course.ID)
	quiz, _ := createTestQuiz(t, db, lesson.ID, 0, 60)

	result, err := svc.Submit(SubmitQuizInput{UserID: user.ID, QuizID: quiz.ID, Answers: map[uint]uint{}})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.Score != 0 || result.Passed {
		t.Fatalf("expected zero score and failing result, got score=%d passed=%v", result.Score, result.Passed)
	}
}

func TestSubmitQuizAppendsHistory(t *testing.T) {
	svc, db := setupQuizServiceTest(t)
	user := createTestUser(t, db, 1)
	course := createTestCourse(t, db, "quiz-history", decimal.Zero, constants.CourseStatusPublished)
	lesson := createTestLesson(t, db, course.ID, 1)
	createTestEnrollment(t, db, user.ID, course.ID)
	quiz, questions := createTestQuiz(t, db, lesson.ID, 1, 60)

	wrong := map[uint]uint{questions[0].ID: wrongAnswerID(t, db, questions[0].ID)}
	if _, err := svc.Submit(SubmitQuizInput{UserID: user.ID, QuizID: quiz.ID, Answers: wrong}); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	right := map[uint]uint{questions[0].ID: correctAnswerID(t, db, questions[0].ID)}
	if _, err := svc.Submit(SubmitQuizInput{UserID: user.ID, QuizID: quiz.ID, Answers: right}); err != nil {
		t.Fatalf("second submit failed: %v", err)
	}

	results, total, err := svc.ListResults(user.ID, quiz.ID, 1, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(results) != 2 {
		t.Fatalf("expected two attempts, got total=%d len=%d", total, len(results))
	}
}

func TestSubmitQuizGuards(t *testing.T) {
	svc, db := setupQuizServiceTest(t)
	user := createTestUser(t, db, 1)
	course := createTestCourse(t, db, "quiz-guard", decimal.Zero, constants.CourseStatusPublished)
	lesson := createTestLesson(t, db, course.ID, 1)
	quiz, _ := createTestQuiz(t, db, lesson.ID, 1, 60)

	if _, err := svc.Submit(SubmitQuizInput{UserID: user.ID, QuizID: quiz.ID, Answers: map[uint]uint{}}); !errors.Is(err, ErrNotEnrolled) {
		t.Fatalf("expected ErrNotEnrolled, got %v", err)
	}
	if _, err := svc.Submit(SubmitQuizInput{UserID: user.ID, QuizID: 999, Answers: map[uint]uint{}}); !errors.Is(err, ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
	if _, _, err := svc.ListResults(user.ID, 999, 1, 10); !errors.Is(err, ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestGetForLessonHidesCorrectFlags(t *testing.T) {
	svc, db := setupQuizServiceTest(t)
	user := createTestUser(t, db, 1)
	course := createTestCourse(t, db, "quiz-view", decimal.Zero, constants.CourseStatusPublished)
	lesson := createTestLesson(t, db, course.ID, 1)
	bare := createTestLesson(t, db, course.ID, 2)
	createTestEnrollment(t, db, user.ID, course.ID)
	quiz, _ := createTestQuiz(t, db, lesson.ID, 2, 70)

	view, err := svc.GetForLesson(user.ID, lesson.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if view.ID != quiz.ID || view.PassingScore != 70 {
		t.Fatalf("unexpected view: %+v", view)
	}
	if len(view.Questions) != 2 {
		t.Fatalf("expected two questions, got %d", len(view.Questions))
	}
	for _, question := range view.Questions {
		if len(question.Answers) != 3 {
			t.Fatalf("expected three options, got %d", len(question.Answers))
		}
	}

	if _, err := svc.GetForLesson(user.ID, bare.ID); !errors.Is(err, ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound for lesson without quiz, got %v", err)
	}
	if _, err := svc.GetForLesson(user.ID, 999); !errors.Is(err, ErrLessonNotFound) {
		t.Fatalf("expected ErrLessonNotFound, got %v", err)
	}
}
