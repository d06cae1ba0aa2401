package public

import (
	"strconv"

	"github.com/coursehub-next/internal/http/response"
	"github.com/coursehub-next/internal/service"

	"github.com/gin-gonic/gin"
)

// SubmitQuizRequest 交卷请求
type SubmitQuizRequest struct {
	Answers map[uint]uint `json:"answers" binding:"required"`
}

// GetLessonQuiz 获取课时测验（不含答案标记）
func (h *Handler) GetLessonQuiz(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	lessonID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || lessonID == 0 {
		respondError(c, response.CodeBadRequest, "invalid lesson id", nil)
		return
	}

	quiz, err := h.QuizService.GetForLesson(uid, uint(lessonID))
	if err != nil {
		respondQuizError(c, err)
		return
	}

	response.Success(c, quiz)
}

// SubmitQuiz 交卷判分
func (h *Handler) SubmitQuiz(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	quizID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || quizID == 0 {
		respondError(c, response.CodeBadRequest, "invalid quiz id", nil)
		return
	}

	var req SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	result, err := h.QuizService.Submit(service.SubmitQuizInput{
		UserID:  uid,
		QuizID:  uint(quizID),
		Answers: req.Answers,
	})
	if err != nil {
		respondQuizError(c, err)
		return
	}

	response.Success(c, result)
}

// ListQuizResults 获取历史成绩
func (h *Handler) ListQuizResults(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	quizID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || quizID == 0 {
		respondError(c, response.CodeBadRequest, "invalid quiz id", nil)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	results, total, err := h.QuizService.ListResults(uid, uint(quizID), page, pageSize)
	if err != nil {
		respondQuizError(c, err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, results, pagination)
}
