package public

import (
	"strconv"

	"github.com/coursehub-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CompleteLesson 标记课时完成（幂等）
func (h *Handler) CompleteLesson(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	lessonID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || lessonID == 0 {
		respondError(c, response.CodeBadRequest, "invalid lesson id", nil)
		return
	}

	completion, err := h.ProgressService.CompleteLesson(uid, uint(lessonID))
	if err != nil {
		respondProgressError(c, err)
		return
	}

	response.Success(c, completion)
}

// UncompleteLesson 取消课时完成标记（幂等）
func (h *Handler) UncompleteLesson(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	lessonID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || lessonID == 0 {
		respondError(c, response.CodeBadRequest, "invalid lesson id", nil)
		return
	}

	if err := h.ProgressService.UncompleteLesson(uid, uint(lessonID)); err != nil {
		respondProgressError(c, err)
		return
	}

	response.Success(c, nil)
}

// GetCourseProgress 获取课程学习进度
func (h *Handler) GetCourseProgress(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	courseID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || courseID == 0 {
		respondError(c, response.CodeBadRequest, "invalid course id", nil)
		return
	}

	progress, err := h.ProgressService.GetCourseProgress(uid, uint(courseID))
	if err != nil {
		respondProgressError(c, err)
		return
	}

	response.Success(c, progress)
}
