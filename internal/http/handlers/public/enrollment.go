package public

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/coursehub-next/internal/http/response"
	"github.com/coursehub-next/internal/repository"
	"github.com/coursehub-next/internal/service"

	"github.com/gin-gonic/gin"
)

// EnrollCourseRequest 报名请求
type EnrollCourseRequest struct {
	TransactionNo string `json:"transaction_no"`
}

// EnrollCourse 报名课程
func (h *Handler) EnrollCourse(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	courseID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || courseID == 0 {
		respondError(c, response.CodeBadRequest, "invalid course id", nil)
		return
	}

	// 免费课程无需请求体
	var req EnrollCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	enrollment, err := h.EnrollmentService.Enroll(service.EnrollInput{
		UserID:        uid,
		CourseID:      uint(courseID),
		TransactionNo: strings.TrimSpace(req.TransactionNo),
	})
	if err != nil {
		respondEnrollError(c, err)
		return
	}

	response.Success(c, enrollment)
}

// ListMyCourses 获取我的课程列表（含学习进度）
func (h *Handler) ListMyCourses(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	status := strings.TrimSpace(c.Query("status"))

	enrollments, total, err := h.EnrollmentService.ListByUser(repository.EnrollmentListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uid,
		Status:   status,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch enrollments", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, enrollments, pagination)
}
