package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/coursehub-next/internal/http/response"
	"github.com/coursehub-next/internal/repository"
	"github.com/coursehub-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetCourses 获取已发布课程列表
func (h *Handler) GetCourses(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	categoryID, _ := strconv.ParseUint(c.Query("category_id"), 10, 64)
	search := strings.TrimSpace(c.Query("search"))

	courses, total, err := h.CourseService.ListPublished(repository.CourseListFilter{
		Page:       page,
		PageSize:   pageSize,
		CategoryID: uint(categoryID),
		Search:     search,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch courses", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, courses, pagination)
}

// GetCourse 获取课程详情（含课时目录）
func (h *Handler) GetCourse(c *gin.Context) {
	courseID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || courseID == 0 {
		respondError(c, response.CodeBadRequest, "invalid course id", nil)
		return
	}

	course, err := h.CourseService.GetPublishedDetail(uint(courseID))
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			respondError(c, response.CodeNotFound, "course not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to fetch course", err)
		return
	}

	response.Success(c, course)
}

// GetCategories 获取分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.CourseService.ListCategories()
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch categories", err)
		return
	}

	response.Success(c, categories)
}
