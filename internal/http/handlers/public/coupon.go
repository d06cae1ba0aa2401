package public

import (
	"errors"

	"github.com/coursehub-next/internal/http/response"
	"github.com/coursehub-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ValidateCouponRequest 优惠券试算请求
type ValidateCouponRequest struct {
	Code     string `json:"code" binding:"required"`
	CourseID uint   `json:"course_id" binding:"required"`
}

// ValidateCoupon 校验优惠券并试算折后价
// 按真实用户校验，已用过该券的用户在试算阶段即被拒绝。
func (h *Handler) ValidateCoupon(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	course, err := h.CourseService.GetPublishedDetail(req.CourseID)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			respondError(c, response.CodeNotFound, "course not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to fetch course", err)
		return
	}

	preview, err := h.CouponService.Preview(req.Code, uid, course)
	if err != nil {
		respondCouponValidateError(c, err)
		return
	}

	response.Success(c, preview)
}
