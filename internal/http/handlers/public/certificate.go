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

// GetCourseCertificate 获取我在某课程下的证书
// 幂等检查：满足完课条件但尚未签发时就地补发，避免异步签发失败后无法恢复。
func (h *Handler) GetCourseCertificate(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	courseID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || courseID == 0 {
		respondError(c, response.CodeBadRequest, "invalid course id", nil)
		return
	}

	certificate, err := h.CertificateService.CheckAndIssue(uid, uint(courseID))
	if err != nil {
		respondCertificateError(c, err)
		return
	}
	if certificate == nil {
		respondCertificateError(c, service.ErrCertificateNotReady)
		return
	}

	response.Success(c, certificate)
}

// ListMyCertificates 获取我的证书列表
func (h *Handler) ListMyCertificates(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	certificates, total, err := h.CertificateService.ListByUser(repository.CertificateListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uid,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch certificates", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, certificates, pagination)
}

// VerifyCertificate 公开校验证书编号
func (h *Handler) VerifyCertificate(c *gin.Context) {
	certificateNo := strings.TrimSpace(c.Param("certificate_no"))
	if certificateNo == "" {
		respondError(c, response.CodeBadRequest, "invalid certificate number", nil)
		return
	}

	verification, err := h.CertificateService.VerifyByNumber(certificateNo)
	if err != nil {
		if errors.Is(err, service.ErrCertificateNotFound) {
			respondError(c, response.CodeNotFound, "certificate not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to verify certificate", err)
		return
	}

	response.Success(c, verification)
}
