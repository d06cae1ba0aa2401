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

// CreatePaymentIntentRequest 创建支付意图请求
type CreatePaymentIntentRequest struct {
	CourseID      uint   `json:"course_id" binding:"required"`
	CouponCode    string `json:"coupon_code"`
	PaymentMethod string `json:"payment_method"`
}

// ConfirmPaymentRequest 确认支付请求
type ConfirmPaymentRequest struct {
	GatewayRef string `json:"gateway_ref"`
}

// FailPaymentRequest 标记支付失败请求
type FailPaymentRequest struct {
	Reason string `json:"reason"`
}

// CreatePaymentIntent 创建支付意图
func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	txn, err := h.PaymentService.CreateIntent(service.CreateIntentInput{
		UserID:        uid,
		CourseID:      req.CourseID,
		CouponCode:    req.CouponCode,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		respondPaymentIntentError(c, err)
		return
	}

	response.Success(c, txn)
}

// ConfirmPayment 确认支付完成
func (h *Handler) ConfirmPayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	transactionNo := strings.TrimSpace(c.Param("transaction_no"))
	if transactionNo == "" {
		respondError(c, response.CodeBadRequest, "invalid transaction number", nil)
		return
	}

	// 请求体可选：网关参考号允许为空
	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	txn, err := h.PaymentService.Confirm(uid, transactionNo, strings.TrimSpace(req.GatewayRef))
	if err != nil {
		respondPaymentConfirmError(c, err)
		return
	}

	response.Success(c, txn)
}

// FailPayment 将支付标记为失败
func (h *Handler) FailPayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	transactionNo := strings.TrimSpace(c.Param("transaction_no"))
	if transactionNo == "" {
		respondError(c, response.CodeBadRequest, "invalid transaction number", nil)
		return
	}

	var req FailPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	txn, err := h.PaymentService.Fail(uid, transactionNo, req.Reason)
	if err != nil {
		respondPaymentFailError(c, err)
		return
	}

	response.Success(c, txn)
}

// GetTransaction 获取交易详情
func (h *Handler) GetTransaction(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	transactionNo := strings.TrimSpace(c.Param("transaction_no"))
	if transactionNo == "" {
		respondError(c, response.CodeBadRequest, "invalid transaction number", nil)
		return
	}

	txn, err := h.PaymentService.GetByTransactionNo(uid, transactionNo)
	if err != nil {
		if errors.Is(err, service.ErrTransactionNotFound) {
			respondError(c, response.CodeNotFound, "transaction not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to fetch transaction", err)
		return
	}

	response.Success(c, txn)
}

// ListMyTransactions 获取我的交易列表
func (h *Handler) ListMyTransactions(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	status := strings.TrimSpace(c.Query("status"))

	transactions, total, err := h.PaymentService.ListByUser(repository.TransactionListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uid,
		Status:   status,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch transactions", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, transactions, pagination)
}
