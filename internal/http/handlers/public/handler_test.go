package public

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coursehub-next/internal/constants"
	"github.com/coursehub-next/internal/http/response"
	"github.com/coursehub-next/internal/models"
	"github.com/coursehub-next/internal/provider"
	"github.com/coursehub-next/internal/repository"
	"github.com/coursehub-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type testEnvelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func setupHandlerTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Course{},
		&models.Lesson{},
		&models.Coupon{},
		&models.CouponUsage{},
		&models.Transaction{},
		&models.Enrollment{},
		&models.LessonCompletion{},
		&models.Certificate{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return db
}

func newTestHandler(db *gorm.DB) *Handler {
	c := &provider.Container{}
	c.CourseService = service.NewCourseService(
		repository.NewCourseRepository(db),
		repository.NewCategoryRepository(db),
	)
	c.CouponService = service.NewCouponService(
		repository.NewCouponRepository(db),
		repository.NewCouponUsageRepository(db),
	)
	c.CertificateService = service.NewCertificateService(
		repository.NewCertificateRepository(db),
		repository.NewEnrollmentRepository(db),
		repository.NewLessonRepository(db),
		repository.NewLessonCompletionRepository(db),
		repository.NewCourseRepository(db),
		nil,
		nil,
	)
	return New(c)
}

func newTestRouter(h *Handler, uid uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if uid > 0 {
		r.Use(func(c *gin.Context) {
			c.Set("user_id", uid)
			c.Next()
		})
	}
	r.POST("/coupons/validate", h.ValidateCoupon)
	r.GET("/courses/:id/certificate", h.GetCourseCertificate)
	return r
}

func doJSONRequest(t *testing.T, r *gin.Engine, method, path string, body interface{}) testEnvelope {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected http status %d", w.Code)
	}
	var envelope testEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope failed: %v", err)
	}
	return envelope
}

func TestValidateCouponRequiresUser(t *testing.T) {
	db := setupHandlerTestDB(t, "coupon_handler_anon")
	r := newTestRouter(newTestHandler(db), 0)

	envelope := doJSONRequest(t, r, http.MethodPost, "/coupons/validate", gin.H{"code": "ANY", "course_id": 1})
	if envelope.StatusCode != response.CodeUnauthorized {
		t.Fatalf("expected unauthorized status code, got %d", envelope.StatusCode)
	}
}

func TestValidateCouponChecksAuthenticatedUser(t *testing.T) {
	db := setupHandlerTestDB(t, "coupon_handler_user")
	h := newTestHandler(db)

	course := &models.Course{
		Title:    "Preview Course",
		Slug:     "preview-course",
		Price:    models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		Currency: constants.DefaultCurrency,
		Status:   constants.CourseStatusPublished,
	}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("create course failed: %v", err)
	}
	coupon := &models.Coupon{
		Code:     "USEDUP",
		Type:     constants.CouponTypePercentage,
		Value:    models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
		IsActive: true,
	}
	if err := db.Create(coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	usage := models.CouponUsage{
		CouponID:       coupon.ID,
		UserID:         7,
		TransactionID:  1,
		DiscountAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
	}
	if err := db.Create(&usage).Error; err != nil {
		t.Fatalf("create usage failed: %v", err)
	}

	body := gin.H{"code": "USEDUP", "course_id": course.ID}

	// 已用过该券的用户在试算阶段即被拒绝
	envelope := doJSONRequest(t, newTestRouter(h, 7), http.MethodPost, "/coupons/validate", body)
	if envelope.StatusCode != response.CodeBadRequest {
		t.Fatalf("expected rejection for redeemed user, got %d (%s)", envelope.StatusCode, envelope.Msg)
	}

	envelope = doJSONRequest(t, newTestRouter(h, 8), http.MethodPost, "/coupons/validate", body)
	if envelope.StatusCode != response.CodeOK {
		t.Fatalf("expected preview for fresh user, got %d (%s)", envelope.StatusCode, envelope.Msg)
	}
	var preview struct {
		FinalPrice string `json:"final_price"`
	}
	if err := json.Unmarshal(envelope.Data, &preview); err != nil {
		t.Fatalf("decode preview failed: %v", err)
	}
	if preview.FinalPrice != "40.00" {
		t.Fatalf("expected final price 40.00, got %s", preview.FinalPrice)
	}
}

func TestGetCourseCertificateIssuesWhenComplete(t *testing.T) {
	db := setupHandlerTestDB(t, "certificate_handler")
	h := newTestHandler(db)

	user := &models.User{ID: 1, Email: "done@example.com", PasswordHash: "hash", DisplayName: "Done", Status: constants.UserStatusActive}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	course := &models.Course{
		Title:    "Finished Course",
		Slug:     "finished-course",
		Price:    models.NewMoneyFromDecimal(decimal.Zero),
		Currency: constants.DefaultCurrency,
		Status:   constants.CourseStatusPublished,
	}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("create course failed: %v", err)
	}
	lesson := &models.Lesson{CourseID: course.ID, Title: "Only Lesson", Position: 1}
	if err := db.Create(lesson).Error; err != nil {
		t.Fatalf("create lesson failed: %v", err)
	}
	enrollment := &models.Enrollment{UserID: user.ID, CourseID: course.ID, Status: constants.EnrollmentStatusActive, EnrolledAt: time.Now()}
	if err := db.Create(enrollment).Error; err != nil {
		t.Fatalf("create enrollment failed: %v", err)
	}

	r := newTestRouter(h, user.ID)
	path := fmt.Sprintf("/courses/%d/certificate", course.ID)

	// 未完课时不签发
	envelope := doJSONRequest(t, r, http.MethodGet, path, nil)
	if envelope.StatusCode != response.CodeNotFound {
		t.Fatalf("expected not-ready response, got %d (%s)", envelope.StatusCode, envelope.Msg)
	}

	completion := models.LessonCompletion{UserID: user.ID, LessonID: lesson.ID, CourseID: course.ID, CompletedAt: time.Now()}
	if err := db.Create(&completion).Error; err != nil {
		t.Fatalf("create completion failed: %v", err)
	}

	// 完课后访问即可补发证书
	envelope = doJSONRequest(t, r, http.MethodGet, path, nil)
	if envelope.StatusCode != response.CodeOK {
		t.Fatalf("expected certificate issuance, got %d (%s)", envelope.StatusCode, envelope.Msg)
	}
	var issued struct {
		CertificateNo string `json:"certificate_no"`
	}
	if err := json.Unmarshal(envelope.Data, &issued); err != nil {
		t.Fatalf("decode certificate failed: %v", err)
	}
	if !strings.HasPrefix(issued.CertificateNo, constants.CertificateNoPrefix) {
		t.Fatalf("unexpected certificate no: %s", issued.CertificateNo)
	}

	// 重复访问返回同一张证书
	envelope = doJSONRequest(t, r, http.MethodGet, path, nil)
	var again struct {
		CertificateNo string `json:"certificate_no"`
	}
	if err := json.Unmarshal(envelope.Data, &again); err != nil {
		t.Fatalf("decode certificate failed: %v", err)
	}
	if again.CertificateNo != issued.CertificateNo {
		t.Fatalf("expected the same certificate, got %s vs %s", again.CertificateNo, issued.CertificateNo)
	}
}
