package router

import (
	"fmt"
	"strings"

	"github.com/coursehub-next/internal/cache"
	"github.com/coursehub-next/internal/config"
	publichandlers "github.com/coursehub-next/internal/http/handlers/public"
	"github.com/coursehub-next/internal/logger"
	"github.com/coursehub-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "ch"
	}
	redisClient := cache.Client()
	couponRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:coupon_validate", redisPrefix),
		WindowSeconds: cfg.Security.CouponRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CouponRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.CouponRateLimit.BlockSeconds,
		Message:       "too many coupon lookups",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		apiV1.GET("/courses", publicHandler.GetCourses)
		apiV1.GET("/courses/:id", publicHandler.GetCourse)
		apiV1.GET("/categories", publicHandler.GetCategories)
		apiV1.GET("/certificates/:certificate_no/verify", publicHandler.VerifyCertificate)

		// 学员接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.POST("/coupons/validate", RateLimitMiddleware(redisClient, couponRule, KeyByIP), publicHandler.ValidateCoupon)
			user.POST("/payments/intent", publicHandler.CreatePaymentIntent)
			user.POST("/payments/:transaction_no/confirm", publicHandler.ConfirmPayment)
			user.POST("/payments/:transaction_no/fail", publicHandler.FailPayment)
			user.GET("/payments/:transaction_no", publicHandler.GetTransaction)
			user.GET("/my-transactions", publicHandler.ListMyTransactions)

			user.POST("/courses/:id/enroll", publicHandler.EnrollCourse)
			user.GET("/my-courses", publicHandler.ListMyCourses)

			user.GET("/courses/:id/progress", publicHandler.GetCourseProgress)
			user.POST("/lessons/:id/complete", publicHandler.CompleteLesson)
			user.DELETE("/lessons/:id/complete", publicHandler.UncompleteLesson)

			user.GET("/lessons/:id/quiz", publicHandler.GetLessonQuiz)
			user.POST("/quizzes/:id/submit", publicHandler.SubmitQuiz)
			user.GET("/quizzes/:id/results", publicHandler.ListQuizResults)

			user.GET("/courses/:id/certificate", publicHandler.GetCourseCertificate)
			user.GET("/my-certificates", publicHandler.ListMyCertificates)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
