package provider

import (
	"github.com/coursehub-next/internal/cache"
	"github.com/coursehub-next/internal/config"
	"github.com/coursehub-next/internal/logger"
	"github.com/coursehub-next/internal/models"
	"github.com/coursehub-next/internal/queue"
	"github.com/coursehub-next/internal/repository"
	"github.com/coursehub-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo        repository.UserRepository
	CategoryRepo    repository.CategoryRepository
	CourseRepo      repository.CourseRepository
	LessonRepo      repository.LessonRepository
	CouponRepo      repository.CouponRepository
	CouponUsageRepo repository.CouponUsageRepository
	TransactionRepo repository.TransactionRepository
	EnrollmentRepo  repository.EnrollmentRepository
	CompletionRepo  repository.LessonCompletionRepository
	CertificateRepo repository.CertificateRepository
	QuizRepo        repository.QuizRepository
	QuizResultRepo  repository.QuizResultRepository

	// Services
	EmailService       *service.EmailService
	CourseService      *service.CourseService
	CouponService      *service.CouponService
	PaymentService     *service.PaymentService
	EnrollmentService  *service.EnrollmentService
	CertificateService *service.CertificateService
	ProgressService    *service.ProgressService
	QuizService        *service.QuizService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.CourseRepo = repository.NewCourseRepository(db)
	c.LessonRepo = repository.NewLessonRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.CouponUsageRepo = repository.NewCouponUsageRepository(db)
	c.TransactionRepo = repository.NewTransactionRepository(db)
	c.EnrollmentRepo = repository.NewEnrollmentRepository(db)
	c.CompletionRepo = repository.NewLessonCompletionRepository(db)
	c.CertificateRepo = repository.NewCertificateRepository(db)
	c.QuizRepo = repository.NewQuizRepository(db)
	c.QuizResultRepo = repository.NewQuizResultRepository(db)
}

func (c *Container) initServices() {
	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.CourseService = service.NewCourseService(c.CourseRepo, c.CategoryRepo)
	c.CouponService = service.NewCouponService(c.CouponRepo, c.CouponUsageRepo)
	c.PaymentService = service.NewPaymentService(
		c.TransactionRepo, c.CourseRepo, c.EnrollmentRepo, c.CouponRepo, c.CouponService, c.QueueClient)
	c.EnrollmentService = service.NewEnrollmentService(
		c.CourseRepo, c.EnrollmentRepo, c.TransactionRepo, c.LessonRepo, c.CompletionRepo, c.QueueClient)
	c.CertificateService = service.NewCertificateService(
		c.CertificateRepo, c.EnrollmentRepo, c.LessonRepo, c.CompletionRepo, c.CourseRepo, c.QueueClient,
		&c.Config.Certificate)
	c.ProgressService = service.NewProgressService(
		c.LessonRepo, c.EnrollmentRepo, c.CompletionRepo, c.CertificateService)
	c.QuizService = service.NewQuizService(
		c.QuizRepo, c.QuizResultRepo, c.LessonRepo, c.EnrollmentRepo)
}
