package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/coursehub-next/internal/config"
	"github.com/coursehub-next/internal/constants"
	"github.com/coursehub-next/internal/logger"
	"github.com/coursehub-next/internal/models"
	"github.com/coursehub-next/internal/service"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 演示数据初始化：可重复执行，已存在的记录按唯一键更新而不是重复插入。
func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}

	users, err := seedUsers()
	if err != nil {
		stdLog.Fatalf("初始化演示用户失败: %v", err)
	}
	categories, err := seedCategories()
	if err != nil {
		stdLog.Fatalf("初始化课程分类失败: %v", err)
	}
	courses, err := seedCourses(categories)
	if err != nil {
		stdLog.Fatalf("初始化课程失败: %v", err)
	}
	if err := seedLessonsAndQuizzes(courses); err != nil {
		stdLog.Fatalf("初始化课时与测验失败: %v", err)
	}
	if err := seedCoupons(courses); err != nil {
		stdLog.Fatalf("初始化优惠券失败: %v", err)
	}

	stdLog.Printf("演示数据初始化完成")
	tokenTTL := 24 * time.Hour
	if cfg.UserJWT.ExpireHours > 0 {
		tokenTTL = time.Duration(cfg.UserJWT.ExpireHours) * time.Hour
	}
	for _, user := range users {
		token, err := service.IssueUserToken(cfg.UserJWT.SecretKey, user, tokenTTL)
		if err != nil {
			stdLog.Printf("警告: 签发演示 token 失败 (%s): %v", user.Email, err)
			continue
		}
		fmt.Printf("%s\n  Bearer %s\n", user.Email, token)
	}
}

func seedUsers() ([]*models.User, error) {
	seeds := []struct {
		email       string
		password    string
		displayName string
	}{
		{"alice@example.com", "alice-demo-pass", "Alice Chen"},
		{"bob@example.com", "bob-demo-pass", "Bob Martinez"},
	}

	users := make([]*models.User, 0, len(seeds))
	for _, s := range seeds {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}

		var user models.User
		err = models.DB.Where("email = ?", s.email).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = models.User{
				Email:        s.email,
				PasswordHash: string(hash),
				DisplayName:  s.displayName,
				Status:       constants.UserStatusActive,
			}
			if err := models.DB.Create(&user).Error; err != nil {
				return nil, err
			}
		case err != nil:
			return nil, err
		default:
			user.DisplayName = s.displayName
			user.Status = constants.UserStatusActive
			if err := models.DB.Save(&user).Error; err != nil {
				return nil, err
			}
		}
		users = append(users, &user)
	}
	return users, nil
}

func seedCategories() (map[string]*models.Category, error) {
	seeds := []models.Category{
		{Name: "Backend Development", Slug: "backend", Description: "服务端开发课程", Position: 1, IsActive: true},
		{Name: "Databases", Slug: "databases", Description: "数据库与存储课程", Position: 2, IsActive: true},
	}

	result := make(map[string]*models.Category, len(seeds))
	for _, s := range seeds {
		var category models.Category
		err := models.DB.Where("slug = ?", s.Slug).First(&category).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			category = s
			if err := models.DB.Create(&category).Error; err != nil {
				return nil, err
			}
		case err != nil:
			return nil, err
		default:
			category.Name = s.Name
			category.Description = s.Description
			category.Position = s.Position
			category.IsActive = s.IsActive
			if err := models.DB.Save(&category).Error; err != nil {
				return nil, err
			}
		}
		result[category.Slug] = &category
	}
	return result, nil
}

func seedCourses(categories map[string]*models.Category) (map[string]*models.Course, error) {
	seeds := []struct {
		categorySlug string
		course       models.Course
	}{
		{
			categorySlug: "backend",
			course: models.Course{
				Title:       "Go 服务端实战",
				Slug:        "go-backend-in-practice",
				Description: "从路由到队列，动手构建一个完整的 Go 服务。",
				Price:       models.NewMoneyFromDecimal(decimal.NewFromInt(49)),
				Currency:    constants.DefaultCurrency,
				Status:      constants.CourseStatusPublished,
			},
		},
		{
			categorySlug: "databases",
			course: models.Course{
				Title:       "SQL 入门",
				Slug:        "sql-basics",
				Description: "免费入门课程：查询、索引与事务。",
				Price:       models.NewMoneyFromDecimal(decimal.Zero),
				Currency:    constants.DefaultCurrency,
				Status:      constants.CourseStatusPublished,
			},
		},
		{
			categorySlug: "backend",
			course: models.Course{
				Title:       "分布式系统进阶",
				Slug:        "distributed-systems",
				Description: "尚未发布的草稿课程。",
				Price:       models.NewMoneyFromDecimal(decimal.NewFromInt(89)),
				Currency:    constants.DefaultCurrency,
				Status:      constants.CourseStatusDraft,
			},
		},
	}

	result := make(map[string]*models.Course, len(seeds))
	for _, s := range seeds {
		category, ok := categories[s.categorySlug]
		if !ok {
			return nil, fmt.Errorf("unknown category slug: %s", s.categorySlug)
		}

		var course models.Course
		err := models.DB.Where("slug = ?", s.course.Slug).First(&course).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			course = s.course
			course.CategoryID = category.ID
			if err := models.DB.Create(&course).Error; err != nil {
				return nil, err
			}
		case err != nil:
			return nil, err
		default:
			course.CategoryID = category.ID
			course.Title = s.course.Title
			course.Description = s.course.Description
			course.Price = s.course.Price
			course.Currency = s.course.Currency
			course.Status = s.course.Status
			if err := models.DB.Save(&course).Error; err != nil {
				return nil, err
			}
		}
		result[course.Slug] = &course
	}
	return result, nil
}

func seedLessonsAndQuizzes(courses map[string]*models.Course) error {
	type quizSeed struct {
		title        string
		passingScore int
		questions    []struct {
			text    string
			answers []string // 第一个为正确答案
		}
	}
	type lessonSeed struct {
		lesson models.Lesson
		quiz   *quizSeed
	}

	seeds := map[string][]lessonSeed{
		"go-backend-in-practice": {
			{
				lesson: models.Lesson{Title: "环境与项目结构", DurationMinutes: 18, Position: 1, IsPreview: true},
			},
			{
				lesson: models.Lesson{Title: "HTTP 路由与中间件", DurationMinutes: 32, Position: 2},
				quiz: &quizSeed{
					title:        "路由与中间件测验",
					passingScore: 60,
					questions: []struct {
						text    string
						answers []string
					}{
						{text: "中间件在 Gin 中通过什么方法注册？", answers: []string{"Use", "Handle", "Bind"}},
						{text: "请求级别的值应该存放在哪里？", answers: []string{"gin.Context", "全局变量", "包级 map"}},
					},
				},
			},
			{
				lesson: models.Lesson{Title: "后台任务与队列", DurationMinutes: 27, Position: 3},
			},
		},
		"sql-basics": {
			{
				lesson: models.Lesson{Title: "SELECT 基础", DurationMinutes: 15, Position: 1, IsPreview: true},
				quiz: &quizSeed{
					title:        "SELECT 测验",
					passingScore: 60,
					questions: []struct {
						text    string
						answers []string
					}{
						{text: "过滤行使用哪个子句？", answers: []string{"WHERE", "ORDER BY", "GROUP BY"}},
					},
				},
			},
			{
				lesson: models.Lesson{Title: "索引与事务", DurationMinutes: 21, Position: 2},
			},
		},
	}

	for slug, lessons := range seeds {
		course, ok := courses[slug]
		if !ok {
			return fmt.Errorf("unknown course slug: %s", slug)
		}
		for _, ls := range lessons {
			var lesson models.Lesson
			err := models.DB.Where("course_id = ? AND position = ?", course.ID, ls.lesson.Position).First(&lesson).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				lesson = ls.lesson
				lesson.CourseID = course.ID
				if err := models.DB.Create(&lesson).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				lesson.Title = ls.lesson.Title
				lesson.DurationMinutes = ls.lesson.DurationMinutes
				lesson.IsPreview = ls.lesson.IsPreview
				if err := models.DB.Save(&lesson).Error; err != nil {
					return err
				}
			}

			if ls.quiz == nil {
				continue
			}
			var quiz models.Quiz
			err = models.DB.Where("lesson_id = ?", lesson.ID).First(&quiz).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				quiz = models.Quiz{LessonID: lesson.ID, Title: ls.quiz.title, PassingScore: ls.quiz.passingScore}
				if err := models.DB.Create(&quiz).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			default:
				quiz.Title = ls.quiz.title
				quiz.PassingScore = ls.quiz.passingScore
				if err := models.DB.Save(&quiz).Error; err != nil {
					return err
				}
			}

			// 题目不做增量更新，已有题目的测验保持原样
			var questionCount int64
			if err := models.DB.Model(&models.QuizQuestion{}).Where("quiz_id = ?", quiz.ID).Count(&questionCount).Error; err != nil {
				return err
			}
			if questionCount > 0 {
				continue
			}
			for i, qs := range ls.quiz.questions {
				question := models.QuizQuestion{QuizID: quiz.ID, Text: qs.text, Position: i + 1}
				if err := models.DB.Create(&question).Error; err != nil {
					return err
				}
				for j, text := range qs.answers {
					answer := models.QuizAnswer{QuestionID: question.ID, Text: text, IsCorrect: j == 0}
					if err := models.DB.Create(&answer).Error; err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func seedCoupons(courses map[string]*models.Course) error {
	goCourse, ok := courses["go-backend-in-practice"]
	if !ok {
		return errors.New("unknown course slug: go-backend-in-practice")
	}

	now := time.Now()
	until := now.AddDate(0, 3, 0)
	seeds := []models.Coupon{
		{
			Code:      "WELCOME10",
			Type:      constants.CouponTypePercentage,
			Value:     models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
			MinAmount: models.NewMoneyFromDecimal(decimal.Zero),
			MaxUses:   100,
			ValidFrom: &now,
			ValidUntil: &until,
			IsActive:  true,
		},
		{
			Code:      "GOLAUNCH",
			Type:      constants.CouponTypeFixed,
			Value:     models.NewMoneyFromDecimal(decimal.NewFromInt(15)),
			MinAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
			MaxUses:   0,
			CourseID:  &goCourse.ID,
			IsActive:  true,
		},
	}

	for _, s := range seeds {
		var coupon models.Coupon
		err := models.DB.Where("code = ?", s.Code).First(&coupon).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			coupon = s
			if err := models.DB.Create(&coupon).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			coupon.Type = s.Type
			coupon.Value = s.Value
			coupon.MinAmount = s.MinAmount
			coupon.MaxUses = s.MaxUses
			coupon.CourseID = s.CourseID
			coupon.ValidFrom = s.ValidFrom
			coupon.ValidUntil = s.ValidUntil
			coupon.IsActive = s.IsActive
			if err := models.DB.Save(&coupon).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
