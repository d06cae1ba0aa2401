package service

import (
	"testing"

	"github.com/coursehub-next/internal/constants"
	"github.com/coursehub-next/internal/models"
	"github.com/coursehub-next/internal/repository"

	"github.com/shopspring/decimal"
)

func setupCourseService(t *testing.T, name string) *CourseService {
	t.Helper()
	db := setupServiceTestDB(t, name)
	return NewCourseService(
		repository.NewCourseRepository(db),
		repository.NewCategoryRepository(db),
	)
}

func TestListPublishedFiltersDrafts(t *testing.T) {
	svc := setupCourseService(t, "course_list")
	db := models.DB

	createTestCourse(t, db, "go-basics", decimal.NewFromInt(49), constants.CourseStatusPublished)
	createTestCourse(t, db, "sql-basics", decimal.Zero, constants.CourseStatusPublished)
	createTestCourse(t, db, "wip-course", decimal.NewFromInt(89), constants.CourseStatusDraft)
	createTestCourse(t, db, "old-course", decimal.NewFromInt(19), constants.CourseStatusArchived)

	courses, total, err := svc.ListPublished(repository.CourseListFilter{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected total 2, got %d", total)
	}
	for _, course := range courses {
		if course.Status != constants.CourseStatusPublished {
			t.Fatalf("unexpected status %q in published list", course.Status)
		}
	}
}

func TestListPublishedByCategoryAndSearch(t *testing.T) {
	svc := setupCourseService(t, "course_filter")
	db := models.DB

	category := &models.Category{Name: "Backend", Slug: "backend", IsActive: true}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}

	inCategory := createTestCourse(t, db, "go-backend", decimal.NewFromInt(49), constants.CourseStatusPublished)
	if err := db.Model(inCategory).Update("category_id", category.ID).Error; err != nil {
		t.Fatalf("assign category failed: %v", err)
	}
	createTestCourse(t, db, "sql-basics", decimal.Zero, constants.CourseStatusPublished)

	courses, total, err := svc.ListPublished(repository.CourseListFilter{
		Page: 1, PageSize: 20, CategoryID: category.ID,
	})
	if err != nil {
		t.Fatalf("ListPublished by category failed: %v", err)
	}
	if total != 1 || len(courses) != 1 || courses[0].ID != inCategory.ID {
		t.Fatalf("expected only the categorized course, got total=%d len=%d", total, len(courses))
	}

	courses, total, err = svc.ListPublished(repository.CourseListFilter{
		Page: 1, PageSize: 20, Search: "sql",
	})
	if err != nil {
		t.Fatalf("ListPublished by search failed: %v", err)
	}
	if total != 1 || len(courses) != 1 || courses[0].Slug != "sql-basics" {
		t.Fatalf("expected search to match sql-basics, got total=%d len=%d", total, len(courses))
	}
}

func TestGetPublishedDetailHidesUnpublished(t *testing.T) {
	svc := setupCourseService(t, "course_detail")
	db := models.DB

	published := createTestCourse(t, db, "go-basics", decimal.NewFromInt(49), constants.CourseStatusPublished)
	createTestLesson(t, db, published.ID, 1)
	createTestLesson(t, db, published.ID, 2)
	draft := createTestCourse(t, db, "wip-course", decimal.NewFromInt(89), constants.CourseStatusDraft)

	detail, err := svc.GetPublishedDetail(published.ID)
	if err != nil {
		t.Fatalf("GetPublishedDetail failed: %v", err)
	}
	if len(detail.Lessons) != 2 {
		t.Fatalf("expected 2 lessons in detail, got %d", len(detail.Lessons))
	}

	if _, err := svc.GetPublishedDetail(draft.ID); err != ErrCourseNotFound {
		t.Fatalf("expected ErrCourseNotFound for draft course, got %v", err)
	}
	if _, err := svc.GetPublishedDetail(99999); err != ErrCourseNotFound {
		t.Fatalf("expected ErrCourseNotFound for unknown course, got %v", err)
	}
}

func TestListCategoriesOnlyActive(t *testing.T) {
	svc := setupCourseService(t, "course_categories")
	db := models.DB

	active := &models.Category{Name: "Backend", Slug: "backend", IsActive: true, Position: 1}
	inactive := &models.Category{Name: "Legacy", Slug: "legacy", IsActive: false, Position: 2}
	if err := db.Create(active).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	if err := db.Create(inactive).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	// IsActive 带 default:true 标签，零值在 Create 时会被忽略，需显式落库
	if err := db.Model(inactive).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate category failed: %v", err)
	}

	categories, err := svc.ListCategories()
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}
	if len(categories) != 1 || categories[0].Slug != "backend" {
		t.Fatalf("expected only the active category, got %d", len(categories))
	}
}
