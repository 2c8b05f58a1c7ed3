package service

import (
	"context"
	"lingocode_backend/internal/curriculum"
	"lingocode_backend/internal/repository"
	"time"

	"github.com/jinzhu/now"
)

type ModuleProgress struct {
	ModuleID  int    `json:"moduleId"`
	Title     string `json:"title"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

type CompletedLesson struct {
	ModuleID    int        `json:"moduleId"`
	LessonID    int        `json:"lessonId"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type ProgressSummary struct {
	TotalLessons      int               `json:"totalLessons"`
	CompletedLessons  int               `json:"completedLessons"`
	CompletedThisWeek int               `json:"completedThisWeek"`
	Modules           []ModuleProgress  `json:"modules"`
	Lessons           []CompletedLesson `json:"lessons"`
}

type ProgressService struct {
	ProgressRepo *repository.ProgressRepository
	catalog      *curriculum.Catalog
	now          func() time.Time
}

func NewProgressService(progressRepo *repository.ProgressRepository, catalog *curriculum.Catalog) *ProgressService {
	return &ProgressService{ProgressRepo: progressRepo, catalog: catalog, now: time.Now}
}

// Summary 只统计目录中仍存在的课程；本周从周一零点算起
func (s *ProgressService) Summary(ctx context.Context, userID uint) (*ProgressSummary, error) {
	records, err := s.ProgressRepo.ListCompleted(ctx, userID)
	if err != nil {
		return nil, err
	}

	weekStart := (&now.Config{WeekStartDay: time.Monday}).With(s.now()).BeginningOfWeek()

	summary := &ProgressSummary{
		TotalLessons: s.catalog.LessonCount(),
		Lessons:      make([]CompletedLesson, 0, len(records)),
	}
	perModule := make(map[int]int)
	for _, r := range records {
		if s.catalog.Lesson(r.ModuleID, r.LessonID) == nil {
			continue
		}
		summary.CompletedLessons++
		perModule[r.ModuleID]++
		if r.CompletedAt != nil && !r.CompletedAt.Before(weekStart) {
			summary.CompletedThisWeek++
		}
		summary.Lessons = append(summary.Lessons, CompletedLesson{
			ModuleID:    r.ModuleID,
			LessonID:    r.LessonID,
			CompletedAt: r.CompletedAt,
		})
	}

	for _, m := range s.catalog.Modules() {
		summary.Modules = append(summary.Modules, ModuleProgress{
			ModuleID:  m.ID,
			Title:     m.Title,
			Completed: perModule[m.ID],
			Total:     len(m.Lessons),
		})
	}
	return summary, nil
}
