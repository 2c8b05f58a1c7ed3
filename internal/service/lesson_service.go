package service

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"lingocode_backend/internal/curriculum"
	"lingocode_backend/internal/markup"
	"lingocode_backend/internal/util"
	"lingocode_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
)

// LessonView 课程详情；练习不含参考答案
type LessonView struct {
	*curriculum.Lesson
	ModuleTitle  string `json:"moduleTitle"`
	ContentHTML  string `json:"contentHtml"`
	NextLessonID *int   `json:"nextLessonId"`
	PrevLessonID *int   `json:"prevLessonId"`
}

type LessonSummary struct {
	ID       int                 `json:"id"`
	Title    string              `json:"title"`
	Duration string              `json:"duration"`
	Language curriculum.Language `json:"language"`
}

type ModuleSummary struct {
	*curriculum.Module
	LessonCount int             `json:"lessonCount"`
	Lessons     []LessonSummary `json:"lessons"`
}

type ExportedLesson struct {
	ModuleID int    `json:"moduleId"`
	LessonID int    `json:"lessonId"`
	URL      string `json:"url"`
}

// Uploader 课程导出使用的对象存储，返回对外访问地址
type Uploader interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

type LessonService struct {
	catalog *curriculum.Catalog
	storage Uploader
}

func NewLessonService(catalog *curriculum.Catalog, storage Uploader) *LessonService {
	return &LessonService{catalog: catalog, storage: storage}
}

func (s *LessonService) GetLesson(moduleID, lessonID int) (*LessonView, error) {
	lesson := s.catalog.Lesson(moduleID, lessonID)
	if lesson == nil {
		return nil, util.ErrLessonNotFound
	}

	view := &LessonView{
		Lesson:      lesson,
		ModuleTitle: s.catalog.Module(moduleID).Title,
		ContentHTML: markup.Render(lesson.Content),
	}
	if next := s.catalog.NextLesson(moduleID, lessonID); next != nil {
		view.NextLessonID = &next.ID
	}
	if prev := s.catalog.PrevLesson(moduleID, lessonID); prev != nil {
		view.PrevLessonID = &prev.ID
	}
	return view, nil
}

func (s *LessonService) GetModule(moduleID int) (*ModuleSummary, error) {
	m := s.catalog.Module(moduleID)
	if m == nil {
		return nil, util.ErrModuleNotFound
	}
	return summarize(m), nil
}

func (s *LessonService) ListModules() []ModuleSummary {
	modules := s.catalog.Modules()
	list := make([]ModuleSummary, 0, len(modules))
	for _, m := range modules {
		list = append(list, *summarize(m))
	}
	return list
}

func (s *LessonService) LessonCount() int {
	return s.catalog.LessonCount()
}

func summarize(m *curriculum.Module) *ModuleSummary {
	lessons := make([]LessonSummary, 0, len(m.Lessons))
	for _, l := range m.Lessons {
		lessons = append(lessons, LessonSummary{
			ID:       l.ID,
			Title:    l.Title,
			Duration: l.Duration,
			Language: l.Exercise.Language,
		})
	}
	return &ModuleSummary{Module: m, LessonCount: len(lessons), Lessons: lessons}
}

// ExportLessons 把所有课程渲染为独立 HTML 页面上传到存储，单课失败不影响其余课程
func (s *LessonService) ExportLessons(ctx context.Context) ([]ExportedLesson, error) {
	exported := make([]ExportedLesson, 0, s.catalog.LessonCount())
	var failed int
	for _, m := range s.catalog.Modules() {
		for _, l := range m.Lessons {
			if err := ctx.Err(); err != nil {
				return exported, err
			}

			page := renderLessonPage(m, l)
			name := fmt.Sprintf("lessons/%d/%d.html", m.ID, l.ID)
			url, err := s.storage.Put(ctx, name, page, util.MimeHTML)
			if err != nil {
				failed++
				logger.Log.Error("Failed to export lesson",
					zap.Int("moduleID", m.ID),
					zap.Int("lessonID", l.ID),
					zap.Error(err))
				continue
			}
			exported = append(exported, ExportedLesson{ModuleID: m.ID, LessonID: l.ID, URL: url})
		}
	}

	if failed > 0 && len(exported) == 0 {
		return nil, fmt.Errorf("export lessons: all %d uploads failed", failed)
	}
	return exported, nil
}

func renderLessonPage(m *curriculum.Module, l *curriculum.Lesson) []byte {
	var buf bytes.Buffer
	title := html.EscapeString(fmt.Sprintf("%s · %s", m.Title, l.Title))
	fmt.Fprintf(&buf, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n", title)
	fmt.Fprintf(&buf, "<article class=\"lesson\" data-module=\"%d\" data-lesson=\"%d\">\n%s\n</article>\n", m.ID, l.ID, markup.Render(l.Content))
	fmt.Fprintf(&buf, "<section class=\"exercise\" data-lang=\"%s\">\n<p>%s</p>\n</section>\n",
		html.EscapeString(string(l.Exercise.Language)), html.EscapeString(l.Exercise.Instruction))
	fmt.Fprintf(&buf, "<footer>Exported %s</footer>\n</body>\n</html>\n", time.Now().UTC().Format(util.TimeFormat))
	return buf.Bytes()
}
