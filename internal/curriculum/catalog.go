// Package curriculum 提供静态课程目录：模块 → 课程 → 练习。
// 目录在进程启动时从内嵌的 YAML 加载，运行期间只读。
package curriculum

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

type Language string

const (
	JavaScript Language = "javascript"
	Python     Language = "python"
	HTML       Language = "html"
	CSS        Language = "css"
)

// Exercise 每个课程恰好有一个练习；Solution 仅作文档用途，不参与判题
type Exercise struct {
	Instruction string   `yaml:"instruction" json:"instruction"`
	Language    Language `yaml:"language" json:"language"`
	StarterCode string   `yaml:"starter_code" json:"starterCode"`
	Solution    string   `yaml:"solution" json:"-"`
	Hint        string   `yaml:"hint" json:"hint"`
}

type Lesson struct {
	ID       int      `yaml:"id" json:"id"`
	ModuleID int      `yaml:"-" json:"moduleId"`
	Title    string   `yaml:"title" json:"title"`
	Duration string   `yaml:"duration" json:"duration"`
	Content  string   `yaml:"content" json:"-"`
	Exercise Exercise `yaml:"exercise" json:"exercise"`
}

type Module struct {
	ID          int       `yaml:"id" json:"id"`
	Title       string    `yaml:"title" json:"title"`
	Description string    `yaml:"description" json:"description"`
	Lessons     []*Lesson `yaml:"lessons" json:"-"`
}

type Catalog struct {
	modules []*Module
	byID    map[int]*Module
}

//go:embed curriculum.yaml
var curriculumYAML []byte

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default 返回内嵌课程目录，只解析一次
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load(curriculumYAML)
	})
	return defaultCatalog, defaultErr
}

// Load 解析并校验课程目录
func Load(data []byte) (*Catalog, error) {
	var doc struct {
		Modules []*Module `yaml:"modules"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse curriculum: %w", err)
	}

	c := &Catalog{byID: make(map[int]*Module, len(doc.Modules))}
	for _, m := range doc.Modules {
		if m.ID <= 0 {
			return nil, fmt.Errorf("module %q: id must be positive", m.Title)
		}
		if _, dup := c.byID[m.ID]; dup {
			return nil, fmt.Errorf("duplicate module id %d", m.ID)
		}

		seen := make(map[int]bool, len(m.Lessons))
		for _, l := range m.Lessons {
			if l.ID <= 0 {
				return nil, fmt.Errorf("module %d lesson %q: id must be positive", m.ID, l.Title)
			}
			if seen[l.ID] {
				return nil, fmt.Errorf("module %d: duplicate lesson id %d", m.ID, l.ID)
			}
			if l.Exercise.Instruction == "" {
				return nil, fmt.Errorf("module %d lesson %d: missing exercise", m.ID, l.ID)
			}
			seen[l.ID] = true
			l.ModuleID = m.ID
		}
		sort.Slice(m.Lessons, func(i, j int) bool { return m.Lessons[i].ID < m.Lessons[j].ID })

		c.byID[m.ID] = m
		c.modules = append(c.modules, m)
	}
	sort.Slice(c.modules, func(i, j int) bool { return c.modules[i].ID < c.modules[j].ID })

	return c, nil
}

func (c *Catalog) Modules() []*Module {
	return c.modules
}

// Module 未知 id 返回 nil
func (c *Catalog) Module(id int) *Module {
	return c.byID[id]
}

// Lesson 未知 id 返回 nil
func (c *Catalog) Lesson(moduleID, lessonID int) *Lesson {
	m := c.Module(moduleID)
	if m == nil {
		return nil
	}
	for _, l := range m.Lessons {
		if l.ID == lessonID {
			return l
		}
	}
	return nil
}

// NextLesson 返回同一模块中的下一课，没有则返回 nil（前端回到仪表盘）
func (c *Catalog) NextLesson(moduleID, lessonID int) *Lesson {
	return c.Lesson(moduleID, lessonID+1)
}

func (c *Catalog) PrevLesson(moduleID, lessonID int) *Lesson {
	if lessonID-1 < 1 {
		return nil
	}
	return c.Lesson(moduleID, lessonID-1)
}

func (c *Catalog) LessonCount() int {
	n := 0
	for _, m := range c.modules {
		n += len(m.Lessons)
	}
	return n
}
