// Package grader 根据提交的代码和执行输出判断练习是否完成。
//
// 判定规则是按语言划分的宽松启发式：只看代码中是否出现关键调用、输出是否非空，
// 不比对参考答案。没有注册判定器的语言不给出结论。
package grader

import (
	"strings"

	"lingocode_backend/internal/curriculum"
	"lingocode_backend/internal/runner"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Verdict Graded 为 false 表示结论未定，此时 Correct 恒为 false
type Verdict struct {
	Graded  bool `json:"graded"`
	Correct bool `json:"correct"`
}

var unset = Verdict{}

// Classifier 单一语言的判定规则
type Classifier interface {
	Classify(code string, result runner.Result) bool
}

// ClassifierFunc 让普通函数满足 Classifier
type ClassifierFunc func(code string, result runner.Result) bool

func (f ClassifierFunc) Classify(code string, result runner.Result) bool {
	return f(code, result)
}

type Registry struct {
	classifiers map[curriculum.Language]Classifier
}

func NewRegistry() *Registry {
	return &Registry{classifiers: make(map[curriculum.Language]Classifier)}
}

func (r *Registry) Register(lang curriculum.Language, c Classifier) *Registry {
	r.classifiers[lang] = c
	return r
}

// Classify 输出中出现 "error"（不区分大小写）时一律判错，不再交给语言规则
func (r *Registry) Classify(lang curriculum.Language, code string, result runner.Result) Verdict {
	c, ok := r.classifiers[lang]
	if !ok {
		return unset
	}
	if result.IsError || contains(result.Output, "error") {
		return Verdict{Graded: true}
	}
	return Verdict{Graded: true, Correct: c.Classify(code, result)}
}

// NewDefaultRegistry 课程练习的判定规则
func NewDefaultRegistry() *Registry {
	return NewRegistry().
		Register(curriculum.JavaScript, PrintsOutput("console.log")).
		Register(curriculum.Python, PrintsOutput("print")).
		Register(curriculum.HTML, ContainsAny("<h1>", "<p>")).
		Register(curriculum.CSS, ContainsAny("background", "color"))
}

// PrintsOutput 代码中调用了输出函数，并且去掉空白后的输出非空
func PrintsOutput(primitive string) Classifier {
	return ClassifierFunc(func(code string, result runner.Result) bool {
		return contains(code, primitive) && strings.TrimSpace(result.Output) != ""
	})
}

// ContainsAny 代码中出现任一片段即判对
func ContainsAny(needles ...string) Classifier {
	return ClassifierFunc(func(code string, _ runner.Result) bool {
		for _, n := range needles {
			if contains(code, n) {
				return true
			}
		}
		return false
	})
}

// contains 只做小写转换，不做完整的大小写折叠（ß 不等于 ss）。
// cases.Caser 有内部状态，不能跨 goroutine 共享，每次调用新建
func contains(s, substr string) bool {
	lower := cases.Lower(language.Und)
	return strings.Contains(lower.String(s), lower.String(substr))
}
