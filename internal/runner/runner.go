// Package runner 按语言标签把提交的代码分派到对应的执行策略。
//
// 每个策略都保证返回一个 Result：要么是可用的输出文本，要么是以 "Error: " 开头的错误文本，
// 调用方无需处理执行阶段的 error。
package runner

import (
	"context"

	"lingocode_backend/internal/curriculum"
)

const (
	MsgJSNoOutput           = "Code executed successfully!"
	MsgPlaygroundJSNoOutput = "Code executed successfully! (no output)"
	MsgNoOutput             = "No output"
	MsgHTMLAccepted         = "HTML code looks good! ✓"
	MsgCSSAccepted          = "CSS code looks good! ✓"
	MsgPreviewUnavailable   = "HTML/CSS preview coming soon! For now, copy your code and test it in a browser."
	MsgReceived             = "Code received!"

	errorPrefix = "Error: "
)

// Result 一次执行的输出；IsError 为 true 时 Output 是错误信息
type Result struct {
	Output  string `json:"output"`
	IsError bool   `json:"isError"`
}

func errorResult(message string) Result {
	return Result{Output: errorPrefix + message, IsError: true}
}

// Runner 执行一段代码
type Runner interface {
	Run(ctx context.Context, code string) Result
}

// Static 不执行代码，直接返回固定文本
type Static string

func (s Static) Run(context.Context, string) Result {
	return Result{Output: string(s)}
}

// Registry 语言标签到执行策略的映射，未知标签走 fallback
type Registry struct {
	runners  map[curriculum.Language]Runner
	fallback Runner
}

func NewRegistry(fallback Runner) *Registry {
	if fallback == nil {
		fallback = Static(MsgReceived)
	}
	return &Registry{
		runners:  make(map[curriculum.Language]Runner),
		fallback: fallback,
	}
}

func (r *Registry) Register(lang curriculum.Language, runner Runner) *Registry {
	r.runners[lang] = runner
	return r
}

func (r *Registry) Supports(lang curriculum.Language) bool {
	_, ok := r.runners[lang]
	return ok
}

// Execute 按语言执行代码；未注册的语言不会执行任何代码
func (r *Registry) Execute(ctx context.Context, lang curriculum.Language, code string) Result {
	runner, ok := r.runners[lang]
	if !ok {
		return r.fallback.Run(ctx, code)
	}
	return runner.Run(ctx, code)
}

// NewExerciseRegistry 课程练习使用的执行策略
func NewExerciseRegistry(js, python Runner) *Registry {
	return NewRegistry(Static(MsgReceived)).
		Register(curriculum.JavaScript, js).
		Register(curriculum.Python, python).
		Register(curriculum.HTML, Static(MsgHTMLAccepted)).
		Register(curriculum.CSS, Static(MsgCSSAccepted))
}

// NewPlaygroundRegistry 练习场使用的执行策略，HTML/CSS 暂不支持预览
func NewPlaygroundRegistry(js, python Runner) *Registry {
	return NewRegistry(Static(MsgReceived)).
		Register(curriculum.JavaScript, js).
		Register(curriculum.Python, python).
		Register(curriculum.HTML, Static(MsgPreviewUnavailable)).
		Register(curriculum.CSS, Static(MsgPreviewUnavailable))
}
