package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"
)

var consoleMethods = []string{"log", "info", "warn", "error", "debug"}

// JavaScriptRunner 在进程内执行 JavaScript。
// 每次执行使用独立的解释器和输出缓冲，没有沙箱，只用于课程中整理过的练习。
type JavaScriptRunner struct {
	emptyOutput string
	maxDuration time.Duration
}

// NewJavaScriptRunner maxDuration 为 0 表示不限制执行时长
func NewJavaScriptRunner(emptyOutput string, maxDuration time.Duration) *JavaScriptRunner {
	return &JavaScriptRunner{emptyOutput: emptyOutput, maxDuration: maxDuration}
}

func (r *JavaScriptRunner) Run(ctx context.Context, code string) Result {
	if r.maxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.maxDuration)
		defer cancel()
	}

	capture := NewCapture()
	defer capture.Release()

	if err := r.execute(ctx, code, capture); err != nil {
		return errorResult(jsErrorMessage(err))
	}

	output := capture.Text()
	if output == "" {
		output = r.emptyOutput
	}
	return Result{Output: output}
}

func (r *JavaScriptRunner) execute(ctx context.Context, code string, capture *Capture) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%v", p)
		}
	}()

	vm := goja.New()
	console := vm.NewObject()
	for _, name := range consoleMethods {
		if err := console.Set(name, consoleWriter(capture)); err != nil {
			return err
		}
	}
	if err := vm.Set("console", console); err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer stop()

	// 包在函数作用域里执行，允许顶层 return，变量不泄漏
	_, err = vm.RunString("(function() {\n" + code + "\n})()")
	return err
}

// consoleWriter 参数以空格拼接为一行，undefined/null 输出为空串
func consoleWriter(capture *Capture) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			if goja.IsUndefined(arg) || goja.IsNull(arg) {
				continue
			}
			parts[i] = arg.String()
		}
		capture.WriteLine(strings.Join(parts, " "))
		return goja.Undefined()
	}
}

func jsErrorMessage(err error) string {
	var exception *goja.Exception
	if errors.As(err, &exception) {
		value := exception.Value()
		if obj, ok := value.(*goja.Object); ok {
			if msg := obj.Get("message"); msg != nil && !goja.IsUndefined(msg) {
				return msg.String()
			}
		}
		if value != nil {
			return value.String()
		}
	}

	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return fmt.Sprintf("execution interrupted: %v", interrupted.Value())
	}

	return err.Error()
}
