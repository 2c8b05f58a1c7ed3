package grader

import (
	"testing"

	"lingocode_backend/internal/curriculum"
	"lingocode_backend/internal/runner"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	reg := NewDefaultRegistry()

	tests := []struct {
		name   string
		lang   curriculum.Language
		code   string
		result runner.Result
		want   Verdict
	}{
		{
			name:   "javascript prints",
			lang:   curriculum.JavaScript,
			code:   `console.log("hi")`,
			result: runner.Result{Output: "hi"},
			want:   Verdict{Graded: true, Correct: true},
		},
		{
			name:   "javascript thrown error",
			lang:   curriculum.JavaScript,
			code:   `console.log("hi"); throw new Error("x")`,
			result: runner.Result{Output: "Error: x", IsError: true},
			want:   Verdict{Graded: true},
		},
		{
			name:   "javascript default message is not output",
			lang:   curriculum.JavaScript,
			code:   `let x = 1`,
			result: runner.Result{Output: runner.MsgJSNoOutput},
			want:   Verdict{Graded: true},
		},
		{
			name:   "javascript whitespace output",
			lang:   curriculum.JavaScript,
			code:   `console.log("  ")`,
			result: runner.Result{Output: "  "},
			want:   Verdict{Graded: true},
		},
		{
			name:   "python prints",
			lang:   curriculum.Python,
			code:   `print("Hello")`,
			result: runner.Result{Output: "Hello\n"},
			want:   Verdict{Graded: true, Correct: true},
		},
		{
			name:   "python case insensitive keyword",
			lang:   curriculum.Python,
			code:   `PRINT("x")`,
			result: runner.Result{Output: "x"},
			want:   Verdict{Graded: true, Correct: true},
		},
		{
			name:   "output mentioning error is incorrect",
			lang:   curriculum.Python,
			code:   `print("no ERRORS here")`,
			result: runner.Result{Output: "no ERRORS here"},
			want:   Verdict{Graded: true},
		},
		{
			name:   "html heading",
			lang:   curriculum.HTML,
			code:   `<H1>Title</H1>`,
			result: runner.Result{Output: runner.MsgHTMLAccepted},
			want:   Verdict{Graded: true, Correct: true},
		},
		{
			name:   "html without heading or paragraph",
			lang:   curriculum.HTML,
			code:   `<div>x</div>`,
			result: runner.Result{Output: runner.MsgHTMLAccepted},
			want:   Verdict{Graded: true},
		},
		{
			name:   "css color",
			lang:   curriculum.CSS,
			code:   `h1 { color: red; }`,
			result: runner.Result{Output: runner.MsgCSSAccepted},
			want:   Verdict{Graded: true, Correct: true},
		},
		{
			name:   "css without background or color",
			lang:   curriculum.CSS,
			code:   `h1 { margin: 0; }`,
			result: runner.Result{Output: runner.MsgCSSAccepted},
			want:   Verdict{Graded: true},
		},
		{
			name:   "unknown language stays unset",
			lang:   curriculum.Language("rust"),
			code:   `println!("hi")`,
			result: runner.Result{Output: runner.MsgReceived},
			want:   Verdict{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reg.Classify(tt.lang, tt.code, tt.result))
		})
	}
}

func TestRegister_CustomClassifier(t *testing.T) {
	reg := NewRegistry().Register("go", ClassifierFunc(func(code string, _ runner.Result) bool {
		return code == "ok"
	}))

	assert.Equal(t, Verdict{Graded: true, Correct: true}, reg.Classify("go", "ok", runner.Result{}))
	assert.Equal(t, Verdict{}, reg.Classify("javascript", "ok", runner.Result{Output: "x"}))
}

func TestContains_LowercaseOnly(t *testing.T) {
	assert.True(t, contains(`PRINT("x")`, "print"))
	assert.True(t, contains("Traceback: NameError", "error"))
	assert.True(t, contains("STRASSE", "strasse"))
	assert.False(t, contains("straße", "strasse"))
	assert.False(t, contains("strasse", "straße"))
}
