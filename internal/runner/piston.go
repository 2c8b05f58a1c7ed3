package runner

import (
	"context"
	"errors"
	"fmt"

	"lingocode_backend/internal/config"
	"lingocode_backend/pkg/tracing"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
)

type pistonFile struct {
	Content string `json:"content"`
}

type pistonRequest struct {
	Language string       `json:"language"`
	Version  string       `json:"version"`
	Files    []pistonFile `json:"files"`
}

type pistonResponse struct {
	Run *struct {
		Output string `json:"output"`
		Stderr string `json:"stderr"`
	} `json:"run"`
	Message string `json:"message"`
}

// PistonRunner 把代码提交给远程 Piston 执行服务。
// 每次执行只发一次请求，不重试；超时为 0 时使用传输层默认行为。
type PistonRunner struct {
	client   *resty.Client
	url      string
	language string
	version  string
}

func NewPistonRunner(cfg config.PistonConfig) *PistonRunner {
	client := resty.New().
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &PistonRunner{
		client:   client,
		url:      cfg.URL,
		language: cfg.Language,
		version:  cfg.Version,
	}
}

func (r *PistonRunner) Run(ctx context.Context, code string) Result {
	ctx, span := tracing.StartSpan(ctx, "runner.piston",
		attribute.String("runner.language", r.language),
		attribute.String("runner.version", r.version),
	)
	defer span.End()

	result := r.run(ctx, code)
	if result.IsError {
		tracing.RecordError(span, errors.New(result.Output))
	}
	return result
}

func (r *PistonRunner) run(ctx context.Context, code string) Result {
	var body pistonResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(pistonRequest{
			Language: r.language,
			Version:  r.version,
			Files:    []pistonFile{{Content: code}},
		}).
		SetResult(&body).
		SetError(&body).
		Post(r.url)
	if err != nil {
		return errorResult(err.Error())
	}

	if resp.IsError() {
		msg := fmt.Sprintf("code execution service returned status %d", resp.StatusCode())
		if body.Message != "" {
			msg += ": " + body.Message
		}
		return errorResult(msg)
	}

	if body.Run != nil {
		if body.Run.Output != "" {
			return Result{Output: body.Run.Output}
		}
		if body.Run.Stderr != "" {
			return Result{Output: body.Run.Stderr}
		}
	}
	return Result{Output: MsgNoOutput}
}
