package service

import (
	"context"
	"lingocode_backend/internal/curriculum"
	"lingocode_backend/internal/runner"
	"lingocode_backend/internal/util"
	"lingocode_backend/pkg/monitoring"
	"time"
)

type PlaygroundTemplate struct {
	Language curriculum.Language `json:"language"`
	Code     string              `json:"code"`
}

// PlaygroundService 练习场：运行代码但不判定、不记录进度
type PlaygroundService struct {
	runners *runner.Registry
}

func NewPlaygroundService(runners *runner.Registry) *PlaygroundService {
	return &PlaygroundService{runners: runners}
}

func (s *PlaygroundService) Run(ctx context.Context, language curriculum.Language, code string) (runner.Result, error) {
	if !s.runners.Supports(language) {
		return runner.Result{}, util.ErrUnsupportedLanguage
	}

	start := time.Now()
	result := s.runners.Execute(ctx, language, code)
	monitoring.ExerciseRunDuration.WithLabelValues(string(language)).Observe(time.Since(start).Seconds())
	return result, nil
}

func (s *PlaygroundService) Templates() ([]PlaygroundTemplate, error) {
	tpl, err := curriculum.Templates()
	if err != nil {
		return nil, err
	}

	list := make([]PlaygroundTemplate, 0, len(curriculum.PlaygroundLanguages))
	for _, lang := range curriculum.PlaygroundLanguages {
		list = append(list, PlaygroundTemplate{Language: lang, Code: tpl[lang]})
	}
	return list, nil
}
