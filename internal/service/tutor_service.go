package service

import (
	"context"
	"fmt"
	"lingocode_backend/internal/config"
	"lingocode_backend/internal/curriculum"
	"lingocode_backend/internal/util"
	"lingocode_backend/pkg/logger"
	"lingocode_backend/pkg/monitoring"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	TutorFallbackMessage = "AI tutor is taking a break! Please try again in a moment."

	defaultCurrentLesson = "general"
)

const tutorSystemPrompt = `You are LingoCode's AI tutor. You teach programming and correct English.

RULES:
1. Keep responses under 150 words
2. If the user writes in incorrect English, correct it inline using: 📝 "[corrected sentence]"
3. Add a brief grammar tip with 💡 only if relevant
4. Use simple English (A2-B2 level)
5. Include code examples when helpful
6. Be encouraging and friendly

User's level: %s English, %s programming
Current lesson: %s`

// TutorContext 生成系统提示词所需的学习者信息，空字段使用默认值
type TutorContext struct {
	EnglishLevel     string
	ProgrammingLevel string
	CurrentLesson    string
}

// TutorReply Success 为 false 时 Message 是固定的兜底文案
type TutorReply struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// LevelsProvider 读取学习者的英语/编程水平
type LevelsProvider interface {
	Levels(ctx context.Context, userID uint) (Levels, error)
}

type TutorService struct {
	mu      sync.RWMutex
	cfg     config.AIConfig
	client  *resty.Client
	catalog *curriculum.Catalog
	levels  LevelsProvider
}

func NewTutorService(cfg config.AIConfig, catalog *curriculum.Catalog, levels LevelsProvider) *TutorService {
	s := &TutorService{catalog: catalog, levels: levels}
	s.UpdateConfig(cfg)
	return s
}

// UpdateConfig 配置热更新时替换接口地址、密钥和模型参数
func (s *TutorService) UpdateConfig(cfg config.AIConfig) {
	client := resty.New().
		SetHeader("Content-Type", "application/json").
		SetAuthToken(cfg.APIKey)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	s.mu.Lock()
	s.cfg = cfg
	s.client = client
	s.mu.Unlock()
}

func BuildSystemPrompt(tc TutorContext) string {
	english := tc.EnglishLevel
	if english == "" {
		english = util.DefaultEnglishLevel
	}
	programming := tc.ProgrammingLevel
	if programming == "" {
		programming = util.DefaultProgrammingLevel
	}
	lesson := tc.CurrentLesson
	if lesson == "" {
		lesson = defaultCurrentLesson
	}
	return fmt.Sprintf(tutorSystemPrompt, english, programming, lesson)
}

func LessonHelpPrompt(title, question, instruction string) string {
	return fmt.Sprintf("I'm learning %s. My question: %s\n\nThe exercise is: %s", title, question, instruction)
}

// Ask 调用对话接口；任何失败都转换为兜底回复，不返回 error
func (s *TutorService) Ask(ctx context.Context, message string, tc TutorContext) TutorReply {
	s.mu.RLock()
	cfg, client := s.cfg, s.client
	s.mu.RUnlock()

	var body chatCompletionResponse
	resp, err := client.R().
		SetContext(ctx).
		SetBody(chatCompletionRequest{
			Model: cfg.Model,
			Messages: []ChatMessage{
				{Role: "system", Content: BuildSystemPrompt(tc)},
				{Role: "user", Content: message},
			},
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		}).
		SetResult(&body).
		SetError(&body).
		Post(strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions")

	switch {
	case err != nil:
		logger.Log.Warn("AI tutor request failed", zap.Error(err))
	case resp.IsError():
		detail := ""
		if body.Error != nil {
			detail = body.Error.Message
		}
		logger.Log.Warn("AI tutor returned error status",
			zap.Int("status", resp.StatusCode()),
			zap.String("detail", detail))
	case len(body.Choices) == 0:
		logger.Log.Warn("AI tutor returned no choices")
	default:
		monitoring.TutorRequests.WithLabelValues("success").Inc()
		return TutorReply{Success: true, Message: body.Choices[0].Message.Content}
	}

	monitoring.TutorRequests.WithLabelValues("fallback").Inc()
	return TutorReply{Success: false, Message: TutorFallbackMessage}
}

func (s *TutorService) contextFor(ctx context.Context, userID uint, currentLesson string) TutorContext {
	tc := TutorContext{CurrentLesson: currentLesson}
	if s.levels == nil {
		return tc
	}
	levels, err := s.levels.Levels(ctx, userID)
	if err != nil {
		logger.Log.Warn("Failed to load learner levels, using defaults", zap.Uint("userID", userID), zap.Error(err))
		return tc
	}
	tc.EnglishLevel = levels.EnglishLevel
	tc.ProgrammingLevel = levels.ProgrammingLevel
	return tc
}

// LessonHelp 针对某一课的练习提问
func (s *TutorService) LessonHelp(ctx context.Context, userID uint, moduleID, lessonID int, question string) (TutorReply, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return TutorReply{}, util.ErrEmptyQuestion
	}
	lesson := s.catalog.Lesson(moduleID, lessonID)
	if lesson == nil {
		return TutorReply{}, util.ErrLessonNotFound
	}

	prompt := LessonHelpPrompt(lesson.Title, question, lesson.Exercise.Instruction)
	return s.Ask(ctx, prompt, s.contextFor(ctx, userID, lesson.Title)), nil
}

// Chat 练习场中的自由对话，language 为空时按通用话题处理
func (s *TutorService) Chat(ctx context.Context, userID uint, language curriculum.Language, message string) (TutorReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return TutorReply{}, util.ErrEmptyQuestion
	}

	current := ""
	if language != "" {
		current = fmt.Sprintf("%s programming", language)
	}
	return s.Ask(ctx, message, s.contextFor(ctx, userID, current)), nil
}
