package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lingocode_backend/internal/config"
	"lingocode_backend/internal/curriculum"
	"lingocode_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTutorAPI struct {
	status  int
	reply   string
	request chatCompletionRequest
	auth    string
	path    string
}

func (f *fakeTutorAPI) server(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.auth = r.Header.Get("Authorization")
		f.path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&f.request))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		if f.status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": f.reply}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTutor(t *testing.T, api *fakeTutorAPI) *TutorService {
	srv := api.server(t)
	return NewTutorService(config.AIConfig{
		BaseURL:     srv.URL + "/openai/v1/",
		APIKey:      "test-key",
		Model:       "llama-3.3-70b-versatile",
		Temperature: 0.7,
		MaxTokens:   500,
	}, testCatalog(t), noLevels{})
}

func TestBuildSystemPrompt_Defaults(t *testing.T) {
	prompt := BuildSystemPrompt(TutorContext{})
	assert.Contains(t, prompt, "User's level: B1 English, beginner programming")
	assert.Contains(t, prompt, "Current lesson: general")
	assert.Contains(t, prompt, "Keep responses under 150 words")
}

func TestLessonHelpPrompt(t *testing.T) {
	assert.Equal(t,
		"I'm learning Variables. My question: what is a string?\n\nThe exercise is: Create a variable",
		LessonHelpPrompt("Variables", "what is a string?", "Create a variable"))
}

func TestTutorService_Ask(t *testing.T) {
	api := &fakeTutorAPI{status: http.StatusOK, reply: "Use a for loop!"}
	tutor := newTutor(t, api)

	reply := tutor.Ask(context.Background(), "how I make a loop?", TutorContext{CurrentLesson: "Loops"})
	assert.Equal(t, TutorReply{Success: true, Message: "Use a for loop!"}, reply)

	assert.Equal(t, "Bearer test-key", api.auth)
	assert.Equal(t, "/openai/v1/chat/completions", api.path)
	assert.Equal(t, "llama-3.3-70b-versatile", api.request.Model)
	assert.InDelta(t, 0.7, api.request.Temperature, 1e-9)
	assert.Equal(t, 500, api.request.MaxTokens)
	require.Len(t, api.request.Messages, 2)
	assert.Equal(t, "system", api.request.Messages[0].Role)
	assert.Contains(t, api.request.Messages[0].Content, "Current lesson: Loops")
	assert.Equal(t, ChatMessage{Role: "user", Content: "how I make a loop?"}, api.request.Messages[1])
}

func TestTutorService_FallbackOnError(t *testing.T) {
	tutor := newTutor(t, &fakeTutorAPI{status: http.StatusTooManyRequests})

	reply := tutor.Ask(context.Background(), "hi", TutorContext{})
	assert.Equal(t, TutorReply{Success: false, Message: TutorFallbackMessage}, reply)
}

func TestTutorService_FallbackWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	tutor := NewTutorService(config.AIConfig{BaseURL: srv.URL}, testCatalog(t), nil)

	reply := tutor.Ask(context.Background(), "hi", TutorContext{})
	assert.False(t, reply.Success)
	assert.Equal(t, TutorFallbackMessage, reply.Message)
}

func TestTutorService_LessonHelp(t *testing.T) {
	api := &fakeTutorAPI{status: http.StatusOK, reply: "ok"}
	tutor := newTutor(t, api)

	reply, err := tutor.LessonHelp(context.Background(), 1, 1, 1, "  why?  ")
	require.NoError(t, err)
	assert.True(t, reply.Success)
	assert.Equal(t, "I'm learning Printing. My question: why?\n\nThe exercise is: Print hi", api.request.Messages[1].Content)
	assert.Contains(t, api.request.Messages[0].Content, "User's level: A2 English, intermediate programming")
	assert.Contains(t, api.request.Messages[0].Content, "Current lesson: Printing")

	_, err = tutor.LessonHelp(context.Background(), 1, 1, 1, "  ")
	assert.ErrorIs(t, err, util.ErrEmptyQuestion)

	_, err = tutor.LessonHelp(context.Background(), 1, 5, 1, "why?")
	assert.ErrorIs(t, err, util.ErrLessonNotFound)
}

func TestTutorService_Chat(t *testing.T) {
	api := &fakeTutorAPI{status: http.StatusOK, reply: "ok"}
	tutor := newTutor(t, api)

	_, err := tutor.Chat(context.Background(), 1, curriculum.Python, "how I make a loop?")
	require.NoError(t, err)
	assert.Contains(t, api.request.Messages[0].Content, "Current lesson: python programming")

	_, err = tutor.Chat(context.Background(), 1, "", "hello")
	require.NoError(t, err)
	assert.Contains(t, api.request.Messages[0].Content, "Current lesson: general")
}

func TestTutorService_UpdateConfig(t *testing.T) {
	api := &fakeTutorAPI{status: http.StatusOK, reply: "ok"}
	srv := api.server(t)
	tutor := NewTutorService(config.AIConfig{BaseURL: "http://127.0.0.1:1", Model: "old"}, testCatalog(t), nil)

	tutor.UpdateConfig(config.AIConfig{BaseURL: srv.URL, APIKey: "new-key", Model: "new-model"})
	reply := tutor.Ask(context.Background(), "hi", TutorContext{})

	assert.True(t, reply.Success)
	assert.Equal(t, "new-model", api.request.Model)
	assert.Equal(t, "Bearer new-key", api.auth)
}
