package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"lingocode_backend/internal/exercise"
	"lingocode_backend/internal/grader"
	"lingocode_backend/internal/model"
	"lingocode_backend/internal/repository"
	"lingocode_backend/internal/runner"
	"lingocode_backend/internal/util"
	"lingocode_backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type countingProgress struct {
	ProgressStore
	mu      sync.Mutex
	upserts int
	fail    error
	// entered 非空时，写入开始后发出通知并等待 gate 关闭
	entered chan struct{}
	gate    chan struct{}
}

func (c *countingProgress) UpsertCompletion(ctx context.Context, p *model.LessonProgress) error {
	c.mu.Lock()
	c.upserts++
	fail := c.fail
	entered, gate := c.entered, c.gate
	c.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
		<-gate
	}
	if fail != nil {
		return fail
	}
	return c.ProgressStore.UpsertCompletion(ctx, p)
}

func (c *countingProgress) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.upserts
}

type blockingRunner struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingRunner) Run(context.Context, string) runner.Result {
	close(b.started)
	<-b.release
	return runner.Result{Output: "done"}
}

type stubRunner struct{ result runner.Result }

func (s stubRunner) Run(context.Context, string) runner.Result { return s.result }

func newExerciseService(t *testing.T, python runner.Runner) (*ExerciseService, *countingProgress, *repository.ProgressRepository) {
	t.Helper()
	repo := repository.NewProgressRepository(newTestDB(t))
	progress := &countingProgress{ProgressStore: repo}
	if python == nil {
		python = stubRunner{result: runner.Result{Output: "hello\n"}}
	}
	svc := NewExerciseService(
		testCatalog(t),
		runner.NewExerciseRegistry(runner.NewJavaScriptRunner(runner.MsgJSNoOutput, 2*time.Second), python),
		grader.NewDefaultRegistry(),
		exercise.NewMemoryStore(),
		progress,
	)
	return svc, progress, repo
}

func TestExerciseService_CorrectRunTwiceCompletesOnce(t *testing.T) {
	svc, progress, repo := newExerciseService(t, nil)
	ctx := context.Background()

	res, err := svc.Run(ctx, 1, 1, 1, `console.log("hi")`)
	require.NoError(t, err)
	assert.Equal(t, "hi", res.Output)
	assert.True(t, res.Graded)
	assert.True(t, res.Correct)
	assert.True(t, res.FirstCompletion)
	assert.True(t, res.Completed)
	assert.True(t, res.Persisted)
	assert.Equal(t, exercise.StateSucceeded, res.State)
	assert.NotEmpty(t, res.RunID)

	res, err = svc.Run(ctx, 1, 1, 1, `console.log("hi")`)
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.False(t, res.FirstCompletion)

	assert.Equal(t, 1, progress.count())
	done, err := repo.IsCompleted(ctx, 1, 1, 1)
	require.NoError(t, err)
	assert.True(t, done)
}

func TestExerciseService_ThrowIsIncorrect(t *testing.T) {
	svc, progress, _ := newExerciseService(t, nil)

	res, err := svc.Run(context.Background(), 1, 1, 1, "console.log(\"hi\")\nthrow new Error(\"oops\")")
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "Error: oops", res.Output)
	assert.True(t, res.Graded)
	assert.False(t, res.Correct)
	assert.Equal(t, exercise.StateFailed, res.State)
	assert.Zero(t, progress.count())
}

func TestExerciseService_UnknownLanguageNeverCompletes(t *testing.T) {
	svc, progress, _ := newExerciseService(t, nil)

	res, err := svc.Run(context.Background(), 1, 1, 3, `fn main() { println!("hi"); }`)
	require.NoError(t, err)
	assert.Equal(t, runner.MsgReceived, res.Output)
	assert.False(t, res.Graded)
	assert.False(t, res.Correct)
	assert.False(t, res.Completed)
	assert.Zero(t, progress.count())
}

func TestExerciseService_PythonUsesRemoteRunner(t *testing.T) {
	svc, _, _ := newExerciseService(t, stubRunner{result: runner.Result{Output: "Hello\n"}})

	res, err := svc.Run(context.Background(), 1, 1, 2, `print("Hello")`)
	require.NoError(t, err)
	assert.Equal(t, "Hello\n", res.Output)
	assert.True(t, res.Correct)
}

func TestExerciseService_HTMLHeading(t *testing.T) {
	svc, _, _ := newExerciseService(t, nil)

	res, err := svc.Run(context.Background(), 1, 2, 1, `<h1>Hi</h1>`)
	require.NoError(t, err)
	assert.Equal(t, runner.MsgHTMLAccepted, res.Output)
	assert.True(t, res.Correct)
}

func TestExerciseService_UnknownLesson(t *testing.T) {
	svc, _, _ := newExerciseService(t, nil)

	_, err := svc.Run(context.Background(), 1, 9, 9, `console.log(1)`)
	assert.ErrorIs(t, err, util.ErrLessonNotFound)

	_, err = svc.State(context.Background(), 1, 9, 9)
	assert.ErrorIs(t, err, util.ErrLessonNotFound)
}

func TestExerciseService_PersistFailureIsSwallowed(t *testing.T) {
	svc, progress, repo := newExerciseService(t, nil)
	progress.fail = errors.New("db down")
	ctx := context.Background()

	res, err := svc.Run(ctx, 1, 1, 1, `console.log("hi")`)
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.True(t, res.FirstCompletion)
	assert.True(t, res.Completed)
	assert.False(t, res.Persisted)

	// 之后的判对不再写入
	progress.fail = nil
	res, err = svc.Run(ctx, 1, 1, 1, `console.log("hi")`)
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.False(t, res.FirstCompletion)
	assert.False(t, res.Persisted)
	assert.Equal(t, 1, progress.count())

	done, err := repo.IsCompleted(ctx, 1, 1, 1)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestExerciseService_RunWhilePersistingIsRejected(t *testing.T) {
	svc, progress, _ := newExerciseService(t, nil)
	progress.entered = make(chan struct{}, 1)
	progress.gate = make(chan struct{})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := svc.Run(ctx, 1, 1, 1, `console.log("hi")`)
		done <- err
	}()
	<-progress.entered

	_, err := svc.Run(ctx, 1, 1, 1, `console.log("hi")`)
	assert.ErrorIs(t, err, util.ErrRunInProgress)

	state, err := svc.State(ctx, 1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, exercise.StateRunning, state.State)

	close(progress.gate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, progress.count())

	state, err = svc.State(ctx, 1, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, exercise.StateSucceeded, state.State)
	assert.True(t, state.Persisted)
	assert.True(t, state.Recorded)
}

type failingReleaseStore struct {
	exercise.Store
}

func (failingReleaseStore) Release(context.Context, exercise.Key) error {
	return errors.New("redis down")
}

func TestExerciseService_ReleaseFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })

	repo := repository.NewProgressRepository(newTestDB(t))
	svc := NewExerciseService(
		testCatalog(t),
		runner.NewExerciseRegistry(runner.NewJavaScriptRunner(runner.MsgJSNoOutput, 2*time.Second), stubRunner{}),
		grader.NewDefaultRegistry(),
		failingReleaseStore{Store: exercise.NewMemoryStore()},
		repo,
	)

	res, err := svc.Run(context.Background(), 1, 1, 1, `console.log("hi")`)
	require.NoError(t, err)
	assert.True(t, res.Correct)

	entries := logs.FilterMessage("Failed to release exercise run").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "1:1:1", entries[0].ContextMap()["key"])
}

func TestExerciseService_RejectsConcurrentRun(t *testing.T) {
	blocking := &blockingRunner{started: make(chan struct{}), release: make(chan struct{})}
	svc, _, _ := newExerciseService(t, blocking)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := svc.Run(ctx, 1, 1, 2, `print("x")`)
		done <- err
	}()
	<-blocking.started

	_, err := svc.Run(ctx, 1, 1, 2, `print("x")`)
	assert.ErrorIs(t, err, util.ErrRunInProgress)

	state, err := svc.State(ctx, 1, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, exercise.StateRunning, state.State)

	close(blocking.release)
	require.NoError(t, <-done)

	state, err = svc.State(ctx, 1, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, exercise.StateSucceeded, state.State)
	assert.True(t, state.Recorded)
}
