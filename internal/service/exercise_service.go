package service

import (
	"context"
	"lingocode_backend/internal/curriculum"
	"lingocode_backend/internal/exercise"
	"lingocode_backend/internal/grader"
	"lingocode_backend/internal/model"
	"lingocode_backend/internal/runner"
	"lingocode_backend/internal/util"
	"lingocode_backend/pkg/logger"
	"lingocode_backend/pkg/monitoring"
	"lingocode_backend/pkg/tracing"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ProgressStore 完成记录的持久化
type ProgressStore interface {
	UpsertCompletion(ctx context.Context, progress *model.LessonProgress) error
	IsCompleted(ctx context.Context, userID uint, moduleID, lessonID int) (bool, error)
}

// RunResult 一次练习运行的完整结果
type RunResult struct {
	RunID    string              `json:"runId"`
	Language curriculum.Language `json:"language"`
	runner.Result
	grader.Verdict
	exercise.Snapshot
	FirstCompletion bool `json:"firstCompletion"`
}

// InstanceState 练习实例当前状态；Recorded 表示数据库中已有完成记录
type InstanceState struct {
	exercise.Snapshot
	Recorded bool `json:"recorded"`
}

type ExerciseService struct {
	catalog  *curriculum.Catalog
	runners  *runner.Registry
	grader   *grader.Registry
	states   exercise.Store
	progress ProgressStore
}

func NewExerciseService(catalog *curriculum.Catalog, runners *runner.Registry, g *grader.Registry, states exercise.Store, progress ProgressStore) *ExerciseService {
	return &ExerciseService{
		catalog:  catalog,
		runners:  runners,
		grader:   g,
		states:   states,
		progress: progress,
	}
}

// Run 执行一次练习：运行代码、判定、更新实例状态，第一次判对时写入完成记录。
// 同一实例运行中再次提交返回 util.ErrRunInProgress。
func (s *ExerciseService) Run(ctx context.Context, userID uint, moduleID, lessonID int, code string) (*RunResult, error) {
	lesson := s.catalog.Lesson(moduleID, lessonID)
	if lesson == nil {
		return nil, util.ErrLessonNotFound
	}
	lang := lesson.Exercise.Language
	key := exercise.Key{UserID: userID, ModuleID: moduleID, LessonID: lessonID}

	ctx, span := tracing.StartSpan(ctx, "exercise.run",
		attribute.String("exercise.key", key.String()),
		attribute.String("exercise.language", string(lang)),
	)
	defer span.End()

	if err := s.states.Begin(ctx, key); err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	// 运行结束后的状态更新不受请求取消影响
	detached := context.WithoutCancel(ctx)
	defer s.release(detached, key)

	start := time.Now()
	result := s.runners.Execute(ctx, lang, code)
	monitoring.ExerciseRunDuration.WithLabelValues(string(lang)).Observe(time.Since(start).Seconds())

	verdict := s.grader.Classify(lang, code, result)
	monitoring.ExerciseRuns.WithLabelValues(string(lang), verdictLabel(verdict)).Inc()

	outcome, err := s.states.Finish(detached, key, verdict.Correct)
	if err != nil {
		// 状态存储不可用时按首次完成处理，完成记录的写入是幂等的
		logger.Log.Error("Failed to settle exercise state",
			zap.String("key", key.String()),
			zap.Error(err))
		outcome = exercise.Outcome{
			Snapshot: exercise.Snapshot{
				State:     settledState(verdict.Correct),
				Completed: verdict.Correct,
			},
			FirstCompletion: verdict.Correct,
		}
	}

	// 实例在 release 之前保持 running，写入期间的并发提交会被拒绝
	if outcome.FirstCompletion {
		outcome.Persisted = s.persistCompletion(detached, key)
		monitoring.LessonCompletions.Inc()
	}

	span.SetAttributes(
		attribute.Bool("exercise.correct", verdict.Correct),
		attribute.Bool("exercise.first_completion", outcome.FirstCompletion),
	)

	return &RunResult{
		RunID:           uuid.New().String(),
		Language:        lang,
		Result:          result,
		Verdict:         verdict,
		Snapshot:        outcome.Snapshot,
		FirstCompletion: outcome.FirstCompletion,
	}, nil
}

func (s *ExerciseService) release(ctx context.Context, key exercise.Key) {
	if err := s.states.Release(ctx, key); err != nil {
		logger.Log.Error("Failed to release exercise run",
			zap.String("key", key.String()),
			zap.Error(err))
	}
}

// persistCompletion 写入失败只记录日志，本地完成状态不回退，之后的运行也不再重试
func (s *ExerciseService) persistCompletion(ctx context.Context, key exercise.Key) bool {
	now := time.Now()
	err := s.progress.UpsertCompletion(ctx, &model.LessonProgress{
		UserID:      key.UserID,
		ModuleID:    key.ModuleID,
		LessonID:    key.LessonID,
		Completed:   true,
		CompletedAt: &now,
	})
	if err != nil {
		logger.Log.Error("Failed to persist lesson completion",
			zap.String("key", key.String()),
			zap.Error(err))
		return false
	}

	if err := s.states.MarkPersisted(ctx, key); err != nil {
		logger.Log.Warn("Failed to mark completion persisted",
			zap.String("key", key.String()),
			zap.Error(err))
	}
	return true
}

func (s *ExerciseService) State(ctx context.Context, userID uint, moduleID, lessonID int) (*InstanceState, error) {
	if s.catalog.Lesson(moduleID, lessonID) == nil {
		return nil, util.ErrLessonNotFound
	}

	key := exercise.Key{UserID: userID, ModuleID: moduleID, LessonID: lessonID}
	snap, err := s.states.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	recorded, err := s.progress.IsCompleted(ctx, userID, moduleID, lessonID)
	if err != nil {
		logger.Log.Warn("Failed to read lesson completion", zap.String("key", key.String()), zap.Error(err))
	}

	return &InstanceState{Snapshot: snap, Recorded: recorded}, nil
}

func settledState(correct bool) exercise.State {
	if correct {
		return exercise.StateSucceeded
	}
	return exercise.StateFailed
}

func verdictLabel(v grader.Verdict) string {
	switch {
	case !v.Graded:
		return "ungraded"
	case v.Correct:
		return "correct"
	default:
		return "incorrect"
	}
}
