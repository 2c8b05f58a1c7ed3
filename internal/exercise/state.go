// Package exercise 维护每个 (用户, 模块, 课) 练习实例的运行状态。
//
// 状态流转为 idle → running → succeeded / failed。running 期间不能再次进入，
// succeeded 一旦到达就保持，failed 可以重试。completed 与 persisted 两个标记互相独立：
// 前者在第一次判对时置位，后者在完成记录成功写入数据库后置位。
//
// Finish 只记录本次判定结果，实例在 Release 之前一直处于 running，
// 完成记录的写入发生在两者之间。
package exercise

import (
	"context"
	"fmt"
)

type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

type Key struct {
	UserID   uint
	ModuleID int
	LessonID int
}

func (k Key) String() string {
	return fmt.Sprintf("%d:%d:%d", k.UserID, k.ModuleID, k.LessonID)
}

// Snapshot 某一时刻的实例状态
type Snapshot struct {
	State     State `json:"state"`
	Completed bool  `json:"completed"`
	Persisted bool  `json:"persisted"`
}

// Outcome Finish 的结果，FirstCompletion 仅在本次运行第一次把 completed 置位时为 true
type Outcome struct {
	Snapshot
	FirstCompletion bool
}

// Store 练习实例状态存储。Begin 在实例运行中时返回 util.ErrRunInProgress。
// Outcome.State 是本次运行结束后的状态，Release 之后才对 Get 可见。
type Store interface {
	Begin(ctx context.Context, key Key) error
	Finish(ctx context.Context, key Key, correct bool) (Outcome, error)
	Release(ctx context.Context, key Key) error
	MarkPersisted(ctx context.Context, key Key) error
	Get(ctx context.Context, key Key) (Snapshot, error)
}

// settle 一次运行结束后的状态，succeeded 保持不变
func settle(completed bool) State {
	if completed {
		return StateSucceeded
	}
	return StateFailed
}
