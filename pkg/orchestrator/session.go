package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jinford/u8g2gen/pkg/models"
)

// OutcomeKind はセッションの終わり方
type OutcomeKind int

const (
	OutcomeUnknown OutcomeKind = iota
	OutcomeCompleted
	OutcomeFailed
	OutcomePollError
	OutcomeMalformed
	OutcomeTimedOut
	OutcomeCanceled
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCompleted:
		return "completed"
	case OutcomeFailed:
		return "failed"
	case OutcomePollError:
		return "poll_error"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeTimedOut:
		return "timed_out"
	case OutcomeCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Outcome はセッション終了時の結果
type Outcome struct {
	Kind OutcomeKind
	// Task は最後に適用したタスク（Completed / Failed のみ）
	Task *models.Task
	// Message はユーザー向けの失敗理由
	Message string
	Err     error
}

// Success はジョブが完了したかどうかを返す
func (o Outcome) Success() bool {
	return o.Kind == OutcomeCompleted
}

// Session は1つのタスクIDに紐づくポーリングセッション
// タイマーはセッション専用のgoroutineが所有し、終了は一度だけ行われる
type Session struct {
	id        uuid.UUID
	taskID    string
	startedAt time.Time

	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc

	guard   sync.Locker
	handler TickHandler

	once    sync.Once
	done    chan struct{}
	stopped chan struct{}
	outcome Outcome

	polls atomic.Int64
}

func newSession(parent context.Context, taskID string, handler TickHandler) *Session {
	ctx, cancel := context.WithCancel(parent)
	return &Session{
		id:        uuid.New(),
		taskID:    taskID,
		startedAt: time.Now(),
		parent:    parent,
		ctx:       ctx,
		cancel:    cancel,
		guard:     handler,
		handler:   handler,
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
}

// ID はセッションの識別子
func (s *Session) ID() uuid.UUID {
	return s.id
}

// TaskID はセッションが監視しているタスクID
func (s *Session) TaskID() string {
	return s.taskID
}

// StartedAt はセッションの開始時刻
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// Polls はこれまでに発行したステータス取得の回数
func (s *Session) Polls() int64 {
	return s.polls.Load()
}

// Active はセッションがまだ終了していないかどうかを返す
func (s *Session) Active() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Done はセッション終了時に閉じられるチャネルを返す
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Stopped はポーリングgoroutineが終了したときに閉じられるチャネルを返す
func (s *Session) Stopped() <-chan struct{} {
	return s.stopped
}

// Outcome は終了結果を返す。終了前は OutcomeUnknown
func (s *Session) Outcome() Outcome {
	select {
	case <-s.done:
		return s.outcome
	default:
		return Outcome{}
	}
}

// Wait はセッションが終了し、結果の表示が済むまで待機する
func (s *Session) Wait(ctx context.Context) (Outcome, error) {
	// stopped は finish と表示の後にしか閉じられない
	select {
	case <-s.stopped:
		return s.outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Cancel はセッションを終了させる。2回目以降の呼び出しは何もしない
// 取得中のティックの結果はキャンセル後に適用されない
func (s *Session) Cancel() {
	s.guard.Lock()
	defer s.guard.Unlock()
	s.finishLocked(Outcome{Kind: OutcomeCanceled})
}

// finishLocked はオーナーロック保持中に呼ぶ。最初の1回だけ true を返す
func (s *Session) finishLocked(o Outcome) bool {
	first := false
	s.once.Do(func() {
		s.outcome = o
		s.cancel()
		close(s.done)
		s.handler.Released(s, o)
		first = true
	})
	return first
}
