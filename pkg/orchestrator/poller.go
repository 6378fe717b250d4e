package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/mo"

	"github.com/jinford/u8g2gen/pkg/models"
)

const (
	// DefaultPollInterval はステータス取得の固定間隔
	DefaultPollInterval = 1500 * time.Millisecond

	// DefaultMaxMalformedPolls は連続した不正応答をいくつまで許容するか
	DefaultMaxMalformedPolls = 5
)

var (
	// ErrMalformedStreak は不正な応答が続いたため監視を中止したことを表す
	ErrMalformedStreak = errors.New("too many consecutive malformed status responses")

	// ErrWatchTimeout は監視時間の上限に達したことを表す
	ErrWatchTimeout = errors.New("watch timeout exceeded")

	// ErrMissingResult は complete なのに成果物が返らなかったことを表す
	ErrMissingResult = errors.New("completed task has no result")
)

// StatusFetcher はタスク状態を1回取得する
// 通信失敗はエラー、ok=false などの不正な応答は mo.None で返す
type StatusFetcher interface {
	Status(ctx context.Context, taskID string) (mo.Option[*models.Task], error)
}

// TickHandler はポーリング結果をUI状態に反映する
// Lock/Unlock はオーナーロックで、以下のメソッドはすべてロック保持中に呼ばれる
type TickHandler interface {
	sync.Locker
	ApplyTask(s *Session, task *models.Task)
	// Completed が返した関数はロック解放後、セッションgoroutineで実行される
	Completed(s *Session, task *models.Task) (after func())
	Failed(s *Session, message string)
	PollError(s *Session, err error)
	GaveUp(s *Session, outcome Outcome)
	// Released はセッションがどの理由で終了しても一度だけ呼ばれる
	Released(s *Session, outcome Outcome)
}

type options struct {
	interval     time.Duration
	maxMalformed int
	watchTimeout time.Duration
	autoDownload bool
	logger       *slog.Logger
}

func defaultOptions() options {
	return options{
		interval:     DefaultPollInterval,
		maxMalformed: DefaultMaxMalformedPolls,
		autoDownload: true,
		logger:       slog.Default(),
	}
}

// Option は Poller / Controller のオプション設定
type Option func(*options)

// WithPollInterval はポーリング間隔を上書きする
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithMaxMalformedPolls は連続不正応答の許容回数を上書きする（0 は無制限）
func WithMaxMalformedPolls(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxMalformed = n
		}
	}
}

// WithWatchTimeout は監視時間の上限を設定する（0 は無制限）
func WithWatchTimeout(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.watchTimeout = d
		}
	}
}

// WithAutoDownload は完了時の自動ダウンロードの有無を設定する
func WithAutoDownload(enabled bool) Option {
	return func(o *options) {
		o.autoDownload = enabled
	}
}

// WithLogger はロガーを差し替える
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Poller は固定間隔でタスク状態を取得するポーリングループ
type Poller struct {
	fetcher      StatusFetcher
	interval     time.Duration
	maxMalformed int
	watchTimeout time.Duration
	logger       *slog.Logger
}

// NewPoller は新しい Poller を作成する
func NewPoller(fetcher StatusFetcher, opts ...Option) *Poller {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newPoller(fetcher, o)
}

func newPoller(fetcher StatusFetcher, o options) *Poller {
	return &Poller{
		fetcher:      fetcher,
		interval:     o.interval,
		maxMalformed: o.maxMalformed,
		watchTimeout: o.watchTimeout,
		logger:       o.logger,
	}
}

// Start はタスクのポーリングを開始し、キャンセル可能なセッションを返す
// 最初の取得は1間隔後に行われる
func (p *Poller) Start(ctx context.Context, taskID string, h TickHandler) *Session {
	s := newSession(ctx, taskID, h)

	p.logger.Info("ポーリングを開始",
		"taskID", taskID,
		"sessionID", s.id.String(),
		"interval", p.interval.String(),
	)

	go p.run(s)
	return s
}

func (p *Poller) run(s *Session) {
	defer close(s.stopped)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if p.watchTimeout > 0 {
		timer := time.NewTimer(p.watchTimeout)
		defer timer.Stop()
		deadline = timer.C
	}

	malformed := 0
	for {
		select {
		case <-s.ctx.Done():
			// 親コンテキストのキャンセルでもセッションを確実に終了させる
			p.cancelled(s)
			return
		case <-deadline:
			p.giveUp(s, Outcome{Kind: OutcomeTimedOut, Err: ErrWatchTimeout})
			return
		case <-ticker.C:
			if p.tick(s, &malformed) {
				return
			}
		}
	}
}

// tick は1回分のステータス取得と反映を行い、ループを止めるべきなら true を返す
func (p *Poller) tick(s *Session, malformed *int) bool {
	s.polls.Add(1)
	result, err := p.fetcher.Status(s.ctx, s.taskID)

	stop, after := p.apply(s, result, err, malformed)
	if after != nil {
		after()
	}
	return stop
}

// apply はオーナーロックを保持してティックの結果を反映する
func (p *Poller) apply(s *Session, result mo.Option[*models.Task], err error, malformed *int) (bool, func()) {
	h := s.handler
	h.Lock()
	defer h.Unlock()

	// 取得中にキャンセルされたティックは何も適用しない
	if !s.Active() {
		return true, nil
	}

	if err != nil {
		if s.ctx.Err() != nil {
			s.finishLocked(Outcome{Kind: OutcomeCanceled, Err: s.ctx.Err()})
			return true, nil
		}
		p.logger.Warn("ステータス取得に失敗", "taskID", s.taskID, "sessionID", s.id.String(), "error", err)
		s.finishLocked(Outcome{Kind: OutcomePollError, Message: err.Error(), Err: err})
		h.PollError(s, err)
		return true, nil
	}

	task, ok := result.Get()
	if !ok || task == nil {
		*malformed++
		p.logger.Debug("不正なステータス応答を無視", "taskID", s.taskID, "streak", *malformed)
		if p.maxMalformed > 0 && *malformed >= p.maxMalformed {
			o := Outcome{Kind: OutcomeMalformed, Err: ErrMalformedStreak}
			s.finishLocked(o)
			h.GaveUp(s, o)
			return true, nil
		}
		return false, nil
	}
	*malformed = 0

	h.ApplyTask(s, task)

	switch task.Status {
	case models.TaskStatusComplete:
		if task.Result == nil {
			p.logger.Warn("完了したタスクに成果物がありません", "taskID", s.taskID, "sessionID", s.id.String())
			s.finishLocked(Outcome{Kind: OutcomePollError, Task: task, Message: ErrMissingResult.Error(), Err: ErrMissingResult})
			h.PollError(s, ErrMissingResult)
			return true, nil
		}
		p.logger.Info("タスクが完了", "taskID", s.taskID, "sessionID", s.id.String(), "polls", s.Polls())
		s.finishLocked(Outcome{Kind: OutcomeCompleted, Task: task})
		return true, h.Completed(s, task)
	case models.TaskStatusFailed:
		p.logger.Info("タスクが失敗", "taskID", s.taskID, "sessionID", s.id.String(), "error", task.Error)
		s.finishLocked(Outcome{Kind: OutcomeFailed, Task: task, Message: task.Error})
		h.Failed(s, task.Error)
		return true, nil
	default:
		return false, nil
	}
}

func (p *Poller) giveUp(s *Session, o Outcome) {
	h := s.handler
	h.Lock()
	defer h.Unlock()

	if s.finishLocked(o) {
		p.logger.Warn("タスクの監視を打ち切り", "taskID", s.taskID, "sessionID", s.id.String(), "reason", o.Kind.String())
		h.GaveUp(s, o)
	}
}

func (p *Poller) cancelled(s *Session) {
	h := s.handler
	h.Lock()
	defer h.Unlock()

	if s.finishLocked(Outcome{Kind: OutcomeCanceled, Err: s.ctx.Err()}) {
		p.logger.Info("ポーリングをキャンセル", "taskID", s.taskID, "sessionID", s.id.String())
	}
}
