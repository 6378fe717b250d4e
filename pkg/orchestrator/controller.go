// Package orchestrator はジョブの送信からポーリング、結果表示までを制御する
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jinford/u8g2gen/pkg/form"
	"github.com/jinford/u8g2gen/pkg/models"
	"github.com/jinford/u8g2gen/pkg/progress"
)

var (
	// ErrSuperseded は送信中に新しい送信・監視が始まり、結果が破棄されたことを表す
	ErrSuperseded = errors.New("submission superseded by a newer request")

	// ErrEmptyTaskID は監視対象のタスクIDが空であることを表す
	ErrEmptyTaskID = errors.New("task id is empty")
)

// API は Controller が利用するバックエンド操作
type API interface {
	StatusFetcher
	Submit(ctx context.Context, req *form.GenerateRequest) (*models.GenerateResponse, error)
}

// Controller は送信とポーリングのライフサイクルを管理する
// 表示状態への書き込みはすべて mu を保持した状態で、現在のセッション
// （または現在の送信世代）だけが行う
type Controller struct {
	mu sync.Mutex

	api          API
	poller       *Poller
	presenter    Presenter
	autoDownload bool
	logger       *slog.Logger

	current      *Session
	inflight     bool
	generation   uint64
	cancelSubmit context.CancelFunc
}

// NewController は新しい Controller を作成する
func NewController(api API, presenter Presenter, opts ...Option) *Controller {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Controller{
		api:          api,
		poller:       newPoller(api, o),
		presenter:    presenter,
		autoDownload: o.autoDownload,
		logger:       o.logger,
	}
}

// Submit はジョブを送信し、成功すればポーリングセッションを開始して返す
// 送信に失敗した場合はポーリングを開始せず、セッションは nil になる
func (c *Controller) Submit(ctx context.Context, req *form.GenerateRequest) (*Session, error) {
	c.mu.Lock()
	gen := c.beginLocked()
	c.inflight = true

	submitCtx, cancel := context.WithCancel(ctx)
	c.cancelSubmit = cancel

	p := c.presenter
	p.SetLog(msgSubmitting)
	p.ClearLinks()
	p.SetProgressVisible(true)
	p.SetBusy(true)
	p.SetProgress(progress.Map(models.StepInit))
	c.mu.Unlock()

	resp, err := c.api.Submit(submitCtx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	defer cancel()

	if gen != c.generation {
		c.logger.Debug("古い送信結果を破棄", "generation", gen)
		return nil, ErrSuperseded
	}
	c.inflight = false
	c.cancelSubmit = nil

	if err != nil {
		c.logger.Warn("タスクの送信に失敗", "error", err)
		p.SetLog(submissionFailureText(err))
		p.SetBusy(false)
		p.SetProgressVisible(false)
		return nil, err
	}

	c.logger.Info("タスクを受け付け", "taskID", resp.ID())
	p.SetLog(msgAccepted)
	return c.startLocked(ctx, resp.ID()), nil
}

// Watch は送信済みのタスクにポーリングセッションを接続する
func (c *Controller) Watch(ctx context.Context, taskID string) (*Session, error) {
	if taskID == "" {
		return nil, ErrEmptyTaskID
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.beginLocked()

	p := c.presenter
	p.SetLog(msgWatching)
	p.ClearLinks()
	p.SetProgressVisible(true)
	p.SetBusy(true)
	p.SetProgress(progress.Map(models.StepNone))

	return c.startLocked(ctx, taskID), nil
}

// Cancel は現在のセッションと送信中のリクエストを取り消す
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	wasBusy := c.inflight || c.current != nil
	c.beginLocked()
	if wasBusy {
		c.presenter.SetBusy(false)
	}
}

// Current は現在アクティブなセッションを返す（なければ nil）
func (c *Controller) Current() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Busy は送信中またはセッションがアクティブかどうかを返す
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight || c.current != nil
}

// beginLocked は新しい世代を開始し、前のセッションと送信中のリクエストを破棄する
// busy 表示は変更しない（呼び出し側が引き継ぐ）
func (c *Controller) beginLocked() uint64 {
	c.generation++

	if c.cancelSubmit != nil {
		c.cancelSubmit()
		c.cancelSubmit = nil
	}
	c.inflight = false

	// 先に current を外すので Released は busy を触らない
	if prev := c.current; prev != nil {
		c.current = nil
		c.logger.Debug("前のセッションをキャンセル", "taskID", prev.taskID, "sessionID", prev.id.String())
		prev.finishLocked(Outcome{Kind: OutcomeCanceled})
	}

	return c.generation
}

func (c *Controller) startLocked(ctx context.Context, taskID string) *Session {
	s := c.poller.Start(ctx, taskID, &sessionHandler{c: c})
	c.current = s
	return s
}

// sessionHandler はセッションからの通知を Controller の表示状態へ反映する
type sessionHandler struct {
	c *Controller
}

func (h *sessionHandler) Lock()   { h.c.mu.Lock() }
func (h *sessionHandler) Unlock() { h.c.mu.Unlock() }

func (h *sessionHandler) ApplyTask(s *Session, task *models.Task) {
	if h.c.current != s {
		return
	}
	p := h.c.presenter
	p.SetLog(task.LogText())
	p.SetProgress(progress.Map(task.Step))
}

func (h *sessionHandler) Completed(s *Session, task *models.Task) func() {
	return presentSuccess(s.parent, h.c.presenter, task.Result, h.c.autoDownload, h.c.logger)
}

func (h *sessionHandler) Failed(s *Session, message string) {
	presentFailure(h.c.presenter, jobFailureText(message))
}

func (h *sessionHandler) PollError(s *Session, err error) {
	h.c.presenter.SetLog(msgPollError + err.Error())
}

func (h *sessionHandler) GaveUp(s *Session, o Outcome) {
	switch o.Kind {
	case OutcomeTimedOut:
		h.c.presenter.SetLog(fmt.Sprintf(msgTimedOut, s.taskID))
	default:
		h.c.presenter.SetLog(fmt.Sprintf(msgMalformed, s.taskID))
	}
}

func (h *sessionHandler) Released(s *Session, o Outcome) {
	c := h.c
	if c.current != s {
		return
	}
	c.current = nil
	if !c.inflight {
		c.presenter.SetBusy(false)
	}
}
