package orchestrator

import (
	"context"
	"sync"

	"github.com/samber/mo"

	"github.com/jinford/u8g2gen/pkg/form"
	"github.com/jinford/u8g2gen/pkg/models"
	"github.com/jinford/u8g2gen/pkg/progress"
)

// statusStep はフェイクAPIが返す1回分のステータス応答
type statusStep struct {
	task *models.Task
	err  error
	gate chan struct{}
}

// fakeAPI は台本どおりに応答するバックエンド。最後の応答は繰り返される
type fakeAPI struct {
	mu      sync.Mutex
	submit  func(ctx context.Context) (*models.GenerateResponse, error)
	scripts map[string][]statusStep
	calls   map[string]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		scripts: make(map[string][]statusStep),
		calls:   make(map[string]int),
	}
}

func (f *fakeAPI) script(taskID string, steps ...statusStep) *fakeAPI {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts[taskID] = steps
	return f
}

func (f *fakeAPI) acceptAs(taskID string) *fakeAPI {
	f.submit = func(ctx context.Context) (*models.GenerateResponse, error) {
		return &models.GenerateResponse{OK: true, TaskID: taskID}, nil
	}
	return f
}

func (f *fakeAPI) Submit(ctx context.Context, req *form.GenerateRequest) (*models.GenerateResponse, error) {
	return f.submit(ctx)
}

func (f *fakeAPI) Status(ctx context.Context, taskID string) (mo.Option[*models.Task], error) {
	f.mu.Lock()
	f.calls[taskID]++
	var step statusStep
	if s := f.scripts[taskID]; len(s) > 0 {
		step = s[0]
		if len(s) > 1 {
			f.scripts[taskID] = s[1:]
		}
	}
	f.mu.Unlock()

	if step.gate != nil {
		select {
		case <-step.gate:
		case <-ctx.Done():
			return mo.None[*models.Task](), ctx.Err()
		}
	}
	if step.err != nil {
		return mo.None[*models.Task](), step.err
	}
	if step.task == nil {
		return mo.None[*models.Task](), nil
	}
	return mo.Some(step.task), nil
}

func (f *fakeAPI) statusCalls(taskID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[taskID]
}

func pending(step models.Step, log ...string) statusStep {
	return statusStep{task: &models.Task{Status: models.TaskStatusPending, Step: step, Log: log}}
}

type download struct {
	url      string
	filename string
}

// recordingPresenter は表示状態を記録する Presenter
type recordingPresenter struct {
	mu              sync.Mutex
	busy            bool
	visible         bool
	progress        progress.Progress
	progressHistory []int
	log             string
	links           []Link
	downloads       []download
	downloadErr     error
	downloadGate    chan struct{}
	calls           int
}

func (p *recordingPresenter) SetBusy(busy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.busy = busy
}

func (p *recordingPresenter) SetProgressVisible(visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.visible = visible
}

func (p *recordingPresenter) SetProgress(pr progress.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.progress = pr
	p.progressHistory = append(p.progressHistory, pr.Percent)
}

func (p *recordingPresenter) SetLog(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.log = text
}

func (p *recordingPresenter) ClearLinks() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.links = nil
}

func (p *recordingPresenter) ShowLinks(links []Link) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.links = links
}

func (p *recordingPresenter) AutoDownload(ctx context.Context, url, filename string) error {
	p.mu.Lock()
	gate := p.downloadGate
	p.mu.Unlock()
	if gate != nil {
		<-gate
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.downloads = append(p.downloads, download{url: url, filename: filename})
	return p.downloadErr
}

type presenterSnapshot struct {
	busy     bool
	visible  bool
	percent  int
	log      string
	links    []Link
	download []download
	calls    int
}

func (p *recordingPresenter) snapshot() presenterSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return presenterSnapshot{
		busy:     p.busy,
		visible:  p.visible,
		percent:  p.progress.Percent,
		log:      p.log,
		links:    append([]Link(nil), p.links...),
		download: append([]download(nil), p.downloads...),
		calls:    p.calls,
	}
}
