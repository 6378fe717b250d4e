// Package console はターミナル向けの Presenter 実装
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/olekukonko/tablewriter"

	"github.com/jinford/u8g2gen/pkg/orchestrator"
	"github.com/jinford/u8g2gen/pkg/progress"
)

// ErrInvalidFilename は保存先のファイル名として使えない名前を表す
var ErrInvalidFilename = errors.New("invalid download filename")

// Downloader は成果物を取得する
type Downloader interface {
	Download(ctx context.Context, ref string, w io.Writer) (int64, error)
	ResolveURL(ref string) (string, error)
}

// Presenter は進捗・ログ・リンクを io.Writer に書き出す
// ログは差分行だけを出力し、全文は状態として保持する
type Presenter struct {
	mu sync.Mutex

	out         io.Writer
	downloader  Downloader
	downloadDir string
	logger      *slog.Logger
	bar         *progress.Bar

	busy    bool
	visible bool
	lines   []string
	links   []orchestrator.Link
	saved   []string
}

// Option は Presenter のオプション設定
type Option func(*Presenter)

// WithDownloadDir は自動ダウンロードの保存先を設定する
func WithDownloadDir(dir string) Option {
	return func(p *Presenter) {
		if dir != "" {
			p.downloadDir = dir
		}
	}
}

// WithBarWidth はプログレスバーの幅を設定する
func WithBarWidth(width int) Option {
	return func(p *Presenter) {
		p.bar = progress.NewBar(width)
	}
}

// WithLogger はロガーを差し替える
func WithLogger(logger *slog.Logger) Option {
	return func(p *Presenter) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New は新しい Presenter を作成する
func New(out io.Writer, downloader Downloader, opts ...Option) *Presenter {
	p := &Presenter{
		out:         out,
		downloader:  downloader,
		downloadDir: ".",
		logger:      slog.Default(),
		bar:         progress.NewBar(0),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ orchestrator.Presenter = (*Presenter)(nil)

func (p *Presenter) SetBusy(busy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.busy = busy
}

func (p *Presenter) SetProgressVisible(visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if visible && !p.visible {
		p.bar.Reset()
	}
	p.visible = visible
}

func (p *Presenter) SetProgress(pr progress.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.visible {
		return
	}
	if line, changed := p.bar.Update(pr); changed {
		fmt.Fprintln(p.out, line)
	}
}

// SetLog はログ全文を置き換える
// 前回の内容の続きであれば追加行だけを出力し、そうでなければ全文を出力する
func (p *Presenter) SetLog(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var next []string
	if text != "" {
		next = strings.Split(text, "\n")
	}

	start := 0
	if hasPrefix(next, p.lines) {
		start = len(p.lines)
	}
	for _, line := range next[start:] {
		fmt.Fprintln(p.out, line)
	}
	p.lines = next
}

func hasPrefix(lines, prefix []string) bool {
	if len(prefix) == 0 || len(prefix) > len(lines) {
		return false
	}
	for i := range prefix {
		if lines[i] != prefix[i] {
			return false
		}
	}
	return true
}

func (p *Presenter) ClearLinks() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.links = nil
}

// ShowLinks は成果物のリンクを表形式で出力する
func (p *Presenter) ShowLinks(links []orchestrator.Link) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.links = append([]orchestrator.Link(nil), links...)

	fmt.Fprintln(p.out)
	table := tablewriter.NewWriter(p.out)
	table.Header("種別", "内容", "URL")
	for _, l := range p.links {
		table.Append(string(l.Kind), l.Label, p.resolve(l.URL))
	}
	table.Render()
}

func (p *Presenter) resolve(ref string) string {
	if p.downloader == nil || ref == "" {
		return ref
	}
	u, err := p.downloader.ResolveURL(ref)
	if err != nil {
		return ref
	}
	return u
}

// AutoDownload は成果物をダウンロードディレクトリに保存する
// ファイル名はディレクトリ部分を取り除いて使う
func (p *Presenter) AutoDownload(ctx context.Context, url, filename string) error {
	if p.downloader == nil {
		return errors.New("downloader is not configured")
	}

	name := filepath.Base(filepath.Clean("/" + filename))
	if name == "/" || name == "." {
		return fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}

	// Presenter のロックは書き込み完了まで持たない
	p.mu.Lock()
	dir := p.downloadDir
	p.mu.Unlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create download dir: %w", err)
	}
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	n, err := p.downloader.Download(ctx, url, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to download %s: %w", url, err)
	}

	p.logger.Info("成果物を保存", "path", path, "bytes", n)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.saved = append(p.saved, path)
	fmt.Fprintf(p.out, "✓ %s を保存しました\n", path)
	return nil
}

// Busy は処理中かどうかを返す
func (p *Presenter) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy
}

// LogText は現在のログ全文を返す
func (p *Presenter) LogText() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return strings.Join(p.lines, "\n")
}

// Links は表示中のリンクを返す
func (p *Presenter) Links() []orchestrator.Link {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]orchestrator.Link(nil), p.links...)
}

// SavedFiles は自動ダウンロードで保存したファイルのパスを返す
func (p *Presenter) SavedFiles() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.saved...)
}
