package orchestrator

import (
	"context"

	"github.com/jinford/u8g2gen/pkg/progress"
)

// LinkKind は手動ダウンロードリンクの種別
type LinkKind string

const (
	LinkHeader LinkKind = "header"
	LinkBDF    LinkKind = "bdf"
	LinkLog    LinkKind = "log"
)

// Link は手動ダウンロード用のリンク
type Link struct {
	Kind  LinkKind
	Label string
	URL   string
}

// Presenter はUIの表示状態（ログ、進捗、busy、リンク）を保持する
// Controller は AutoDownload 以外をオーナーロックを保持したまま呼ぶため、実装から
// Controller や Session のメソッドを呼び返してはいけない
// AutoDownload はロック外で呼ばれるので、実装は並行呼び出しに対して安全であること
type Presenter interface {
	SetBusy(busy bool)
	SetProgressVisible(visible bool)
	SetProgress(p progress.Progress)
	// SetLog は表示中のログ全体を置き換える
	SetLog(text string)
	ClearLinks()
	ShowLinks(links []Link)
	// AutoDownload はベストエフォートの自動ダウンロード。失敗してもエラー扱いしない
	AutoDownload(ctx context.Context, url, filename string) error
}
