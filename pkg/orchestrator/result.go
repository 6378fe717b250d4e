package orchestrator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jinford/u8g2gen/pkg/models"
)

// DefaultHeaderName はサーバがファイル名を返さなかった場合の保存名
const DefaultHeaderName = "u8g2_font.h"

const (
	msgSubmitting   = "タスクを送信しています…"
	msgAccepted     = "タスクを受け付けました。処理を開始します..."
	msgWatching     = "タスクの状態を取得しています…"
	msgSubmitFailed = "タスクの送信に失敗しました："
	msgJobFailed    = "生成に失敗しました：\n"
	msgUnknownError = "不明なエラー"
	msgPollError    = "タスク状態の取得中にエラーが発生しました: "
	msgTimedOut     = "タスク %s はまだ処理中ですが、監視を打ち切りました（watch コマンドで再開できます）"
	msgMalformed    = "不正なステータス応答が続いたため、タスク %s の監視を中止しました"
)

// diagnostic は送信エラーから表示用の診断メッセージを取り出す
type diagnostic interface {
	Diagnostic() string
}

// presentSuccess は手動ダウンロードリンクを表示し、自動ダウンロードの処理を返す
// リンク表示はオーナーロック保持中に行い、返された処理はロック解放後に実行する
func presentSuccess(ctx context.Context, p Presenter, result *models.Result, autoDownload bool, logger *slog.Logger) func() {
	files := result.Files
	p.ShowLinks([]Link{
		{Kind: LinkHeader, Label: "ヘッダファイルを再ダウンロード", URL: files.Header},
		{Kind: LinkBDF, Label: "BDF をダウンロード", URL: files.BDF},
		{Kind: LinkLog, Label: "詳細ログをダウンロード", URL: files.Log},
	})

	if !autoDownload || files.Header == "" {
		return nil
	}

	name := result.HeaderName
	if name == "" {
		name = DefaultHeaderName
	}
	return func() {
		// 手動リンクが常にあるため、自動ダウンロードの失敗は許容する
		if err := p.AutoDownload(ctx, files.Header, name); err != nil {
			logger.Warn("自動ダウンロードに失敗", "url", files.Header, "error", err)
		}
	}
}

// presentFailure はリンクを消し、エラーテキストだけをログとして表示する
func presentFailure(p Presenter, text string) {
	p.ClearLinks()
	p.SetLog(text)
}

func jobFailureText(message string) string {
	if message == "" {
		message = msgUnknownError
	}
	return msgJobFailed + message
}

func submissionFailureText(err error) string {
	var d diagnostic
	if errors.As(err, &d) {
		return msgSubmitFailed + d.Diagnostic()
	}
	return msgSubmitFailed + err.Error()
}
