package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/jinford/u8g2gen/pkg/models"
	"github.com/jinford/u8g2gen/pkg/progress"
)

// StatusAction はタスクの状態を1回だけ取得して表示するコマンドのアクション
func StatusAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	taskID := cmd.String("task")

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	result, err := appCtx.Container.Client.Status(ctx, taskID)
	if err != nil {
		return fmt.Errorf("タスク状態の取得に失敗: %w", err)
	}

	task, ok := result.Get()
	if !ok {
		return fmt.Errorf("タスク %s の状態を取得できませんでした（不正な応答）", taskID)
	}

	displayTask(os.Stdout, taskID, task)

	return nil
}

// displayTask はタスクの状態をテーブル形式で表示します
func displayTask(w io.Writer, taskID string, task *models.Task) {
	p := progress.Map(task.Step)

	table := tablewriter.NewWriter(w)
	table.Header("項目", "値")

	table.Append("タスクID", taskID)
	table.Append("状態", string(task.Status))
	table.Append("ステップ", string(task.Step))
	table.Append("進捗", fmt.Sprintf("%d%% %s", p.Percent, p.Label))
	table.Append("ログ行数", fmt.Sprintf("%d", len(task.Log)))

	if task.Error != "" {
		table.Append("エラー", task.Error)
	}
	if task.Result != nil {
		table.Append("ヘッダ", task.Result.Files.Header)
		table.Append("BDF", task.Result.Files.BDF)
		table.Append("ログ", task.Result.Files.Log)
		if task.Result.HeaderName != "" {
			table.Append("ヘッダファイル名", task.Result.HeaderName)
		}
	}

	table.Render()

	// 直近のログ
	if len(task.Log) > 0 {
		fmt.Fprintln(w, "\n=== ログ ===")
		fmt.Fprintln(w, task.LogText())
	}
}
