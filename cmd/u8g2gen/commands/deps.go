package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/jinford/u8g2gen/pkg/models"
)

// DepsAction は変換サーバの外部ツールの状況を表示するコマンドのアクション
func DepsAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	deps, err := appCtx.Container.Client.Deps(ctx)
	if err != nil {
		return fmt.Errorf("依存ツール情報の取得に失敗: %w", err)
	}

	displayDeps(os.Stdout, deps)

	return nil
}

// displayDeps は依存ツールの状況をテーブル形式で表示します
func displayDeps(w io.Writer, deps *models.Deps) {
	table := tablewriter.NewWriter(w)
	table.Header("ツール", "パス")

	table.Append("otf2bdf", toolPath(deps.OTF2BDF))
	table.Append("bdfconv", toolPath(deps.BDFConv))
	table.Append("最大アップロード", fmt.Sprintf("%d MB", deps.MaxUploadMB))

	table.Render()
}

func toolPath(p string) string {
	if p == "" {
		return "✗ 見つかりません"
	}
	return p
}
