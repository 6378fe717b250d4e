package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/jinford/u8g2gen/pkg/client"
)

// DownloadAction はタスクの成果物を取得するコマンドのアクション
func DownloadAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	taskID := cmd.String("task")
	kind := client.ArtifactKind(cmd.String("kind"))
	outDir := cmd.String("out")

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	if outDir == "" {
		outDir = appCtx.Config.Download.Dir
	}

	api := appCtx.Container.Client
	url, err := api.DownloadURL(taskID, kind)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("保存先ディレクトリの作成に失敗: %w", err)
	}
	path := filepath.Join(outDir, artifactFilename(taskID, kind))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ファイルの作成に失敗: %w", err)
	}

	n, err := api.Download(ctx, url, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("成果物のダウンロードに失敗: %w", err)
	}

	appCtx.Logger().Info("成果物を保存", "taskID", taskID, "kind", string(kind), "path", path, "bytes", n)
	fmt.Printf("✓ %s を保存しました (%d bytes)\n", path, n)

	return nil
}

// artifactFilename は成果物の保存ファイル名を決める
func artifactFilename(taskID string, kind client.ArtifactKind) string {
	base := filepath.Base(filepath.Clean("/" + taskID))
	switch kind {
	case client.ArtifactHeader:
		return base + ".h"
	case client.ArtifactBDF:
		return base + ".bdf"
	default:
		return base + ".log"
	}
}
