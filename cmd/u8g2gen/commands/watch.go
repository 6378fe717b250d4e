package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/jinford/u8g2gen/internal/platform/config"
)

// WatchAction は送信済みのタスクを監視するコマンドのアクション
func WatchAction(ctx context.Context, cmd *cli.Command) error {
	envFile := cmd.String("env")
	taskID := cmd.String("task")
	outDir := cmd.String("out")
	noDownload := cmd.Bool("no-download")

	// 共通コンテキストの初期化
	appCtx, err := NewAppContext(ctx, envFile, func(cfg *config.Config) {
		if outDir != "" {
			cfg.Download.Dir = outDir
		}
		if noDownload {
			cfg.Download.Auto = false
		}
	})
	if err != nil {
		return err
	}
	defer appCtx.Close()

	session, err := appCtx.Container.Controller.Watch(ctx, taskID)
	if err != nil {
		return fmt.Errorf("タスクの監視に失敗: %w", err)
	}

	return waitSession(session)
}
