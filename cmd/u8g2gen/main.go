package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/jinford/u8g2gen/cmd/u8g2gen/commands"
	"github.com/jinford/u8g2gen/internal/platform/logger"
	"github.com/jinford/u8g2gen/pkg/client"
)

func main() {
	// Ctrl-C で実行中のセッションをキャンセルする
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 構造化ログの設定（設定読み込み後に LOG_LEVEL / LOG_FORMAT で再設定される）
	logger.New(logger.DefaultConfig())

	app := &cli.Command{
		Name:  "u8g2gen",
		Usage: "TTF/OTF フォントから u8g2 用ヘッダを生成する変換サーバのクライアント",
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "フォントを送信し、変換の完了まで進捗を表示",
				Flags: []cli.Flag{
					envFlag(),
					&cli.StringFlag{
						Name:  "font",
						Usage: "フォントファイルパス (.ttf / .otf)",
					},
					&cli.IntFlag{
						Name:  "pixel-size",
						Usage: "ピクセルサイズ",
						Value: 16,
					},
					&cli.StringFlag{
						Name:  "symbol",
						Usage: "C シンボル名",
						Value: "u8g2_font_custom",
					},
					&cli.StringSliceFlag{
						Name:  "preset",
						Usage: "文字集合プリセット（複数指定可）",
					},
					&cli.BoolFlag{
						Name:  "include-space",
						Usage: "スペース (0x20) を含める",
					},
					&cli.StringFlag{
						Name:  "chars",
						Usage: "追加する文字",
					},
					&cli.StringFlag{
						Name:  "ranges",
						Usage: "追加するコードポイント範囲 (例: 0x20-0x7E,65)",
					},
					outFlag(),
					noDownloadFlag(),
					&cli.BoolFlag{
						Name:  "interactive",
						Usage: "未指定の項目を対話的に入力",
					},
				},
				Action: commands.GenerateAction,
			},
			{
				Name:  "watch",
				Usage: "送信済みのタスクを監視",
				Flags: []cli.Flag{
					envFlag(),
					taskFlag(),
					outFlag(),
					noDownloadFlag(),
				},
				Action: commands.WatchAction,
			},
			{
				Name:  "status",
				Usage: "タスクの状態を1回だけ取得して表示",
				Flags: []cli.Flag{
					envFlag(),
					taskFlag(),
				},
				Action: commands.StatusAction,
			},
			{
				Name:  "download",
				Usage: "タスクの成果物をダウンロード",
				Flags: []cli.Flag{
					envFlag(),
					taskFlag(),
					&cli.StringFlag{
						Name:  "kind",
						Usage: "成果物の種別 (header / bdf / log)",
						Value: string(client.ArtifactHeader),
					},
					outFlag(),
				},
				Action: commands.DownloadAction,
			},
			{
				Name:  "deps",
				Usage: "変換サーバの外部ツールの状況を表示",
				Flags: []cli.Flag{
					envFlag(),
				},
				Action: commands.DepsAction,
			},
			{
				Name:  "charset",
				Usage: "生成される文字集合をローカルでプレビュー",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "symbol",
						Usage: "C シンボル名",
					},
					&cli.StringSliceFlag{
						Name:  "preset",
						Usage: "文字集合プリセット（複数指定可）",
					},
					&cli.BoolFlag{
						Name:  "include-space",
						Usage: "スペース (0x20) を含める",
					},
					&cli.StringFlag{
						Name:  "chars",
						Usage: "追加する文字",
					},
					&cli.StringFlag{
						Name:  "ranges",
						Usage: "追加するコードポイント範囲",
					},
					&cli.BoolFlag{
						Name:  "list",
						Usage: "プリセットの一覧を表示",
					},
				},
				Action: commands.CharsetAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func envFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "env",
		Usage: "環境変数ファイルパス",
		Value: ".env",
	}
}

func taskFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "task",
		Usage:    "タスクID",
		Required: true,
	}
}

func outFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "out",
		Usage: "成果物の保存先ディレクトリ（省略時は U8G2_DOWNLOAD_DIR）",
	}
}

func noDownloadFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "no-download",
		Usage: "完了時にヘッダを自動保存しない",
	}
}
