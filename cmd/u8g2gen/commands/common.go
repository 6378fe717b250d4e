package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jinford/u8g2gen/internal/platform/config"
	"github.com/jinford/u8g2gen/internal/platform/container"
	"github.com/jinford/u8g2gen/internal/platform/logger"
	"github.com/jinford/u8g2gen/pkg/orchestrator"
)

// AppContext はコマンド実行に必要な共通コンテキストを保持する
type AppContext struct {
	Config    *config.Config
	Container *container.ServiceContainer
}

// NewAppContext は設定ファイルを読み込み、APIクライアントと Controller を組み立てて AppContext を作成する
// overrides はフラグによる設定の上書きに使う
func NewAppContext(ctx context.Context, envFile string, overrides ...func(*config.Config)) (*AppContext, error) {
	// 設定の読み込み（platform層を使用）
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗: %w", err)
	}
	for _, override := range overrides {
		override(cfg)
	}

	// ロガーの初期化（platform層を使用）
	appLogger := logger.New(logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
	})

	// コンテナの初期化（platform層を使用）
	cont, err := container.NewContainer(cfg, container.WithContainerLogger(appLogger))
	if err != nil {
		return nil, fmt.Errorf("コンテナの初期化に失敗: %w", err)
	}

	return &AppContext{
		Config:    cfg,
		Container: cont,
	}, nil
}

// Close はAppContextが保持するリソースをクリーンアップする
func (ac *AppContext) Close() {
	if ac.Container != nil {
		ac.Container.Close()
	}
}

// Logger はAppContextのロガーを返す
func (ac *AppContext) Logger() *slog.Logger {
	if ac.Container != nil {
		return ac.Container.Logger
	}
	return slog.Default()
}

// ErrCanceled はユーザー操作やシグナルでセッションが取り消されたことを表す
var ErrCanceled = errors.New("canceled")

// waitSession はセッションの終了を待ち、成功以外の結果をエラーに変換する
// 親コンテキストのキャンセルでもセッションは必ず終了するため、ここでは期限を設けない
func waitSession(s *orchestrator.Session) error {
	o, err := s.Wait(context.Background())
	if err != nil {
		return err
	}
	return outcomeError(s.TaskID(), o)
}

// outcomeError は終了結果を終了コード用のエラーに変換する
func outcomeError(taskID string, o orchestrator.Outcome) error {
	switch o.Kind {
	case orchestrator.OutcomeCompleted:
		return nil
	case orchestrator.OutcomeFailed:
		msg := o.Message
		if msg == "" {
			msg = "不明なエラー"
		}
		return fmt.Errorf("タスク %s の生成に失敗: %s", taskID, msg)
	case orchestrator.OutcomeCanceled:
		return fmt.Errorf("タスク %s の監視を中断: %w", taskID, ErrCanceled)
	case orchestrator.OutcomeTimedOut, orchestrator.OutcomeMalformed, orchestrator.OutcomePollError:
		return fmt.Errorf("タスク %s の監視に失敗 (%s): %w", taskID, o.Kind, o.Err)
	default:
		return fmt.Errorf("タスク %s が不明な状態で終了しました", taskID)
	}
}
