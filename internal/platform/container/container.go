package container

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/jinford/u8g2gen/internal/platform/config"
	"github.com/jinford/u8g2gen/pkg/client"
	"github.com/jinford/u8g2gen/pkg/console"
	"github.com/jinford/u8g2gen/pkg/orchestrator"
)

// ServiceContainer はコマンド実行に必要な依存関係を保持する
type ServiceContainer struct {
	Client     *client.Client
	Controller *orchestrator.Controller
	Presenter  orchestrator.Presenter
	Logger     *slog.Logger
}

type containerOptions struct {
	logger     *slog.Logger
	presenter  orchestrator.Presenter
	httpClient *http.Client
	output     io.Writer
}

// ContainerOption は ServiceContainer 構築時のオプション
type ContainerOption func(*containerOptions)

// WithContainerLogger はロガーを差し替える
func WithContainerLogger(logger *slog.Logger) ContainerOption {
	return func(opts *containerOptions) {
		opts.logger = logger
	}
}

// WithContainerPresenter はカスタム Presenter を注入する
func WithContainerPresenter(presenter orchestrator.Presenter) ContainerOption {
	return func(opts *containerOptions) {
		opts.presenter = presenter
	}
}

// WithContainerHTTPClient は http.Client を差し替える
func WithContainerHTTPClient(httpClient *http.Client) ContainerOption {
	return func(opts *containerOptions) {
		opts.httpClient = httpClient
	}
}

// WithContainerOutput はコンソール出力先を差し替える
func WithContainerOutput(w io.Writer) ContainerOption {
	return func(opts *containerOptions) {
		opts.output = w
	}
}

// NewContainer は設定からコンテナを生成する。
func NewContainer(cfg *config.Config, opts ...ContainerOption) (*ServiceContainer, error) {
	options := containerOptions{
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(&options)
	}

	logger := options.logger
	if logger == nil {
		logger = slog.Default()
	}

	// タイムアウトは短いリクエストにだけ適用し、送信とダウンロードはコンテキストで打ち切る
	httpClient := options.httpClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	apiClient, err := client.New(cfg.Server.URL,
		client.WithHTTPClient(httpClient),
		client.WithRequestTimeout(cfg.Server.HTTPTimeout),
		client.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("APIクライアントの初期化に失敗しました: %w", err)
	}

	presenter := options.presenter
	if presenter == nil {
		presenter = console.New(options.output, apiClient,
			console.WithDownloadDir(cfg.Download.Dir),
			console.WithLogger(logger),
		)
	}

	controller := orchestrator.NewController(apiClient, presenter,
		orchestrator.WithPollInterval(cfg.Poll.Interval),
		orchestrator.WithMaxMalformedPolls(cfg.Poll.MaxMalformed),
		orchestrator.WithWatchTimeout(cfg.Poll.WatchTimeout),
		orchestrator.WithAutoDownload(cfg.Download.Auto),
		orchestrator.WithLogger(logger),
	)

	return &ServiceContainer{
		Client:     apiClient,
		Controller: controller,
		Presenter:  presenter,
		Logger:     logger,
	}, nil
}

// Close は実行中のセッションと送信を取り消す
func (c *ServiceContainer) Close() {
	if c.Controller != nil {
		c.Controller.Cancel()
	}
}
