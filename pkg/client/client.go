// Package client はフォント変換バックエンドのHTTP APIクライアント
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"

	"github.com/jinford/u8g2gen/pkg/form"
	"github.com/jinford/u8g2gen/pkg/models"
)

const (
	// DefaultTimeout はステータス取得などの短いリクエストのタイムアウト
	// 送信とダウンロードは呼び出し側のコンテキストだけで打ち切る
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent はリクエストに付与する User-Agent
	DefaultUserAgent = "u8g2gen"

	// RequestIDHeader はリクエスト相関用のヘッダ
	RequestIDHeader = "X-Request-ID"

	// 診断用に読むレスポンスボディの上限
	maxDiagnosticBody = 1 << 20
)

// ArtifactKind はダウンロード可能な成果物の種別
type ArtifactKind string

const (
	ArtifactHeader ArtifactKind = "header"
	ArtifactBDF    ArtifactKind = "bdf"
	ArtifactLog    ArtifactKind = "log"
)

// Client はバックエンドAPIクライアント
type Client struct {
	baseURL        *url.URL
	httpClient     *http.Client
	requestTimeout time.Duration
	userAgent      string
	logger         *slog.Logger
}

type clientOptions struct {
	httpClient     *http.Client
	requestTimeout time.Duration
	userAgent      string
	logger         *slog.Logger
}

// Option は Client のオプション設定
type Option func(*clientOptions)

// WithHTTPClient は http.Client を差し替える
// Timeout を設定するとフォントのアップロードも同じ時間で打ち切られる点に注意
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = c
	}
}

// WithRequestTimeout は Status / Deps のリクエストタイムアウトを上書きする
func WithRequestTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		if d > 0 {
			o.requestTimeout = d
		}
	}
}

// WithUserAgent は User-Agent を上書きする
func WithUserAgent(ua string) Option {
	return func(o *clientOptions) {
		o.userAgent = ua
	}
}

// WithLogger はロガーを差し替える
func WithLogger(logger *slog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// New は新しい Client を作成する
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url: %q", baseURL)
	}

	options := clientOptions{
		// アップロードは大きくなり得るため、クライアント全体のタイムアウトは設定しない
		httpClient:     &http.Client{},
		requestTimeout: DefaultTimeout,
		userAgent:      DefaultUserAgent,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Client{
		baseURL:        u,
		httpClient:     options.httpClient,
		requestTimeout: options.requestTimeout,
		userAgent:      options.userAgent,
		logger:         options.logger,
	}, nil
}

// ResolveURL はサーバが返した相対URLをベースURLに対して解決する
func (c *Client) ResolveURL(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", ref, err)
	}
	return c.baseURL.ResolveReference(u).String(), nil
}

// DownloadURL はタスクの成果物のダウンロードURLを組み立てる
func (c *Client) DownloadURL(taskID string, kind ArtifactKind) (string, error) {
	if taskID == "" {
		return "", ErrEmptyTaskID
	}
	switch kind {
	case ArtifactHeader, ArtifactBDF, ArtifactLog:
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownArtifact, kind)
	}
	return c.ResolveURL("/api/download/" + url.PathEscape(taskID) + "/" + string(kind))
}

func (c *Client) newRequest(ctx context.Context, method, ref string, body io.Reader) (*http.Request, error) {
	target, err := c.ResolveURL(ref)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, uuid.New().String())
	return req, nil
}

// Submit はフォント変換ジョブを送信し、タスクIDを含むレスポンスを返す
// タスクIDを得られなかった失敗はすべて *SubmissionError になる
func (c *Client) Submit(ctx context.Context, req *form.GenerateRequest) (*models.GenerateResponse, error) {
	body, contentType := req.Body()
	defer body.Close()

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/api/generate", body)
	if err != nil {
		return nil, &SubmissionError{Err: err}
	}
	httpReq.Header.Set("Content-Type", contentType)

	c.logger.Debug("ジョブを送信",
		"font", req.FontPath,
		"pixelSize", req.PixelSize,
		"requestID", httpReq.Header.Get(RequestIDHeader),
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &SubmissionError{Err: err}
	}
	defer resp.Body.Close()

	var payload models.GenerateResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxDiagnosticBody)).Decode(&payload)

	if resp.StatusCode < 200 || resp.StatusCode > 299 || decodeErr != nil || !payload.OK {
		subErr := &SubmissionError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Err:        decodeErr,
		}
		if decodeErr == nil {
			subErr.Log = payload.Log
		}
		return nil, subErr
	}

	if payload.ID() == "" {
		return nil, &SubmissionError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Log:        payload.Log,
			Err:        ErrMissingTaskID,
		}
	}

	return &payload, nil
}

// Status はタスクの状態を1回取得する
// HTTP交換の失敗と解析できないボディは *TransportError、
// 正しいJSONでの ok=false やタスク欠落は mo.None（エラーなし）を返す
func (c *Client) Status(ctx context.Context, taskID string) (mo.Option[*models.Task], error) {
	if taskID == "" {
		return mo.None[*models.Task](), ErrEmptyTaskID
	}

	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	httpReq, err := c.newRequest(ctx, http.MethodGet, "/api/status/"+url.PathEscape(taskID), nil)
	if err != nil {
		return mo.None[*models.Task](), err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return mo.None[*models.Task](), &TransportError{Op: "status", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mo.None[*models.Task](), &TransportError{
			Op:         "status",
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	// 読み取り途中の切断も含め、解析できないボディは通信エラーとして扱う
	var payload models.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return mo.None[*models.Task](), &TransportError{
			Op:         "status",
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Err:        fmt.Errorf("failed to decode status response: %w", err),
		}
	}

	if !payload.OK || payload.Task == nil {
		return mo.None[*models.Task](), nil
	}

	return mo.Some(payload.Task), nil
}

// Deps はバックエンドの外部ツール状況を取得する
func (c *Client) Deps(ctx context.Context) (*models.Deps, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	httpReq, err := c.newRequest(ctx, http.MethodGet, "/api/deps", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: "deps", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Op: "deps", StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var payload models.DepsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode deps response: %w", err)
	}
	if !payload.OK || payload.Deps == nil {
		return nil, fmt.Errorf("deps response is not ok")
	}

	return payload.Deps, nil
}

// Download は成果物URLの内容を w に書き出す
func (c *Client) Download(ctx context.Context, ref string, w io.Writer) (int64, error) {
	httpReq, err := c.newRequest(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, &TransportError{Op: "download", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &TransportError{Op: "download", StatusCode: resp.StatusCode, Status: resp.Status}
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to read download body: %w", err)
	}
	return n, nil
}
